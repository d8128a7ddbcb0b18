package services

import (
	"context"
	"strings"
	"sync"

	"github.com/lborres/bantay/core"
)

// fakeRequest implements core.Request over plain maps.
type fakeRequest struct {
	path    *string
	headers map[string]string
	cookies map[string]string
}

func newRequest(path string) *fakeRequest {
	return &fakeRequest{path: &path, headers: map[string]string{}, cookies: map[string]string{}}
}

func (r *fakeRequest) withHeader(name, value string) *fakeRequest {
	r.headers[name] = value
	return r
}

func (r *fakeRequest) withCookie(name, value string) *fakeRequest {
	r.cookies[name] = value
	return r
}

func (r *fakeRequest) Path() (string, bool) {
	if r.path == nil {
		return "", false
	}
	return *r.path, true
}

func (r *fakeRequest) Header(name string) (string, bool) {
	for k, v := range r.headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

func (r *fakeRequest) Cookie(name string) (string, bool) {
	v, ok := r.cookies[name]
	return v, ok
}

// FakeUserStorage is a test-only fake implementing core.UserStorage.
type FakeUserStorage struct {
	mu      sync.RWMutex
	users   []*core.User
	findErr error
	saveErr error
}

func NewFakeUserStorage(users ...*core.User) *FakeUserStorage {
	return &FakeUserStorage{users: users}
}

func (f *FakeUserStorage) FindByAttributes(_ context.Context, attrs map[string]string) ([]*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []*core.User
	for _, u := range f.users {
		if core.MatchesAttributes(u, attrs) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *FakeUserStorage) FindByID(_ context.Context, id string) (*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, core.ErrUserNotFound
}

func (f *FakeUserStorage) Save(_ context.Context, u *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	for i, existing := range f.users {
		if existing.ID == u.ID {
			f.users[i] = u
			return nil
		}
	}
	f.users = append(f.users, u)
	return nil
}

func (f *FakeUserStorage) Remove(_ context.Context, u *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.users {
		if existing.ID == u.ID {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return core.ErrUserNotFound
}

func (f *FakeUserStorage) Count(context.Context) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.users), nil
}

func (f *FakeUserStorage) All(context.Context) ([]*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]*core.User(nil), f.users...), nil
}

// FakeSessionStorage is a test-only fake implementing core.SessionStorage.
// It exposes error fields for behavior injection.
type FakeSessionStorage struct {
	mu        sync.RWMutex
	records   []*core.Session
	finds     int
	block     bool // wait for ctx to end on every call
	createErr error
	findErr   error
	removeErr error
}

func NewFakeSessionStorage() *FakeSessionStorage {
	return &FakeSessionStorage{}
}

func (f *FakeSessionStorage) wait(ctx context.Context) error {
	if !f.block {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (f *FakeSessionStorage) CreateSession(ctx context.Context, s *core.Session) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.records = append(f.records, s)
	return nil
}

func (f *FakeSessionStorage) FindSessions(ctx context.Context, tokenHash string) ([]*core.Session, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds++
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []*core.Session
	for _, s := range f.records {
		if s.TokenHash == tokenHash {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *FakeSessionStorage) RemoveSession(ctx context.Context, s *core.Session) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	for i, r := range f.records {
		if r.ID == s.ID {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return core.ErrSessionNotFound
}

func (f *FakeSessionStorage) findCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.finds
}

func (f *FakeSessionStorage) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.records)
}
