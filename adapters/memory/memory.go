// Package memory keeps users and session records in process maps. It backs
// tests and single-node deployments that do not need durability.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/lborres/bantay/core"
)

var (
	_ core.UserStorage    = (*Adapter)(nil)
	_ core.SessionStorage = (*Adapter)(nil)
)

type Adapter struct {
	mu       sync.RWMutex
	users    map[string]*core.User
	sessions map[string]*core.Session
}

func New() *Adapter {
	return &Adapter{
		users:    make(map[string]*core.User),
		sessions: make(map[string]*core.Session),
	}
}

func (a *Adapter) FindByAttributes(ctx context.Context, attrs map[string]string) ([]*core.User, error) {
	if err := core.ValidateAttributes(attrs); err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	var result []*core.User
	for _, u := range a.users {
		if core.MatchesAttributes(u, attrs) {
			result = append(result, cloneUser(u))
		}
	}
	sortUsers(result)
	return result, nil
}

func (a *Adapter) FindByID(ctx context.Context, id string) (*core.User, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	u, ok := a.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (a *Adapter) Save(ctx context.Context, u *core.User) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for id, other := range a.users {
		if id != u.ID && other.Email == u.Email {
			return core.ErrUserExists
		}
	}
	a.users[u.ID] = cloneUser(u)
	return nil
}

func (a *Adapter) Remove(ctx context.Context, u *core.User) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.users[u.ID]; !ok {
		return core.ErrUserNotFound
	}
	delete(a.users, u.ID)
	return nil
}

func (a *Adapter) Count(ctx context.Context) (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.users), nil
}

func (a *Adapter) All(ctx context.Context) ([]*core.User, error) {
	return a.FindByAttributes(ctx, nil)
}

func (a *Adapter) CreateSession(ctx context.Context, s *core.Session) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	c := *s
	a.sessions[s.ID] = &c
	return nil
}

func (a *Adapter) FindSessions(ctx context.Context, tokenHash string) ([]*core.Session, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var result []*core.Session
	for _, s := range a.sessions {
		if s.TokenHash == tokenHash {
			c := *s
			result = append(result, &c)
		}
	}
	slices.SortFunc(result, func(x, y *core.Session) int {
		if c := x.CreatedAt.Compare(y.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(x.ID, y.ID)
	})
	return result, nil
}

func (a *Adapter) RemoveSession(ctx context.Context, s *core.Session) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.sessions[s.ID]; !ok {
		return core.ErrSessionNotFound
	}
	delete(a.sessions, s.ID)
	return nil
}

// SessionCount reports how many session records are held.
func (a *Adapter) SessionCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.sessions)
}

func cloneUser(u *core.User) *core.User {
	c := *u
	c.FirstName = cloneString(u.FirstName)
	c.LastName = cloneString(u.LastName)
	c.ResetToken = cloneString(u.ResetToken)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func sortUsers(users []*core.User) {
	slices.SortFunc(users, func(x, y *core.User) int {
		if c := x.CreatedAt.Compare(y.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(x.ID, y.ID)
	})
}
