package services

import (
	"context"
	"sync"
	"time"

	"github.com/thejerf/abtime"

	"github.com/lborres/bantay/core"
	"github.com/lborres/bantay/internal/logging"
	"github.com/lborres/bantay/pkg/crypto"
)

var (
	_ core.SessionStore = (*MemoryStore)(nil)
	_ core.SessionStore = (*ExpiringMemoryStore)(nil)
)

type memoryEntry struct {
	userID    string
	createdAt time.Time
}

// MemoryStore keeps session ids in process memory. Sessions never expire
// and are lost on restart.
type MemoryStore struct {
	cookieName string
	duration   time.Duration
	clock      abtime.AbstractTime
	logger     logging.Logger

	mu       sync.RWMutex
	sessions map[string]memoryEntry
}

func NewMemoryStore(cfg core.SessionConfig, opts ...Option) *MemoryStore {
	s := &MemoryStore{}
	s.init(cfg, 0, buildOptions(opts))
	return s
}

func (m *MemoryStore) init(cfg core.SessionConfig, duration time.Duration, o options) {
	m.cookieName = cfg.CookieName
	m.duration = duration
	m.clock = o.clock
	m.logger = o.logger
	m.sessions = make(map[string]memoryEntry)
}

func (m *MemoryStore) CreateSession(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", core.ErrUserIDRequired
	}

	sessionID, err := crypto.NewSessionID()
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.sessions[sessionID] = memoryEntry{userID: userID, createdAt: m.clock.Now()}
	m.mu.Unlock()

	m.logger.Debug(ctx, "session created", "user_id", userID)
	return sessionID, nil
}

func (m *MemoryStore) UserIDForSession(_ context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}

	m.mu.RLock()
	entry, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok {
		return "", nil
	}

	s := core.Session{UserID: entry.userID, CreatedAt: entry.createdAt}
	if s.Expired(m.clock.Now(), m.duration) {
		return "", nil
	}
	return entry.userID, nil
}

// DestroySession removes the caller's session. Expired sessions no longer
// resolve to a user, so they are reported as not destroyed.
func (m *MemoryStore) DestroySession(ctx context.Context, req core.Request) bool {
	sessionID, ok := m.SessionCookie(req)
	if !ok {
		return false
	}

	userID, _ := m.UserIDForSession(ctx, sessionID)
	if userID == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[sessionID]; !exists {
		// lost a race with a concurrent logout
		return false
	}
	delete(m.sessions, sessionID)

	m.logger.Debug(ctx, "session destroyed", "user_id", userID)
	return true
}

func (m *MemoryStore) SessionCookie(req core.Request) (string, bool) {
	return sessionCookie(req, m.cookieName)
}

// Len returns the number of sessions held, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ExpiringMemoryStore is a MemoryStore whose sessions stop resolving once
// older than the configured duration. Expired entries stay in the map
// until destroyed.
type ExpiringMemoryStore struct {
	MemoryStore
}

func NewExpiringMemoryStore(cfg core.SessionConfig, opts ...Option) *ExpiringMemoryStore {
	s := &ExpiringMemoryStore{}
	s.init(cfg, cfg.Duration, buildOptions(opts))
	return s
}

func sessionCookie(req core.Request, name string) (string, bool) {
	if req == nil || name == "" {
		return "", false
	}
	return req.Cookie(name)
}
