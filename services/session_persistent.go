package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/thejerf/abtime"

	"github.com/lborres/bantay/core"
	"github.com/lborres/bantay/internal/logging"
	"github.com/lborres/bantay/pkg/cache"
	"github.com/lborres/bantay/pkg/crypto"
)

var _ core.SessionStore = (*PersistentStore)(nil)

// PersistentStore keeps session records in a core.SessionStorage so they
// survive restarts and are shared between processes. Records are keyed by
// the SHA-256 of the session id; the id itself is only ever held by the
// client.
type PersistentStore struct {
	cfg     core.SessionConfig
	storage core.SessionStorage
	cache   *cache.Memory[*core.Session] // optional
	ids     *crypto.NanoID
	clock   abtime.AbstractTime
	logger  logging.Logger
}

func NewPersistentStore(cfg core.SessionConfig, storage core.SessionStorage, opts ...Option) *PersistentStore {
	o := buildOptions(opts)
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = core.DefaultSessionConfig().StoreTimeout
	}
	return &PersistentStore{
		cfg:     cfg,
		storage: storage,
		cache:   o.cache,
		ids:     crypto.NewNanoID(),
		clock:   o.clock,
		logger:  o.logger,
	}
}

func (ps *PersistentStore) CreateSession(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", core.ErrUserIDRequired
	}

	pair, err := crypto.GenerateHashedToken()
	if err != nil {
		return "", err
	}

	recordID, err := ps.ids.New()
	if err != nil {
		return "", err
	}

	session := &core.Session{
		ID:        recordID,
		UserID:    userID,
		TokenHash: pair.Hash,
		CreatedAt: ps.clock.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, ps.cfg.StoreTimeout)
	defer cancel()

	if err := ps.storage.CreateSession(ctx, session); err != nil {
		return "", storeFailure("create session", err)
	}

	if ps.cache != nil {
		ps.cache.Set(pair.Hash, session)
	}

	ps.logger.Debug(ctx, "session created", "user_id", userID, "record_id", recordID)
	return pair.Token, nil
}

func (ps *PersistentStore) UserIDForSession(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}

	session, err := ps.lookup(ctx, crypto.HashToken(sessionID))
	if err != nil || session == nil {
		return "", err
	}

	if session.Expired(ps.clock.Now(), ps.cfg.Duration) {
		if ps.cache != nil {
			ps.cache.Delete(session.TokenHash)
		}
		return "", nil
	}

	return session.UserID, nil
}

func (ps *PersistentStore) DestroySession(ctx context.Context, req core.Request) bool {
	sessionID, ok := ps.SessionCookie(req)
	if !ok || sessionID == "" {
		return false
	}

	tokenHash := crypto.HashToken(sessionID)
	session, err := ps.lookup(ctx, tokenHash)
	if err != nil {
		ps.logger.Error(ctx, "store failure", "op", "destroy session", "error", err)
		return false
	}
	if session == nil || session.UserID == "" || session.Expired(ps.clock.Now(), ps.cfg.Duration) {
		return false
	}

	if ps.cache != nil {
		ps.cache.Delete(tokenHash)
	}

	ctx, cancel := context.WithTimeout(ctx, ps.cfg.StoreTimeout)
	defer cancel()

	if err := ps.storage.RemoveSession(ctx, session); err != nil {
		ps.logger.Error(ctx, "store failure", "op", "remove session", "error", err)
		return false
	}

	ps.logger.Debug(ctx, "session destroyed", "user_id", session.UserID, "record_id", session.ID)
	return true
}

func (ps *PersistentStore) SessionCookie(req core.Request) (string, bool) {
	return sessionCookie(req, ps.cfg.CookieName)
}

// CacheStats reports the record cache counters; ok is false when the store
// runs without a cache.
func (ps *PersistentStore) CacheStats() (stats cache.Stats, ok bool) {
	if ps.cache == nil {
		return cache.Stats{}, false
	}
	return ps.cache.Stats(), true
}

// lookup returns the first record matching tokenHash, or nil.
func (ps *PersistentStore) lookup(ctx context.Context, tokenHash string) (*core.Session, error) {
	if ps.cache != nil {
		if s, err := ps.cache.Get(tokenHash); err == nil {
			return s, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, ps.cfg.StoreTimeout)
	defer cancel()

	sessions, err := ps.storage.FindSessions(ctx, tokenHash)
	if err != nil {
		return nil, storeFailure("find sessions", err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}

	session := sessions[0]
	if ps.cache != nil {
		ps.cache.Set(tokenHash, session)
	}
	return session, nil
}

func storeFailure(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: timed out: %w", core.ErrStoreFailure, op, err)
	}
	return fmt.Errorf("%w: %s: %w", core.ErrStoreFailure, op, err)
}

