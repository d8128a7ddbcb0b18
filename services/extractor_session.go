package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/lborres/bantay/core"
)

var (
	_ core.CredentialExtractor = (*SessionExtractor)(nil)
	_ core.CredentialExtractor = NoneExtractor{}
)

// SessionExtractor resolves users from the session cookie
type SessionExtractor struct {
	sessions core.SessionStore
	users    core.UserStorage
}

func NewSessionExtractor(sessions core.SessionStore, users core.UserStorage) *SessionExtractor {
	return &SessionExtractor{sessions: sessions, users: users}
}

func (s *SessionExtractor) CurrentUser(ctx context.Context, req core.Request) (*core.User, error) {
	sessionID, ok := s.sessions.SessionCookie(req)
	if !ok {
		return nil, nil
	}

	userID, err := s.sessions.UserIDForSession(ctx, sessionID)
	if err != nil || userID == "" {
		return nil, err
	}

	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, core.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find user: %w", core.ErrStoreFailure, err)
	}
	return u, nil
}

// NoneExtractor never resolves a user. Deployments running in "auth" mode
// use it so every protected path is rejected.
type NoneExtractor struct{}

func (NoneExtractor) CurrentUser(context.Context, core.Request) (*core.User, error) {
	return nil, nil
}
