package core

import (
	"context"
	"fmt"
)

// Ports define interfaces for external dependencies

// ============================================
// STORAGE PORTS (Database operations)
// ============================================

// Searchable user attributes for FindByAttributes
const (
	AttrID         = "id"
	AttrEmail      = "email"
	AttrFirstName  = "first_name"
	AttrLastName   = "last_name"
	AttrResetToken = "reset_token"
)

// UserStorage defines user-related database operations
//
// FindByID returns ErrUserNotFound when no user has the id. FindByAttributes
// returns every user whose attributes equal all of attrs; an empty result
// is not an error.
type UserStorage interface {
	FindByAttributes(ctx context.Context, attrs map[string]string) ([]*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Save(ctx context.Context, u *User) error
	Remove(ctx context.Context, u *User) error
	Count(ctx context.Context) (int, error)
	All(ctx context.Context) ([]*User, error)
}

// SessionStorage defines persisted session-record operations
//
// FindSessions matches on TokenHash; callers take the first result.
type SessionStorage interface {
	CreateSession(ctx context.Context, s *Session) error
	FindSessions(ctx context.Context, tokenHash string) ([]*Session, error)
	RemoveSession(ctx context.Context, s *Session) error
}

// ValidateAttributes rejects attribute names no repository can search on.
func ValidateAttributes(attrs map[string]string) error {
	for name := range attrs {
		switch name {
		case AttrID, AttrEmail, AttrFirstName, AttrLastName, AttrResetToken:
		default:
			return fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
		}
	}
	return nil
}

// MatchesAttributes reports whether u carries every attribute in attrs.
func MatchesAttributes(u *User, attrs map[string]string) bool {
	for name, want := range attrs {
		got, ok := u.Attribute(name)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// ============================================
// REQUEST PORT
// ============================================

// Request exposes the parts of an inbound HTTP request the core reads.
// Header lookups are case-insensitive.
type Request interface {
	Path() (string, bool)
	Header(name string) (string, bool)
	Cookie(name string) (string, bool)
}

// AuthorizationHeader returns the raw Authorization header verbatim.
func AuthorizationHeader(req Request) (string, bool) {
	if req == nil {
		return "", false
	}
	return req.Header("Authorization")
}

// ============================================
// AUTH PORTS
// ============================================

// SessionStore issues, resolves and destroys session ids
//
// UserIDForSession returns "" with a nil error when the id is empty, unknown
// or expired; a non-nil error always wraps ErrStoreFailure.
type SessionStore interface {
	CreateSession(ctx context.Context, userID string) (string, error)
	UserIDForSession(ctx context.Context, sessionID string) (string, error)
	DestroySession(ctx context.Context, req Request) bool
	SessionCookie(req Request) (string, bool)
}

// CredentialExtractor derives the calling user from a raw request
//
// A nil user with a nil error means no identity could be resolved.
type CredentialExtractor interface {
	CurrentUser(ctx context.Context, req Request) (*User, error)
}
