package core

import (
	"strings"
	"time"
)

// User represents a registered identity
//
// PasswordHash and ResetToken are only ever read by repositories; JSON views
// of a User never carry them.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	FirstName    *string   `json:"firstName,omitempty"`
	LastName     *string   `json:"lastName,omitempty"`
	ResetToken   *string   `json:"-"` // Never expose in JSON
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DisplayName returns "first last", whichever name is set, the email, or ""
func (u *User) DisplayName() string {
	first := deref(u.FirstName)
	last := deref(u.LastName)

	switch {
	case first == "" && last == "":
		return u.Email
	case last == "":
		return first
	case first == "":
		return last
	default:
		return strings.Join([]string{first, last}, " ")
	}
}

// Attribute returns the value of a searchable attribute and whether the
// user has it set.
func (u *User) Attribute(name string) (string, bool) {
	switch name {
	case AttrID:
		return u.ID, true
	case AttrEmail:
		return u.Email, true
	case AttrFirstName:
		return deref(u.FirstName), u.FirstName != nil
	case AttrLastName:
		return deref(u.LastName), u.LastName != nil
	case AttrResetToken:
		return deref(u.ResetToken), u.ResetToken != nil
	}
	return "", false
}

// Session is a persisted login record
//
// TokenHash is the SHA-256 of the session id handed to the client; the raw
// id is never stored.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	TokenHash string    `json:"-"` // Never expose in JSON (security!)
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the session is past its lifetime at now.
// A non-positive duration never expires.
func (s *Session) Expired(now time.Time, duration time.Duration) bool {
	if duration <= 0 {
		return false
	}
	return now.After(s.CreatedAt.Add(duration))
}

// LoginResult is returned to the HTTP layer after a successful login
type LoginResult struct {
	User      *User  `json:"user"`
	SessionID string `json:"-"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NormalizeEmail is the canonical form emails are stored, looked up and
// throttled under.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
