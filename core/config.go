package core

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode selects the authentication policy of a deployment
type AuthMode string

const (
	AuthModeNone       AuthMode = "none"
	AuthModeAuth       AuthMode = "auth"
	AuthModeBasic      AuthMode = "basic_auth"
	AuthModeSession    AuthMode = "session_auth"
	AuthModeSessionExp AuthMode = "session_exp_auth"
	AuthModeSessionDB  AuthMode = "session_db_auth"
)

// ParseAuthMode resolves a configured string once at startup.
// An empty string selects AuthModeNone.
func ParseAuthMode(s string) (AuthMode, error) {
	mode := AuthMode(strings.TrimSpace(strings.ToLower(s)))
	switch mode {
	case "":
		return AuthModeNone, nil
	case AuthModeNone, AuthModeAuth, AuthModeBasic, AuthModeSession, AuthModeSessionExp, AuthModeSessionDB:
		return mode, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAuthMode, s)
}

// UsesSessions reports whether the mode resolves users from a session cookie.
func (m AuthMode) UsesSessions() bool {
	return m == AuthModeSession || m == AuthModeSessionExp || m == AuthModeSessionDB
}

// Config is the resolved authentication policy of a deployment
type Config struct {
	Mode          AuthMode
	Session       SessionConfig
	ExcludedPaths []string
	// StrictPaths disables the symmetric prefix rule of MatchLoose
	StrictPaths bool
}

func DefaultConfig() Config {
	return Config{
		Mode:          AuthModeNone,
		Session:       DefaultSessionConfig(),
		ExcludedPaths: DefaultExcludedPaths(),
	}
}

// Matcher returns the path matcher selected by StrictPaths.
func (c Config) Matcher() PathMatcher {
	mode := MatchLoose
	if c.StrictPaths {
		mode = MatchStrict
	}
	return PathMatcher{Excluded: c.ExcludedPaths, Mode: mode}
}

type SessionConfig struct {
	// CookieName is the cookie carrying the session id
	CookieName string
	// Duration is the session lifetime; <= 0 never expires
	Duration time.Duration
	// StoreTimeout bounds every persistence call
	StoreTimeout time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		CookieName:   "_my_session_id",
		Duration:     0,
		StoreTimeout: 5 * time.Second,
	}
}

// DefaultExcludedPaths are the public routes of the API
func DefaultExcludedPaths() []string {
	return []string{
		"/api/v1/status/",
		"/api/v1/unauthorized/",
		"/api/v1/forbidden/",
		"/api/v1/auth_session/login/",
	}
}
