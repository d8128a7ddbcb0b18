// Package bantay authenticates HTTP requests and manages login sessions.
//
// New resolves the configured policy once: which credential extractor runs,
// which session store backs it, and which paths are public. HTTP adapters
// call Authenticate before every handler.
package bantay

import (
	"context"
	"time"

	"github.com/thejerf/abtime"

	"github.com/lborres/bantay/core"
	"github.com/lborres/bantay/internal/logging"
	"github.com/lborres/bantay/pkg/cache"
	"github.com/lborres/bantay/pkg/crypto"
	"github.com/lborres/bantay/services"
)

// interfaces
type (
	UserStorage         = core.UserStorage
	SessionStorage      = core.SessionStorage
	SessionStore        = core.SessionStore
	CredentialExtractor = core.CredentialExtractor
	Request             = core.Request

	PasswordHandler = crypto.PasswordHandler
	Logger          = logging.Logger
)

type (
	AuthMode      = core.AuthMode
	SessionConfig = core.SessionConfig
	User          = core.User
	Session       = core.Session
	CacheStats    = cache.Stats
)

const (
	AuthModeNone       = core.AuthModeNone
	AuthModeAuth       = core.AuthModeAuth
	AuthModeBasic      = core.AuthModeBasic
	AuthModeSession    = core.AuthModeSession
	AuthModeSessionExp = core.AuthModeSessionExp
	AuthModeSessionDB  = core.AuthModeSessionDB
)

// Constructors & helpers (convenience re-exports)
var (
	NewArgon2            = crypto.NewArgon2
	NewBcrypt            = crypto.NewBcrypt
	DefaultSessionConfig = core.DefaultSessionConfig
	DefaultExcludedPaths = core.DefaultExcludedPaths
	ParseAuthMode        = core.ParseAuthMode
	UserFromContext      = core.UserFromContext
)

var (
	ErrMissingCredential    = core.ErrMissingCredential
	ErrInvalidCredential    = core.ErrInvalidCredential
	ErrUserStorageRequired  = core.ErrUserStorageRequired
	ErrSessionStoreRequired = core.ErrSessionStoreRequired
	ErrCookieNameRequired   = core.ErrCookieNameRequired
)

// HTTPAdapter mounts the routes of a Bantay onto a framework
type HTTPAdapter interface {
	RegisterRoutes(b *Bantay) error
}

type Config struct {
	Auth core.Config

	// Users is required in every mode
	Users UserStorage
	// SessionStorage backs session_db_auth
	SessionStorage SessionStorage
	// PasswordHasher hashes registered passwords and verifies Basic
	// credentials; defaults to Argon2id
	PasswordHasher PasswordHandler

	// EnableCache puts a read-through record cache in front of
	// SessionStorage in session_db_auth. Cached records are only revoked
	// locally, so enable it only when a single process serves the storage.
	EnableCache bool
	// CacheConfig sizes the cache when EnableCache is set
	CacheConfig *cache.Config

	// LoginRate is the number of login attempts allowed per email per
	// minute; zero disables throttling
	LoginRate  int
	LoginBurst int

	HTTP   HTTPAdapter
	Logger Logger
	Clock  abtime.AbstractTime
}

// Bantay is the resolved authentication policy of a deployment
type Bantay struct {
	Accounts *services.AccountService

	cfg      core.Config
	users    UserStorage
	sessions SessionStore // nil outside session modes
	auth     *services.Authenticator
	cache    *cache.Memory[*core.Session]
	logger   Logger
}

func New(config Config) (*Bantay, error) {
	if config.Users == nil {
		return nil, ErrUserStorageRequired
	}
	if config.Auth.Mode == "" {
		config.Auth.Mode = AuthModeNone
	}
	if config.Auth.Mode.UsesSessions() && config.Auth.Session.CookieName == "" {
		return nil, ErrCookieNameRequired
	}

	// Set Defaults

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = crypto.NewArgon2()
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	clock := config.Clock
	if clock == nil {
		clock = abtime.NewRealTime()
	}

	opts := []services.Option{services.WithClock(clock), services.WithLogger(logger)}

	b := &Bantay{
		cfg:    config.Auth,
		users:  config.Users,
		logger: logger,
	}

	var extractor CredentialExtractor
	switch config.Auth.Mode {
	case AuthModeNone:
	case AuthModeAuth:
		extractor = services.NoneExtractor{}
	case AuthModeBasic:
		extractor = services.NewBasicExtractor(config.Users, passwordHasher, opts...)
	case AuthModeSession:
		b.sessions = services.NewMemoryStore(config.Auth.Session, opts...)
	case AuthModeSessionExp:
		b.sessions = services.NewExpiringMemoryStore(config.Auth.Session, opts...)
	case AuthModeSessionDB:
		if config.SessionStorage == nil {
			return nil, ErrSessionStoreRequired
		}
		if config.EnableCache {
			cacheConfig := cache.Config{}
			if config.CacheConfig != nil {
				cacheConfig = *config.CacheConfig
			}
			if cacheConfig.Clock == nil {
				cacheConfig.Clock = clock
			}
			b.cache = cache.NewMemory[*core.Session](cacheConfig)
		}
		storeOpts := opts
		if b.cache != nil {
			storeOpts = append(opts[:len(opts):len(opts)], services.WithCache(b.cache))
		}
		b.sessions = services.NewPersistentStore(config.Auth.Session, config.SessionStorage, storeOpts...)
	default:
		return nil, core.ErrUnknownAuthMode
	}
	if b.sessions != nil {
		extractor = services.NewSessionExtractor(b.sessions, config.Users)
	}

	b.auth = services.NewAuthenticator(extractor, config.Auth.Matcher(), config.Auth.Session.CookieName, opts...)

	throttle := services.NewLoginThrottle(config.LoginRate, config.LoginBurst, clock)
	b.Accounts = services.NewAccountService(config.Users, b.sessions, passwordHasher, throttle, opts...)

	if config.HTTP != nil {
		if err := config.HTTP.RegisterRoutes(b); err != nil {
			return nil, err
		}
	}

	logger.Info(context.Background(), "bantay configured",
		"mode", string(config.Auth.Mode),
		"excluded_paths", len(config.Auth.ExcludedPaths),
		"strict_paths", config.Auth.StrictPaths)

	return b, nil
}

func (b *Bantay) Mode() AuthMode {
	return b.cfg.Mode
}

// CookieName is the cookie carrying session ids, "" outside session modes.
func (b *Bantay) CookieName() string {
	if b.sessions == nil {
		return ""
	}
	return b.cfg.Session.CookieName
}

// SessionTTL is the lifetime enforced on sessions; zero means they never
// expire.
func (b *Bantay) SessionTTL() time.Duration {
	switch b.cfg.Mode {
	case AuthModeSessionExp, AuthModeSessionDB:
		return b.cfg.Session.Duration
	}
	return 0
}

// RequiresAuth reports whether path is protected.
func (b *Bantay) RequiresAuth(path *string) bool {
	return b.auth.RequiresAuth(path)
}

// Authenticate is the pre-request hook. It returns the resolved user, or
// ErrMissingCredential (401) or ErrInvalidCredential (403).
func (b *Bantay) Authenticate(ctx context.Context, req Request) (*User, error) {
	return b.auth.Authenticate(ctx, req)
}

func (b *Bantay) CurrentUser(ctx context.Context, req Request) *User {
	return b.auth.CurrentUser(ctx, req)
}

func (b *Bantay) CreateSession(ctx context.Context, userID string) (string, error) {
	if b.sessions == nil {
		return "", ErrSessionStoreRequired
	}
	return b.sessions.CreateSession(ctx, userID)
}

func (b *Bantay) DestroySession(ctx context.Context, req Request) bool {
	if b.sessions == nil {
		return false
	}
	return b.sessions.DestroySession(ctx, req)
}

// SessionCookie returns the session id carried by req.
func (b *Bantay) SessionCookie(req Request) (string, bool) {
	if b.sessions == nil {
		return "", false
	}
	return b.sessions.SessionCookie(req)
}

// Stats is the payload of the stats route
type Stats struct {
	Users int         `json:"users"`
	Cache *CacheStats `json:"cache,omitempty"`
}

func (b *Bantay) Stats(ctx context.Context) (*Stats, error) {
	n, err := b.users.Count(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Users: n}
	if b.cache != nil {
		s := b.cache.Stats()
		stats.Cache = &s
	}
	return stats, nil
}
