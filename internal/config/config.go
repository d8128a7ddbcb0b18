// Package config loads bantay's runtime settings.
//
// Values are layered: built-in defaults, then an optional TOML file, then
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lborres/bantay/core"
	"github.com/lborres/bantay/pkg/crypto"
)

var (
	ErrUnknownStore     = errors.New("unknown store backend")
	ErrUnknownFramework = errors.New("unknown http framework")
	ErrUnknownScheme    = errors.New("unknown password scheme")
)

// Store backends
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// HTTP frameworks
const (
	FrameworkFiber = "fiber"
	FrameworkChi   = "chi"
)

// Password schemes
const (
	SchemeArgon2 = "argon2"
	SchemeBcrypt = "bcrypt"
	SchemeSHA256 = "sha256"
)

type Config struct {
	Auth   AuthConfig   `toml:"auth"`
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Log    LogConfig    `toml:"log"`
}

type AuthConfig struct {
	// Type is one of none, auth, basic_auth, session_auth,
	// session_exp_auth, session_db_auth
	Type string `toml:"type"`
	// SessionName is the session cookie name
	SessionName string `toml:"session_name"`
	// SessionDuration is in seconds; <= 0 never expires
	SessionDuration int      `toml:"session_duration"`
	ExcludedPaths   []string `toml:"excluded_paths"`
	StrictPaths     bool     `toml:"strict_paths"`
	// StoreTimeout bounds persistence calls, in seconds
	StoreTimeout int `toml:"store_timeout"`
	// PasswordScheme is argon2, bcrypt or sha256
	PasswordScheme string `toml:"password_scheme"`
	// LoginRate is login attempts per minute allowed per email; 0 disables
	LoginRate  int `toml:"login_rate"`
	LoginBurst int `toml:"login_burst"`
}

type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        string   `toml:"port"`
	Framework   string   `toml:"framework"`
	CORSOrigins []string `toml:"cors_origins"`
}

type StoreConfig struct {
	Backend       string `toml:"backend"`
	DSN           string `toml:"dsn"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDB       string `toml:"mongo_db"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ResetPasswordPath is public in the default deployment so users locked out
// of their account can request a token.
const ResetPasswordPath = "/reset_password/"

// ProfilePath is public in the default deployment; the profile route
// answers 403 itself when the session cookie does not resolve.
const ProfilePath = "/profile/"

// Default returns development defaults.
func Default() *Config {
	session := core.DefaultSessionConfig()
	return &Config{
		Auth: AuthConfig{
			Type:            string(core.AuthModeNone),
			SessionName:     session.CookieName,
			SessionDuration: 0,
			ExcludedPaths:   append(core.DefaultExcludedPaths(), ResetPasswordPath, ProfilePath),
			StoreTimeout:    int(session.StoreTimeout / time.Second),
			PasswordScheme:  SchemeArgon2,
			LoginRate:       10,
			LoginBurst:      5,
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        "5000",
			Framework:   FrameworkFiber,
			CORSOrigins: []string{"*"},
		},
		Store: StoreConfig{
			Backend: StoreMemory,
			MongoDB: "bantay",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load applies defaults, the TOML file at path (skipped when path is
// empty) and then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// ApplyEnv overlays environment variables read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set("AUTH_TYPE", &c.Auth.Type)
	set("SESSION_NAME", &c.Auth.SessionName)
	if v, ok := lookup("SESSION_DURATION"); ok {
		c.Auth.SessionDuration = parseSeconds(v)
	}
	set("BANTAY_PASSWORD_SCHEME", &c.Auth.PasswordScheme)

	set("API_HOST", &c.Server.Host)
	set("API_PORT", &c.Server.Port)
	set("BANTAY_HTTP", &c.Server.Framework)

	set("BANTAY_STORE", &c.Store.Backend)
	set("BANTAY_DSN", &c.Store.DSN)
	set("REDIS_ADDR", &c.Store.RedisAddr)
	set("REDIS_PASSWORD", &c.Store.RedisPassword)
	set("MONGO_URI", &c.Store.MongoURI)
	set("MONGO_DB", &c.Store.MongoDB)

	set("BANTAY_LOG_LEVEL", &c.Log.Level)
	set("BANTAY_LOG_FORMAT", &c.Log.Format)
}

// parseSeconds treats anything that is not an integer as 0.
func parseSeconds(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}

func (c *Config) Validate() error {
	if _, err := core.ParseAuthMode(c.Auth.Type); err != nil {
		return err
	}

	switch c.Auth.PasswordScheme {
	case SchemeArgon2, SchemeBcrypt, SchemeSHA256:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownScheme, c.Auth.PasswordScheme)
	}

	switch c.Server.Framework {
	case FrameworkFiber, FrameworkChi:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFramework, c.Server.Framework)
	}

	switch c.Store.Backend {
	case StoreMemory, StoreSQLite, StorePostgres, StoreMongo:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.Store.Backend)
	}

	if c.Store.Backend == StoreMongo && c.Store.MongoURI == "" {
		return errors.New("mongo store requires MONGO_URI")
	}
	if c.Store.Backend == StorePostgres && c.Store.DSN == "" {
		return errors.New("postgres store requires BANTAY_DSN")
	}

	mode, _ := core.ParseAuthMode(c.Auth.Type)
	if mode.UsesSessions() && c.Auth.SessionName == "" {
		return core.ErrCookieNameRequired
	}

	return nil
}

// Core converts the auth section into the core policy.
func (c *Config) Core() (core.Config, error) {
	mode, err := core.ParseAuthMode(c.Auth.Type)
	if err != nil {
		return core.Config{}, err
	}

	session := core.DefaultSessionConfig()
	session.CookieName = c.Auth.SessionName
	session.Duration = time.Duration(c.Auth.SessionDuration) * time.Second
	if c.Auth.StoreTimeout > 0 {
		session.StoreTimeout = time.Duration(c.Auth.StoreTimeout) * time.Second
	}

	return core.Config{
		Mode:          mode,
		Session:       session,
		ExcludedPaths: c.Auth.ExcludedPaths,
		StrictPaths:   c.Auth.StrictPaths,
	}, nil
}

// PasswordHandler returns the hashing scheme named by PasswordScheme,
// Argon2id when unset.
func (c *Config) PasswordHandler() crypto.PasswordHandler {
	switch c.Auth.PasswordScheme {
	case SchemeBcrypt:
		return crypto.NewBcrypt()
	case SchemeSHA256:
		return crypto.SHA256{}
	default:
		return crypto.NewArgon2()
	}
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
