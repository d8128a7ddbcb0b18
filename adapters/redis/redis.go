// Package redis keeps session records in Redis, one key per token hash.
// Records expire through the key TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lborres/bantay/core"
)

const keyPrefix = "session:"

var _ core.SessionStorage = (*Adapter)(nil)

// Client is the subset of redis.Cmdable used here.
type Client interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Adapter struct {
	rdb Client
	ttl time.Duration
}

// New stores records for ttl; zero keeps them until removed.
func New(rdb Client, ttl time.Duration) *Adapter {
	return &Adapter{rdb: rdb, ttl: ttl}
}

// NewClient creates and pings a Redis client with optional password auth.
func NewClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

type record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func key(tokenHash string) string {
	return keyPrefix + tokenHash
}

func (a *Adapter) CreateSession(ctx context.Context, s *core.Session) error {
	payload, err := json.Marshal(record{ID: s.ID, UserID: s.UserID, CreatedAt: s.CreatedAt})
	if err != nil {
		return fmt.Errorf("redis encode session: %w", err)
	}
	if err := a.rdb.Set(ctx, key(s.TokenHash), payload, a.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// FindSessions returns at most one record since the key is the hash.
func (a *Adapter) FindSessions(ctx context.Context, tokenHash string) ([]*core.Session, error) {
	val, err := a.rdb.Get(ctx, key(tokenHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var r record
	if err := json.Unmarshal(val, &r); err != nil {
		return nil, fmt.Errorf("redis decode session: %w", err)
	}
	return []*core.Session{{
		ID:        r.ID,
		UserID:    r.UserID,
		TokenHash: tokenHash,
		CreatedAt: r.CreatedAt.UTC(),
	}}, nil
}

func (a *Adapter) RemoveSession(ctx context.Context, s *core.Session) error {
	n, err := a.rdb.Del(ctx, key(s.TokenHash)).Result()
	if err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	if n == 0 {
		return core.ErrSessionNotFound
	}
	return nil
}
