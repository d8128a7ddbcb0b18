package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lborres/bantay/adapters/memory"
	mongoadapter "github.com/lborres/bantay/adapters/mongo"
	pgxadapter "github.com/lborres/bantay/adapters/pgx"
	redisadapter "github.com/lborres/bantay/adapters/redis"
	sqliteadapter "github.com/lborres/bantay/adapters/sqlite"
	"github.com/lborres/bantay/core"
	"github.com/lborres/bantay/internal/config"
	"github.com/lborres/bantay/internal/logging"
)

const defaultSQLiteDSN = "file:bantay.db"

// stores holds the repositories of a process and the handles that own them
type stores struct {
	users    core.UserStorage
	sessions core.SessionStorage
	closers  []func() error
}

func (s *stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

// openStores connects the configured backend. Session records go to Redis
// when an address is configured, otherwise to the user backend.
func openStores(ctx context.Context, cfg *config.Config, logger logging.Logger) (*stores, error) {
	st := &stores{}

	switch cfg.Store.Backend {
	case config.StoreMemory:
		a := memory.New()
		st.users, st.sessions = a, a

	case config.StoreSQLite:
		dsn := cfg.Store.DSN
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
		a, db, err := sqliteadapter.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		st.users, st.sessions = a, a
		st.closers = append(st.closers, db.Close)

	case config.StorePostgres:
		a, pool, err := pgxadapter.Connect(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		st.users, st.sessions = a, a
		st.closers = append(st.closers, func() error { pool.Close(); return nil })

	case config.StoreMongo:
		a, client, err := mongoadapter.Connect(ctx, cfg.Store.MongoURI, cfg.Store.MongoDB)
		if err != nil {
			return nil, err
		}
		st.users, st.sessions = a, a
		st.closers = append(st.closers, func() error { return client.Disconnect(context.Background()) })

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownStore, cfg.Store.Backend)
	}

	if cfg.Store.RedisAddr != "" {
		rdb, err := redisadapter.NewClient(ctx, cfg.Store.RedisAddr, cfg.Store.RedisPassword)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		ttl := time.Duration(cfg.Auth.SessionDuration) * time.Second
		st.sessions = redisadapter.New(rdb, ttl)
		st.closers = append(st.closers, rdb.Close)
	}

	logger.Info(ctx, "stores ready", "backend", cfg.Store.Backend, "redis_sessions", cfg.Store.RedisAddr != "")
	return st, nil
}
