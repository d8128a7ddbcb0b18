// Command bantay serves the account and session API over Fiber or chi.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lborres/bantay"
	"github.com/lborres/bantay/internal/config"
	"github.com/lborres/bantay/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", os.Getenv("BANTAY_CONFIG"), "path to a TOML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintln(os.Stderr, "bantay:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	authCfg, err := cfg.Core()
	if err != nil {
		return err
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := newServer(cfg)
	if err != nil {
		return err
	}

	_, err = bantay.New(bantay.Config{
		Auth:           authCfg,
		Users:          st.users,
		SessionStorage: st.sessions,
		PasswordHasher: cfg.PasswordHandler(),
		LoginRate:      cfg.Auth.LoginRate,
		LoginBurst:     cfg.Auth.LoginBurst,
		HTTP:           srv.adapter,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("could not create bantay instance: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "listening",
			"addr", cfg.Addr(),
			"framework", cfg.Server.Framework,
			"store", cfg.Store.Backend,
			"auth", string(authCfg.Mode))
		errCh <- srv.listen(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.shutdown(shutCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
