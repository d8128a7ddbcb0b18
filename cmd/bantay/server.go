package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gofiber/fiber/v3"
	fibercors "github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/lborres/bantay"
	chiadapter "github.com/lborres/bantay/adapters/chi"
	fiberadapter "github.com/lborres/bantay/adapters/fiber"
	"github.com/lborres/bantay/internal/config"
)

// server binds one HTTP framework to the bantay routes
type server struct {
	adapter  bantay.HTTPAdapter
	listen   func(addr string) error
	shutdown func(ctx context.Context) error
}

func newServer(cfg *config.Config) (*server, error) {
	origins := cfg.Server.CORSOrigins
	credentials := !slices.Contains(origins, "*")

	switch cfg.Server.Framework {
	case config.FrameworkFiber:
		app := fiber.New()
		app.Use(recover.New())
		app.Use(logger.New())
		app.Use(fibercors.New(fibercors.Config{
			AllowOrigins:     origins,
			AllowCredentials: credentials,
		}))

		return &server{
			adapter: fiberadapter.New(app),
			listen: func(addr string) error {
				return app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
			},
			shutdown: app.ShutdownWithContext,
		}, nil

	case config.FrameworkChi:
		r := chi.NewRouter()
		r.Use(chimw.Logger)
		r.Use(chimw.Recoverer)
		r.Use(chimw.RealIP)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: credentials,
			MaxAge:           300,
		}))

		srv := &http.Server{
			Handler:      r,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		}
		return &server{
			adapter: chiadapter.New(r),
			listen: func(addr string) error {
				srv.Addr = addr
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			},
			shutdown: srv.Shutdown,
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", config.ErrUnknownFramework, cfg.Server.Framework)
}
