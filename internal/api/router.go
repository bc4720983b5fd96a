// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"cashcard-api/internal/api/handler"
	"cashcard-api/internal/api/middleware"
	"cashcard-api/internal/domain"
	"cashcard-api/internal/metrics"
	"cashcard-api/internal/service"
)

// RouterConfig carries the collaborators NewRouter wires together.
type RouterConfig struct {
	CashCards      *handler.CashCardHandler
	Health         *handler.HealthHandler
	Auth           service.AuthService
	RateLimiter    *middleware.RateLimiter
	Redis          *redis.Client // nil disables Idempotency-Key support
	IdempotencyTTL time.Duration
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = handler.DefaultTimeout
	}

	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(cfg.Logger))
	r.Use(metrics.InstrumentHandler)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(timeout))

	// Probes and metrics stay unauthenticated.
	r.Get("/health", cfg.Health.Live)
	r.Get("/ready", cfg.Health.Ready)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/cashcards", func(r chi.Router) {
		// Throttle before BasicAuth so failed attempts cost no bcrypt work.
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Handler)
		}
		r.Use(middleware.BasicAuth(cfg.Auth, cfg.Logger))
		r.Use(middleware.RequireRole(domain.RoleCardOwner))
		if cfg.Redis != nil {
			r.Use(middleware.Idempotency(cfg.Redis, cfg.IdempotencyTTL, cfg.Logger))
		}

		r.Get("/", cfg.CashCards.List)
		r.Post("/", cfg.CashCards.Create)
		r.Get("/{id}", cfg.CashCards.Get)
		r.Put("/{id}", cfg.CashCards.Update)
		r.Delete("/{id}", cfg.CashCards.Delete)
	})

	return r
}
