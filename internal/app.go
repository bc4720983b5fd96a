// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	router "cashcard-api/internal/api"
	"cashcard-api/internal/api/handler"
	"cashcard-api/internal/api/middleware"
	"cashcard-api/internal/config"
	"cashcard-api/internal/domain"
	"cashcard-api/internal/paging"
	"cashcard-api/internal/repository"
	"cashcard-api/internal/repository/memory"
	"cashcard-api/internal/repository/postgres"
	"cashcard-api/internal/seed"
	"cashcard-api/internal/service"
	"cashcard-api/internal/util"
	"cashcard-api/pkg/cache"
	"cashcard-api/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB      // nil with the memory backend
	Redis  *redis.Client // nil unless REDIS_URL is set

	// Repositories
	UserRepository     repository.UserRepository
	CashCardRepository repository.CashCardRepository

	// Services
	AuthService     service.AuthService
	CashCardService service.CashCardService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{Logger: util.GetLogger()}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger(cfg.LogLevel)
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.", "backend", cfg.StorageBackend)

	// 3. Storage and repositories
	switch cfg.StorageBackend {
	case config.BackendMemory:
		if err := app.initMemory(); err != nil {
			return err
		}
	default:
		if err := app.initPostgres(ctx); err != nil {
			return err
		}
	}
	app.Logger.Info("Repositories initialized.")

	// 4. Optional Redis for Idempotency-Key support
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.Redis = client
		app.Logger.Info("Redis connection established.")
	}

	// 5. Initialize Services
	app.AuthService = service.NewAuthService(app.UserRepository)
	app.CashCardService = service.NewCashCardService(app.CashCardRepository)
	app.Logger.Info("Services initialized.")

	// 6. Initialize HTTP Handlers and Router
	pageDefaults := paging.DefaultDefaults()
	pageDefaults.Size = cfg.PageSizeDefault
	pageDefaults.MaxSize = cfg.PageSizeMax

	deps := map[string]handler.Pinger{"store": app.CashCardRepository}
	if app.Redis != nil {
		deps["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		})
	}

	app.HTTPHandler = router.NewRouter(router.RouterConfig{
		CashCards:      handler.NewCashCardHandler(app.CashCardService, app.Logger, pageDefaults),
		Health:         handler.NewHealthHandler(deps, app.Logger),
		Auth:           app.AuthService,
		RateLimiter:    middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, app.Logger),
		Redis:          app.Redis,
		IdempotencyTTL: cfg.IdempotencyTTL,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         app.Logger,
	})
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

func (app *Application) demoData() ([]domain.User, []domain.CashCard, error) {
	if !app.Config.SeedDemoData {
		return nil, nil, nil
	}
	users, err := seed.DemoUsers(app.Config.BcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to prepare demo users: %w", err)
	}
	return users, seed.DemoCashCards(), nil
}

func (app *Application) initMemory() error {
	users, cards, err := app.demoData()
	if err != nil {
		return err
	}
	app.UserRepository = memory.NewUserRepository(users...)
	app.CashCardRepository = memory.NewCashCardRepository(cards...)
	app.Logger.Warn("Using in-memory storage; data is lost on restart.")
	return nil
}

func (app *Application) initPostgres(ctx context.Context) error {
	database, err := db.NewPostgresDB(ctx, app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if app.Config.Migrate {
		if err := db.Migrate(ctx, app.DB); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		app.Logger.Info("Database schema up to date.")
	}

	users, cards, err := app.demoData()
	if err != nil {
		return err
	}
	if len(users) > 0 || len(cards) > 0 {
		if err := postgres.Seed(ctx, app.DB, users, cards); err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
		app.Logger.Info("Demo data seeded.", "users", len(users), "cash_cards", len(cards))
	}

	app.UserRepository = postgres.NewUserRepository(app.DB)
	app.CashCardRepository = postgres.NewCashCardRepository(app.DB)
	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			app.Logger.Error("Failed to close redis connection", "error", err)
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
