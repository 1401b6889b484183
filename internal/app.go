// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "characters-api/internal/api"
	"characters-api/internal/api/handler"
	"characters-api/internal/auth"
	"characters-api/internal/config"
	"characters-api/internal/repository"
	"characters-api/internal/repository/sqlrepo"
	"characters-api/internal/service"
	"characters-api/internal/util"
	"characters-api/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	UserRepository      repository.UserRepository
	CharacterRepository repository.CharacterRepository

	// Services
	AuthService      service.AuthService
	CharacterService service.CharacterService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize loads configuration from the environment and initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return app.InitializeWithConfig(ctx, cfg)
}

// InitializeWithConfig initializes all application components from an already loaded configuration.
func (app *Application) InitializeWithConfig(ctx context.Context, cfg *config.AppConfig) error {
	app.Config = cfg

	// 1. Initialize Logger
	util.InitLogger(cfg.LogLevel, cfg.LogFormat)
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.", "db_driver", cfg.DB.Driver)

	// 2. Connect to Database
	database, err := db.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if cfg.DB.AutoMigrate {
		if err := db.Migrate(ctx, app.DB, app.Logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		app.Logger.Info("Database schema is up to date.")
	}

	// 3. Initialize Repositories
	app.UserRepository = sqlrepo.NewUserRepository()
	app.CharacterRepository = sqlrepo.NewCharacterRepository()
	app.Logger.Info("Repositories initialized.")

	// 4. Initialize Services
	// The concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	txFuncs := service.DefaultTxFuncs()
	app.CharacterService = service.NewCharacterService(
		app.DB, // This is the DBTxBeginner
		app.DB, // This is the DBExecutor
		app.CharacterRepository,
		txFuncs,
	)
	app.AuthService = service.NewAuthService(
		app.DB,
		app.DB,
		app.UserRepository,
		auth.NewTokenManager(cfg.Auth.JWTKey, cfg.Auth.TokenTTL),
		auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		txFuncs,
	)
	app.Logger.Info("Services initialized.")

	// 5. Initialize HTTP Handlers and Router
	characterHandler := handler.NewCharacterHandler(app.CharacterService, app.Logger)
	authHandler := handler.NewAuthHandler(app.AuthService, app.Logger)
	app.HTTPHandler = router.NewRouter(cfg, characterHandler, authHandler, router.NewMetrics(), app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.", "rate_limit_enabled", cfg.RateLimit.Enabled)

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
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
