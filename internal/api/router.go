// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"characters-api/internal/api/handler"
	"characters-api/internal/config"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(
	cfg *config.AppConfig,
	characterHandler *handler.CharacterHandler,
	authHandler *handler.AuthHandler,
	metrics *Metrics,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)                   // Add a request ID to the context
	r.Use(middleware.RealIP)                      // Use the real IP address
	r.Use(middleware.Logger)                      // Log HTTP requests
	r.Use(middleware.Recoverer)                   // Recover from panics and return 500
	r.Use(middleware.Timeout(cfg.RequestTimeout)) // Cancel the request context after the configured timeout
	r.Use(metrics.Middleware)
	if cfg.RateLimit.Enabled {
		r.Use(RateLimit(cfg.RateLimit, logger))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handler.RespondWithStatus(w, logger, http.StatusNotFound,
			"The requested URL was not found on the server.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handler.RespondWithStatus(w, logger, http.StatusMethodNotAllowed,
			"The method is not allowed for the requested URL.")
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Post("/login", authHandler.Login)
	r.Post("/signup", authHandler.Signup)

	// Reads are public, mutations need a token.
	r.Route("/api/characters", func(r chi.Router) {
		r.Get("/", characterHandler.ListCharacters)
		r.Get("/{id:[0-9]+}", characterHandler.GetCharacter)

		r.Group(func(r chi.Router) {
			r.Use(authHandler.RequireToken)
			r.Post("/", characterHandler.CreateCharacter)
			r.Put("/{id:[0-9]+}", characterHandler.UpdateCharacter)
			r.Delete("/{id:[0-9]+}", characterHandler.DeleteCharacter)
		})
	})

	return r
}
