// internal/api/handler/auth.go
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"characters-api/internal/api/types"
	"characters-api/internal/service"
	"characters-api/internal/util"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserIDFromContext returns the id of the user whose token authorised the request.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// AuthHandler handles signup, login and token checks.
type AuthHandler struct {
	service service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: svc,
		logger:  logger,
	}
}

// Signup creates an account.
// POST /signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	if err := h.service.Signup(r.Context(), req.Username, req.Password); err != nil {
		RespondWithError(w, h.logger, err)
		return
	}

	RespondWithJSON(w, h.logger, http.StatusCreated, types.MessageResponse{Message: "User created"})
}

// Login exchanges credentials for a token.
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		RespondWithError(w, h.logger, err)
		return
	}

	RespondWithJSON(w, h.logger, http.StatusCreated, types.TokenResponse{Token: token})
}

// RequireToken rejects requests without a valid token in the Authorization header.
// The header carries the raw token, without a "Bearer" prefix.
func (h *AuthHandler) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := h.service.VerifyToken(r.Header.Get("Authorization"))
		if err != nil {
			RespondWithError(w, h.logger, err)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *AuthHandler) decodeCredentials(w http.ResponseWriter, r *http.Request) (*types.CredentialsRequest, bool) {
	var req types.CredentialsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		RespondWithError(w, h.logger, util.NewDetailedError(util.ErrInvalidInput, "Bad Input. Request body must be a JSON object with username and password"))
		return nil, false
	}
	return &req, true
}
