// internal/api/handler/response.go
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"characters-api/internal/api/types"
	"characters-api/internal/util"
)

var statusTitles = map[int]string{
	http.StatusBadRequest:          "Bad request",
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusNotFound:            "Not found",
	http.StatusMethodNotAllowed:    "Method not allowed",
	http.StatusConflict:            "Conflict",
	http.StatusUnprocessableEntity: "Unprocessable Entity",
	http.StatusTooManyRequests:     "Rate limit exceeded",
	http.StatusInternalServerError: "Internal server error",
}

// RespondWithJSON writes payload as a JSON body with the given status code.
func RespondWithJSON(w http.ResponseWriter, logger *slog.Logger, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// RespondWithStatus writes the error envelope for code with description as the detail.
func RespondWithStatus(w http.ResponseWriter, logger *slog.Logger, code int, description string) {
	title, ok := statusTitles[code]
	if !ok {
		title = http.StatusText(code)
	}
	RespondWithJSON(w, logger, code, types.ErrorResponse{
		Error:       fmt.Sprintf("%d %s", code, title),
		Description: description,
	})
}

// RespondWithError maps a service error to its status code and writes the error envelope.
// Errors that match no known kind are logged and reported as a bare 500.
func RespondWithError(w http.ResponseWriter, logger *slog.Logger, err error) {
	statusCode := http.StatusInternalServerError
	switch {
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
	case util.IsError(err, util.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
	case util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
	case util.IsError(err, util.ErrConflict):
		statusCode = http.StatusConflict
	case util.IsError(err, util.ErrUnprocessable):
		statusCode = http.StatusUnprocessableEntity
	case util.IsError(err, util.ErrRateLimited):
		statusCode = http.StatusTooManyRequests
	case util.IsError(err, util.ErrMissingFields):
		// Signup reports missing fields as a server-side failure.
		RespondWithStatus(w, logger, statusCode, util.Detail(err, "Unable to create user"))
		return
	default:
		logger.Error("Unhandled service error", "error", err)
		RespondWithStatus(w, logger, statusCode, "Internal server error")
		return
	}

	RespondWithStatus(w, logger, statusCode, util.Detail(err, statusTitles[statusCode]))
}
