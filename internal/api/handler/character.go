// internal/api/handler/character.go
package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"characters-api/internal/domain"
	"characters-api/internal/service"
	"characters-api/internal/util"
)

// maxBodyBytes bounds character payloads read into memory.
const maxBodyBytes = 1 << 20

// CharacterHandler handles HTTP requests for the character resource.
type CharacterHandler struct {
	service service.CharacterService
	logger  *slog.Logger
}

// NewCharacterHandler creates a new CharacterHandler.
func NewCharacterHandler(svc service.CharacterService, logger *slog.Logger) *CharacterHandler {
	return &CharacterHandler{
		service: svc,
		logger:  logger,
	}
}

// ListCharacters handles filtered, sorted and paginated listing.
// GET /api/characters
func (h *CharacterHandler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	query, err := domain.ParseCharacterQuery(r.URL.Query())
	if err != nil {
		RespondWithError(w, h.logger, err)
		return
	}

	characters, err := h.service.ListCharacters(r.Context(), query)
	if err != nil {
		RespondWithError(w, h.logger, err)
		return
	}

	RespondWithJSON(w, h.logger, http.StatusOK, characters)
}

// GetCharacter handles lookup by id.
// GET /api/characters/{id}
func (h *CharacterHandler) GetCharacter(w http.ResponseWriter, r *http.Request) {
	id, ok := h.characterID(w, r)
	if !ok {
		return
	}

	character, err := h.service.GetCharacter(r.Context(), id)
	if err != nil {
		RespondWithError(w, h.logger, err)
		return
	}

	RespondWithJSON(w, h.logger, http.StatusOK, character)
}

// CreateCharacter handles character creation.
// POST /api/characters
func (h *CharacterHandler) CreateCharacter(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	patch, err := domain.ParseCharacterCreate(body)
	if err != nil {
		RespondWithError(w, h.logger, err)
		return
	}

	character, err := h.service.CreateCharacter(r.Context(), patch)
	if err != nil {
		RespondWithError(w, h.logger, err)
		return
	}

	h.logMutation(r, "Character created", character.ID)
	RespondWithJSON(w, h.logger, http.StatusCreated, character)
}

// UpdateCharacter handles partial updates.
// PUT /api/characters/{id}
func (h *CharacterHandler) UpdateCharacter(w http.ResponseWriter, r *http.Request) {
	id, ok := h.characterID(w, r)
	if !ok {
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	patch, err := domain.ParseCharacterUpdate(body)
	if err != nil {
		RespondWithError(w, h.logger, err)
		return
	}

	character, err := h.service.UpdateCharacter(r.Context(), id, patch)
	if err != nil {
		RespondWithError(w, h.logger, err)
		return
	}

	h.logMutation(r, "Character updated", character.ID)
	RespondWithJSON(w, h.logger, http.StatusOK, character)
}

// DeleteCharacter removes a character and answers with an empty 204.
// DELETE /api/characters/{id}
func (h *CharacterHandler) DeleteCharacter(w http.ResponseWriter, r *http.Request) {
	id, ok := h.characterID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteCharacter(r.Context(), id); err != nil {
		RespondWithError(w, h.logger, err)
		return
	}

	h.logMutation(r, "Character deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CharacterHandler) logMutation(r *http.Request, msg string, characterID int64) {
	userID, _ := UserIDFromContext(r.Context())
	h.logger.Info(msg, "character_id", characterID, "user_id", userID)
}

// characterID reads the {id} URL parameter. The router only matches digits, so a
// parse failure means the value overflows int64 and no such character can exist.
func (h *CharacterHandler) characterID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		RespondWithStatus(w, h.logger, http.StatusNotFound, "Character not found")
		return 0, false
	}
	return id, true
}

func (h *CharacterHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		RespondWithError(w, h.logger, util.NewDetailedError(util.ErrInvalidInput, "Bad Input. Request body could not be read"))
		return nil, false
	}
	return body, true
}
