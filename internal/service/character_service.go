// internal/service/character_service.go
package service

import (
	"context"
	"fmt"

	"characters-api/internal/domain"
	"characters-api/internal/repository"
	"characters-api/internal/util"
	"characters-api/pkg/db"
)

// CharacterService defines the business logic for the character resource.
type CharacterService interface {
	ListCharacters(ctx context.Context, query *domain.CharacterQuery) ([]domain.Character, error)
	GetCharacter(ctx context.Context, id int64) (*domain.Character, error)
	CreateCharacter(ctx context.Context, patch *domain.CharacterPatch) (*domain.Character, error)
	UpdateCharacter(ctx context.Context, id int64, patch *domain.CharacterPatch) (*domain.Character, error)
	DeleteCharacter(ctx context.Context, id int64) error
}

// characterService implements the CharacterService interface.
type characterService struct {
	txRunner
	dbExecutor    repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	characterRepo repository.CharacterRepository
}

// NewCharacterService creates a new instance of CharacterService.
func NewCharacterService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	characterRepo repository.CharacterRepository,
	txFuncs TxFuncs,
) CharacterService {
	return &characterService{
		txRunner:      txRunner{dbBeginner: dbBeginner, tx: txFuncs},
		dbExecutor:    dbExecutor,
		characterRepo: characterRepo,
	}
}

var errCharacterNotFound = util.NewDetailedError(util.ErrNotFound, "Character not found")

// ListCharacters returns one page of characters. When skip is requested, the filtered
// count is taken in the same transaction and a skip at or past it is rejected.
func (s *characterService) ListCharacters(ctx context.Context, query *domain.CharacterQuery) ([]domain.Character, error) {
	var characters []domain.Character
	err := s.inTx(ctx, "list characters", func(q repository.DBExecutor) error {
		if query.Skip != nil {
			total, err := s.characterRepo.CountCharacters(ctx, q, query.Filter)
			if err != nil {
				return fmt.Errorf("list characters: %w", err)
			}
			if total <= *query.Skip {
				return util.NewDetailedError(util.ErrInvalidInput, "Next page is empty (skip larger than results).")
			}
		}

		var err error
		characters, err = s.characterRepo.ListCharacters(ctx, q, query)
		if err != nil {
			return fmt.Errorf("list characters: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return characters, nil
}

// GetCharacter retrieves one character by ID.
func (s *characterService) GetCharacter(ctx context.Context, id int64) (*domain.Character, error) {
	// Single read, no transaction needed.
	character, err := s.characterRepo.GetCharacterByID(ctx, s.dbExecutor, id)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, errCharacterNotFound
		}
		return nil, fmt.Errorf("get character: %w", err)
	}
	return character, nil
}

// CreateCharacter stores a new character built from patch, which must carry a name.
func (s *characterService) CreateCharacter(ctx context.Context, patch *domain.CharacterPatch) (*domain.Character, error) {
	if patch == nil || patch.Name == nil {
		return nil, util.NewDetailedError(util.ErrInvalidInput, "Bad Input. Name must be specified")
	}

	character := &domain.Character{}
	patch.Apply(character)

	err := s.inTx(ctx, "create character", func(q repository.DBExecutor) error {
		if err := s.characterRepo.CreateCharacter(ctx, q, character); err != nil {
			if util.IsError(err, util.ErrDuplicateEntry) {
				return util.NewDetailedError(util.ErrInvalidInput, "Integrity error. Character with this name already exists in the database")
			}
			if util.IsError(err, util.ErrUnprocessable) {
				return util.NewDetailedError(util.ErrInvalidInput, "Bad Input. A value does not fit its column")
			}
			return fmt.Errorf("create character: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return character, nil
}

// UpdateCharacter merges patch into the stored character and returns the result.
func (s *characterService) UpdateCharacter(ctx context.Context, id int64, patch *domain.CharacterPatch) (*domain.Character, error) {
	var updated *domain.Character
	err := s.inTx(ctx, "update character", func(q repository.DBExecutor) error {
		character, err := s.characterRepo.GetCharacterByID(ctx, q, id)
		if err != nil {
			if util.IsError(err, util.ErrNotFound) {
				return errCharacterNotFound
			}
			return fmt.Errorf("update character: %w", err)
		}

		patch.Apply(character)

		if err := s.characterRepo.UpdateCharacter(ctx, q, character); err != nil {
			switch {
			case util.IsError(err, util.ErrDuplicateEntry), util.IsError(err, util.ErrUnprocessable):
				return util.NewDetailedError(util.ErrUnprocessable, "Invalid input.")
			case util.IsError(err, util.ErrNotFound):
				return errCharacterNotFound
			}
			return fmt.Errorf("update character: %w", err)
		}

		// Re-read so the response reflects what the store holds.
		updated, err = s.characterRepo.GetCharacterByID(ctx, q, id)
		if err != nil {
			return fmt.Errorf("update character: failed to re-fetch character %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCharacter removes a character.
func (s *characterService) DeleteCharacter(ctx context.Context, id int64) error {
	return s.inTx(ctx, "delete character", func(q repository.DBExecutor) error {
		if err := s.characterRepo.DeleteCharacter(ctx, q, id); err != nil {
			if util.IsError(err, util.ErrNotFound) {
				return errCharacterNotFound
			}
			return fmt.Errorf("delete character: %w", err)
		}
		return nil
	})
}
