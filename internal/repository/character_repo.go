// internal/repository/character_repo.go
package repository

import (
	"context"

	"characters-api/internal/domain"
)

// CharacterRepository defines the interface for character data operations.
type CharacterRepository interface {
	// ListCharacters returns one page of characters matching the query's filters and ordering.
	ListCharacters(ctx context.Context, q DBExecutor, query *domain.CharacterQuery) ([]domain.Character, error)
	// CountCharacters returns how many characters match the filter, ignoring paging.
	CountCharacters(ctx context.Context, q DBExecutor, filter domain.CharacterFilter) (int64, error)
	GetCharacterByID(ctx context.Context, q DBExecutor, id int64) (*domain.Character, error)
	// CreateCharacter inserts the character and sets its ID.
	CreateCharacter(ctx context.Context, q DBExecutor, character *domain.Character) error
	// UpdateCharacter overwrites every column of the stored row with character's values.
	UpdateCharacter(ctx context.Context, q DBExecutor, character *domain.Character) error
	DeleteCharacter(ctx context.Context, q DBExecutor, id int64) error
}
