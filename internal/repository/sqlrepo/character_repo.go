// internal/repository/sqlrepo/character_repo.go
package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"characters-api/internal/domain"
	"characters-api/internal/repository"
	"characters-api/internal/util"
)

// CharacterRepository implements repository.CharacterRepository on top of sqlx.
type CharacterRepository struct{}

// NewCharacterRepository creates a new CharacterRepository.
func NewCharacterRepository() repository.CharacterRepository {
	return &CharacterRepository{}
}

// ListCharacters runs the filtered, ordered and paginated select.
func (r *CharacterRepository) ListCharacters(ctx context.Context, q repository.DBExecutor, query *domain.CharacterQuery) ([]domain.Character, error) {
	sqlText, args, err := buildListQuery(query)
	if err != nil {
		return nil, fmt.Errorf("failed to build character query: %w", err)
	}

	characters := []domain.Character{}
	if err := q.SelectContext(ctx, &characters, q.Rebind(sqlText), args...); err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	return characters, nil
}

// CountCharacters counts the rows matching filter.
func (r *CharacterRepository) CountCharacters(ctx context.Context, q repository.DBExecutor, filter domain.CharacterFilter) (int64, error) {
	sqlText, args, err := buildCountQuery(filter)
	if err != nil {
		return 0, fmt.Errorf("failed to build character count query: %w", err)
	}

	var total int64
	if err := q.GetContext(ctx, &total, q.Rebind(sqlText), args...); err != nil {
		return 0, fmt.Errorf("failed to count characters: %w", err)
	}
	return total, nil
}

// GetCharacterByID retrieves a character by its ID using the provided DBExecutor.
func (r *CharacterRepository) GetCharacterByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Character, error) {
	var character domain.Character
	query := q.Rebind(`SELECT ` + characterColumns + ` FROM characters WHERE id = ?`)
	if err := q.GetContext(ctx, &character, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get character by ID %d: %w", id, err)
	}
	return &character, nil
}

// CreateCharacter inserts a new character. A taken name yields util.ErrDuplicateEntry,
// a value the column cannot hold yields util.ErrUnprocessable.
func (r *CharacterRepository) CreateCharacter(ctx context.Context, q repository.DBExecutor, c *domain.Character) error {
	query := q.Rebind(`INSERT INTO characters (name, age, house, animal, symbol, nickname, role, death, strength)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := q.QueryRowContext(ctx, query,
		c.Name, c.Age, c.House, c.Animal, c.Symbol, c.Nickname, c.Role, c.Death, c.Strength,
	).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create character '%s': %w", c.Name, util.ErrDuplicateEntry)
		}
		if isDataViolation(err) {
			return fmt.Errorf("failed to create character '%s': %w: %v", c.Name, util.ErrUnprocessable, err)
		}
		return fmt.Errorf("failed to create character: %w", err)
	}
	return nil
}

// UpdateCharacter writes all columns of c back to its row.
func (r *CharacterRepository) UpdateCharacter(ctx context.Context, q repository.DBExecutor, c *domain.Character) error {
	query := q.Rebind(`UPDATE characters
              SET name = ?, age = ?, house = ?, animal = ?, symbol = ?, nickname = ?, role = ?, death = ?, strength = ?
              WHERE id = ?`)
	result, err := q.ExecContext(ctx, query,
		c.Name, c.Age, c.House, c.Animal, c.Symbol, c.Nickname, c.Role, c.Death, c.Strength, c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to update character %d: %w", c.ID, util.ErrDuplicateEntry)
		}
		if isDataViolation(err) {
			return fmt.Errorf("failed to update character %d: %w: %v", c.ID, util.ErrUnprocessable, err)
		}
		return fmt.Errorf("failed to update character %d: %w", c.ID, err)
	}
	return expectOneRow(result, c.ID)
}

// DeleteCharacter removes the character with the given ID.
func (r *CharacterRepository) DeleteCharacter(ctx context.Context, q repository.DBExecutor, id int64) error {
	result, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM characters WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete character %d: %w", id, err)
	}
	return expectOneRow(result, id)
}

func expectOneRow(result sql.Result, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for character %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
