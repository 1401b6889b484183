// internal/repository/sqlrepo/user_repo.go
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

// UserRepository implements repository.UserRepository on top of sqlx.
type UserRepository struct{}

// NewUserRepository creates a new UserRepository.
// Methods receive the DBExecutor so the same repository works inside and outside transactions.
func NewUserRepository() repository.UserRepository {
	return &UserRepository{}
}

// CreateUser inserts a new user using the provided DBExecutor.
// A taken username yields util.ErrDuplicateEntry.
func (r *UserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	query := q.Rebind(`INSERT INTO users (username, password, created_at)
              VALUES (?, ?, ?) RETURNING id`)
	err := q.QueryRowContext(ctx, query, user.Username, user.PasswordHash, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create user '%s': %w", user.Username, util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByUsername retrieves a user by their username using the provided DBExecutor.
func (r *UserRepository) GetUserByUsername(ctx context.Context, q repository.DBExecutor, username string) (*domain.User, error) {
	var user domain.User
	query := q.Rebind(`SELECT id, username, password, created_at FROM users WHERE username = ?`)
	err := q.GetContext(ctx, &user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by username '%s': %w", username, err)
	}
	return &user, nil
}
