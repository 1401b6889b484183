// internal/service/auth_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"characters-api/internal/auth"
	"characters-api/internal/domain"
	"characters-api/internal/repository"
	"characters-api/internal/util"
	"characters-api/pkg/db"
)

// TokenIssuer signs and verifies access tokens.
type TokenIssuer interface {
	Generate(userID int64) (string, error)
	Parse(token string) (*auth.Claims, error)
}

// PasswordHasher hashes and checks user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (bool, error)
}

// AuthService covers account creation, login and token checks.
type AuthService interface {
	Signup(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
	VerifyToken(token string) (int64, error)
}

type authService struct {
	txRunner
	dbExecutor repository.DBExecutor
	userRepo   repository.UserRepository
	tokens     TokenIssuer
	hasher     PasswordHasher
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	tokens TokenIssuer,
	hasher PasswordHasher,
	txFuncs TxFuncs,
) AuthService {
	return &authService{
		txRunner:   txRunner{dbBeginner: dbBeginner, tx: txFuncs},
		dbExecutor: dbExecutor,
		userRepo:   userRepo,
		tokens:     tokens,
		hasher:     hasher,
	}
}

var errUsernameTaken = util.NewDetailedError(util.ErrConflict, "Username already taken. Choose a different one, or log in.")

// Signup registers a new user with a bcrypt-hashed password.
func (s *authService) Signup(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return util.NewDetailedError(util.ErrMissingFields, "Unable to create user")
	}
	if utf8.RuneCountInString(username) > domain.MaxTextLength {
		return util.NewDetailedError(util.ErrInvalidInput, "Bad Input. Username must be at most %d characters", domain.MaxTextLength)
	}
	if len(password) > auth.MaxPasswordBytes {
		return util.NewDetailedError(util.ErrInvalidInput, "Bad Input. Password must be at most %d bytes", auth.MaxPasswordBytes)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("signup: %w", err)
	}

	return s.inTx(ctx, "signup", func(q repository.DBExecutor) error {
		_, err := s.userRepo.GetUserByUsername(ctx, q, username)
		switch {
		case err == nil:
			return errUsernameTaken
		case !util.IsError(err, util.ErrNotFound):
			return fmt.Errorf("signup: %w", err)
		}

		user := domain.NewUser(username, hash)
		if err := s.userRepo.CreateUser(ctx, q, user); err != nil {
			// Lost a race with a concurrent signup for the same name.
			if util.IsError(err, util.ErrDuplicateEntry) {
				return errUsernameTaken
			}
			return fmt.Errorf("signup: %w", err)
		}
		slog.Info("User created", "user_id", user.ID, "username", username)
		return nil
	})
}

// Login checks the credentials and returns a freshly signed token.
func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", util.NewDetailedError(util.ErrUnauthorized, "Proper credentials not provided")
	}

	user, err := s.userRepo.GetUserByUsername(ctx, s.dbExecutor, username)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return "", util.NewDetailedError(util.ErrUnauthorized, "Please create an account")
		}
		return "", fmt.Errorf("login: %w", err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if !ok {
		return "", util.NewDetailedError(util.ErrUnauthorized, "Please check your credentials")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", fmt.Errorf("login: failed to sign token: %w", err)
	}
	return token, nil
}

// VerifyToken returns the user id carried by a valid token.
func (s *authService) VerifyToken(token string) (int64, error) {
	if token == "" {
		return 0, util.NewDetailedError(util.ErrUnauthorized, "Token is missing")
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return 0, util.NewDetailedError(util.ErrUnauthorized, "Token is invalid. %s", err.Error())
	}
	return claims.UserID, nil
}
