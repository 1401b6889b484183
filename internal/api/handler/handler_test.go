// internal/api/handler/handler_test.go
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"characters-api/internal/api/types"
	"characters-api/internal/domain"
	"characters-api/internal/util"
)

// MockCharacterService is a mock implementation of service.CharacterService.
type MockCharacterService struct {
	mock.Mock
}

func (m *MockCharacterService) ListCharacters(ctx context.Context, query *domain.CharacterQuery) ([]domain.Character, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Character), args.Error(1)
}

func (m *MockCharacterService) GetCharacter(ctx context.Context, id int64) (*domain.Character, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Character), args.Error(1)
}

func (m *MockCharacterService) CreateCharacter(ctx context.Context, patch *domain.CharacterPatch) (*domain.Character, error) {
	args := m.Called(ctx, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Character), args.Error(1)
}

func (m *MockCharacterService) UpdateCharacter(ctx context.Context, id int64, patch *domain.CharacterPatch) (*domain.Character, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Character), args.Error(1)
}

func (m *MockCharacterService) DeleteCharacter(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, username, password string) error {
	args := m.Called(ctx, username, password)
	return args.Error(0)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) VerifyToken(token string) (int64, error) {
	args := m.Called(token)
	return args.Get(0).(int64), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRouter mounts the handlers the same way the application router does.
func newTestRouter(chars *MockCharacterService, authSvc *MockAuthService) http.Handler {
	ch := NewCharacterHandler(chars, discardLogger())
	ah := NewAuthHandler(authSvc, discardLogger())

	r := chi.NewRouter()
	r.Post("/login", ah.Login)
	r.Post("/signup", ah.Signup)
	r.Route("/api/characters", func(r chi.Router) {
		r.Get("/", ch.ListCharacters)
		r.Get("/{id:[0-9]+}", ch.GetCharacter)
		r.With(ah.RequireToken).Post("/", ch.CreateCharacter)
		r.With(ah.RequireToken).Put("/{id:[0-9]+}", ch.UpdateCharacter)
		r.With(ah.RequireToken).Delete("/{id:[0-9]+}", ch.DeleteCharacter)
	})
	return r
}

func doRequest(h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorResponse {
	t.Helper()
	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

var authorized = map[string]string{"Authorization": "good-token"}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		status      int
		title       string
		description string
	}{
		{"InvalidInput", util.NewDetailedError(util.ErrInvalidInput, "bad"), http.StatusBadRequest, "400 Bad request", "bad"},
		{"Unauthorized", util.NewDetailedError(util.ErrUnauthorized, "nope"), http.StatusUnauthorized, "401 Unauthorized", "nope"},
		{"NotFound", util.ErrNotFound, http.StatusNotFound, "404 Not found", "Not found"},
		{"Conflict", util.NewDetailedError(util.ErrConflict, "taken"), http.StatusConflict, "409 Conflict", "taken"},
		{"Unprocessable", util.NewDetailedError(util.ErrUnprocessable, "Invalid input."), http.StatusUnprocessableEntity, "422 Unprocessable Entity", "Invalid input."},
		{"RateLimited", util.ErrRateLimited, http.StatusTooManyRequests, "429 Rate limit exceeded", "Rate limit exceeded"},
		{"MissingFields", util.NewDetailedError(util.ErrMissingFields, "Unable to create user"), http.StatusInternalServerError, "500 Internal server error", "Unable to create user"},
		{"Unknown", errors.New("pq: connection refused"), http.StatusInternalServerError, "500 Internal server error", "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondWithError(rec, discardLogger(), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			resp := decodeError(t, rec)
			assert.Equal(t, tt.title, resp.Error)
			assert.Equal(t, tt.description, resp.Description)
		})
	}
}

func TestListCharactersHandler(t *testing.T) {
	t.Run("PassesParsedQuery", func(t *testing.T) {
		chars := new(MockCharacterService)
		chars.On("ListCharacters", mock.Anything, mock.MatchedBy(func(q *domain.CharacterQuery) bool {
			return q.Filter.House != nil && *q.Filter.House == "stark" && q.SortBy == "age" && q.Descending && q.Limit == 5
		})).Return([]domain.Character{{ID: 1, Name: "Jon Snow"}}, nil).Once()

		rec := doRequest(newTestRouter(chars, new(MockAuthService)), http.MethodGet, "/api/characters?house=stark&sort_by=age&sort_des&limit=5", "", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		var got []map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Jon Snow", got[0]["name"])
		assert.Contains(t, got[0], "house")
		assert.Nil(t, got[0]["house"])
		chars.AssertExpectations(t)
	})

	t.Run("EmptyListIsArray", func(t *testing.T) {
		chars := new(MockCharacterService)
		chars.On("ListCharacters", mock.Anything, mock.Anything).Return([]domain.Character{}, nil).Once()

		rec := doRequest(newTestRouter(chars, new(MockAuthService)), http.MethodGet, "/api/characters", "", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("UnknownSortAttribute", func(t *testing.T) {
		chars := new(MockCharacterService)

		rec := doRequest(newTestRouter(chars, new(MockAuthService)), http.MethodGet, "/api/characters?sort_by=password", "", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid Input. Attribute password doesn't exist.", decodeError(t, rec).Description)
		chars.AssertNotCalled(t, "ListCharacters", mock.Anything, mock.Anything)
	})

	t.Run("NonNumericFilter", func(t *testing.T) {
		rec := doRequest(newTestRouter(new(MockCharacterService), new(MockAuthService)), http.MethodGet, "/api/characters?age=old", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetCharacterHandler(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		chars := new(MockCharacterService)
		age := int64(17)
		chars.On("GetCharacter", mock.Anything, int64(1)).Return(&domain.Character{ID: 1, Name: "Jon Snow", Age: &age}, nil).Once()

		rec := doRequest(newTestRouter(chars, new(MockAuthService)), http.MethodGet, "/api/characters/1", "", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":1,"name":"Jon Snow","age":17,"house":null,"animal":null,"symbol":null,"nickname":null,"role":null,"death":null,"strength":null}`, rec.Body.String())
	})

	t.Run("NotFound", func(t *testing.T) {
		chars := new(MockCharacterService)
		chars.On("GetCharacter", mock.Anything, int64(9)).Return(nil, util.NewDetailedError(util.ErrNotFound, "Character not found")).Once()

		rec := doRequest(newTestRouter(chars, new(MockAuthService)), http.MethodGet, "/api/characters/9", "", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, "404 Not found", resp.Error)
		assert.Equal(t, "Character not found", resp.Description)
	})

	t.Run("IDOverflow", func(t *testing.T) {
		chars := new(MockCharacterService)

		rec := doRequest(newTestRouter(chars, new(MockAuthService)), http.MethodGet, "/api/characters/99999999999999999999", "", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		chars.AssertNotCalled(t, "GetCharacter", mock.Anything, mock.Anything)
	})
}

func TestCreateCharacterHandler(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		chars := new(MockCharacterService)
		authSvc := new(MockAuthService)
		authSvc.On("VerifyToken", "good-token").Return(int64(3), nil).Once()
		chars.On("CreateCharacter", mock.Anything, mock.MatchedBy(func(p *domain.CharacterPatch) bool {
			return *p.Name == "Test" && p.House == nil
		})).Return(&domain.Character{ID: 11, Name: "Test"}, nil).Once()

		rec := doRequest(newTestRouter(chars, authSvc), http.MethodPost, "/api/characters", `{"name":"Test","house":null}`, authorized)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var got domain.Character
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, int64(11), got.ID)
		mock.AssertExpectationsForObjects(t, chars, authSvc)
	})

	t.Run("MissingToken", func(t *testing.T) {
		chars := new(MockCharacterService)
		authSvc := new(MockAuthService)
		authSvc.On("VerifyToken", "").Return(int64(0), util.NewDetailedError(util.ErrUnauthorized, "Token is missing")).Once()

		rec := doRequest(newTestRouter(chars, authSvc), http.MethodPost, "/api/characters", `{"name":"Test"}`, nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Token is missing", decodeError(t, rec).Description)
		chars.AssertNotCalled(t, "CreateCharacter", mock.Anything, mock.Anything)
	})

	t.Run("ValidationErrors", func(t *testing.T) {
		tests := []struct {
			body        string
			description string
		}{
			{`{"house":"Stark"}`, "Bad Input. Name must be specified"},
			{`{"id":4,"name":"Test"}`, "Bad Input. Id cannot be specified"},
			{`{"name":"Test","age":"ten"}`, "Bad Input. Age must be an integer"},
			{`{"name":5}`, "Bad Input. Name must be a string"},
			{`[1,2]`, "Bad Input. Request body must be a JSON object"},
		}
		for _, tt := range tests {
			chars := new(MockCharacterService)
			authSvc := new(MockAuthService)
			authSvc.On("VerifyToken", "good-token").Return(int64(3), nil)

			rec := doRequest(newTestRouter(chars, authSvc), http.MethodPost, "/api/characters", tt.body, authorized)

			assert.Equal(t, http.StatusBadRequest, rec.Code, tt.body)
			assert.Equal(t, tt.description, decodeError(t, rec).Description, tt.body)
			chars.AssertNotCalled(t, "CreateCharacter", mock.Anything, mock.Anything)
		}
	})
}

func TestUpdateCharacterHandler(t *testing.T) {
	t.Run("Updated", func(t *testing.T) {
		chars := new(MockCharacterService)
		authSvc := new(MockAuthService)
		authSvc.On("VerifyToken", "good-token").Return(int64(3), nil).Once()
		age := int64(10)
		chars.On("UpdateCharacter", mock.Anything, int64(2), mock.MatchedBy(func(p *domain.CharacterPatch) bool {
			return p.Name == nil && p.Age != nil && *p.Age == 10
		})).Return(&domain.Character{ID: 2, Name: "Test", Age: &age}, nil).Once()

		rec := doRequest(newTestRouter(chars, authSvc), http.MethodPut, "/api/characters/2", `{"age":10}`, authorized)

		assert.Equal(t, http.StatusOK, rec.Code)
		mock.AssertExpectationsForObjects(t, chars, authSvc)
	})

	t.Run("IDInBody", func(t *testing.T) {
		chars := new(MockCharacterService)
		authSvc := new(MockAuthService)
		authSvc.On("VerifyToken", "good-token").Return(int64(3), nil).Once()

		rec := doRequest(newTestRouter(chars, authSvc), http.MethodPut, "/api/characters/2", `{"id":3}`, authorized)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "ID cannot be updated", decodeError(t, rec).Description)
	})

	t.Run("Unprocessable", func(t *testing.T) {
		chars := new(MockCharacterService)
		authSvc := new(MockAuthService)
		authSvc.On("VerifyToken", "good-token").Return(int64(3), nil).Once()
		chars.On("UpdateCharacter", mock.Anything, int64(2), mock.Anything).
			Return(nil, util.NewDetailedError(util.ErrUnprocessable, "Invalid input.")).Once()

		rec := doRequest(newTestRouter(chars, authSvc), http.MethodPut, "/api/characters/2", `{"name":"Taken"}`, authorized)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "422 Unprocessable Entity", decodeError(t, rec).Error)
	})
}

func TestDeleteCharacterHandler(t *testing.T) {
	t.Run("NoContent", func(t *testing.T) {
		chars := new(MockCharacterService)
		authSvc := new(MockAuthService)
		authSvc.On("VerifyToken", "good-token").Return(int64(3), nil).Once()
		chars.On("DeleteCharacter", mock.Anything, int64(4)).Return(nil).Once()

		rec := doRequest(newTestRouter(chars, authSvc), http.MethodDelete, "/api/characters/4", "", authorized)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("InvalidToken", func(t *testing.T) {
		chars := new(MockCharacterService)
		authSvc := new(MockAuthService)
		authSvc.On("VerifyToken", "bad").Return(int64(0), util.NewDetailedError(util.ErrUnauthorized, "Token is invalid. token is malformed")).Once()

		rec := doRequest(newTestRouter(chars, authSvc), http.MethodDelete, "/api/characters/4", "", map[string]string{"Authorization": "bad"})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Token is invalid. token is malformed", decodeError(t, rec).Description)
		chars.AssertNotCalled(t, "DeleteCharacter", mock.Anything, mock.Anything)
	})
}

func TestRequireTokenStoresUserID(t *testing.T) {
	authSvc := new(MockAuthService)
	authSvc.On("VerifyToken", "good-token").Return(int64(42), nil).Once()
	ah := NewAuthHandler(authSvc, discardLogger())

	var seen int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})

	rec := doRequest(ah.RequireToken(next), http.MethodPost, "/", "", authorized)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, int64(42), seen)
}

func TestSignupHandler(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		authSvc := new(MockAuthService)
		authSvc.On("Signup", mock.Anything, "alice", "pw").Return(nil).Once()

		rec := doRequest(newTestRouter(new(MockCharacterService), authSvc), http.MethodPost, "/signup", `{"username":"alice","password":"pw"}`, nil)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"message":"User created"}`, rec.Body.String())
	})

	t.Run("Conflict", func(t *testing.T) {
		authSvc := new(MockAuthService)
		authSvc.On("Signup", mock.Anything, "alice", "pw").
			Return(util.NewDetailedError(util.ErrConflict, "Username already taken. Choose a different one, or log in.")).Once()

		rec := doRequest(newTestRouter(new(MockCharacterService), authSvc), http.MethodPost, "/signup", `{"username":"alice","password":"pw"}`, nil)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		authSvc := new(MockAuthService)

		rec := doRequest(newTestRouter(new(MockCharacterService), authSvc), http.MethodPost, "/signup", `{"username":`, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		authSvc.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLoginHandler(t *testing.T) {
	t.Run("Token", func(t *testing.T) {
		authSvc := new(MockAuthService)
		authSvc.On("Login", mock.Anything, "alice", "pw").Return("jwt-value", nil).Once()

		rec := doRequest(newTestRouter(new(MockCharacterService), authSvc), http.MethodPost, "/login", `{"username":"alice","password":"pw"}`, nil)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"token":"jwt-value"}`, rec.Body.String())
	})

	t.Run("BadCredentials", func(t *testing.T) {
		authSvc := new(MockAuthService)
		authSvc.On("Login", mock.Anything, "alice", "wrong").
			Return("", util.NewDetailedError(util.ErrUnauthorized, "Please check your credentials")).Once()

		rec := doRequest(newTestRouter(new(MockCharacterService), authSvc), http.MethodPost, "/login", `{"username":"alice","password":"wrong"}`, nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Please check your credentials", decodeError(t, rec).Description)
	})
}
