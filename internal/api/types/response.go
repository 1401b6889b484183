// internal/api/types/response.go
package types

// ErrorResponse is the envelope used for every error status.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"description"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	Token string `json:"token"`
}

// MessageResponse carries a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// CredentialsRequest is the login and signup body.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
