package operation

import (
	"errors"
	"net/http"
	"strings"
)

// Sentinels the HTTP boundary maps to 403 and 404. ErrForbidden covers an
// actor touching a resource they do not own.
var (
	ErrNotSupported = errors.New("The requested operation is not supported.")
	ErrForbidden    = errors.New("You are not allowed to perform this action.")
	ErrNotFound     = errors.New("The requested content could not be found.")
)

// Authentication failures. Unknown, deleted and wrong-password accounts share
// ErrInvalidCredentials so callers cannot enumerate accounts.
var (
	ErrInvalidCredentials  = &AuthError{Reason: "Invalid email address and password combination."}
	ErrPendingConfirmation = &AuthError{Reason: "You must confirm your email address before you can sign in."}
	ErrTokenExpired        = &AuthError{Reason: "The token has expired."}
	ErrTokenInvalid        = &AuthError{Reason: "The token is invalid."}
	ErrTokenUserNotFound   = &AuthError{Reason: "The token is authorized but the user was not found."}
	ErrAuthRequired        = &AuthError{Reason: "You must be signed in to perform this action."}
)

// AuthError is an authentication failure surfaced as 401.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return e.Reason }

// FieldError is one failed field check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every failed field check; surfaced as 422.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, " ")
}

// InvariantError is a domain rule violation such as a connection that
// references a missing term.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string { return e.Message }

// StatusCode maps an operation error to the HTTP status the boundary sends.
func StatusCode(err error) int {
	var (
		authErr *AuthError
		valErr  *ValidationError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &valErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotSupported), errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
