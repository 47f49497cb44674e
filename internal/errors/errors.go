package errors

import (
	"errors"
)

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrNoPasswordSet        = errors.New("account has no password set")
	ErrEmailAlreadyInUse    = errors.New("email already in use")
	ErrMissingAuthMethod    = errors.New("account requires a password or a federated identity")
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountDisabled      = errors.New("account is disabled")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenInvalid         = errors.New("token invalid")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")

	ErrInvalidFederatedToken = errors.New("invalid federated identity token")
	ErrFederatedEmailMissing = errors.New("federated identity has no valid email")
	ErrFederatedUnavailable  = errors.New("federated login is not configured")

	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// ValidationError carries a message that is safe to show to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
