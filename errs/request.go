package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Authentication & Authorization Errors
var (
	ErrMissingToken    = errors.New("missing access token")
	ErrInvalidToken    = errors.New("invalid access token")
	ErrNotAdmin        = errors.New("caller is not the administrator")
	ErrProviderFailure = errors.New("identity provider failure")
)

// Authentication & Authorization Error Constructors
func NewMissingTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrMissingToken),
		Details:    "Missing access token",
		Field:      "authorization",
	}
}

func NewInvalidTokenError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        fmt.Errorf("%w: %w", ErrForbidden, ErrInvalidToken),
		Details:    "Access token was rejected by the identity provider",
		Field:      "authorization",
		Cause:      cause,
	}
}

func NewNotAdminError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        fmt.Errorf("%w: %w", ErrForbidden, ErrNotAdmin),
		Field:      "authorization",
	}
}

func NewProviderFailureError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrProviderFailure,
		Details:    "Identity provider is unavailable",
		Cause:      cause,
	}
}

// Authentication & Authorization Error Type Checkers
func IsMissingTokenError(err error) bool {
	return errors.Is(err, ErrMissingToken)
}

func IsInvalidTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

func IsNotAdminError(err error) bool {
	return errors.Is(err, ErrNotAdmin)
}

func IsProviderFailure(err error) bool {
	return errors.Is(err, ErrProviderFailure)
}
