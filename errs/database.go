package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrStoreFailure       = errors.New("store failure")
	ErrDatabaseConnection = errors.New("database connection failed")
)

func NewNotFound(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%s %w", entity, ErrNotFound),
	}
}

// NewDatabaseError creates a new database error with details about the operation.
// Callers translate "record not found" into NewNotFound themselves; everything
// that reaches here is reported to the client as a generic store failure.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	details := fmt.Sprintf("Failed to %s %s", operation, entity)

	if cause != nil && strings.Contains(cause.Error(), "connect") {
		return &ApiErr{
			StatusCode: http.StatusInternalServerError,
			err:        fmt.Errorf("%w: %w", ErrStoreFailure, ErrDatabaseConnection),
			Details:    details,
			Cause:      cause,
		}
	}

	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrStoreFailure,
		Details:    details,
		Cause:      cause,
	}
}

func IsStoreFailure(err error) bool {
	return errors.Is(err, ErrStoreFailure)
}

func IsDatabaseConnectionError(err error) bool {
	return errors.Is(err, ErrDatabaseConnection)
}
