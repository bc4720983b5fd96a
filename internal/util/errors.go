// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input provided")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access denied")
	ErrRateLimited     = errors.New("too many requests")
	ErrDuplicateEntry  = errors.New("duplicate entry")
)

// IsError reports whether any error in err's chain matches target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
