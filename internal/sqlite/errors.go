package sqlite

import (
	"errors"
	"strings"
)

// ErrFailedPrecondition prefixes errors for queries the store refuses to run
// as issued, such as a query lacking a composite index.
var ErrFailedPrecondition = errors.New("FAILED_PRECONDITION")

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
