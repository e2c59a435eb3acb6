package repository

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

const missingIndexMarker = "requires an index"

var indexURLPattern = regexp.MustCompile(`https://[^\s]+`)

// IndexError reports a query the store refused because a composite index is
// missing. URL is the remediation link from the store's message, if any.
type IndexError struct {
	URL string
	Err error
}

func (e *IndexError) Error() string {
	return e.Err.Error()
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

// Classify turns a missing-index store failure into an *IndexError. Any other
// error, including nil, is returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var ie *IndexError
	if errors.As(err, &ie) {
		return err
	}

	msg := err.Error()
	if !strings.Contains(msg, missingIndexMarker) {
		return err
	}

	url := indexURLPattern.FindString(msg)
	url = strings.TrimRight(url, `.,;:)]}"'`)
	return &IndexError{URL: url, Err: err}
}

// MissingIndexURL returns the remediation link of a classified missing-index
// error. ok is false when err is not one.
func MissingIndexURL(err error) (url string, ok bool) {
	var ie *IndexError
	if !errors.As(err, &ie) {
		return "", false
	}
	return ie.URL, true
}
