package library

import "errors"

var (
	// ErrLibraryNotFound indicates the library doesn't exist.
	ErrLibraryNotFound = errors.New("library not found")
	// ErrForbidden indicates the caller does not own the library.
	ErrForbidden = errors.New("not the owner of this library")
	// ErrInvalidInput indicates invalid library input.
	ErrInvalidInput = errors.New("invalid library input")
)
