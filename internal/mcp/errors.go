package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rpggio/chessnote/internal/domain/game"
	"github.com/rpggio/chessnote/internal/domain/library"
	"github.com/rpggio/chessnote/internal/repository"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

// MapError maps domain errors to MCP error codes. Errors it does not know
// return nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	if url, ok := repository.MissingIndexURL(err); ok {
		return &APIError{
			Code:         "MISSING_INDEX",
			Message:      "the query requires an index that has not been created",
			Details:      map[string]string{"index_url": url},
			RecoveryHint: "Ask the administrator to create the index at index_url",
		}
	}
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		return &APIError{Code: "GAME_NOT_FOUND", Message: "game not found", RecoveryHint: "Check the game ID"}
	case errors.Is(err, library.ErrLibraryNotFound):
		return &APIError{Code: "LIBRARY_NOT_FOUND", Message: "library not found", RecoveryHint: "Check the library ID"}
	case errors.Is(err, game.ErrUnreadableRecord):
		return &APIError{Code: "UNREADABLE_RECORD", Message: game.ErrUnreadableRecord.Error(), RecoveryHint: "The stored tree is corrupt; resave it from a local copy"}
	case errors.Is(err, game.ErrUnsupportedRecord):
		return &APIError{Code: "UNSUPPORTED_RECORD", Message: "record has no analysis tree", RecoveryHint: "Only games saved with a tree can be loaded"}
	case errors.Is(err, game.ErrForbidden), errors.Is(err, library.ErrForbidden):
		return &APIError{Code: "FORBIDDEN", Message: "not the owner", RecoveryHint: "Only the owner can change this record"}
	case errors.Is(err, game.ErrInvalidInput), errors.Is(err, library.ErrInvalidInput), errors.Is(err, repository.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Fix the arguments and retry"}
	default:
		return nil
	}
}

// toolError is what a tool handler returns on failure. Known errors become a
// JSON-encoded APIError in the tool result; the rest pass through as text.
func toolError(err error) error {
	apiErr := MapError(err)
	if apiErr == nil {
		return err
	}
	return &encodedError{api: apiErr}
}

type encodedError struct {
	api *APIError
}

func (e *encodedError) Error() string {
	data, err := json.Marshal(e.api)
	if err != nil {
		return e.api.Error()
	}
	return string(data)
}

func (e *encodedError) Unwrap() error {
	return e.api
}
