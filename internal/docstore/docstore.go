// Package docstore defines the document-store client the repositories talk to.
//
// A store holds named collections of schemaless documents. Queries are
// equality filters with an optional single order clause and a limit, which is
// the query surface hosted document databases offer without extra setup.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Fields is the content of a document, keyed by wire field name.
type Fields map[string]any

// Document is a stored document and its store-assigned id.
type Document struct {
	ID     string
	Fields Fields
}

// Filter is an equality condition. A nil Value matches a null or absent field.
type Filter struct {
	Field string
	Value any
}

// Query selects documents from one collection.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Descending bool
	// Limit caps the result size; 0 means no cap.
	Limit int
}

// Where returns an equality filter.
func Where(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// IsNull returns a filter matching documents whose field is null or absent.
func IsNull(field string) Filter {
	return Filter{Field: field}
}

// Client is the document-store contract.
type Client interface {
	// Add stores a new document and returns its generated id.
	Add(ctx context.Context, collection string, fields Fields) (string, error)
	// Get returns ErrNotFound when the document is absent.
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Update merges top-level fields into an existing document.
	Update(ctx context.Context, collection, id string, fields Fields) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, q Query) ([]Document, error)
}
