package cloudstore

import (
	"context"
	"fmt"
	"time"

	"github.com/rpggio/chessnote/internal/docstore"
	"github.com/rpggio/chessnote/internal/domain/library"
	"github.com/rpggio/chessnote/internal/metrics"
)

// LibraryRepository implements library.Repository.
type LibraryRepository struct {
	client  docstore.Client
	metrics *metrics.Collector
}

// NewLibraryRepository creates a new library repository
func NewLibraryRepository(client docstore.Client, collector *metrics.Collector) *LibraryRepository {
	return &LibraryRepository{client: client, metrics: collector}
}

// Create stores a new library with a zero game count
func (r *LibraryRepository) Create(ctx context.Context, ownerID string, l library.NewLibrary) (string, error) {
	start := time.Now()
	id, err := r.client.Add(ctx, LibrariesCollection, libraryCreateFields(ownerID, l))
	if err = r.observe("add", start, err); err != nil {
		return "", fmt.Errorf("creating library: %w", err)
	}
	return id, nil
}

// Get retrieves a library by id
func (r *LibraryRepository) Get(ctx context.Context, id string) (*library.Library, error) {
	start := time.Now()
	doc, err := r.client.Get(ctx, LibrariesCollection, id)
	if err = r.observe("get", start, err); err != nil {
		return nil, err
	}
	lib := libraryFromDocument(*doc)
	return &lib, nil
}

// OwnerOf returns the owner id of a library
func (r *LibraryRepository) OwnerOf(ctx context.Context, id string) (string, error) {
	lib, err := r.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return lib.OwnerID, nil
}

// List returns public libraries, or the owner's own in the private view.
// A private view without an owner is empty.
func (r *LibraryRepository) List(ctx context.Context, publicView bool, ownerID string) ([]library.Library, error) {
	q := docstore.Query{
		Collection: LibrariesCollection,
		OrderBy:    fieldCreatedAt,
		Descending: true,
		Limit:      librariesListingLimit,
	}
	if publicView {
		q.Filters = []docstore.Filter{docstore.Where(fieldIsPublic, true)}
	} else {
		if ownerID == "" {
			return []library.Library{}, nil
		}
		q.Filters = []docstore.Filter{docstore.Where(fieldOwnerID, ownerID)}
	}
	return r.query(ctx, q)
}

// ListAll returns every library
func (r *LibraryRepository) ListAll(ctx context.Context) ([]library.Library, error) {
	return r.query(ctx, docstore.Query{Collection: LibrariesCollection})
}

// Update merges fields into a library and refreshes updated_at
func (r *LibraryRepository) Update(ctx context.Context, id string, u library.Update) error {
	start := time.Now()
	err := r.client.Update(ctx, LibrariesCollection, id, libraryUpdateFields(u))
	return r.observe("update", start, err)
}

// Delete removes a library. Member games keep their library_id.
func (r *LibraryRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := r.client.Delete(ctx, LibrariesCollection, id)
	return r.observe("delete", start, err)
}

// IncrementGameCount reads game_count and writes it back plus one. Two
// overlapping calls can both read the same value, so one increment may be
// lost; the count never goes below what was read.
func (r *LibraryRepository) IncrementGameCount(ctx context.Context, id string) error {
	lib, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	return r.SetGameCount(ctx, id, lib.GameCount+1)
}

// DecrementGameCount is the read-then-write counterpart of
// IncrementGameCount. The count does not go below zero.
func (r *LibraryRepository) DecrementGameCount(ctx context.Context, id string) error {
	lib, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	return r.SetGameCount(ctx, id, max(lib.GameCount-1, 0))
}

// SetGameCount overwrites game_count
func (r *LibraryRepository) SetGameCount(ctx context.Context, id string, n int) error {
	start := time.Now()
	err := r.client.Update(ctx, LibrariesCollection, id, docstore.Fields{fieldGameCount: n})
	return r.observe("update", start, err)
}

func (r *LibraryRepository) query(ctx context.Context, q docstore.Query) ([]library.Library, error) {
	start := time.Now()
	docs, err := r.client.Query(ctx, q)
	if err = r.observe("query", start, err); err != nil {
		return nil, fmt.Errorf("listing libraries: %w", err)
	}

	libs := make([]library.Library, 0, len(docs))
	for _, doc := range docs {
		libs = append(libs, libraryFromDocument(doc))
	}
	return libs, nil
}

func (r *LibraryRepository) observe(op string, start time.Time, err error) error {
	return observe(r.metrics, op, LibrariesCollection, start, err)
}
