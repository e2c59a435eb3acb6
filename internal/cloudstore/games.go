// Package cloudstore implements the game and library repositories over a
// document store.
package cloudstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/chessnote/internal/cache"
	"github.com/rpggio/chessnote/internal/docstore"
	"github.com/rpggio/chessnote/internal/domain/game"
	"github.com/rpggio/chessnote/internal/metrics"
	"github.com/rpggio/chessnote/internal/repository"
)

// Listing page sizes.
const (
	libraryListingLimit      = 100
	ownerListingLimit        = 100
	publicUncategorizedLimit = 50
	publicListingLimit       = 50
	librariesListingLimit    = 50
)

// GameCounter maintains the denormalized game_count of a library.
type GameCounter interface {
	IncrementGameCount(ctx context.Context, libraryID string) error
}

// GameRepository implements game.Repository.
type GameRepository struct {
	client  docstore.Client
	counter GameCounter
	public  *cache.TTL[[]game.Game]
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewGameRepository creates a new game repository. public caches the public
// listing; nil gets a cache with the default window.
func NewGameRepository(
	client docstore.Client,
	counter GameCounter,
	public *cache.TTL[[]game.Game],
	collector *metrics.Collector,
	logger *slog.Logger,
) *GameRepository {
	if public == nil {
		public = cache.New[[]game.Game](cache.DefaultTTL, nil)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GameRepository{
		client:  client,
		counter: counter,
		public:  public,
		metrics: collector,
		logger:  logger,
	}
}

// Create stores a new game. When libraryID is set the library's game_count is
// bumped with a read-then-write that is not atomic: concurrent saves can lose
// an increment, and a failed increment is logged but does not fail the save.
// library.Service.Reconcile repairs the drift.
func (r *GameRepository) Create(ctx context.Context, ownerID string, g game.NewGame, isPublic bool, libraryID *string) (string, error) {
	start := time.Now()
	id, err := r.client.Add(ctx, GamesCollection, gameCreateFields(ownerID, g, isPublic, libraryID))
	err = r.observe("add", start, err)
	if err != nil {
		return "", fmt.Errorf("creating game: %w", err)
	}

	if libraryID != nil && r.counter != nil {
		if err := r.counter.IncrementGameCount(ctx, *libraryID); err != nil {
			r.metrics.CounterFailure()
			r.logger.Warn("library game count not incremented",
				"library_id", *libraryID,
				"game_id", id,
				"error", err,
			)
		}
	}

	return id, nil
}

// Get retrieves a game by id
func (r *GameRepository) Get(ctx context.Context, id string) (*game.Game, error) {
	start := time.Now()
	doc, err := r.client.Get(ctx, GamesCollection, id)
	if err = r.observe("get", start, err); err != nil {
		return nil, err
	}
	g := gameFromDocument(*doc)
	return &g, nil
}

// Update merges fields into a game and refreshes updated_at
func (r *GameRepository) Update(ctx context.Context, id string, u game.Update) error {
	start := time.Now()
	err := r.client.Update(ctx, GamesCollection, id, gameUpdateFields(u))
	return r.observe("update", start, err)
}

// Delete removes a game. Library counters are left alone.
func (r *GameRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := r.client.Delete(ctx, GamesCollection, id)
	return r.observe("delete", start, err)
}

// List returns the games of a listing scope, newest first
func (r *GameRepository) List(ctx context.Context, scope game.ListScope) ([]game.Game, error) {
	q, ok, err := gameQuery(scope)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []game.Game{}, nil
	}

	games, err := r.query(ctx, q)
	if err != nil {
		return nil, err
	}
	if q.OrderBy == "" {
		sortByRecency(games)
	}
	return games, nil
}

// ListPublic returns public games newest first. Within the cache window the
// previous result is returned as is without reading the store; force skips
// the cache. A failed fetch leaves the cache untouched.
func (r *GameRepository) ListPublic(ctx context.Context, force bool) ([]game.Game, error) {
	if !force {
		if games, ok := r.public.Get(); ok {
			r.metrics.CacheHit()
			return games, nil
		}
	}
	r.metrics.CacheMiss()

	games, err := r.query(ctx, docstore.Query{
		Collection: GamesCollection,
		Filters:    []docstore.Filter{docstore.Where(fieldIsPublic, true)},
		Limit:      publicListingLimit,
	})
	if err != nil {
		return nil, err
	}
	sortByRecency(games)

	r.public.Set(games)
	return games, nil
}

// InvalidatePublic drops the cached public listing
func (r *GameRepository) InvalidatePublic() {
	r.public.Invalidate()
}

// MemberIDs returns the ids of every game filed under a library
func (r *GameRepository) MemberIDs(ctx context.Context, libraryID string) ([]string, error) {
	if libraryID == "" {
		return nil, fmt.Errorf("%w: library id is required", repository.ErrInvalidInput)
	}
	games, err := r.query(ctx, docstore.Query{
		Collection: GamesCollection,
		Filters:    []docstore.Filter{docstore.Where(fieldLibraryID, libraryID)},
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.ID)
	}
	return ids, nil
}

// CountByLibrary counts the games filed under a library
func (r *GameRepository) CountByLibrary(ctx context.Context, libraryID string) (int, error) {
	ids, err := r.MemberIDs(ctx, libraryID)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (r *GameRepository) query(ctx context.Context, q docstore.Query) ([]game.Game, error) {
	start := time.Now()
	docs, err := r.client.Query(ctx, q)
	if err = r.observe("query", start, err); err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}

	games := make([]game.Game, 0, len(docs))
	for _, doc := range docs {
		games = append(games, gameFromDocument(doc))
	}
	return games, nil
}

func (r *GameRepository) observe(op string, start time.Time, err error) error {
	return observe(r.metrics, op, GamesCollection, start, err)
}

// gameQuery maps a listing scope to its query shape. ok is false when the
// scope selects nothing and the store should not be asked.
func gameQuery(scope game.ListScope) (q docstore.Query, ok bool, err error) {
	q = docstore.Query{Collection: GamesCollection}

	switch scope.Kind {
	case game.ScopeLibrary:
		if scope.LibraryID == "" {
			return q, false, fmt.Errorf("%w: library id is required", repository.ErrInvalidInput)
		}
		q.Filters = []docstore.Filter{docstore.Where(fieldLibraryID, scope.LibraryID)}
		q.OrderBy, q.Descending = fieldCreatedAt, true
		q.Limit = libraryListingLimit

	case game.ScopeUncategorized:
		if scope.Public {
			q.Filters = []docstore.Filter{
				docstore.Where(fieldIsPublic, true),
				docstore.IsNull(fieldLibraryID),
			}
			q.Limit = publicUncategorizedLimit
		} else {
			if scope.OwnerID == "" {
				return q, false, nil
			}
			q.Filters = []docstore.Filter{
				docstore.Where(fieldOwnerID, scope.OwnerID),
				docstore.IsNull(fieldLibraryID),
			}
			q.Limit = ownerListingLimit
		}
		q.OrderBy, q.Descending = fieldCreatedAt, true

	case game.ScopeOwner:
		if scope.OwnerID == "" {
			return q, false, nil
		}
		q.Filters = []docstore.Filter{docstore.Where(fieldOwnerID, scope.OwnerID)}
		q.Limit = ownerListingLimit

	default:
		return q, false, fmt.Errorf("%w: unknown listing scope %q", repository.ErrInvalidInput, scope.Kind)
	}

	return q, true, nil
}

// observe records a store call and converts its error: a missing document
// becomes repository.ErrNotFound and everything else passes through the
// classifier.
func observe(m *metrics.Collector, op, collection string, start time.Time, err error) error {
	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, docstore.ErrNotFound):
		outcome = metrics.OutcomeNotFound
		err = repository.ErrNotFound
	default:
		err = repository.Classify(err)
		if _, ok := repository.MissingIndexURL(err); ok {
			outcome = metrics.OutcomeMissingIndex
		} else {
			outcome = metrics.OutcomeError
		}
	}
	m.ObserveStore(op, collection, outcome, time.Since(start))
	return err
}
