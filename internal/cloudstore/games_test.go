package cloudstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rpggio/chessnote/internal/cache"
	"github.com/rpggio/chessnote/internal/docstore"
	"github.com/rpggio/chessnote/internal/domain/game"
	"github.com/rpggio/chessnote/internal/metrics"
	"github.com/rpggio/chessnote/internal/repository"
	"github.com/rpggio/chessnote/internal/sqlite"
	"github.com/stretchr/testify/require"
)

type failingCounter struct {
	calls int
}

func (f *failingCounter) IncrementGameCount(context.Context, string) error {
	f.calls++
	return errors.New("write quota exceeded")
}

func ids(games []game.Game) []string {
	out := make([]string, 0, len(games))
	for _, g := range games {
		out = append(out, g.ID)
	}
	return out
}

func TestGameRepository_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	repo := NewGameRepository(store, nil, nil, nil, nil)
	ctx := context.Background()

	id, err := repo.Create(ctx, "u1", game.NewGame{
		Title:    "Opening",
		FEN:      "fen",
		Payload:  "payload",
		Metadata: map[string]any{"redName": "A"},
	}, false, nil)
	require.NoError(t, err)

	g, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, g.ID)
	require.Equal(t, "Opening", g.Title)
	require.Equal(t, "fen", g.FEN)
	require.Equal(t, "payload", g.Payload)
	require.Equal(t, "A", g.Metadata["redName"])
	require.Equal(t, "u1", g.OwnerID)
	require.False(t, g.IsPublic)
	require.Nil(t, g.LibraryID)
	require.True(t, g.Uncategorized())
	require.False(t, g.CreatedAt.IsZero())
	require.False(t, g.UpdatedAt.IsZero())

	_, err = repo.Get(ctx, "missing")
	require.Equal(t, repository.ErrNotFound, err)
}

func TestGameRepository_UpdateRefreshesUpdatedAt(t *testing.T) {
	store := newTestStore(t)
	repo := NewGameRepository(store, nil, nil, nil, nil)
	ctx := context.Background()

	id, err := repo.Create(ctx, "u1", game.NewGame{Title: "t"}, false, strPtr("L1"))
	require.NoError(t, err)
	before, err := repo.Get(ctx, id)
	require.NoError(t, err)

	require.NoError(t, repo.Update(ctx, id, game.Update{IsPublic: boolPtr(true)}))

	after, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, after.IsPublic)
	require.Equal(t, "t", after.Title)
	require.Equal(t, "L1", *after.LibraryID, "membership unchanged")
	require.True(t, after.UpdatedAt.After(before.UpdatedAt))
	require.Equal(t, before.CreatedAt, after.CreatedAt)

	require.NoError(t, repo.Update(ctx, id, game.Update{Uncategorize: true, LibraryID: strPtr("L2")}))
	after, err = repo.Get(ctx, id)
	require.NoError(t, err)
	require.Nil(t, after.LibraryID)

	err = repo.Update(ctx, "missing", game.Update{Title: strPtr("x")})
	require.Equal(t, repository.ErrNotFound, err)
}

func TestGameRepository_Delete(t *testing.T) {
	store := newTestStore(t)
	libs := NewLibraryRepository(store, nil)
	repo := NewGameRepository(store, libs, nil, nil, nil)
	ctx := context.Background()

	libID, err := libs.Create(ctx, "u1", libraryFixture("Openings"))
	require.NoError(t, err)
	id, err := repo.Create(ctx, "u1", game.NewGame{Title: "t"}, false, &libID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.Get(ctx, id)
	require.Equal(t, repository.ErrNotFound, err)
	require.Equal(t, repository.ErrNotFound, repo.Delete(ctx, id))

	// Deleting a game leaves the library counter alone
	lib, err := libs.Get(ctx, libID)
	require.NoError(t, err)
	require.Equal(t, 1, lib.GameCount)
}

func TestGameRepository_CounterFailureDoesNotFailSave(t *testing.T) {
	store := newTestStore(t)
	collector := metrics.NewCollector("test")
	counter := &failingCounter{}
	repo := NewGameRepository(store, counter, nil, collector, nil)
	ctx := context.Background()

	id, err := repo.Create(ctx, "u1", game.NewGame{Title: "t"}, false, strPtr("L1"))
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Equal(t, 1, counter.calls)
	require.Equal(t, 1.0, testutil.ToFloat64(collector.CounterFailures))

	_, err = repo.Get(ctx, id)
	require.NoError(t, err)

	// No library, no counter call
	_, err = repo.Create(ctx, "u1", game.NewGame{Title: "t"}, false, nil)
	require.NoError(t, err)
	require.Equal(t, 1, counter.calls)
}

func TestGameRepository_ListScopes(t *testing.T) {
	store := newTestStore(t)
	repo := NewGameRepository(store, nil, nil, nil, nil)
	ctx := context.Background()

	create := func(owner string, public bool, libraryID *string) string {
		id, err := repo.Create(ctx, owner, game.NewGame{Title: owner}, public, libraryID)
		require.NoError(t, err)
		return id
	}

	inL1 := create("u1", false, strPtr("L1"))
	inL1Other := create("u2", true, strPtr("L1"))
	inL2 := create("u1", false, strPtr("L2"))
	u1Loose := create("u1", false, nil)
	u1LoosePublic := create("u1", true, nil)
	u2LoosePublic := create("u2", true, nil)

	got, err := repo.List(ctx, game.ByLibrary("L1"))
	require.NoError(t, err)
	require.Equal(t, []string{inL1Other, inL1}, ids(got), "newest first")

	got, err = repo.List(ctx, game.Uncategorized("u1", false))
	require.NoError(t, err)
	require.Equal(t, []string{u1LoosePublic, u1Loose}, ids(got))

	got, err = repo.List(ctx, game.Uncategorized("", true))
	require.NoError(t, err)
	require.Equal(t, []string{u2LoosePublic, u1LoosePublic}, ids(got))

	got, err = repo.List(ctx, game.ByOwner("u1"))
	require.NoError(t, err)
	require.Equal(t, []string{u1LoosePublic, u1Loose, inL2, inL1}, ids(got))

	_, err = repo.List(ctx, game.ByLibrary(""))
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	_, err = repo.List(ctx, game.ListScope{Kind: "everything"})
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestGameRepository_ListWithoutOwnerSkipsStore(t *testing.T) {
	client := &countingClient{Client: newTestStore(t)}
	repo := NewGameRepository(client, nil, nil, nil, nil)
	ctx := context.Background()

	got, err := repo.List(ctx, game.Uncategorized("", false))
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)

	got, err = repo.List(ctx, game.ByOwner(""))
	require.NoError(t, err)
	require.Empty(t, got)

	require.Equal(t, 0, client.Queries())
}

func TestGameRepository_ByOwnerSortsByUpdatedAt(t *testing.T) {
	store := newTestStore(t)
	repo := NewGameRepository(store, nil, nil, nil, nil)
	ctx := context.Background()

	first, err := repo.Create(ctx, "u1", game.NewGame{Title: "first"}, false, nil)
	require.NoError(t, err)
	second, err := repo.Create(ctx, "u1", game.NewGame{Title: "second"}, false, nil)
	require.NoError(t, err)

	// Touching the older game moves it to the front
	require.NoError(t, repo.Update(ctx, first, game.Update{Title: strPtr("first, edited")}))

	got, err := repo.List(ctx, game.ByOwner("u1"))
	require.NoError(t, err)
	require.Equal(t, []string{first, second}, ids(got))
}

func TestGameRepository_ListPublicCache(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	public := cache.New[[]game.Game](cache.DefaultTTL, func() time.Time { return now })
	client := &countingClient{Client: newTestStore(t)}
	collector := metrics.NewCollector("test")
	repo := NewGameRepository(client, nil, public, collector, nil)
	ctx := context.Background()

	_, err := repo.Create(ctx, "u1", game.NewGame{Title: "a"}, true, nil)
	require.NoError(t, err)

	first, err := repo.ListPublic(ctx, false)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, 1, client.Queries())

	second, err := repo.ListPublic(ctx, false)
	require.NoError(t, err)
	require.Same(t, &first[0], &second[0], "a hit returns the cached slice itself")
	require.Equal(t, 1, client.Queries(), "a hit does not reach the store")

	_, err = repo.Create(ctx, "u2", game.NewGame{Title: "b"}, true, nil)
	require.NoError(t, err)

	third, err := repo.ListPublic(ctx, true)
	require.NoError(t, err)
	require.Len(t, third, 2)
	require.Equal(t, 2, client.Queries(), "force always fetches")

	now = now.Add(cache.DefaultTTL)
	_, err = repo.ListPublic(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 3, client.Queries(), "an expired entry is refetched")

	require.Equal(t, 1.0, testutil.ToFloat64(collector.CacheHits))
	require.Equal(t, 3.0, testutil.ToFloat64(collector.CacheMisses))
}

func TestGameRepository_VisibilityToggleReachesPublicListing(t *testing.T) {
	store := newTestStore(t)
	repo := NewGameRepository(store, nil, nil, nil, nil)
	ctx := context.Background()

	id, err := repo.Create(ctx, "U1", game.NewGame{Title: "private"}, false, nil)
	require.NoError(t, err)

	listed, err := repo.ListPublic(ctx, false)
	require.NoError(t, err)
	require.Empty(t, listed)

	require.NoError(t, repo.Update(ctx, id, game.Update{IsPublic: boolPtr(true)}))

	listed, err = repo.ListPublic(ctx, false)
	require.NoError(t, err)
	require.Empty(t, listed, "still inside the cache window")

	listed, err = repo.ListPublic(ctx, true)
	require.NoError(t, err)
	require.Equal(t, []string{id}, ids(listed))

	mine, err := repo.List(ctx, game.Uncategorized("U1", false))
	require.NoError(t, err)
	require.Equal(t, []string{id}, ids(mine))
}

func TestGameRepository_PublicFetchFailureKeepsCache(t *testing.T) {
	public := cache.New[[]game.Game](time.Minute, nil)
	public.Set([]game.Game{{ID: "cached"}})

	repo := NewGameRepository(brokenClient{}, nil, public, nil, nil)

	_, err := repo.ListPublic(context.Background(), true)
	require.Error(t, err)

	cached, ok := public.Get()
	require.True(t, ok)
	require.Equal(t, "cached", cached[0].ID)
}

func TestGameRepository_MissingIndexIsClassified(t *testing.T) {
	store := newTestStore(t, sqlite.WithIndexPolicy(sqlite.IndexPolicy{
		Enforce:    true,
		ConsoleURL: "https://console.example.test/project/demo/firestore",
	}))
	collector := metrics.NewCollector("test")
	repo := NewGameRepository(store, nil, nil, collector, nil)
	ctx := context.Background()

	_, err := repo.List(ctx, game.ByLibrary("L1"))
	require.Error(t, err)
	url, ok := repository.MissingIndexURL(err)
	require.True(t, ok)
	require.Contains(t, url, "https://console.example.test/project/demo/firestore/indexes?create_composite=")
	require.Equal(t, 1.0, testutil.ToFloat64(collector.MissingIndexes.WithLabelValues(GamesCollection)))

	// The owner listing has no order clause and needs no composite index
	_, err = repo.List(ctx, game.ByOwner("u1"))
	require.NoError(t, err)

	for _, q := range IndexedQueries() {
		require.NoError(t, store.EnsureIndex(ctx, q))
	}
	_, err = repo.List(ctx, game.ByLibrary("L1"))
	require.NoError(t, err)
	_, err = repo.List(ctx, game.Uncategorized("u1", false))
	require.NoError(t, err)
	_, err = repo.List(ctx, game.Uncategorized("", true))
	require.NoError(t, err)
}

func TestGameRepository_LegacyFields(t *testing.T) {
	store := newTestStore(t)
	repo := NewGameRepository(store, nil, nil, nil, nil)
	ctx := context.Background()

	older, err := store.Add(ctx, GamesCollection, docstore.Fields{
		"title":     "old",
		"root_node": `{"id":"root","fen":"f","children":[]}`,
		"owner_id":  "u1",
		"is_public": true,
		"date":      docstore.Timestamp{Seconds: 100},
		"redName":   "Red",
	})
	require.NoError(t, err)
	newer, err := store.Add(ctx, GamesCollection, docstore.Fields{
		"title":      "new",
		"rootNode":   "compressed",
		"owner_id":   "u1",
		"is_public":  true,
		"updated_at": docstore.Timestamp{Seconds: 200},
	})
	require.NoError(t, err)
	undated, err := store.Add(ctx, GamesCollection, docstore.Fields{
		"title":     "undated",
		"rootNode":  map[string]any{"id": "r"},
		"owner_id":  "u1",
		"is_public": true,
	})
	require.NoError(t, err)

	g, err := repo.Get(ctx, older)
	require.NoError(t, err)
	require.Equal(t, `{"id":"root","fen":"f","children":[]}`, g.Payload)
	require.Equal(t, "Red", g.RedName)
	require.Equal(t, int64(100), g.SortTime().Unix())

	g, err = repo.Get(ctx, undated)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"r"}`, g.Payload)

	listed, err := repo.ListPublic(ctx, true)
	require.NoError(t, err)
	require.Equal(t, []string{newer, older, undated}, ids(listed))
}

func TestGameRepository_MemberIDs(t *testing.T) {
	store := newTestStore(t)
	repo := NewGameRepository(store, nil, nil, nil, nil)
	ctx := context.Background()

	var want []string
	for i := 0; i < 120; i++ {
		id, err := repo.Create(ctx, "u1", game.NewGame{Title: "t"}, false, strPtr("L1"))
		require.NoError(t, err)
		want = append(want, id)
	}
	_, err := repo.Create(ctx, "u1", game.NewGame{Title: "t"}, false, strPtr("L2"))
	require.NoError(t, err)

	got, err := repo.MemberIDs(ctx, "L1")
	require.NoError(t, err)
	require.ElementsMatch(t, want, got, "membership is not capped by the listing limit")

	n, err := repo.CountByLibrary(ctx, "L1")
	require.NoError(t, err)
	require.Equal(t, 120, n)

	_, err = repo.MemberIDs(ctx, "")
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestGameQuery(t *testing.T) {
	tests := []struct {
		name    string
		scope   game.ListScope
		filters []docstore.Filter
		orderBy string
		limit   int
	}{
		{
			name:    "by library",
			scope:   game.ByLibrary("L"),
			filters: []docstore.Filter{docstore.Where("library_id", "L")},
			orderBy: "created_at",
			limit:   100,
		},
		{
			name:    "uncategorized private",
			scope:   game.Uncategorized("u1", false),
			filters: []docstore.Filter{docstore.Where("owner_id", "u1"), docstore.IsNull("library_id")},
			orderBy: "created_at",
			limit:   100,
		},
		{
			name:    "uncategorized public",
			scope:   game.Uncategorized("u1", true),
			filters: []docstore.Filter{docstore.Where("is_public", true), docstore.IsNull("library_id")},
			orderBy: "created_at",
			limit:   50,
		},
		{
			name:    "by owner",
			scope:   game.ByOwner("u1"),
			filters: []docstore.Filter{docstore.Where("owner_id", "u1")},
			limit:   100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok, err := gameQuery(tt.scope)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, GamesCollection, q.Collection)
			require.Equal(t, tt.filters, q.Filters)
			require.Equal(t, tt.orderBy, q.OrderBy)
			require.Equal(t, tt.orderBy != "", q.Descending)
			require.Equal(t, tt.limit, q.Limit)
		})
	}
}

type brokenClient struct{}

func (brokenClient) Add(context.Context, string, docstore.Fields) (string, error) {
	return "", errors.New("unavailable")
}

func (brokenClient) Get(context.Context, string, string) (*docstore.Document, error) {
	return nil, errors.New("unavailable")
}

func (brokenClient) Update(context.Context, string, string, docstore.Fields) error {
	return errors.New("unavailable")
}

func (brokenClient) Delete(context.Context, string, string) error {
	return errors.New("unavailable")
}

func (brokenClient) Query(context.Context, docstore.Query) ([]docstore.Document, error) {
	return nil, errors.New("unavailable")
}
