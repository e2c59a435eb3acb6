package cloudstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rpggio/chessnote/internal/docstore"
	"github.com/rpggio/chessnote/internal/sqlite"
	"github.com/stretchr/testify/require"
)

// stepClock advances one second on every reading so successive writes get
// distinct, increasing timestamps.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestStore(t *testing.T, opts ...sqlite.Option) *sqlite.DocStore {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err, "failed to create test database")
	require.NoError(t, db.RunMigrations(), "failed to run migrations")
	t.Cleanup(func() {
		db.Close()
	})

	opts = append([]sqlite.Option{sqlite.WithClock(newStepClock().Now)}, opts...)
	return sqlite.NewDocStore(db, opts...)
}

// countingClient counts the calls that reach the store.
type countingClient struct {
	docstore.Client

	mu      sync.Mutex
	queries int
	gets    int
}

func (c *countingClient) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	c.mu.Lock()
	c.queries++
	c.mu.Unlock()
	return c.Client.Query(ctx, q)
}

func (c *countingClient) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	c.mu.Lock()
	c.gets++
	c.mu.Unlock()
	return c.Client.Get(ctx, collection, id)
}

func (c *countingClient) Queries() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queries
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
