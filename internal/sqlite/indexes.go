package sqlite

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/rpggio/chessnote/internal/docstore"
)

// IndexPolicy mirrors hosted document stores that refuse ordered queries over
// filtered fields until a matching composite index exists.
type IndexPolicy struct {
	Enforce bool
	// ConsoleURL is the base of the link returned in missing-index errors.
	ConsoleURL string
}

// EnsureIndex provisions the composite index the given query shape needs.
// Shapes that need no composite index are accepted and ignored.
func (s *DocStore) EnsureIndex(ctx context.Context, q docstore.Query) error {
	key, needed := indexKey(q)
	if !needed {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO composite_indexes (collection, fields) VALUES (?, ?)`,
		q.Collection, key,
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

func (s *DocStore) checkIndex(ctx context.Context, q docstore.Query) error {
	if !s.indexes.Enforce {
		return nil
	}
	key, needed := indexKey(q)
	if !needed {
		return nil
	}

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM composite_indexes WHERE collection = ? AND fields = ?)`,
		q.Collection, key,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check index: %w", err)
	}
	if exists {
		return nil
	}

	base := strings.TrimRight(s.indexes.ConsoleURL, "/")
	if base == "" {
		base = "https://localhost"
	}
	link := base + "/indexes?create_composite=" + url.QueryEscape(q.Collection+":"+key)
	return fmt.Errorf("%w: The query requires an index. You can create it here: %s", ErrFailedPrecondition, link)
}

// indexKey names the composite index a query needs: the equality fields in
// name order followed by the order field and direction.
func indexKey(q docstore.Query) (string, bool) {
	if q.OrderBy == "" {
		return "", false
	}

	seen := map[string]bool{}
	var fields []string
	for _, f := range q.Filters {
		if f.Field == q.OrderBy || seen[f.Field] {
			continue
		}
		seen[f.Field] = true
		fields = append(fields, f.Field)
	}
	if len(fields) == 0 {
		return "", false
	}
	sort.Strings(fields)

	dir := "asc"
	if q.Descending {
		dir = "desc"
	}
	return strings.Join(fields, ",") + "," + q.OrderBy + ":" + dir, true
}
