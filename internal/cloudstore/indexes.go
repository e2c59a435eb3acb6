package cloudstore

import (
	"github.com/rpggio/chessnote/internal/docstore"
	"github.com/rpggio/chessnote/internal/domain/game"
)

// IndexedQueries returns one query of every shape the repositories issue
// that combines an equality filter with an order clause. Stores that need
// composite indexes must have one provisioned per shape.
func IndexedQueries() []docstore.Query {
	var queries []docstore.Query
	for _, scope := range []game.ListScope{
		game.ByLibrary("_"),
		game.Uncategorized("_", false),
		game.Uncategorized("", true),
	} {
		if q, ok, err := gameQuery(scope); err == nil && ok {
			queries = append(queries, q)
		}
	}

	for _, field := range []string{fieldIsPublic, fieldOwnerID} {
		queries = append(queries, docstore.Query{
			Collection: LibrariesCollection,
			Filters:    []docstore.Filter{docstore.Where(field, "_")},
			OrderBy:    fieldCreatedAt,
			Descending: true,
		})
	}
	return queries
}
