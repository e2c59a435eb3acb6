package cloudstore

import (
	"sort"

	"github.com/rpggio/chessnote/internal/domain/game"
)

// sortByRecency orders games newest first by updated_at, falling back to
// the legacy date field, then to zero. Ties keep store order.
func sortByRecency(games []game.Game) {
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].SortTime().After(games[j].SortTime())
	})
}
