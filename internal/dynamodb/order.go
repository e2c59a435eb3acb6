package dynamodb

import (
	"fmt"
	"sort"

	"github.com/rpggio/chessnote/internal/docstore"
)

// orderDocuments sorts by one field. Documents without the field sort first
// ascending, last descending, the same placement as a null in the hosted store.
func orderDocuments(docs []docstore.Document, field string, descending bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		c := compareValues(docs[i].Fields[field], docs[j].Fields[field])
		if c == 0 {
			c = compareStrings(docs[i].ID, docs[j].ID)
		}
		if descending {
			return c > 0
		}
		return c < 0
	})
}

func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	if ta, ok := docstore.AsTime(a); ok {
		if tb, ok := docstore.AsTime(b); ok {
			return ta.Compare(tb)
		}
	}
	if na, ok := docstore.AsInt64(a); ok {
		if nb, ok := docstore.AsInt64(b); ok {
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			}
			return 0
		}
	}
	return compareStrings(fmt.Sprint(a), fmt.Sprint(b))
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
