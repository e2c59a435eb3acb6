package tree

import (
	"fmt"
	"testing"

	"github.com/rpggio/chessnote/internal/domain/xiangqi"
	"github.com/stretchr/testify/require"
)

const afterCannon = "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C2C4/9/RNBAKABNR b - - 1 1"

func strPtr(s string) *string { return &s }

func boardPtr(fen string) *xiangqi.Board {
	b := xiangqi.BoardFromFEN(fen)
	return &b
}

// sampleTree builds root -> (a -> a1, b) with boards on every node.
func sampleTree() *Node {
	a1 := &Node{ID: "a1", ParentID: strPtr("a"), FEN: xiangqi.StartFEN, BoardState: boardPtr(xiangqi.StartFEN), Turn: xiangqi.Red}
	a := &Node{
		ID:         "a",
		ParentID:   strPtr("root"),
		FEN:        afterCannon,
		BoardState: boardPtr(afterCannon),
		Turn:       xiangqi.Black,
		Comment:    "central cannon",
		Move: &xiangqi.Move{
			From:     xiangqi.Point{R: 7, C: 7},
			To:       xiangqi.Point{R: 7, C: 4},
			Piece:    *xiangqi.NewPiece(xiangqi.Cannon, xiangqi.Red),
			Notation: "炮二平五",
		},
		Children: []*Node{a1},
	}
	b := &Node{ID: "b", ParentID: strPtr("root"), FEN: xiangqi.StartFEN, BoardState: boardPtr(xiangqi.StartFEN), Children: []*Node{}}
	return &Node{
		ID:              "root",
		FEN:             xiangqi.StartFEN,
		BoardState:      boardPtr(xiangqi.StartFEN),
		Turn:            xiangqi.Red,
		SelectedChildID: strPtr("a"),
		Children:        []*Node{a, b},
	}
}

func TestCompact_StripsEveryBoard(t *testing.T) {
	root := sampleTree()
	compact := Compact(root)

	Walk(compact, func(n *Node, _ int) bool {
		require.Nil(t, n.BoardState, "node %s kept its board", n.ID)
		return true
	})

	require.Equal(t, 4, Count(compact))
	require.Equal(t, "a", compact.Children[0].ID)
	require.Equal(t, "b", compact.Children[1].ID)
	require.Equal(t, "a1", compact.Children[0].Children[0].ID)
	require.Equal(t, "炮二平五", compact.Children[0].Move.Notation)
	require.Equal(t, "central cannon", compact.Children[0].Comment)
	require.Equal(t, "a", *compact.SelectedChildID)

	// input untouched
	Walk(root, func(n *Node, _ int) bool {
		require.NotNil(t, n.BoardState, "input node %s lost its board", n.ID)
		return true
	})
	compact.Children[0].Move.Notation = "changed"
	require.Equal(t, "炮二平五", root.Children[0].Move.Notation)
}

func TestCompact_Nil(t *testing.T) {
	require.Nil(t, Compact(nil))
	require.Nil(t, Hydrate(nil, nil, nil))
}

func TestHydrate_AfterCompactRestoresBoards(t *testing.T) {
	original := sampleTree()
	hydrated := Hydrate(Compact(original), nil, nil)

	Walk(hydrated, func(n *Node, _ int) bool {
		require.NotNil(t, n.BoardState, "node %s missing board", n.ID)
		expected := xiangqi.BoardFromFEN(n.FEN)
		require.True(t, expected.Equal(n.BoardState), "node %s board mismatch", n.ID)
		return true
	})

	require.Nil(t, hydrated.ParentID)
	require.Equal(t, "root", *hydrated.Children[0].ParentID)
	require.Equal(t, "a", *hydrated.Children[0].Children[0].ParentID)
	require.Equal(t, original.Children[0].Move, hydrated.Children[0].Move)
	require.Equal(t, original.Children[0].FEN, hydrated.Children[0].FEN)
}

func TestHydrate_IgnoresStoredParentIDs(t *testing.T) {
	root := Compact(sampleTree())
	// stale links forming a cycle and pointing outside the tree
	root.ParentID = strPtr("a1")
	root.Children[0].ParentID = strPtr("elsewhere")
	root.Children[0].Children[0].ParentID = strPtr("a1")

	hydrated := Hydrate(root, nil, nil)
	ids := map[string]bool{}
	Walk(hydrated, func(n *Node, _ int) bool {
		ids[n.ID] = true
		return true
	})

	require.Nil(t, hydrated.ParentID)
	Walk(hydrated, func(n *Node, _ int) bool {
		for _, child := range n.Children {
			require.NotNil(t, child.ParentID)
			require.Equal(t, n.ID, *child.ParentID)
			require.True(t, ids[*child.ParentID])
		}
		return true
	})
}

func TestHydrate_KeepsExistingBoardAndUsesParser(t *testing.T) {
	calls := 0
	parse := func(fen string) xiangqi.Board {
		calls++
		return xiangqi.BoardFromFEN(fen)
	}

	root := sampleTree()
	root.Children[1].BoardState = nil
	Hydrate(root, strPtr("outer"), parse)
	require.Equal(t, 1, calls)

	noFEN := &Node{ID: "x"}
	hydrated := Hydrate(noFEN, nil, parse)
	require.Nil(t, hydrated.BoardState)
	require.Equal(t, 1, calls)
}

func TestHydrate_DeepAndWideTree(t *testing.T) {
	root := &Node{ID: "n0", FEN: xiangqi.StartFEN}
	cur := root
	for depth := 1; depth <= 300; depth++ {
		next := &Node{ID: fmt.Sprintf("n%d", depth), FEN: xiangqi.StartFEN}
		cur.Children = append(cur.Children, next)
		for sibling := 0; sibling < 30 && depth%50 == 0; sibling++ {
			cur.Children = append(cur.Children, &Node{ID: fmt.Sprintf("s%d-%d", depth, sibling), FEN: afterCannon})
		}
		cur = next
	}

	hydrated := Hydrate(Compact(root), nil, nil)
	require.Equal(t, 301+6*30, Count(hydrated))
	require.Equal(t, 301, Depth(hydrated))

	leaf := Find(hydrated, "n300")
	require.NotNil(t, leaf)
	require.Equal(t, "n299", *leaf.ParentID)
	require.NotNil(t, leaf.BoardState)
}

func TestFind(t *testing.T) {
	root := sampleTree()
	require.Equal(t, "a1", Find(root, "a1").ID)
	require.Nil(t, Find(root, "missing"))
	require.Nil(t, Find(nil, "a1"))
}

func TestHydrate_DropsNilChildren(t *testing.T) {
	root := &Node{ID: "r", FEN: xiangqi.StartFEN, Children: []*Node{nil, {ID: "c", FEN: xiangqi.StartFEN}}}
	hydrated := Hydrate(root, nil, nil)
	require.Len(t, hydrated.Children, 1)
	require.Equal(t, "c", hydrated.Children[0].ID)
}
