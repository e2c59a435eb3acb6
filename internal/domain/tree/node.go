// Package tree holds the analysis tree: one node per position reached by a
// move, children in branch order. Board grids on nodes are derived from FEN
// and can be dropped for storage and regenerated on load.
package tree

import "github.com/rpggio/chessnote/internal/domain/xiangqi"

// Node is one position in an analysis tree.
type Node struct {
	ID              string         `json:"id"`
	ParentID        *string        `json:"parentId"`
	Move            *xiangqi.Move  `json:"move"`
	BoardState      *xiangqi.Board `json:"boardState,omitempty"`
	Children        []*Node        `json:"children"`
	Comment         string         `json:"comment"`
	Turn            xiangqi.Color  `json:"turn"`
	SelectedChildID *string        `json:"selectedChildId,omitempty"`
	FEN             string         `json:"fen"`
	StepIndex       *int           `json:"stepIndex,omitempty"`
	OwnerID         *int           `json:"ownerId,omitempty"`
}

// BoardParser regenerates a board grid from a FEN string.
type BoardParser func(fen string) xiangqi.Board

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func Walk(n *Node, fn func(n *Node, depth int) bool) {
	type frame struct {
		node  *Node
		depth int
	}
	if n == nil {
		return
	}
	stack := []frame{{n, 0}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.node == nil {
			continue
		}
		if !fn(top.node, top.depth) {
			continue
		}
		for i := len(top.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{top.node.Children[i], top.depth + 1})
		}
	}
}

// Count returns the number of nodes in the tree.
func Count(n *Node) int {
	total := 0
	Walk(n, func(*Node, int) bool {
		total++
		return true
	})
	return total
}

// Depth returns the number of levels in the tree; a lone root has depth 1.
func Depth(n *Node) int {
	max := 0
	Walk(n, func(_ *Node, d int) bool {
		if d+1 > max {
			max = d + 1
		}
		return true
	})
	return max
}

// Find returns the first node with the given id.
func Find(n *Node, id string) *Node {
	var found *Node
	Walk(n, func(node *Node, _ int) bool {
		if found != nil {
			return false
		}
		if node.ID == id {
			found = node
			return false
		}
		return true
	})
	return found
}
