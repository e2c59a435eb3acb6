package tree

import "github.com/rpggio/chessnote/internal/domain/xiangqi"

// Compact returns a copy of the tree with BoardState removed from every node.
// The input is not modified.
func Compact(n *Node) *Node {
	if n == nil {
		return nil
	}
	out := copyNode(n)
	out.BoardState = nil
	if len(n.Children) > 0 {
		out.Children = make([]*Node, 0, len(n.Children))
		for _, child := range n.Children {
			if child == nil {
				continue
			}
			out.Children = append(out.Children, Compact(child))
		}
	}
	return out
}

// Hydrate returns a copy of the tree where every node has a board consistent
// with its FEN and a ParentID pointing at its actual parent. Stored ParentID
// values are never trusted: the root receives parentID and each child receives
// its parent's ID.
func Hydrate(n *Node, parentID *string, parse BoardParser) *Node {
	if n == nil {
		return nil
	}
	if parse == nil {
		parse = xiangqi.BoardFromFEN
	}

	out := copyNode(n)
	if out.BoardState == nil && out.FEN != "" {
		board := parse(out.FEN)
		out.BoardState = &board
	}
	out.ParentID = cloneString(parentID)

	if len(n.Children) > 0 {
		out.Children = make([]*Node, 0, len(n.Children))
		id := out.ID
		for _, child := range n.Children {
			if child == nil {
				continue
			}
			out.Children = append(out.Children, Hydrate(child, &id, parse))
		}
	}
	return out
}

// copyNode copies the scalar fields of n. Children are left for the caller.
func copyNode(n *Node) *Node {
	out := &Node{
		ID:              n.ID,
		ParentID:        cloneString(n.ParentID),
		BoardState:      n.BoardState,
		Comment:         n.Comment,
		Turn:            n.Turn,
		SelectedChildID: cloneString(n.SelectedChildID),
		FEN:             n.FEN,
		StepIndex:       cloneInt(n.StepIndex),
		OwnerID:         cloneInt(n.OwnerID),
	}
	if n.Move != nil {
		move := *n.Move
		if n.Move.Captured != nil {
			captured := *n.Move.Captured
			move.Captured = &captured
		}
		out.Move = &move
	}
	if n.Children != nil {
		out.Children = []*Node{}
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
