// Package xiangqi models Chinese-chess positions: pieces, the 10x9 board grid,
// moves, and the FEN dialect used to persist positions.
package xiangqi

// Color identifies a side.
type Color string

const (
	Red   Color = "red"
	Black Color = "black"
)

// PieceType identifies a piece kind.
type PieceType string

const (
	King     PieceType = "king"
	Advisor  PieceType = "advisor"
	Elephant PieceType = "elephant"
	Horse    PieceType = "horse"
	Chariot  PieceType = "chariot"
	Cannon   PieceType = "cannon"
	Soldier  PieceType = "soldier"
)

const (
	Rows = 10
	Cols = 9
)

// Piece is a single piece on the board. Text is the display glyph.
type Piece struct {
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
	Text  string    `json:"text"`
}

// Point is a board coordinate, row 0 being black's back rank.
type Point struct {
	R int `json:"r"`
	C int `json:"c"`
}

// Move records a played move and its display notation (e.g. 炮二平五).
type Move struct {
	From     Point  `json:"from"`
	To       Point  `json:"to"`
	Piece    Piece  `json:"piece"`
	Captured *Piece `json:"captured,omitempty"`
	Notation string `json:"notation"`
}

// Board is the derived piece grid. A nil cell is empty.
type Board [Rows][Cols]*Piece

var glyphs = map[Color]map[PieceType]string{
	Red: {
		King: "帥", Advisor: "仕", Elephant: "相", Horse: "傌", Chariot: "俥", Cannon: "炮", Soldier: "兵",
	},
	Black: {
		King: "將", Advisor: "士", Elephant: "象", Horse: "馬", Chariot: "車", Cannon: "包", Soldier: "卒",
	},
}

// NewPiece returns a piece with its display glyph filled in.
func NewPiece(t PieceType, c Color) *Piece {
	return &Piece{Type: t, Color: c, Text: glyphs[c][t]}
}

// Equal reports whether two boards hold the same pieces on the same cells.
func (b *Board) Equal(other *Board) bool {
	if b == nil || other == nil {
		return b == other
	}
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			x, y := b[r][c], other[r][c]
			if (x == nil) != (y == nil) {
				return false
			}
			if x != nil && *x != *y {
				return false
			}
		}
	}
	return true
}
