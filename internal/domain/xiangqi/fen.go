package xiangqi

import (
	"strconv"
	"strings"
)

// StartFEN is the standard opening position.
const StartFEN = "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR w - - 0 1"

var fenPieces = map[byte]PieceType{
	'k': King,
	'a': Advisor,
	'b': Elephant,
	'n': Horse,
	'r': Chariot,
	'c': Cannon,
	'p': Soldier,
}

var pieceLetters = map[PieceType]byte{
	King:     'k',
	Advisor:  'a',
	Elephant: 'b',
	Horse:    'n',
	Chariot:  'r',
	Cannon:   'c',
	Soldier:  'p',
}

// ParseFEN reads the placement and side-to-move fields of a FEN string.
// Parsing is lenient: unknown letters and cells outside the grid are skipped,
// and a missing side-to-move field means red.
func ParseFEN(fen string) (Board, Color) {
	var board Board
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return board, Red
	}

	r, c := 0, 0
	for i := 0; i < len(fields[0]); i++ {
		ch := fields[0][i]
		switch {
		case ch == '/':
			r++
			c = 0
		case ch >= '0' && ch <= '9':
			c += int(ch - '0')
		default:
			color := Red
			lower := ch
			if ch >= 'a' && ch <= 'z' {
				color = Black
			} else {
				lower = ch + ('a' - 'A')
			}
			t, ok := fenPieces[lower]
			if !ok || r >= Rows || c >= Cols {
				continue
			}
			board[r][c] = NewPiece(t, color)
			c++
		}
	}

	turn := Red
	if len(fields) > 1 && fields[1] != "w" {
		turn = Black
	}
	return board, turn
}

// BoardFromFEN returns only the placement of a FEN string.
func BoardFromFEN(fen string) Board {
	board, _ := ParseFEN(fen)
	return board
}

// FEN prints a board and side to move.
func FEN(board Board, turn Color) string {
	var sb strings.Builder
	for r := 0; r < Rows; r++ {
		empty := 0
		for c := 0; c < Cols; c++ {
			p := board[r][c]
			if p == nil {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			letter, ok := pieceLetters[p.Type]
			if !ok {
				letter = 'p'
			}
			if p.Color == Red {
				letter -= 'a' - 'A'
			}
			sb.WriteByte(letter)
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if r < Rows-1 {
			sb.WriteByte('/')
		}
	}

	if turn == Red {
		sb.WriteString(" w")
	} else {
		sb.WriteString(" b")
	}
	sb.WriteString(" - - 0 1")
	return sb.String()
}
