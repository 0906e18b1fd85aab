package entity

import (
	"bytes"
	"fmt"
)

// Mark is the token a participant places on the board.
type Mark uint8

const (
	MarkNone Mark = iota
	MarkX
	MarkO
)

// BoardSize is the number of cells on a 3x3 board.
const BoardSize = 9

// Line is a winning combination of three board positions.
type Line [3]int

// WinCombos lists the winning lines in priority order: rows, columns, diagonals.
var WinCombos = [8]Line{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is the flat 3x3 grid, index is the position and the value is the mark in that cell.
type Board [BoardSize]Mark

// Opponent returns the other mark. MarkNone has no opponent.
func (m Mark) Opponent() Mark {
	switch m {
	case MarkX:
		return MarkO
	case MarkO:
		return MarkX
	default:
		return MarkNone
	}
}

func (m Mark) String() string {
	switch m {
	case MarkX:
		return "X"
	case MarkO:
		return "O"
	default:
		return "-"
	}
}

// MarshalJSON encodes X as 0, O as 1 and an empty cell as null, which is what clients expect.
func (m Mark) MarshalJSON() ([]byte, error) {
	switch m {
	case MarkX:
		return []byte("0"), nil
	case MarkO:
		return []byte("1"), nil
	default:
		return []byte("null"), nil
	}
}

func (m *Mark) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "0":
		*m = MarkX
	case "1":
		*m = MarkO
	case "null":
		*m = MarkNone
	default:
		return fmt.Errorf("%w: %s", ErrUnknownMark, data)
	}

	return nil
}

// IsFull reports whether every cell holds a mark.
func (that *Board) IsFull() bool {
	for _, cell := range that {
		if cell == MarkNone {
			return false
		}
	}

	return true
}

// DetermineOutcome checks the winning lines in order and returns the first match,
// then a draw if the board is full, otherwise no terminal outcome.
func DetermineOutcome(board Board) Outcome {
	for _, line := range WinCombos {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != MarkNone && a == b && b == c {
			return Win(a, line)
		}
	}

	if board.IsFull() {
		return Draw()
	}

	return NoOutcome()
}
