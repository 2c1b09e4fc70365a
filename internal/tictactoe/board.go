// Package tictactoe is a two player game domain for evolving neural
// network players
package tictactoe

import (
	"fmt"
	"strings"
)

// Piece is the content of one square
type Piece int8

const (
	Empty Piece = iota
	X
	O
)

func (p Piece) String() string {
	switch p {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return "."
	}
}

// Other returns the opposite side
func (p Piece) Other() Piece {
	switch p {
	case X:
		return O
	case O:
		return X
	default:
		panic(fmt.Sprintf("tictactoe: no opposite side for %v", p))
	}
}

// State is the position outcome
type State int

const (
	Undecided State = iota
	XWins
	OWins
	Draw
)

func (s State) String() string {
	switch s {
	case XWins:
		return "x_wins"
	case OWins:
		return "o_wins"
	case Draw:
		return "draw"
	default:
		return "undecided"
	}
}

// Size is the number of squares
const Size = 9

// NoSquare is returned by players that cannot move
const NoSquare = -1

// Lines lists every winning line. Squares are numbered
//
//	0 | 1 | 2
//	3 | 4 | 5
//	6 | 7 | 8
var Lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

// Board is a 3x3 board
type Board [Size]Piece

// Reset clears every square
func (b *Board) Reset() {
	*b = Board{}
}

// State returns the current position outcome
func (b *Board) State() State {
	for _, line := range Lines {
		c := b[line[0]]
		if c != Empty && c == b[line[1]] && c == b[line[2]] {
			if c == X {
				return XWins
			}
			return OWins
		}
	}
	for _, p := range b {
		if p == Empty {
			return Undecided
		}
	}
	return Draw
}

// Legal returns the empty squares
func (b *Board) Legal() []int {
	var moves []int
	for i, p := range b {
		if p == Empty {
			moves = append(moves, i)
		}
	}
	return moves
}

// Features encodes the board from side's point of view: own squares are 1,
// opponent squares -1 and empty squares 0. dst must hold Size values.
func (b *Board) Features(side Piece, dst []float32) []float32 {
	for i, p := range b {
		switch p {
		case Empty:
			dst[i] = 0
		case side:
			dst[i] = 1
		default:
			dst[i] = -1
		}
	}
	return dst[:Size]
}

func (b *Board) String() string {
	var sb strings.Builder
	for row := 0; row < 3; row++ {
		if row > 0 {
			sb.WriteString("---+---+---\n")
		}
		for col := 0; col < 3; col++ {
			if col > 0 {
				sb.WriteString("|")
			}
			fmt.Fprintf(&sb, " %v ", b[row*3+col])
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
