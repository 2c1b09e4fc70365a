package tictactoe

import (
	"fmt"
	"math"
	"math/rand/v2"

	"evoarena/internal/genome"
	"evoarena/internal/nn"
)

// Player picks moves for one side of a game
type Player interface {
	// NewGame binds the player to board, playing side
	NewGame(board *Board, side Piece)
	// Move returns an empty square
	Move() int
	Name() string
}

type seat struct {
	board *Board
	side  Piece
}

func (s *seat) NewGame(board *Board, side Piece) {
	s.board = board
	s.side = side
}

// Shape returns the policy network layout: one input and one output per square
func Shape(hidden1, hidden2 int) nn.Shape {
	return nn.Shape{Inputs: Size, Hidden1: hidden1, Hidden2: hidden2, Outputs: Size}
}

// AnnPlayer plays the legal move with the largest network output
type AnnPlayer struct {
	seat
	net   *nn.MLP
	input []float32
	name  string
}

// NewAnnPlayer grows a player from g
func NewAnnPlayer(shape nn.Shape, g *genome.Genome) (*AnnPlayer, error) {
	if shape.Inputs != Size || shape.Outputs != Size {
		return nil, fmt.Errorf("tictactoe: network shape %+v does not match the board", shape)
	}
	net, err := nn.New(shape, g.Weights)
	if err != nil {
		return nil, err
	}
	return &AnnPlayer{net: net, input: make([]float32, Size), name: "ANN"}, nil
}

func (p *AnnPlayer) Move() int {
	out := p.net.Evaluate(p.board.Features(p.side, p.input))

	best := NoSquare
	bestSignal := float32(math.Inf(-1))
	for i, signal := range out {
		if p.board[i] == Empty && (best == NoSquare || signal > bestSignal) {
			best = i
			bestSignal = signal
		}
	}
	return best
}

func (p *AnnPlayer) Name() string { return p.name }

// RandomPlayer picks a random legal move. When informed it always takes a
// winning move and otherwise blocks the opponent's winning move.
type RandomPlayer struct {
	seat
	rng      *rand.Rand
	informed bool
}

// NewRandomPlayer returns a player picking uniformly random moves
func NewRandomPlayer(rng *rand.Rand) *RandomPlayer {
	return &RandomPlayer{rng: rng}
}

// NewScriptedPlayer returns an average player preferring winning and blocking moves
func NewScriptedPlayer(rng *rand.Rand) *RandomPlayer {
	return &RandomPlayer{rng: rng, informed: true}
}

// move values fall in strictly ordered ranges by move kind
const (
	randomMove   = 0
	blockingMove = 2
	winningMove  = 4
)

func (p *RandomPlayer) Move() int {
	best := NoSquare
	bestValue := math.Inf(-1)
	for square, piece := range p.board {
		if piece != Empty {
			continue
		}
		if v := p.evaluate(square); v > bestValue {
			best = square
			bestValue = v
		}
	}
	return best
}

func (p *RandomPlayer) evaluate(square int) float64 {
	base := float64(randomMove)
	if p.informed {
		winning, blocking := false, false
		for _, line := range Lines {
			mine, theirs, relevant := 0, 0, false
			for _, s := range line {
				switch {
				case s == square:
					relevant = true
					mine++
				case p.board[s] == p.side:
					mine++
				case p.board[s] == p.side.Other():
					theirs++
				}
			}
			if !relevant {
				continue
			}
			if mine == 3 {
				winning = true
			} else if mine == 1 && theirs == 2 {
				blocking = true
			}
		}
		switch {
		case winning:
			base = winningMove
		case blocking:
			base = blockingMove
		}
	}
	return base + p.rng.Float64()
}

func (p *RandomPlayer) Name() string {
	if p.informed {
		return "Scripted"
	}
	return "Random"
}
