package tictactoe

import (
	"encoding/json"
	"fmt"
	"os"
)

// Record stores the moves of a finished game for playback
type Record struct {
	X      string `json:"x"`
	O      string `json:"o"`
	Moves  []int  `json:"moves"`
	Result State  `json:"result"`
}

// Play runs a complete game, X moves first
func Play(x, o Player) (*Record, error) {
	var board Board
	x.NewGame(&board, X)
	o.NewGame(&board, O)

	rec := &Record{X: x.Name(), O: o.Name(), Moves: make([]int, 0, Size)}
	current, next := Player(x), Player(o)
	side := X
	for {
		move := current.Move()
		if move < 0 || move >= Size || board[move] != Empty {
			return rec, fmt.Errorf("tictactoe: %s played illegal move %d", current.Name(), move)
		}
		board[move] = side
		rec.Moves = append(rec.Moves, move)

		if state := board.State(); state != Undecided {
			rec.Result = state
			return rec, nil
		}
		current, next = next, current
		side = side.Other()
	}
}

// Board replays the first n moves (all of them if n is out of range)
func (r *Record) Board(n int) Board {
	if n < 0 || n > len(r.Moves) {
		n = len(r.Moves)
	}
	var b Board
	side := X
	for _, m := range r.Moves[:n] {
		b[m] = side
		side = side.Other()
	}
	return b
}

// Save writes the record to a file
func (r *Record) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadRecord loads a record from a file
func LoadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
