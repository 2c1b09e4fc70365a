package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"evoarena/internal/config"
	"evoarena/internal/genome"
	"evoarena/internal/logging"
	"evoarena/internal/nn"
	"evoarena/internal/random"
	"evoarena/internal/store"
	"evoarena/internal/tictactoe"
)

func main() {
	configPath := flag.String("config", "configs/tictactoe.yaml", "path to config file")
	championPath := flag.String("champion", "", "path to champion JSON (defaults to logging.champion_path)")
	runID := flag.String("run", "", "load the latest champion of this run from the store instead")
	opponent := flag.String("opponent", "human", "opponent: human|random|scripted")
	games := flag.Int("games", 1, "number of games to play")
	seed := flag.Uint64("seed", 0, "random seed for the reference players (0 = random)")
	championFirst := flag.Bool("first", true, "champion plays X (moves first)")
	recordPath := flag.String("record", "", "save the last game to this JSON file")
	flag.Parse()

	if err := run(*configPath, *championPath, *runID, *opponent, *games, *seed, *championFirst, *recordPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, championPath, runID, opponentName string, games int, seed uint64, championFirst bool, recordPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	shape, weights, err := loadChampion(cfg, championPath, runID)
	if err != nil {
		return err
	}
	g := genome.New(shape.GenomeSize())
	if err := g.UnmarshalJSON(weights); err != nil {
		return fmt.Errorf("decoding champion genome: %w", err)
	}
	champion, err := tictactoe.NewAnnPlayer(shape, g)
	if err != nil {
		return err
	}

	seeds := random.NewEntropySource()
	if seed != 0 {
		seeds = random.NewSource(seed)
	}
	rng := random.NewRand(seeds.Seed())

	var opponent tictactoe.Player
	switch opponentName {
	case "human":
		opponent = newHumanPlayer(os.Stdin, os.Stdout)
	case "random":
		opponent = tictactoe.NewRandomPlayer(rng)
	case "scripted":
		opponent = tictactoe.NewScriptedPlayer(rng)
	default:
		return fmt.Errorf("unknown opponent %q", opponentName)
	}

	wins, draws, losses := 0, 0, 0
	var last *tictactoe.Record
	for i := 0; i < games; i++ {
		x, o := tictactoe.Player(champion), opponent
		if !championFirst {
			x, o = o, x
		}
		rec, err := tictactoe.Play(x, o)
		if err != nil {
			return err
		}
		last = rec

		final := rec.Board(-1)
		fmt.Printf("Game %d: %s (X) vs %s (O): %s\n%v\n", i+1, rec.X, rec.O, rec.Result, &final)

		switch {
		case rec.Result == tictactoe.Draw:
			draws++
		case (rec.Result == tictactoe.XWins) == championFirst:
			wins++
		default:
			losses++
		}
	}
	fmt.Printf("Champion: %d wins, %d draws, %d losses\n", wins, draws, losses)

	if recordPath != "" && last != nil {
		if err := last.Save(recordPath); err != nil {
			return fmt.Errorf("saving record: %w", err)
		}
	}
	return nil
}

// loadChampion returns the network shape and genome of the requested champion
func loadChampion(cfg *config.Config, path, runID string) (nn.Shape, json.RawMessage, error) {
	if runID != "" {
		if cfg.Store.Path == "" {
			return nn.Shape{}, nil, errors.New("loading from a run needs store.path in the config")
		}
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return nn.Shape{}, nil, err
		}
		defer st.Close()

		s, err := st.LatestChampion(runID)
		if err != nil {
			return nn.Shape{}, nil, err
		}
		fmt.Printf("Loaded champion of run %s, generation %d (fitness=%.3f)\n", runID, s.Generation, s.Champion.Fitness)
		return tictactoe.Shape(cfg.Genome.Hidden1, cfg.Genome.Hidden2), s.Champion.Genotype, nil
	}

	if path == "" {
		path = cfg.Logging.ChampionPath
	}
	c, err := logging.LoadChampion(path)
	if err != nil {
		return nn.Shape{}, nil, fmt.Errorf("loading champion: %w", err)
	}
	fmt.Printf("Loaded champion from gen %d (fitness=%.3f)\n", c.Generation, c.Fitness)
	return tictactoe.Shape(c.Hidden1, c.Hidden2), c.Genotype, nil
}

// humanPlayer reads moves (squares 0-8) from a terminal
type humanPlayer struct {
	in    *bufio.Scanner
	out   io.Writer
	board *tictactoe.Board
	side  tictactoe.Piece
}

func newHumanPlayer(in io.Reader, out io.Writer) *humanPlayer {
	return &humanPlayer{in: bufio.NewScanner(in), out: out}
}

func (h *humanPlayer) NewGame(board *tictactoe.Board, side tictactoe.Piece) {
	h.board = board
	h.side = side
}

func (h *humanPlayer) Move() int {
	for {
		fmt.Fprintf(h.out, "\n%v\nYou play %v. Square (0-8): ", h.board, h.side)
		if !h.in.Scan() {
			return tictactoe.NoSquare
		}
		square, err := strconv.Atoi(strings.TrimSpace(h.in.Text()))
		if err != nil || square < 0 || square >= tictactoe.Size || h.board[square] != tictactoe.Empty {
			fmt.Fprintln(h.out, "Illegal move, try again.")
			continue
		}
		return square
	}
}

func (h *humanPlayer) Name() string { return "Human" }
