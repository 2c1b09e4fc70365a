// Package tournament assigns fitness to a population by playing games
// between its genotypes.
package tournament

import (
	"fmt"
	"log/slog"
	"math"

	"evoarena/internal/ga"
	"evoarena/internal/parallel"
	"evoarena/internal/progress"
	"evoarena/internal/random"
)

// Outcome is the result of one game
type Outcome int

const (
	FirstPlayerWins Outcome = iota
	SecondPlayerWins
	Draw
)

func (o Outcome) String() string {
	switch o {
	case FirstPlayerWins:
		return "first_player_wins"
	case SecondPlayerWins:
		return "second_player_wins"
	case Draw:
		return "draw"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Scores are the points awarded to each side of a game
type Scores struct {
	Player1 float64
	Player2 float64
}

// GameRules plays games between genotypes. Implementations must be pure
// functions of their inputs and safe for concurrent use.
type GameRules interface {
	// Play grows players from both genotypes and returns the game outcome
	Play(player1, player2 ga.Genotype) Outcome
	// Scores maps an outcome to the points for each player
	Scores(outcome Outcome) Scores
}

// Kind selects the opponent pairing policy
type Kind string

const (
	Simple     Kind = "simple"
	Swiss      Kind = "swiss"
	RoundRobin Kind = "round_robin"
)

// Config holds the tournament settings
type Config struct {
	Type      Kind `yaml:"type" ini:"type"`
	EvalGames int  `yaml:"eval_games" ini:"eval_games"`
	Rematches bool `yaml:"rematches" ini:"rematches"`
	Rounds    int  `yaml:"rounds" ini:"rounds"` // swiss only
}

// DefaultConfig returns the settings used when none are given
func DefaultConfig() Config {
	return Config{
		Type:      Simple,
		EvalGames: 10,
		Rematches: true,
		Rounds:    10,
	}
}

// Validate checks the settings
func (c Config) Validate() error {
	if c.EvalGames <= 0 {
		return ga.InvalidConfig("tournament.eval_games", "must be positive, got %d", c.EvalGames)
	}
	switch c.Type {
	case Simple, RoundRobin:
	case Swiss:
		if c.Rounds <= 0 {
			return ga.InvalidConfig("tournament.rounds", "must be positive, got %d", c.Rounds)
		}
	default:
		return ga.InvalidConfig("tournament.type", "unknown tournament type %q", c.Type)
	}
	return nil
}

// Options carries the collaborators shared by all tournament kinds
type Options struct {
	Pool     *parallel.Pool
	Seeds    *random.Source
	Progress progress.Sink
	Logger   *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Pool == nil {
		o.Pool = parallel.New(0)
	}
	if o.Seeds == nil {
		o.Seeds = random.NewEntropySource()
	}
	if o.Progress == nil {
		o.Progress = progress.Nop{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Tournament evaluates every genotype of a population
type Tournament interface {
	EvaluatePopulation(pop *ga.Population, rules GameRules) error
}

// New builds the tournament selected by cfg.Type
func New(cfg Config, opts Options) (Tournament, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	switch cfg.Type {
	case Swiss:
		return &SwissTournament{cfg: cfg, opts: opts}, nil
	case RoundRobin:
		return &RoundRobinTournament{cfg: cfg, opts: opts}, nil
	default:
		return &SimpleTournament{cfg: cfg, opts: opts}, nil
	}
}

// play runs one game and validates the scores
func play(rules GameRules, player1, player2 ga.Genotype) Scores {
	outcome := rules.Play(player1, player2)
	s := rules.Scores(outcome)
	ga.Check(isFinite(s.Player1) && isFinite(s.Player2),
		"game rules returned invalid scores %+v for %v", s, outcome)
	return s
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
