package tictactoe

import (
	"fmt"

	"evoarena/internal/ga"
	"evoarena/internal/genome"
	"evoarena/internal/nn"
	"evoarena/internal/random"
	"evoarena/internal/tournament"
)

// Rules plays games between two genome-grown AnnPlayers
type Rules struct {
	shape nn.Shape
}

// NewRules returns rules for policy networks of the given shape
func NewRules(shape nn.Shape) (*Rules, error) {
	if shape.Inputs != Size || shape.Outputs != Size {
		return nil, ga.InvalidConfig("genome.shape", "tic-tac-toe needs %d inputs and outputs, got %+v", Size, shape)
	}
	if err := shape.Validate(); err != nil {
		return nil, ga.InvalidConfig("genome.shape", "%v", err)
	}
	return &Rules{shape: shape}, nil
}

// Shape returns the network layout of the players
func (r *Rules) Shape() nn.Shape {
	return r.shape
}

// Player grows an AnnPlayer from a genotype
func (r *Rules) Player(g ga.Genotype) (*AnnPlayer, error) {
	gen, ok := g.(*genome.Genome)
	if !ok {
		return nil, fmt.Errorf("tictactoe: unsupported genotype %T", g)
	}
	return NewAnnPlayer(r.shape, gen)
}

func (r *Rules) Play(g1, g2 ga.Genotype) tournament.Outcome {
	x, err := r.Player(g1)
	ga.Check(err == nil, "grow first player: %v", err)
	o, err := r.Player(g2)
	ga.Check(err == nil, "grow second player: %v", err)

	rec, err := Play(x, o)
	ga.Check(err == nil, "%v", err)
	return outcome(rec.Result)
}

func (r *Rules) Scores(o tournament.Outcome) tournament.Scores {
	switch o {
	case tournament.FirstPlayerWins:
		return tournament.Scores{Player1: 1, Player2: 0}
	case tournament.SecondPlayerWins:
		return tournament.Scores{Player1: 0, Player2: 1}
	case tournament.Draw:
		return tournament.Scores{Player1: 0.5, Player2: 0.5}
	default:
		panic(fmt.Sprintf("tictactoe: unexpected outcome %v", o))
	}
}

func outcome(s State) tournament.Outcome {
	switch s {
	case XWins:
		return tournament.FirstPlayerWins
	case OWins:
		return tournament.SecondPlayerWins
	default:
		return tournament.Draw
	}
}

// Calibrator scores a champion against the reference players
type Calibrator struct {
	rules     *Rules
	games     int
	rematches bool
	seeds     *random.Source
}

// NewCalibrator plays games (plus rematches) against each reference player
func NewCalibrator(rules *Rules, games int, rematches bool, seeds *random.Source) (*Calibrator, error) {
	if games <= 0 {
		return nil, ga.InvalidConfig("game.calibration_games", "must be positive, got %d", games)
	}
	if seeds == nil {
		seeds = random.NewEntropySource()
	}
	return &Calibrator{rules: rules, games: games, rematches: rematches, seeds: seeds}, nil
}

// Calibrate returns the mean score vs a random player and vs a scripted player
func (c *Calibrator) Calibrate(champion ga.Genotype) (map[string]float64, error) {
	player, err := c.rules.Player(champion)
	if err != nil {
		return nil, err
	}
	rng := random.NewRand(c.seeds.Seed())

	vsRandom, err := c.score(player, NewRandomPlayer(rng))
	if err != nil {
		return nil, err
	}
	vsScripted, err := c.score(player, NewScriptedPlayer(rng))
	if err != nil {
		return nil, err
	}
	return map[string]float64{
		"vs_random_player":  vsRandom,
		"vs_average_player": vsScripted,
	}, nil
}

func (c *Calibrator) score(subject, reference Player) (float64, error) {
	total, games := 0.0, 0
	for i := 0; i < c.games; i++ {
		rec, err := Play(subject, reference)
		if err != nil {
			return 0, err
		}
		total += c.rules.Scores(outcome(rec.Result)).Player1
		games++

		if c.rematches {
			rec, err = Play(reference, subject)
			if err != nil {
				return 0, err
			}
			total += c.rules.Scores(outcome(rec.Result)).Player2
			games++
		}
	}
	return total / float64(games), nil
}

var _ tournament.GameRules = (*Rules)(nil)
