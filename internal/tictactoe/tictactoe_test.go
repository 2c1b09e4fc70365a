package tictactoe

import (
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evoarena/internal/ga"
	"evoarena/internal/genome"
	"evoarena/internal/random"
	"evoarena/internal/tournament"
)

func board(squares string) Board {
	var b Board
	for i, c := range squares {
		switch c {
		case 'X':
			b[i] = X
		case 'O':
			b[i] = O
		}
	}
	return b
}

func TestBoardState(t *testing.T) {
	cases := map[string]State{
		".........": Undecided,
		"XXX......": XWins,
		"O..O..O..": OWins,
		"X...X...X": XWins,
		"..O.O.O..": OWins,
		"XOXXOOOXX": Draw,
		"XO.......": Undecided,
	}
	for squares, want := range cases {
		b := board(squares)
		assert.Equal(t, want, b.State(), squares)
	}
}

func TestFeatures(t *testing.T) {
	b := board("XO.......")
	assert.Equal(t, []float32{1, -1, 0, 0, 0, 0, 0, 0, 0}, b.Features(X, make([]float32, Size)))
	assert.Equal(t, []float32{-1, 1, 0, 0, 0, 0, 0, 0, 0}, b.Features(O, make([]float32, Size)))
	assert.Equal(t, []int{2, 3, 4, 5, 6, 7, 8}, b.Legal())
}

func TestScriptedPlayerWinsAndBlocks(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	p := NewScriptedPlayer(rng)

	b := board("XX.OO....")
	p.NewGame(&b, X)
	assert.Equal(t, 2, p.Move(), "take the win")

	b = board("X..OO...X")
	p.NewGame(&b, X)
	assert.Equal(t, 5, p.Move(), "block")

	b = board("XX.OO....")
	p.NewGame(&b, O)
	assert.Equal(t, 5, p.Move(), "winning beats blocking")
}

func TestPlayRecordsLegalGame(t *testing.T) {
	rng := rand.New(rand.NewPCG(2, 2))
	for i := 0; i < 50; i++ {
		rec, err := Play(NewRandomPlayer(rng), NewScriptedPlayer(rng))
		require.NoError(t, err)
		require.NotEqual(t, Undecided, rec.Result)

		seen := map[int]bool{}
		for _, m := range rec.Moves {
			require.False(t, seen[m])
			seen[m] = true
		}
		final := rec.Board(-1)
		assert.Equal(t, rec.Result, final.State())
	}
}

type stubbornPlayer struct{ seat }

func (stubbornPlayer) Move() int     { return 4 }
func (stubbornPlayer) Name() string { return "stubborn" }

func TestPlayRejectsIllegalMove(t *testing.T) {
	_, err := Play(&stubbornPlayer{}, &stubbornPlayer{})
	assert.ErrorContains(t, err, "illegal move 4")
}

func newGenome(t *testing.T, rules *Rules, seed uint64) *genome.Genome {
	t.Helper()
	g := genome.New(rules.Shape().GenomeSize())
	g.Reset(rand.New(rand.NewPCG(seed, seed)))
	return g
}

func TestAnnPlayerOnlyPlaysLegalMoves(t *testing.T) {
	rules, err := NewRules(Shape(12, 0))
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(3, 3))

	for seed := uint64(0); seed < 20; seed++ {
		p, err := rules.Player(newGenome(t, rules, seed))
		require.NoError(t, err)
		_, err = Play(p, NewRandomPlayer(rng))
		require.NoError(t, err)
		_, err = Play(NewRandomPlayer(rng), p)
		require.NoError(t, err)
	}
}

func TestRules(t *testing.T) {
	rules, err := NewRules(Shape(8, 4))
	require.NoError(t, err)

	assert.Equal(t, tournament.Scores{Player1: 1}, rules.Scores(tournament.FirstPlayerWins))
	assert.Equal(t, tournament.Scores{Player2: 1}, rules.Scores(tournament.SecondPlayerWins))
	assert.Equal(t, tournament.Scores{Player1: 0.5, Player2: 0.5}, rules.Scores(tournament.Draw))

	// networks are deterministic, so a pairing always ends the same way
	a, b := newGenome(t, rules, 1), newGenome(t, rules, 2)
	first := rules.Play(a, b)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, rules.Play(a, b))
	}

	_, err = NewRules(Shape(0, 0))
	assert.ErrorIs(t, err, ga.ErrInvalidConfig)
	_, err = rules.Player(genome.New(3))
	assert.Error(t, err)
}

func TestTournamentWithRules(t *testing.T) {
	rules, err := NewRules(Shape(6, 0))
	require.NoError(t, err)
	ops, err := genome.NewOperators(rules.Shape().GenomeSize(), genome.DefaultConfig())
	require.NoError(t, err)

	pop := ga.NewPopulation(ops)
	pop.CreatePrimordialGeneration(10, rand.New(rand.NewPCG(4, 4)))
	tour, err := tournament.New(tournament.Config{Type: tournament.Simple, EvalGames: 3, Rematches: true},
		tournament.Options{Seeds: random.NewSource(1)})
	require.NoError(t, err)
	require.NoError(t, tour.EvaluatePopulation(pop, rules))

	for i := 0; i < pop.Size(); i++ {
		assert.GreaterOrEqual(t, pop.Fitness(i), 0.0)
		assert.LessOrEqual(t, pop.Fitness(i), 1.0)
	}
}

func TestCalibrator(t *testing.T) {
	rules, err := NewRules(Shape(6, 0))
	require.NoError(t, err)
	cal, err := NewCalibrator(rules, 10, true, random.NewSource(7))
	require.NoError(t, err)

	scores, err := cal.Calibrate(newGenome(t, rules, 5))
	require.NoError(t, err)
	require.Len(t, scores, 2)
	for name, v := range scores {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 1.0, name)
	}

	_, err = NewCalibrator(rules, 0, false, nil)
	assert.ErrorIs(t, err, ga.ErrInvalidConfig)
}

func TestRecordSaveLoad(t *testing.T) {
	rec, err := Play(NewScriptedPlayer(rand.New(rand.NewPCG(1, 2))), NewRandomPlayer(rand.New(rand.NewPCG(3, 4))))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "game.json")
	require.NoError(t, rec.Save(path))
	loaded, err := LoadRecord(path)
	require.NoError(t, err)
	assert.Equal(t, rec, loaded)

	b := loaded.Board(1)
	assert.Equal(t, X, b[loaded.Moves[0]])
	assert.Contains(t, b.String(), "X")
}
