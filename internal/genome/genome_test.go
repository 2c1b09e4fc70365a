package genome

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evoarena/internal/ga"
)

func newOperators(t *testing.T, size int, cfg Config) *Operators {
	t.Helper()
	ops, err := NewOperators(size, cfg)
	require.NoError(t, err)
	return ops
}

func parents(size int) (*Genome, *Genome) {
	p1, p2 := New(size), New(size)
	for i := 0; i < size; i++ {
		p1.Weights[i] = 1
		p2.Weights[i] = -1
	}
	return p1, p2
}

func TestResetAndClone(t *testing.T) {
	g := New(50)
	g.Reset(rand.New(rand.NewPCG(1, 2)))

	nonZero := 0
	for _, w := range g.Weights {
		if w != 0 {
			nonZero++
		}
	}
	assert.Equal(t, 50, nonZero)

	c := g.Clone().(*Genome)
	assert.Equal(t, g.Weights, c.Weights)
	c.Weights[0] = 42
	assert.NotEqual(t, g.Weights[0], c.Weights[0])

	d := New(50)
	d.CopyFrom(g)
	assert.Equal(t, g.Weights, d.Weights)
}

func TestJSON(t *testing.T) {
	g := New(3)
	g.Weights[1] = 0.25
	data, err := g.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"weights":[0,0.25,0]}`, string(data))

	h := New(3)
	require.NoError(t, h.UnmarshalJSON(data))
	assert.Equal(t, g.Weights, h.Weights)

	assert.Error(t, New(4).UnmarshalJSON(data))
}

func TestCrossoverOperators(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 3))
	const size = 10

	t.Run("mix follows preference", func(t *testing.T) {
		ops := newOperators(t, size, Config{Crossover: Mix})
		p1, p2 := parents(size)
		child := New(size)

		ops.Crossover(child, p1, p2, 1, rng)
		assert.Equal(t, p1.Weights, child.Weights)
		ops.Crossover(child, p1, p2, 0, rng)
		assert.Equal(t, p2.Weights, child.Weights)
	})

	t.Run("split", func(t *testing.T) {
		ops := newOperators(t, size, Config{Crossover: Split})
		p1, p2 := parents(size)
		child := New(size)

		ops.Crossover(child, p1, p2, 0.3, rng)
		assert.Equal(t, []float32{1, 1, 1, -1, -1, -1, -1, -1, -1, -1}, child.Weights)
	})

	t.Run("pref_average", func(t *testing.T) {
		ops := newOperators(t, size, Config{Crossover: PrefAverage})
		p1, p2 := parents(size)
		child := New(size)

		ops.Crossover(child, p1, p2, 0.75, rng)
		for _, w := range child.Weights {
			assert.InDelta(t, 0.5, w, 1e-6)
		}
	})

	t.Run("uniform takes genes from both parents", func(t *testing.T) {
		ops := newOperators(t, 200, Config{Crossover: Uniform})
		p1, p2 := parents(200)
		child := New(200)

		ops.Crossover(child, p1, p2, 1, rng)
		assert.Contains(t, child.Weights, float32(1))
		assert.Contains(t, child.Weights, float32(-1))
	})
}

func TestCrossoverSizeMismatchPanics(t *testing.T) {
	ops := newOperators(t, 3, DefaultConfig())
	assert.Panics(t, func() {
		ops.Crossover(New(3), New(3), New(4), 0.5, rand.New(rand.NewPCG(1, 1)))
	})
}

func TestMutate(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 4))

	none := newOperators(t, 20, Config{Crossover: Mix})
	g := New(20)
	none.Mutate(g, rng)
	assert.Equal(t, make([]float32, 20), g.Weights)

	always := newOperators(t, 20, Config{Crossover: Mix, MutationRate: 1, MutationStd: 1})
	always.Mutate(g, rng)
	changed := 0
	for _, w := range g.Weights {
		if w != 0 {
			changed++
		}
	}
	assert.Equal(t, 20, changed)
}

func TestPopulationOfGenomes(t *testing.T) {
	ops := newOperators(t, 8, DefaultConfig())
	pop := ga.NewPopulation(ops)
	pop.CreatePrimordialGeneration(4, rand.New(rand.NewPCG(5, 5)))
	for i := 0; i < pop.Size(); i++ {
		assert.Len(t, pop.Genotype(i).(*Genome).Weights, 8)
	}
}

func TestInvalidConfig(t *testing.T) {
	for _, cfg := range []Config{
		{Crossover: "blend"},
		{Crossover: Mix, MutationRate: 2},
		{Crossover: Mix, MutationStd: -1},
		{Crossover: Mix, ResetProb: -0.5},
	} {
		_, err := NewOperators(4, cfg)
		assert.ErrorIs(t, err, ga.ErrInvalidConfig, "%+v", cfg)
	}
	_, err := NewOperators(0, DefaultConfig())
	assert.ErrorIs(t, err, ga.ErrInvalidConfig)
}
