package selection

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"
	"sync/atomic"

	"evoarena/internal/ga"
	"evoarena/internal/parallel"
	"evoarena/internal/random"
)

// Roulette keeps the best ranked genotypes and picks the parents of every
// other slot with probability proportional to their fitness
type Roulette struct {
	cfg    Config
	pool   *parallel.Pool
	seeds  *random.Source
	logger *slog.Logger
}

// NewRoulette validates cfg and creates a Roulette
func NewRoulette(cfg Config, opts Options) (*Roulette, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	return &Roulette{
		cfg:    cfg,
		pool:   opts.Pool,
		seeds:  opts.Seeds,
		logger: opts.Logger,
	}, nil
}

// RouletteEliteLimit returns how many top ranks may be replicated unchanged
func RouletteEliteLimit(size int, percentage float64) int {
	return max(1, int(math.Round(float64(size)*percentage/100)))
}

// wheel holds the running fitness sums of a generation in slot order
type wheel struct {
	prefix []float64
}

func newWheel(prev *ga.Generation, minFitness float64) wheel {
	prefix := make([]float64, prev.Size())
	sum := 0.0
	for i := range prefix {
		if f := prev.Fitness(i); f >= minFitness {
			sum += f
		}
		prefix[i] = sum
	}
	return wheel{prefix: prefix}
}

// spin returns a slot index. Slots without a share are never picked unless
// nobody has one, in which case every slot is equally likely.
func (w wheel) spin(rng *rand.Rand) int {
	n := len(w.prefix)
	total := w.prefix[n-1]
	if total <= 0 {
		return rng.IntN(n)
	}
	sample := rng.Float64() * total
	i := sort.Search(n, func(i int) bool { return w.prefix[i] > sample })
	if i == n {
		// rounding pushed the sample onto the total
		i = sort.SearchFloat64s(w.prefix, total)
	}
	return i
}

// CreateNextGeneration implements ga.Selector
func (r *Roulette) CreateNextGeneration(prev *ga.Generation, next ga.GenerationFactory) (ga.SelectionStats, error) {
	n := next.Size()
	eliteLimit := RouletteEliteLimit(n, r.cfg.ElitePercentage)
	w := newWheel(prev, r.cfg.MinFitness)

	var elite, crossover, mutateOnly atomic.Int64

	phase := r.seeds.Seed()
	err := r.pool.ForEach(n, func(index int) error {
		rng := random.NewRand(random.Derive(phase, index))
		slot := next.Slot(index, rng)
		old := prev.Rank(index)

		switch {
		case index < eliteLimit && prev.Fitness(old) >= r.cfg.EliteMinFitness:
			slot.Replicate(old)
			elite.Add(1)

		case r.cfg.MutationOnly:
			slot.Replicate(w.spin(rng))
			slot.Mutate()
			mutateOnly.Add(1)

		default:
			parent1 := w.spin(rng)
			parent2 := w.spin(rng)
			preference := CrossoverPreference(prev.Fitness(parent1), prev.Fitness(parent2))
			slot.Crossover(parent1, parent2, preference)
			slot.Mutate()
			crossover.Add(1)
		}
		return nil
	})
	if err != nil {
		return ga.SelectionStats{}, fmt.Errorf("roulette selection: %w", err)
	}

	stats := ga.SelectionStats{
		Elite:      int(elite.Load()),
		Crossover:  int(crossover.Load()),
		MutateOnly: int(mutateOnly.Load()),
	}
	logStats(r.logger, "roulette", prev.Number(), stats)
	return stats, nil
}
