package selection

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"evoarena/internal/ga"
	"evoarena/internal/parallel"
	"evoarena/internal/random"
)

// Truncation keeps the best ranked genotypes and breeds the rest of the
// next generation from the upper half of the ranking
type Truncation struct {
	cfg    Config
	pool   *parallel.Pool
	seeds  *random.Source
	logger *slog.Logger
}

// NewTruncation validates cfg and creates a Truncation
func NewTruncation(cfg Config, opts Options) (*Truncation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	return &Truncation{
		cfg:    cfg,
		pool:   opts.Pool,
		seeds:  opts.Seeds,
		logger: opts.Logger,
	}, nil
}

// EliteLimit returns how many top ranks may be replicated unchanged
func EliteLimit(size int, percentage float64) int {
	return max(2, int(math.Round(float64(size)*percentage/100)))
}

// CreateNextGeneration implements ga.Selector
func (t *Truncation) CreateNextGeneration(prev *ga.Generation, next ga.GenerationFactory) (ga.SelectionStats, error) {
	n := next.Size()
	eliteLimit := EliteLimit(n, t.cfg.ElitePercentage)

	var elite, crossover, mutateOnly, reset atomic.Int64

	phase := t.seeds.Seed()
	err := t.pool.ForEach(n, func(index int) error {
		rng := random.NewRand(random.Derive(phase, index))
		slot := next.Slot(index, rng)
		old := prev.Rank(index)

		switch {
		case index < eliteLimit && prev.Fitness(old) >= t.cfg.EliteMinFitness:
			slot.Replicate(old)
			if rng.Float64() < t.cfg.EliteMutationChance {
				slot.Mutate()
			}
			elite.Add(1)

		case t.cfg.ResetNonElite:
			slot.CreatePrimordialSeed()
			reset.Add(1)

		case index >= 2:
			parent1 := prev.Rank(rng.IntN(index/2 + 1))
			parent2 := prev.Rank(rng.IntN(index/2 + 1))
			preference := CrossoverPreference(prev.Fitness(parent1), prev.Fitness(parent2))
			slot.Crossover(parent1, parent2, preference)
			slot.Mutate()
			crossover.Add(1)

		default:
			slot.Replicate(old)
			slot.Mutate()
			mutateOnly.Add(1)
		}
		return nil
	})
	if err != nil {
		return ga.SelectionStats{}, fmt.Errorf("truncation selection: %w", err)
	}

	stats := ga.SelectionStats{
		Elite:      int(elite.Load()),
		Crossover:  int(crossover.Load()),
		MutateOnly: int(mutateOnly.Load()),
		Reset:      int(reset.Load()),
	}
	logStats(t.logger, "truncation", prev.Number(), stats)
	return stats, nil
}
