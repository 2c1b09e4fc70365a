// Package selection builds the next generation from a ranked population
package selection

import (
	"log/slog"
	"math"

	"evoarena/internal/ga"
	"evoarena/internal/parallel"
	"evoarena/internal/random"
)

// Kind selects the selection algorithm
type Kind string

const (
	TruncationKind Kind = "truncation"
	RouletteKind   Kind = "roulette"
)

// Config holds the selection settings. Fields not used by the chosen
// algorithm are ignored.
type Config struct {
	Type                Kind    `yaml:"type" ini:"type"` // empty means truncation
	ElitePercentage     float64 `yaml:"elite_percentage" ini:"elite_percentage"`
	EliteMutationChance float64 `yaml:"elite_mutation_chance" ini:"elite_mutation_chance"` // truncation only
	EliteMinFitness     float64 `yaml:"elite_min_fitness" ini:"elite_min_fitness"`
	// ResetNonElite replaces every non-elite slot with a fresh genotype (truncation only)
	ResetNonElite bool `yaml:"reset_non_elite" ini:"reset_non_elite"`

	// roulette only
	MinFitness   float64 `yaml:"min_fitness" ini:"min_fitness"`     // lower fitness gets no share of the wheel
	MutationOnly bool    `yaml:"mutation_only" ini:"mutation_only"` // replicate + mutate instead of crossover
}

// DefaultConfig returns the settings used when none are given
func DefaultConfig() Config {
	return Config{
		Type:                TruncationKind,
		ElitePercentage:     10,
		EliteMutationChance: 0,
		EliteMinFitness:     0,
	}
}

// Validate checks the settings
func (c Config) Validate() error {
	switch c.Type {
	case "", TruncationKind, RouletteKind:
	default:
		return ga.InvalidConfig("selection.type", "unknown selection type %q", c.Type)
	}
	if math.IsNaN(c.ElitePercentage) || c.ElitePercentage < 0 || c.ElitePercentage > 100 {
		return ga.InvalidConfig("selection.elite_percentage", "%v not in [0, 100]", c.ElitePercentage)
	}
	if math.IsNaN(c.EliteMutationChance) || c.EliteMutationChance < 0 || c.EliteMutationChance > 1 {
		return ga.InvalidConfig("selection.elite_mutation_chance", "%v not in [0, 1]", c.EliteMutationChance)
	}
	if math.IsNaN(c.EliteMinFitness) {
		return ga.InvalidConfig("selection.elite_min_fitness", "NaN")
	}
	if math.IsNaN(c.MinFitness) || c.MinFitness < 0 {
		return ga.InvalidConfig("selection.min_fitness", "must not be negative, got %v", c.MinFitness)
	}
	return nil
}

// Options carries the collaborators shared by all selection algorithms
type Options struct {
	Pool   *parallel.Pool
	Seeds  *random.Source
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Pool == nil {
		o.Pool = parallel.New(0)
	}
	if o.Seeds == nil {
		o.Seeds = random.NewEntropySource()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// New builds the selector chosen by cfg.Type
func New(cfg Config, opts Options) (ga.Selector, error) {
	if cfg.Type == RouletteKind {
		return NewRoulette(cfg, opts)
	}
	return NewTruncation(cfg, opts)
}

// CrossoverPreference returns the bias towards the first parent. Negative
// fitness counts as zero and two zero parents are weighted equally.
func CrossoverPreference(f1, f2 float64) float64 {
	f1 = max(f1, 0)
	f2 = max(f2, 0)
	p := f1 / (f1 + f2)
	if math.IsNaN(p) {
		return 0.5
	}
	return p
}

func logStats(logger *slog.Logger, algorithm string, generation int, stats ga.SelectionStats) {
	size := float64(stats.Total())
	logger.Info(algorithm+" selection",
		"generation", generation,
		"elite_pct", 100*float64(stats.Elite)/size,
		"crossover_pct", 100*float64(stats.Crossover)/size,
		"mutate_only_pct", 100*float64(stats.MutateOnly)/size,
		"reset_pct", 100*float64(stats.Reset)/size)
}
