package genome

import (
	"math/rand/v2"

	"evoarena/internal/ga"
)

// CrossoverOperator selects how two parents are combined
type CrossoverOperator string

const (
	// Mix takes every weight from parent1 with probability preference
	Mix CrossoverOperator = "mix"
	// Split takes a prefix from parent1 whose length is proportional to preference
	Split CrossoverOperator = "split"
	// PrefAverage blends each weight towards parent1 by preference
	PrefAverage CrossoverOperator = "pref_average"
	// Uniform swaps genes with a fair coin, ignoring preference
	Uniform CrossoverOperator = "uniform"
)

// Config holds the genetic operator settings
type Config struct {
	Crossover    CrossoverOperator `yaml:"crossover" ini:"crossover"`
	MutationRate float64           `yaml:"mutation_rate" ini:"mutation_rate"`
	MutationStd  float64           `yaml:"mutation_std" ini:"mutation_std"`
	ResetProb    float64           `yaml:"reset_prob" ini:"reset_prob"`
}

// DefaultConfig returns the settings used when none are given
func DefaultConfig() Config {
	return Config{
		Crossover:    Mix,
		MutationRate: 0.05,
		MutationStd:  0.2,
		ResetProb:    0.001,
	}
}

// Validate checks the settings
func (c Config) Validate() error {
	switch c.Crossover {
	case Mix, Split, PrefAverage, Uniform:
	default:
		return ga.InvalidConfig("genome.crossover", "unknown crossover operator %q", c.Crossover)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return ga.InvalidConfig("genome.mutation_rate", "%v not in [0, 1]", c.MutationRate)
	}
	if c.MutationStd < 0 {
		return ga.InvalidConfig("genome.mutation_std", "must not be negative, got %v", c.MutationStd)
	}
	if c.ResetProb < 0 || c.ResetProb > 1 {
		return ga.InvalidConfig("genome.reset_prob", "%v not in [0, 1]", c.ResetProb)
	}
	return nil
}

// Operators implements ga.Operators for genomes of a fixed size
type Operators struct {
	size int
	cfg  Config
}

// NewOperators validates cfg and returns operators for genomes of size weights
func NewOperators(size int, cfg Config) (*Operators, error) {
	if size <= 0 {
		return nil, ga.InvalidConfig("genome.size", "must be positive, got %d", size)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Operators{size: size, cfg: cfg}, nil
}

// Size returns the number of weights per genome
func (o *Operators) Size() int {
	return o.size
}

func (o *Operators) NewGenotype() ga.Genotype {
	return New(o.size)
}

func (o *Operators) Crossover(dst, parent1, parent2 ga.Genotype, preference float64, rng *rand.Rand) {
	c := dst.(*Genome).Weights
	p1 := parent1.(*Genome).Weights
	p2 := parent2.(*Genome).Weights
	ga.Check(len(p1) == len(c) && len(p2) == len(c), "crossover of genomes with different sizes")

	switch o.cfg.Crossover {
	case Split:
		point := int(float64(len(c)) * preference)
		copy(c[:point], p1[:point])
		copy(c[point:], p2[point:])

	case PrefAverage:
		pref := float32(preference)
		for i := range c {
			c[i] = p2[i] + (p1[i]-p2[i])*pref
		}

	case Uniform:
		for i := range c {
			if rng.Float64() < 0.5 {
				c[i] = p2[i]
			} else {
				c[i] = p1[i]
			}
		}

	default:
		for i := range c {
			if rng.Float64() < preference {
				c[i] = p1[i]
			} else {
				c[i] = p2[i]
			}
		}
	}
}

// Mutate applies gaussian perturbations with an occasional random reset
func (o *Operators) Mutate(g ga.Genotype, rng *rand.Rand) {
	weights := g.(*Genome).Weights
	for i := range weights {
		if rng.Float64() < o.cfg.ResetProb {
			weights[i] = float32(rng.NormFloat64() * 0.5)
		} else if rng.Float64() < o.cfg.MutationRate {
			weights[i] += float32(rng.NormFloat64() * o.cfg.MutationStd)
		}
	}
}
