// Package gatest provides a trivial genotype encoding for tests of the
// evolution machinery.
package gatest

import (
	"encoding/json"
	"math/rand/v2"

	"evoarena/internal/ga"
)

// Genotype is a single number. Crossover blends parents by preference and
// mutation adds a small uniform offset, so results are easy to predict.
type Genotype struct {
	Value float64 `json:"value"`
}

func (g *Genotype) Reset(rng *rand.Rand) {
	g.Value = rng.Float64()
}

func (g *Genotype) CopyFrom(src ga.Genotype) {
	g.Value = src.(*Genotype).Value
}

func (g *Genotype) Clone() ga.Genotype {
	return &Genotype{Value: g.Value}
}

func (g *Genotype) MarshalJSON() ([]byte, error) {
	type plain Genotype
	return json.Marshal((*plain)(g))
}

func (g *Genotype) UnmarshalJSON(data []byte) error {
	type plain Genotype
	return json.Unmarshal(data, (*plain)(g))
}

// Operators implements ga.Operators for Genotype
type Operators struct {
	// MutationStep bounds the offset added by Mutate
	MutationStep float64
}

func (o Operators) NewGenotype() ga.Genotype {
	return &Genotype{}
}

func (o Operators) Crossover(dst, parent1, parent2 ga.Genotype, preference float64, _ *rand.Rand) {
	v1 := parent1.(*Genotype).Value
	v2 := parent2.(*Genotype).Value
	dst.(*Genotype).Value = v2 + (v1-v2)*preference
}

func (o Operators) Mutate(g ga.Genotype, rng *rand.Rand) {
	g.(*Genotype).Value += (rng.Float64()*2 - 1) * o.MutationStep
}

// Value returns the number stored in slot i of pop
func Value(pop *ga.Population, i int) float64 {
	return pop.Genotype(i).(*Genotype).Value
}

// SetFitness assigns fitness values to the first len(values) slots
func SetFitness(pop *ga.Population, values ...float64) {
	for i, v := range values {
		pop.SetFitness(i, v)
	}
}
