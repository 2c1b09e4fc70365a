package ga

import (
	"math"
	"math/rand/v2"
)

// Generation is a read-only view of a ranked generation.
// It stays frozen while the next generation is being produced.
type Generation struct {
	number      int
	individuals []Individual
	ranking     []int
}

// Number returns the generation number
func (g *Generation) Number() int {
	return g.number
}

// Size returns the number of slots
func (g *Generation) Size() int {
	return len(g.individuals)
}

// Fitness returns the fitness of slot i
func (g *Generation) Fitness(i int) float64 {
	return g.individuals[i].Fitness
}

// Genotype returns the genotype of slot i; callers must not modify it
func (g *Generation) Genotype(i int) Genotype {
	return g.individuals[i].Genotype
}

// Rank returns the slot index of the genotype ranked r-th (0 is the best)
func (g *Generation) Rank(r int) int {
	return g.ranking[r]
}

// SelectionStats counts how the slots of a new generation were produced
type SelectionStats struct {
	Elite      int `json:"elite"`
	Crossover  int `json:"crossover"`
	MutateOnly int `json:"mutate_only"`
	Reset      int `json:"reset"`
}

// Total returns the number of slots accounted for
func (s SelectionStats) Total() int {
	return s.Elite + s.Crossover + s.MutateOnly + s.Reset
}

// Selector produces the next generation from a ranked one
type Selector interface {
	CreateNextGeneration(prev *Generation, next GenerationFactory) (SelectionStats, error)
}

// GenerationFactory hands out one GenotypeFactory per output slot
type GenerationFactory interface {
	Size() int
	// Slot returns the factory for output slot index. rng belongs to the
	// calling task and is used by the genetic operators.
	Slot(index int, rng *rand.Rand) GenotypeFactory
}

// GenotypeFactory builds the genotype of a single output slot
type GenotypeFactory interface {
	CreatePrimordialSeed()
	Replicate(parent int)
	Crossover(parent1, parent2 int, preference float64)
	Mutate()
}

type nextGeneration struct {
	ops     Operators
	prev    []Individual
	slots   []Individual
	written []bool
}

func (g *nextGeneration) Size() int {
	return len(g.slots)
}

func (g *nextGeneration) Slot(index int, rng *rand.Rand) GenotypeFactory {
	Check(index >= 0 && index < len(g.slots), "slot %d out of range [0, %d)", index, len(g.slots))
	return &slotFactory{gen: g, index: index, rng: rng}
}

type slotFactory struct {
	gen   *nextGeneration
	index int
	rng   *rand.Rand
}

func (f *slotFactory) slot() *Individual {
	return &f.gen.slots[f.index]
}

func (f *slotFactory) parent(i int) *Individual {
	Check(i >= 0 && i < len(f.gen.prev), "parent %d out of range [0, %d)", i, len(f.gen.prev))
	return &f.gen.prev[i]
}

func (f *slotFactory) assign(genealogy Genealogy) {
	Check(!f.gen.written[f.index], "slot %d assigned twice", f.index)
	s := f.slot()
	s.Fitness = 0
	s.Genealogy = genealogy
	f.gen.written[f.index] = true
}

func (f *slotFactory) CreatePrimordialSeed() {
	f.slot().Genotype.Reset(f.rng)
	f.assign(Genealogy{Operator: OpPrimordial})
}

func (f *slotFactory) Replicate(parent int) {
	f.slot().Genotype.CopyFrom(f.parent(parent).Genotype)
	f.assign(Genealogy{Operator: OpReplicate, Parents: []int{parent}})
}

func (f *slotFactory) Crossover(parent1, parent2 int, preference float64) {
	Check(!math.IsNaN(preference) && preference >= 0 && preference <= 1,
		"crossover preference %v out of [0, 1]", preference)
	p1, p2 := f.parent(parent1), f.parent(parent2)
	f.gen.ops.Crossover(f.slot().Genotype, p1.Genotype, p2.Genotype, preference, f.rng)
	f.assign(Genealogy{Operator: OpCrossover, Parents: []int{parent1, parent2}})
}

func (f *slotFactory) Mutate() {
	Check(f.gen.written[f.index], "mutating unassigned slot %d", f.index)
	f.gen.ops.Mutate(f.slot().Genotype, f.rng)
	f.slot().Genealogy.Mutated = true
}
