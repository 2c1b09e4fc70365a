package ga

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sort"
)

// Population manages a fixed number of genotype slots across generations.
//
// Two slot buffers are kept: the front buffer holds the current generation and
// the back buffer is rewritten by the selection step while the front buffer is
// only read. The buffers swap once the next generation is complete.
type Population struct {
	ops        Operators
	front      []Individual
	back       []Individual
	generation int
	ranked     bool
	ranking    []int
}

// NewPopulation creates an empty population using ops for its genotypes
func NewPopulation(ops Operators) *Population {
	Check(ops != nil, "nil genetic operators")
	return &Population{ops: ops}
}

// CreatePrimordialGeneration fills size fresh genotypes and resets the generation counter
func (p *Population) CreatePrimordialGeneration(size int, rng *rand.Rand) {
	Check(size > 0, "population size must be positive, got %d", size)

	p.front = p.allocate(size)
	p.back = p.allocate(size)
	for i := range p.front {
		p.front[i].Genotype.Reset(rng)
		p.front[i].Genealogy = Genealogy{Operator: OpPrimordial}
	}

	p.generation = 0
	p.ranked = false
	p.ranking = nil
}

// Restore rebuilds the population from serialized individuals
func (p *Population) Restore(generation int, records []IndividualRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("restore generation %d: no individuals", generation)
	}

	front := p.allocate(len(records))
	for i, rec := range records {
		if err := front[i].Genotype.UnmarshalJSON(rec.Genotype); err != nil {
			return fmt.Errorf("restore individual %d: %w", i, err)
		}
		front[i].Fitness = rec.Fitness
		front[i].Genealogy = rec.Genealogy
	}

	p.front = front
	p.back = p.allocate(len(records))
	p.generation = generation
	p.ranked = false
	p.ranking = nil
	return nil
}

func (p *Population) allocate(size int) []Individual {
	slots := make([]Individual, size)
	for i := range slots {
		slots[i].Genotype = p.ops.NewGenotype()
	}
	return slots
}

// Size returns the population size
func (p *Population) Size() int {
	return len(p.front)
}

// Generation returns the current generation number
func (p *Population) Generation() int {
	return p.generation
}

// Ranked reports whether the ranking index is valid
func (p *Population) Ranked() bool {
	return p.ranked
}

// Genotype returns the genotype in slot i
func (p *Population) Genotype(i int) Genotype {
	return p.front[i].Genotype
}

// Individual returns slot i. The pointer is only valid for the current generation.
func (p *Population) Individual(i int) *Individual {
	return &p.front[i]
}

// Fitness returns the fitness of slot i
func (p *Population) Fitness(i int) float64 {
	return p.front[i].Fitness
}

// SetFitness assigns the fitness of slot i.
// Concurrent calls are safe as long as they target different slots.
func (p *Population) SetFitness(i int, fitness float64) {
	Check(!math.IsNaN(fitness), "NaN fitness for genotype %d", i)
	p.front[i].Fitness = fitness
}

// AddFitness accumulates delta into the fitness of slot i
func (p *Population) AddFitness(i int, delta float64) {
	p.SetFitness(i, p.front[i].Fitness+delta)
}

// ResetFitness sets every fitness value to zero
func (p *Population) ResetFitness() {
	for i := range p.front {
		p.front[i].Fitness = 0
	}
}

// RankGenotypes sorts slot indices by descending fitness.
// Ties keep their slot order. Genotypes are left untouched.
func (p *Population) RankGenotypes() {
	Check(!p.ranked, "population is already ranked")
	Check(len(p.front) > 0, "ranking an empty population")

	ranking := make([]int, len(p.front))
	for i := range ranking {
		ranking[i] = i
	}
	sort.SliceStable(ranking, func(a, b int) bool {
		return p.front[ranking[a]].Fitness > p.front[ranking[b]].Fitness
	})

	p.ranking = ranking
	p.ranked = true
}

// RankingIndex returns a copy of the ranking permutation (best first)
func (p *Population) RankingIndex() []int {
	Check(p.ranked, "ranking index requested before RankGenotypes")
	return slices.Clone(p.ranking)
}

// Champion returns the best ranked individual
func (p *Population) Champion() *Individual {
	Check(p.ranked, "champion requested before RankGenotypes")
	return &p.front[p.ranking[0]]
}

// Snapshot serializes every individual of the current generation
func (p *Population) Snapshot() ([]IndividualRecord, error) {
	records := make([]IndividualRecord, len(p.front))
	for i := range p.front {
		rec, err := p.front[i].Record()
		if err != nil {
			return nil, fmt.Errorf("snapshot individual %d: %w", i, err)
		}
		records[i] = rec
	}
	return records, nil
}

// CreateNextGeneration lets sel rewrite the back buffer from the ranked
// current generation, then makes it the current generation.
// On error the current generation is kept and stays ranked.
func (p *Population) CreateNextGeneration(sel Selector) (SelectionStats, error) {
	Check(p.ranked, "next generation requested before RankGenotypes")

	prev := &Generation{
		number:      p.generation,
		individuals: p.front,
		ranking:     p.ranking,
	}
	next := &nextGeneration{
		ops:     p.ops,
		prev:    p.front,
		slots:   p.back,
		written: make([]bool, len(p.back)),
	}

	stats, err := sel.CreateNextGeneration(prev, next)
	if err != nil {
		return stats, err
	}
	for i, ok := range next.written {
		Check(ok, "selection left slot %d unassigned", i)
	}
	Check(stats.Total() == len(p.front), "selection stats cover %d of %d slots", stats.Total(), len(p.front))

	p.front, p.back = p.back, p.front
	p.generation++
	p.ranked = false
	p.ranking = nil
	return stats, nil
}
