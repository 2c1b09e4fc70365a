package ga

import (
	"encoding/json"
	"math/rand/v2"
)

// Genotype is the encoding-specific state of one individual.
// The engine never looks inside; it only resets, copies and serializes it.
type Genotype interface {
	// Reset re-randomizes the genotype into a fresh individual
	Reset(rng *rand.Rand)
	// CopyFrom overwrites the receiver with a deep copy of src
	CopyFrom(src Genotype)
	Clone() Genotype

	json.Marshaler
	json.Unmarshaler
}

// Operators creates genotypes and implements the genetic operators for one encoding
type Operators interface {
	NewGenotype() Genotype
	// Crossover writes a child of parent1 and parent2 into dst.
	// preference in [0, 1] is the bias towards parent1.
	Crossover(dst, parent1, parent2 Genotype, preference float64, rng *rand.Rand)
	Mutate(g Genotype, rng *rand.Rand)
}

// Genetic operator names recorded in Genealogy
const (
	OpPrimordial = "primordial"
	OpReplicate  = "replicate"
	OpCrossover  = "crossover"
)

// Genealogy records how an individual was produced
type Genealogy struct {
	Operator string `json:"operator,omitempty"`
	Parents  []int  `json:"parents,omitempty"` // slot indices in the previous generation
	Mutated  bool   `json:"mutated,omitempty"`
}

// Individual is one population slot
type Individual struct {
	Genotype  Genotype
	Fitness   float64
	Genealogy Genealogy
}

// IndividualRecord is the serialized form of an Individual
type IndividualRecord struct {
	Fitness   float64         `json:"fitness"`
	Genealogy Genealogy       `json:"genealogy"`
	Genotype  json.RawMessage `json:"genotype"`
}

// Record serializes the individual
func (ind *Individual) Record() (IndividualRecord, error) {
	data, err := ind.Genotype.MarshalJSON()
	if err != nil {
		return IndividualRecord{}, err
	}
	return IndividualRecord{
		Fitness:   ind.Fitness,
		Genealogy: ind.Genealogy,
		Genotype:  data,
	}, nil
}
