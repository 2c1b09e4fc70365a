// Package genome implements a flat float32 weight vector genotype and its
// genetic operators
package genome

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"

	"evoarena/internal/ga"
)

// Genome is a vector of network weights
type Genome struct {
	Weights []float32 `json:"weights"`
}

// New returns a zero genome with size weights
func New(size int) *Genome {
	return &Genome{Weights: make([]float32, size)}
}

// Reset draws Xavier-like initial weights
func (g *Genome) Reset(rng *rand.Rand) {
	scale := math.Sqrt(2.0 / float64(len(g.Weights)))
	for i := range g.Weights {
		g.Weights[i] = float32(rng.NormFloat64() * scale)
	}
}

func (g *Genome) CopyFrom(src ga.Genotype) {
	g.Weights = append(g.Weights[:0], src.(*Genome).Weights...)
}

func (g *Genome) Clone() ga.Genotype {
	return &Genome{Weights: append([]float32(nil), g.Weights...)}
}

func (g *Genome) MarshalJSON() ([]byte, error) {
	type plain Genome
	return json.Marshal((*plain)(g))
}

func (g *Genome) UnmarshalJSON(data []byte) error {
	type plain Genome
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if len(g.Weights) != 0 && len(p.Weights) != len(g.Weights) {
		return fmt.Errorf("genome has %d weights, want %d", len(p.Weights), len(g.Weights))
	}
	g.Weights = p.Weights
	return nil
}
