package nn

import (
	"fmt"
)

// Shape describes the layers of an MLP
type Shape struct {
	Inputs  int `yaml:"inputs" ini:"inputs"`
	Hidden1 int `yaml:"hidden1" ini:"hidden1"`
	Hidden2 int `yaml:"hidden2" ini:"hidden2"` // 0 means no second hidden layer
	Outputs int `yaml:"outputs" ini:"outputs"`
}

// Validate reports layer sizes that cannot build a network
func (s Shape) Validate() error {
	if s.Inputs <= 0 || s.Hidden1 <= 0 || s.Outputs <= 0 || s.Hidden2 < 0 {
		return fmt.Errorf("nn: invalid shape %+v", s)
	}
	return nil
}

// GenomeSize returns the total number of weights (including biases)
func (s Shape) GenomeSize() int {
	// Input -> Hidden1 (weights + biases)
	size := (s.Inputs + 1) * s.Hidden1
	last := s.Hidden1
	if s.Hidden2 > 0 {
		size += (s.Hidden1 + 1) * s.Hidden2
		last = s.Hidden2
	}
	return size + (last+1)*s.Outputs
}

// MLP is a feedforward network with float32 weights.
// An MLP owns its activation buffers, so it must not be shared between goroutines.
type MLP struct {
	Shape   Shape
	Weights []float32

	// forward pass buffers
	h1  []float32
	h2  []float32
	out []float32
}

// New creates a network over a copy of weights
func New(shape Shape, weights []float32) (*MLP, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(weights) != shape.GenomeSize() {
		return nil, fmt.Errorf("nn: %d weights for shape %+v, want %d", len(weights), shape, shape.GenomeSize())
	}

	m := &MLP{
		Shape:   shape,
		Weights: append([]float32(nil), weights...),
		h1:      make([]float32, shape.Hidden1),
		out:     make([]float32, shape.Outputs),
	}
	if shape.Hidden2 > 0 {
		m.h2 = make([]float32, shape.Hidden2)
	}
	return m, nil
}

// Forward runs the network and returns the index of the largest output
func (m *MLP) Forward(input []float32) int {
	return Argmax(m.Evaluate(input))
}

// Evaluate runs the network and returns the raw outputs.
// The slice is reused by the next call.
func (m *MLP) Evaluate(input []float32) []float32 {
	offset := layer(m.Weights, 0, input, m.h1, relu)
	last := m.h1
	if m.Shape.Hidden2 > 0 {
		offset = layer(m.Weights, offset, m.h1, m.h2, relu)
		last = m.h2
	}
	// no activation on output
	layer(m.Weights, offset, last, m.out, nil)
	return m.out
}

// Outputs returns a copy of the outputs of the last Evaluate
func (m *MLP) Outputs() []float32 {
	return append([]float32(nil), m.out...)
}

// layer computes dst from src starting at weights[offset] and returns the next offset
func layer(weights []float32, offset int, src, dst []float32, activation func(float32) float32) int {
	for j := range dst {
		sum := weights[offset] // bias
		offset++
		for _, x := range src {
			sum += x * weights[offset]
			offset++
		}
		if activation != nil {
			sum = activation(sum)
		}
		dst[j] = sum
	}
	return offset
}

func relu(x float32) float32 {
	if x > 0 {
		return x
	}
	return 0
}

// Argmax returns the index of the largest value (the first one on ties)
func Argmax(vals []float32) int {
	maxIdx := 0
	maxVal := vals[0]
	for i := 1; i < len(vals); i++ {
		if vals[i] > maxVal {
			maxVal = vals[i]
			maxIdx = i
		}
	}
	return maxIdx
}
