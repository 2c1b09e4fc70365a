package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenomeSize(t *testing.T) {
	assert.Equal(t, (3+1)*4+(4+1)*2, Shape{Inputs: 3, Hidden1: 4, Outputs: 2}.GenomeSize())
	assert.Equal(t, (3+1)*4+(4+1)*5+(5+1)*2, Shape{Inputs: 3, Hidden1: 4, Hidden2: 5, Outputs: 2}.GenomeSize())
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New(Shape{Inputs: 0, Hidden1: 1, Outputs: 1}, nil)
	assert.Error(t, err)

	_, err = New(Shape{Inputs: 1, Hidden1: 1, Outputs: 1}, make([]float32, 3))
	assert.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	shape := Shape{Inputs: 2, Hidden1: 2, Outputs: 2}
	weights := []float32{
		// hidden 0: bias, w0, w1
		0, 1, 0,
		// hidden 1
		-1, 0, 1,
		// output 0: bias, h0, h1
		0.5, 1, 0,
		// output 1
		0, 0, 2,
	}
	m, err := New(shape, weights)
	require.NoError(t, err)

	// h = relu(1, 3-1) = (1, 2); out = (1.5, 4)
	out := m.Evaluate([]float32{1, 3})
	assert.InDeltaSlice(t, []float32{1.5, 4}, out, 1e-6)
	assert.Equal(t, 1, m.Forward([]float32{1, 3}))

	// relu clips the second hidden unit; out = (4, 0)
	assert.Equal(t, 0, m.Forward([]float32{3.5, 0}))
	assert.InDeltaSlice(t, []float32{4, 0}, m.Outputs(), 1e-6)

	// the network keeps its own copy
	weights[0] = 100
	assert.Equal(t, float32(0), m.Weights[0])
}

func TestSecondHiddenLayer(t *testing.T) {
	shape := Shape{Inputs: 1, Hidden1: 1, Hidden2: 1, Outputs: 1}
	m, err := New(shape, []float32{0, 2, 1, 3, 0, -1})
	require.NoError(t, err)

	// h1 = 2x, h2 = 1 + 3*h1, out = -h2
	assert.InDeltaSlice(t, []float32{-7}, m.Evaluate([]float32{1}), 1e-6)
}

func TestArgmax(t *testing.T) {
	assert.Equal(t, 2, Argmax([]float32{1, 2, 3}))
	assert.Equal(t, 0, Argmax([]float32{5, 5, 1}))
}
