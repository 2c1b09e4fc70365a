package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evoarena/internal/evolution"
	"evoarena/internal/ga"
)

func TestOnGeneration(t *testing.T) {
	m := New()
	ctx := context.Background()

	for gen := 0; gen < 3; gen++ {
		require.NoError(t, m.OnGeneration(ctx, evolution.Summary{
			RunID:          "r1",
			Generation:     gen,
			Best:           0.9,
			Mean:           0.5,
			Selection:      ga.SelectionStats{Elite: 2, Crossover: 8},
			Calibration:    map[string]float64{"vs_random_player": 0.8},
			EvaluationTime: 20 * time.Millisecond,
		}))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.generation.WithLabelValues("r1")))
	assert.Equal(t, 0.9, testutil.ToFloat64(m.fitness.WithLabelValues("r1", "best")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.selection.WithLabelValues("r1", "elite")))
	assert.Equal(t, 16.0, testutil.ToFloat64(m.selection.WithLabelValues("r1", "crossover")))
	assert.Equal(t, 0.8, testutil.ToFloat64(m.calibration.WithLabelValues("r1", "vs_random_player")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.evaluation))
}

func TestPrimordialGenerationIsNotCountedAsSelection(t *testing.T) {
	m := New()
	ctx := context.Background()

	require.NoError(t, m.OnGeneration(ctx, evolution.Summary{
		RunID:     "r3",
		Selection: ga.SelectionStats{Reset: 10},
	}))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.selection.WithLabelValues("r3", "reset")))

	require.NoError(t, m.OnGeneration(ctx, evolution.Summary{
		RunID:      "r3",
		Generation: 1,
		Selection:  ga.SelectionStats{Elite: 2, Reset: 8},
	}))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.selection.WithLabelValues("r3", "reset")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.selection.WithLabelValues("r3", "elite")))
}

func TestHandler(t *testing.T) {
	m := New()
	require.NoError(t, m.OnGeneration(context.Background(), evolution.Summary{RunID: "r2", Best: 1}))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `evoarena_fitness{run="r2",stat="best"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
