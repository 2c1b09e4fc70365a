package evolution

import (
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"evoarena/internal/ga"
)

// Summary describes one evaluated generation
type Summary struct {
	RunID      string `json:"run_id"`
	Generation int    `json:"generation"`
	Size       int    `json:"size"`

	Best   float64 `json:"best"`
	Median float64 `json:"median"`
	Worst  float64 `json:"worst"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`

	Champion    ga.IndividualRecord `json:"champion"`
	Selection   ga.SelectionStats   `json:"selection"` // how this generation was produced
	Calibration map[string]float64  `json:"calibration,omitempty"`

	EvaluationTime time.Duration `json:"evaluation_time"`
}

// Summarize computes fitness statistics of a ranked population
func Summarize(pop *ga.Population) (Summary, error) {
	n := pop.Size()
	fitness := make([]float64, n)
	for i := range fitness {
		fitness[i] = pop.Fitness(i)
	}
	slices.Sort(fitness)

	champion, err := pop.Champion().Record()
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Generation: pop.Generation(),
		Size:       n,
		Best:       fitness[n-1],
		Worst:      fitness[0],
		Median:     stat.Quantile(0.5, stat.Empirical, fitness, nil),
		Mean:       stat.Mean(fitness, nil),
		Champion:   champion,
	}
	if n > 1 {
		s.StdDev = stat.StdDev(fitness, nil)
	}
	return s, nil
}
