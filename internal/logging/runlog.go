package logging

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"evoarena/internal/evolution"
	"evoarena/internal/ga"
)

// RunLog writes one CSV row and one JSON line per generation
type RunLog struct {
	mu        sync.Mutex
	csvFile   *os.File
	csvWriter *csv.Writer
	jsonFile  *os.File
}

var header = []string{
	"generation", "best_fitness", "median_fitness", "mean_fitness", "worst_fitness", "stddev_fitness",
	"elite", "crossover", "mutate_only", "reset", "evaluation_ms",
}

// NewRunLog creates the log files, truncating existing ones unless appending
func NewRunLog(csvPath, jsonPath string, appending bool) (*RunLog, error) {
	for _, p := range []string{csvPath, jsonPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return nil, err
		}
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appending {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	csvFile, err := os.OpenFile(csvPath, flags, 0644)
	if err != nil {
		return nil, err
	}
	l := &RunLog{csvFile: csvFile, csvWriter: csv.NewWriter(csvFile)}

	info, err := csvFile.Stat()
	if err != nil {
		l.Close()
		return nil, err
	}
	if info.Size() == 0 {
		if err := l.csvWriter.Write(header); err != nil {
			l.Close()
			return nil, err
		}
		l.csvWriter.Flush()
	}

	l.jsonFile, err = os.OpenFile(jsonPath, flags, 0644)
	if err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}

// Close closes all log files
func (l *RunLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var err error
	if l.csvWriter != nil {
		l.csvWriter.Flush()
		err = l.csvWriter.Error()
	}
	if l.csvFile != nil {
		if cerr := l.csvFile.Close(); err == nil {
			err = cerr
		}
	}
	if l.jsonFile != nil {
		if cerr := l.jsonFile.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// OnGeneration logs a generation summary
func (l *RunLog) OnGeneration(_ context.Context, s evolution.Summary) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	row := []string{
		strconv.Itoa(s.Generation),
		fmt.Sprintf("%.4f", s.Best),
		fmt.Sprintf("%.4f", s.Median),
		fmt.Sprintf("%.4f", s.Mean),
		fmt.Sprintf("%.4f", s.Worst),
		fmt.Sprintf("%.4f", s.StdDev),
		strconv.Itoa(s.Selection.Elite),
		strconv.Itoa(s.Selection.Crossover),
		strconv.Itoa(s.Selection.MutateOnly),
		strconv.Itoa(s.Selection.Reset),
		strconv.FormatInt(s.EvaluationTime.Milliseconds(), 10),
	}
	if err := l.csvWriter.Write(row); err != nil {
		return err
	}
	l.csvWriter.Flush()
	if err := l.csvWriter.Error(); err != nil {
		return err
	}

	// the champion genotype goes to the store, keep the lines small
	line := s
	line.Champion.Genotype = nil
	data, err := json.Marshal(line)
	if err != nil {
		return err
	}
	_, err = l.jsonFile.Write(append(data, '\n'))
	return err
}

// Champion is the JSON file format of a saved champion
type Champion struct {
	RunID      string             `json:"run_id,omitempty"`
	Generation int                `json:"generation"`
	Fitness    float64            `json:"fitness"`
	Hidden1    int                `json:"hidden1"`
	Hidden2    int                `json:"hidden2"`
	Genealogy  ga.Genealogy       `json:"genealogy"`
	Genotype   json.RawMessage    `json:"genotype"`
	Calibrated map[string]float64 `json:"calibration,omitempty"`
}

// NewChampion builds the champion file of a generation summary
func NewChampion(s evolution.Summary, hidden1, hidden2 int) Champion {
	return Champion{
		RunID:      s.RunID,
		Generation: s.Generation,
		Fitness:    s.Champion.Fitness,
		Hidden1:    hidden1,
		Hidden2:    hidden2,
		Genealogy:  s.Champion.Genealogy,
		Genotype:   s.Champion.Genotype,
		Calibrated: s.Calibration,
	}
}

// SaveChampion saves the champion to a file
func SaveChampion(path string, c Champion) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadChampion loads a champion from a file
func LoadChampion(path string) (Champion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Champion{}, err
	}
	var c Champion
	if err := json.Unmarshal(data, &c); err != nil {
		return Champion{}, fmt.Errorf("load champion %s: %w", path, err)
	}
	return c, nil
}
