package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evoarena/internal/ga"
	"evoarena/internal/genome"
	"evoarena/internal/selection"
	"evoarena/internal/tournament"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadShippedConfigs(t *testing.T) {
	cfg, err := Load("../../configs/tictactoe.yaml")
	require.NoError(t, err)
	assert.Equal(t, uint64(1337), cfg.Seed)
	assert.Equal(t, 200, cfg.Population.Size)
	assert.Equal(t, tournament.Simple, cfg.Tournament.Type)
	assert.True(t, cfg.Tournament.Rematches)
	assert.Equal(t, selection.TruncationKind, cfg.Selection.Type)
	assert.Equal(t, 10.0, cfg.Selection.ElitePercentage)
	assert.Equal(t, 32, cfg.Genome.Hidden1)
	assert.Equal(t, 10, cfg.Store.CheckpointEvery)

	ini, err := Load("../../configs/tictactoe_swiss.ini")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), ini.Seed)
	assert.Equal(t, 100, ini.Generations)
	assert.Equal(t, tournament.Swiss, ini.Tournament.Type)
	assert.Equal(t, 12, ini.Tournament.Rounds)
	assert.Equal(t, selection.RouletteKind, ini.Selection.Type)
	assert.Equal(t, 0.25, ini.Selection.EliteMinFitness)
	assert.Equal(t, 0.1, ini.Selection.MinFitness)
	assert.Equal(t, genome.PrefAverage, ini.Genome.Operators().Crossover)
	assert.Equal(t, "debug", ini.Logging.Level)
	assert.Equal(t, ":9090", ini.Metrics.Listen)
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(write(t, "min.yaml", "seed: 3\n"))
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Generations)
	assert.Equal(t, 100, cfg.Population.Size)
	assert.Equal(t, tournament.Simple, cfg.Tournament.Type)
	assert.Equal(t, 10, cfg.Tournament.EvalGames)
	assert.Equal(t, selection.TruncationKind, cfg.Selection.Type)
	assert.Equal(t, 16, cfg.Genome.Hidden1)
	assert.Equal(t, "mix", cfg.Genome.Crossover)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "runs/run.csv", cfg.Logging.CSVPath)
}

func TestValidation(t *testing.T) {
	cases := map[string]string{
		"elite percentage":  "selection:\n  elite_percentage: 150\n",
		"mutation chance":   "selection:\n  elite_mutation_chance: 2\n",
		"selection type":    "selection:\n  type: lottery\n",
		"min fitness":       "selection:\n  type: roulette\n  min_fitness: -1\n",
		"tournament type":   "tournament:\n  type: knockout\n",
		"odd swiss":         "population:\n  size: 7\ntournament:\n  type: swiss\n",
		"negative games":    "tournament:\n  eval_games: -1\n",
		"crossover":         "genome:\n  crossover: blend\n",
		"negative workers":  "eval:\n  workers: -2\n",
		"single individual": "population:\n  size: 1\n",
	}
	for name, content := range cases {
		_, err := Load(write(t, "bad.yaml", content))
		assert.ErrorIs(t, err, ga.ErrInvalidConfig, name)
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(write(t, "broken.yaml", "population: [\n"))
	assert.Error(t, err)

	_, err = Load(write(t, "broken.ini", "[population\nsize = 1\n"))
	assert.Error(t, err)
}
