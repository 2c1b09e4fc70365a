package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"evoarena/internal/ga"
	"evoarena/internal/genome"
	"evoarena/internal/selection"
	"evoarena/internal/tournament"
)

// Config is the root configuration structure
type Config struct {
	// Seed makes a run reproducible; 0 seeds from the system entropy source
	Seed        uint64 `yaml:"seed" ini:"seed"`
	Generations int    `yaml:"generations" ini:"generations"`

	Population PopulationConfig  `yaml:"population" ini:"population"`
	Tournament tournament.Config `yaml:"tournament" ini:"tournament"`
	Selection  selection.Config  `yaml:"selection" ini:"selection"`
	Genome     GenomeConfig      `yaml:"genome" ini:"genome"`
	Game       GameConfig        `yaml:"game" ini:"game"`
	Eval       EvalConfig        `yaml:"eval" ini:"eval"`
	Logging    LogConfig         `yaml:"logging" ini:"logging"`
	Store      StoreConfig       `yaml:"store" ini:"store"`
	Metrics    MetricsConfig     `yaml:"metrics" ini:"metrics"`
}

// PopulationConfig defines the population size
type PopulationConfig struct {
	Size int `yaml:"size" ini:"size"`
}

// GenomeConfig defines the network architecture and genetic operators
type GenomeConfig struct {
	Hidden1      int     `yaml:"hidden1" ini:"hidden1"`
	Hidden2      int     `yaml:"hidden2" ini:"hidden2"`
	Crossover    string  `yaml:"crossover" ini:"crossover"` // mix|split|pref_average|uniform
	MutationRate float64 `yaml:"mutation_rate" ini:"mutation_rate"`
	MutationStd  float64 `yaml:"mutation_std" ini:"mutation_std"`
	ResetProb    float64 `yaml:"reset_prob" ini:"reset_prob"`
}

// Operators returns the genetic operator settings
func (g GenomeConfig) Operators() genome.Config {
	return genome.Config{
		Crossover:    genome.CrossoverOperator(g.Crossover),
		MutationRate: g.MutationRate,
		MutationStd:  g.MutationStd,
		ResetProb:    g.ResetProb,
	}
}

// GameConfig defines the game domain settings
type GameConfig struct {
	CalibrationGames int `yaml:"calibration_games" ini:"calibration_games"` // 0 disables calibration
}

// EvalConfig defines evaluation parameters
type EvalConfig struct {
	Workers int `yaml:"workers" ini:"workers"` // 0 uses one worker per CPU
}

// LogConfig defines logging parameters
type LogConfig struct {
	Level        string `yaml:"level" ini:"level"`
	CSVPath      string `yaml:"csv_path" ini:"csv_path"`
	JSONPath     string `yaml:"json_path" ini:"json_path"`
	ChampionPath string `yaml:"champion_path" ini:"champion_path"`
	Table        bool   `yaml:"table" ini:"table"`
	Progress     bool   `yaml:"progress" ini:"progress"`
}

// StoreConfig defines the run store
type StoreConfig struct {
	Path            string `yaml:"path" ini:"path"` // empty disables the store
	CheckpointEvery int    `yaml:"checkpoint_every" ini:"checkpoint_every"`
}

// MetricsConfig defines the Prometheus endpoint
type MetricsConfig struct {
	Listen string `yaml:"listen" ini:"listen"` // empty disables the endpoint
}

// Load reads a YAML or INI (by extension) config file, applies defaults and validates it
func Load(path string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".cfg":
		cfg, err = loadINI(path)
	default:
		cfg, err = loadYAML(path)
	}
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func loadINI(path string) (*Config, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", path, err)
	}

	cfg := &Config{}
	if err := f.Section(ini.DefaultSection).MapTo(cfg); err != nil {
		return nil, fmt.Errorf("failed to map top level keys: %w", err)
	}

	sections := []struct {
		name string
		dst  any
	}{
		{"population", &cfg.Population},
		{"tournament", &cfg.Tournament},
		{"selection", &cfg.Selection},
		{"genome", &cfg.Genome},
		{"game", &cfg.Game},
		{"eval", &cfg.Eval},
		{"logging", &cfg.Logging},
		{"store", &cfg.Store},
		{"metrics", &cfg.Metrics},
	}
	for _, s := range sections {
		if err := f.Section(s.name).MapTo(s.dst); err != nil {
			return nil, fmt.Errorf("failed to map [%s] section: %w", s.name, err)
		}
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Generations == 0 {
		cfg.Generations = 100
	}
	if cfg.Population.Size == 0 {
		cfg.Population.Size = 100
	}
	if cfg.Tournament.Type == "" {
		cfg.Tournament.Type = tournament.Simple
	}
	if cfg.Tournament.EvalGames == 0 {
		cfg.Tournament.EvalGames = 10
	}
	if cfg.Tournament.Rounds == 0 {
		cfg.Tournament.Rounds = 10
	}
	if cfg.Selection.Type == "" {
		cfg.Selection.Type = selection.TruncationKind
	}
	if cfg.Genome.Hidden1 == 0 {
		cfg.Genome.Hidden1 = 16
	}
	defaults := genome.DefaultConfig()
	if cfg.Genome.Crossover == "" {
		cfg.Genome.Crossover = string(defaults.Crossover)
	}
	if cfg.Genome.MutationRate == 0 {
		cfg.Genome.MutationRate = defaults.MutationRate
	}
	if cfg.Genome.MutationStd == 0 {
		cfg.Genome.MutationStd = defaults.MutationStd
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.CSVPath == "" {
		cfg.Logging.CSVPath = "runs/run.csv"
	}
	if cfg.Logging.JSONPath == "" {
		cfg.Logging.JSONPath = "runs/run.jsonl"
	}
	if cfg.Logging.ChampionPath == "" {
		cfg.Logging.ChampionPath = "artifacts/champion.json"
	}
}

// Validate checks every section
func (c *Config) Validate() error {
	if c.Generations < 0 {
		return ga.InvalidConfig("generations", "must not be negative, got %d", c.Generations)
	}
	if c.Population.Size <= 0 {
		return ga.InvalidConfig("population.size", "must be positive, got %d", c.Population.Size)
	}
	if err := c.Tournament.Validate(); err != nil {
		return err
	}
	if c.Tournament.Type == tournament.Swiss && c.Population.Size%2 != 0 {
		return ga.InvalidConfig("population.size", "swiss tournament needs an even size, got %d", c.Population.Size)
	}
	if c.Tournament.Type != tournament.Swiss && c.Population.Size < 2 {
		return ga.InvalidConfig("population.size", "tournaments need at least 2 genotypes, got %d", c.Population.Size)
	}
	if err := c.Selection.Validate(); err != nil {
		return err
	}
	if c.Genome.Hidden1 <= 0 || c.Genome.Hidden2 < 0 {
		return ga.InvalidConfig("genome.hidden", "invalid layer sizes %d, %d", c.Genome.Hidden1, c.Genome.Hidden2)
	}
	if err := c.Genome.Operators().Validate(); err != nil {
		return err
	}
	if c.Game.CalibrationGames < 0 {
		return ga.InvalidConfig("game.calibration_games", "must not be negative, got %d", c.Game.CalibrationGames)
	}
	if c.Eval.Workers < 0 {
		return ga.InvalidConfig("eval.workers", "must not be negative, got %d", c.Eval.Workers)
	}
	if c.Store.CheckpointEvery < 0 {
		return ga.InvalidConfig("store.checkpoint_every", "must not be negative, got %d", c.Store.CheckpointEvery)
	}
	return nil
}
