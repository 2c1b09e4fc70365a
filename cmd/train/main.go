package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"

	"evoarena/internal/config"
	"evoarena/internal/evolution"
	"evoarena/internal/genome"
	"evoarena/internal/logging"
	"evoarena/internal/metrics"
	"evoarena/internal/parallel"
	"evoarena/internal/progress"
	"evoarena/internal/random"
	"evoarena/internal/selection"
	"evoarena/internal/store"
	"evoarena/internal/tictactoe"
	"evoarena/internal/tournament"
)

func main() {
	configPath := flag.String("config", "configs/tictactoe.yaml", "path to config file (.yaml or .ini)")
	generations := flag.Int("generations", 0, "number of generations to run (overrides the config)")
	resume := flag.String("resume", "", "run id to resume from its latest checkpoint")
	flag.Parse()

	if err := run(*configPath, *generations, *resume); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, generations int, resume string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if generations > 0 {
		cfg.Generations = generations
	}

	logger := logging.New(cfg.Logging.Level, os.Stderr)
	slog.SetDefault(logger)

	runID := resume
	if runID == "" {
		runID = uuid.NewString()
	}

	seeds := random.NewEntropySource()
	if cfg.Seed != 0 {
		seeds = random.NewSource(cfg.Seed)
	}
	pool := parallel.New(cfg.Eval.Workers)

	var (
		sink   progress.Sink = progress.Nop{}
		pretty *progress.Pretty
	)
	if cfg.Logging.Progress {
		pretty = progress.NewPretty(os.Stdout)
		sink = pretty
	}

	shape := tictactoe.Shape(cfg.Genome.Hidden1, cfg.Genome.Hidden2)
	rules, err := tictactoe.NewRules(shape)
	if err != nil {
		return err
	}
	ops, err := genome.NewOperators(shape.GenomeSize(), cfg.Genome.Operators())
	if err != nil {
		return err
	}
	tour, err := tournament.New(cfg.Tournament, tournament.Options{
		Pool:     pool,
		Seeds:    seeds,
		Progress: sink,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	sel, err := selection.New(cfg.Selection, selection.Options{
		Pool:   pool,
		Seeds:  seeds,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	runLog, err := logging.NewRunLog(cfg.Logging.CSVPath, cfg.Logging.JSONPath, resume != "")
	if err != nil {
		return fmt.Errorf("creating run log: %w", err)
	}
	defer runLog.Close()

	opts := evolution.Options{
		RunID:     runID,
		Seeds:     seeds,
		Progress:  sink,
		Logger:    logger,
		Observers: []evolution.Observer{runLog},
	}

	table := &evolution.Table{}
	if cfg.Logging.Table {
		opts.Observers = append(opts.Observers, table)
	}

	var st *store.Store
	if cfg.Store.Path != "" {
		st, err = store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		opts.Observers = append(opts.Observers, st)
		opts.Checkpoints = st
		opts.CheckpointEvery = cfg.Store.CheckpointEvery
	}

	if cfg.Metrics.Listen != "" {
		m := metrics.New()
		opts.Observers = append(opts.Observers, m)
		ln, err := net.Listen("tcp", cfg.Metrics.Listen)
		if err != nil {
			return fmt.Errorf("metrics endpoint: %w", err)
		}
		stopMetrics := serveMetrics(logger, ln, m.Handler(), 5*time.Second)
		defer stopMetrics()
	}

	if cfg.Game.CalibrationGames > 0 {
		cal, err := tictactoe.NewCalibrator(rules, cfg.Game.CalibrationGames, cfg.Tournament.Rematches, seeds)
		if err != nil {
			return err
		}
		opts.Calibrator = cal
	}

	evo, err := evolution.New(cfg.Population.Size, ops, tour, rules, sel, opts)
	if err != nil {
		return err
	}

	remaining := cfg.Generations
	if resume != "" {
		if st == nil {
			return errors.New("resuming needs store.path in the config")
		}
		gen, records, err := st.LatestCheckpoint(resume)
		if err != nil {
			return fmt.Errorf("resuming %s: %w", resume, err)
		}
		if err := evo.Restore(gen, records); err != nil {
			return err
		}
		remaining = max(0, cfg.Generations-gen)
	}

	logger.Info("starting evolution",
		"run", runID,
		"config", configPath,
		"population", cfg.Population.Size,
		"tournament", cfg.Tournament.Type,
		"genome_size", shape.GenomeSize(),
		"workers", pool.Workers(),
		"generations", remaining)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	last, err := evo.Run(ctx, remaining)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Warn("interrupted, stopping after the current generation", "run", runID)
	case err != nil:
		return err
	}

	if pretty != nil {
		pretty.Stop()
	}
	if cfg.Logging.Table {
		table.Render(os.Stdout)
	}

	if last.Size == 0 {
		logger.Warn("no generation evaluated", "run", runID)
		return nil
	}
	champion := logging.NewChampion(last, cfg.Genome.Hidden1, cfg.Genome.Hidden2)
	if err := logging.SaveChampion(cfg.Logging.ChampionPath, champion); err != nil {
		return fmt.Errorf("saving champion: %w", err)
	}

	logger.Info("evolution complete",
		"run", runID,
		"generation", last.Generation,
		"best", last.Best,
		"calibration", last.Calibration,
		"elapsed", time.Since(start),
		"champion", cfg.Logging.ChampionPath)
	return nil
}

// serveMetrics serves h on ln until the returned function is called
func serveMetrics(logger *slog.Logger, ln net.Listener, h http.Handler, timeout time.Duration) (stop func()) {
	srv := &http.Server{Handler: h}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics endpoint failed", "err", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("metrics endpoint shutdown failed", "err", err)
		}
	}
}
