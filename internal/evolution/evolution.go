// Package evolution drives the generation loop: evaluate, rank, report,
// select
package evolution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"evoarena/internal/ga"
	"evoarena/internal/progress"
	"evoarena/internal/random"
	"evoarena/internal/tournament"
)

// Observer is notified after every evaluated generation
type Observer interface {
	OnGeneration(ctx context.Context, s Summary) error
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ctx context.Context, s Summary) error

func (f ObserverFunc) OnGeneration(ctx context.Context, s Summary) error {
	return f(ctx, s)
}

// Calibrator computes reference scores for a champion
type Calibrator interface {
	Calibrate(champion ga.Genotype) (map[string]float64, error)
}

// Checkpointer persists a generation so a run can resume from it
type Checkpointer interface {
	SaveCheckpoint(ctx context.Context, runID string, generation int, records []ga.IndividualRecord) error
}

// Options carries the optional collaborators of an Evolution
type Options struct {
	RunID    string
	Seeds    *random.Source
	Progress progress.Sink
	Logger   *slog.Logger

	Observers  []Observer
	Calibrator Calibrator

	Checkpoints     Checkpointer
	CheckpointEvery int // generations between checkpoints, 0 disables them
}

// Evolution owns a population and evolves it with a tournament and a selector
type Evolution struct {
	size       int
	pop        *ga.Population
	tournament tournament.Tournament
	rules      tournament.GameRules
	selector   ga.Selector
	opts       Options

	// how the current generation was produced
	selection ga.SelectionStats
}

// New creates an Evolution for populations of size genotypes
func New(size int, ops ga.Operators, tour tournament.Tournament, rules tournament.GameRules, sel ga.Selector, opts Options) (*Evolution, error) {
	if size <= 0 {
		return nil, ga.InvalidConfig("population.size", "must be positive, got %d", size)
	}
	if opts.Seeds == nil {
		opts.Seeds = random.NewEntropySource()
	}
	if opts.Progress == nil {
		opts.Progress = progress.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.CheckpointEvery < 0 {
		return nil, ga.InvalidConfig("store.checkpoint_every", "must not be negative, got %d", opts.CheckpointEvery)
	}
	return &Evolution{
		size:       size,
		pop:        ga.NewPopulation(ops),
		tournament: tour,
		rules:      rules,
		selector:   sel,
		opts:       opts,
	}, nil
}

// Population returns the evolving population
func (e *Evolution) Population() *ga.Population {
	return e.pop
}

// Restore resumes from a checkpointed generation
func (e *Evolution) Restore(generation int, records []ga.IndividualRecord) error {
	if len(records) != e.size {
		return fmt.Errorf("restore: checkpoint has %d individuals, want %d", len(records), e.size)
	}
	if err := e.pop.Restore(generation, records); err != nil {
		return err
	}
	e.selection = ga.SelectionStats{}
	e.opts.Logger.Info("restored population", "generation", generation, "size", len(records))
	return nil
}

func (e *Evolution) initialize() {
	if e.pop.Size() > 0 {
		return
	}
	e.pop.CreatePrimordialGeneration(e.size, random.NewRand(e.opts.Seeds.Seed()))
	e.selection = ga.SelectionStats{Reset: e.size}
}

// Run evolves generations generations and returns the last summary.
// Cancellation is checked between generations only.
func (e *Evolution) Run(ctx context.Context, generations int) (Summary, error) {
	e.initialize()

	var last Summary
	for i := 0; i < generations; i++ {
		if err := ctx.Err(); err != nil {
			return last, err
		}
		s, err := e.Step(ctx)
		if err != nil {
			return last, err
		}
		last = s
	}
	return last, nil
}

// Step evaluates the current generation, reports it and creates the next one.
// After a failed Step the generation stays ranked, so the next Step skips
// the evaluation and retries reporting and selection.
func (e *Evolution) Step(ctx context.Context) (Summary, error) {
	e.initialize()
	generation := e.pop.Generation()
	// each generation draws from its own stretch of the seed sequence, so a
	// restored run continues exactly like an uninterrupted one
	e.opts.Seeds.Jump(generation)

	start := time.Now()
	if !e.pop.Ranked() {
		if err := e.tournament.EvaluatePopulation(e.pop, e.rules); err != nil {
			return Summary{}, fmt.Errorf("generation %d: %w", generation, err)
		}
		e.pop.RankGenotypes()
	}

	s, err := Summarize(e.pop)
	if err != nil {
		return Summary{}, fmt.Errorf("generation %d: summary: %w", generation, err)
	}
	s.RunID = e.opts.RunID
	s.Selection = e.selection
	s.EvaluationTime = time.Since(start)

	if e.opts.Calibrator != nil {
		stage := e.opts.Progress.BeginStage("Calibration", 1)
		s.Calibration, err = e.opts.Calibrator.Calibrate(e.pop.Champion().Genotype)
		stage.Done()
		if err != nil {
			return Summary{}, fmt.Errorf("generation %d: calibration: %w", generation, err)
		}
	}

	e.opts.Logger.Info("generation evaluated",
		"generation", s.Generation,
		"best", s.Best,
		"median", s.Median,
		"mean", s.Mean,
		"worst", s.Worst,
		"elapsed", s.EvaluationTime)

	var errs []error
	for _, o := range e.opts.Observers {
		if err := o.OnGeneration(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return s, fmt.Errorf("generation %d: observers: %w", generation, err)
	}

	stage := e.opts.Progress.BeginStage("Selection", 1)
	stats, err := e.pop.CreateNextGeneration(e.selector)
	stage.Done()
	if err != nil {
		return s, fmt.Errorf("generation %d: selection: %w", generation, err)
	}
	e.selection = stats

	if err := e.checkpoint(ctx); err != nil {
		return s, err
	}
	return s, nil
}

func (e *Evolution) checkpoint(ctx context.Context) error {
	if e.opts.Checkpoints == nil || e.opts.CheckpointEvery == 0 {
		return nil
	}
	generation := e.pop.Generation()
	if generation%e.opts.CheckpointEvery != 0 {
		return nil
	}
	records, err := e.pop.Snapshot()
	if err != nil {
		return fmt.Errorf("checkpoint generation %d: %w", generation, err)
	}
	if err := e.opts.Checkpoints.SaveCheckpoint(ctx, e.opts.RunID, generation, records); err != nil {
		return fmt.Errorf("checkpoint generation %d: %w", generation, err)
	}
	return nil
}
