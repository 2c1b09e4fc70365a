// Package progress reports the advancement of long-running evolution stages.
// Reports are advisory and never influence results.
package progress

import (
	"sync"
	"sync/atomic"
)

// Sink receives stage notifications
type Sink interface {
	// BeginStage starts a stage of total units
	BeginStage(name string, total int) Stage
}

// Stage is one running stage. Report may be called concurrently.
type Stage interface {
	Report(units int)
	Done()
}

// Nop discards all progress
type Nop struct{}

func (Nop) BeginStage(string, int) Stage { return nopStage{} }

type nopStage struct{}

func (nopStage) Report(int) {}
func (nopStage) Done()      {}

// Counter keeps thread-safe counters an observer can poll
type Counter struct {
	mu        sync.Mutex
	stage     string
	total     atomic.Int64
	completed atomic.Int64
	stages    atomic.Int64
	finished  atomic.Int64
}

func (c *Counter) BeginStage(name string, total int) Stage {
	c.mu.Lock()
	c.stage = name
	c.mu.Unlock()

	c.total.Store(int64(total))
	c.completed.Store(0)
	c.stages.Add(1)
	return &counterStage{c: c}
}

// Stage returns the name of the most recent stage
func (c *Counter) Stage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage
}

// Total returns the size of the most recent stage
func (c *Counter) Total() int64 { return c.total.Load() }

// Completed returns the units reported in the most recent stage
func (c *Counter) Completed() int64 { return c.completed.Load() }

// Stages returns the number of stages started
func (c *Counter) Stages() int64 { return c.stages.Load() }

// Finished returns the number of stages marked done
func (c *Counter) Finished() int64 { return c.finished.Load() }

type counterStage struct {
	c    *Counter
	once sync.Once
}

func (s *counterStage) Report(units int) {
	s.c.completed.Add(int64(units))
}

func (s *counterStage) Done() {
	s.once.Do(func() { s.c.finished.Add(1) })
}
