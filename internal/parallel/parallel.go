package parallel

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
)

// ErrNested is returned when ForEach is called while the pool is already
// running a loop (for example from inside a task)
var ErrNested = errors.New("parallel: nested or concurrent ForEach on the same pool")

// TaskError records the failure of a single index
type TaskError struct {
	Index int
	Err   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %d: %v", e.Index, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// Pool runs index-parameterized loops on a bounded number of goroutines
type Pool struct {
	workers int
	active  atomic.Bool
}

// New creates a pool; workers <= 0 uses one worker per CPU
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// Workers returns the concurrency bound
func (p *Pool) Workers() int {
	return p.workers
}

// ForEach calls task exactly once for every index in [0, count) and waits
// for all of them. Indices run in no particular order. Errors and panics
// are collected per index and returned together once every task finished.
func (p *Pool) ForEach(count int, task func(index int) error) error {
	if count < 0 {
		panic(fmt.Sprintf("parallel: negative count %d", count))
	}
	if count == 0 {
		return nil
	}
	if !p.active.CompareAndSwap(false, true) {
		return ErrNested
	}
	defer p.active.Store(false)

	workers := min(p.workers, count)
	if workers == 1 {
		var errs []error
		for i := 0; i < count; i++ {
			if err := run(i, task); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	wp := pool.New().WithErrors().WithMaxGoroutines(workers)
	for i := 0; i < count; i++ {
		wp.Go(func() error {
			return run(i, task)
		})
	}
	return wp.Wait()
}

func run(index int, task func(int) error) error {
	var (
		pc  panics.Catcher
		err error
	)
	pc.Try(func() { err = task(index) })
	if r := pc.Recovered(); r != nil {
		// keep error panics (precondition violations) matchable with errors.Is
		if v, ok := r.Value.(error); ok {
			err = fmt.Errorf("panic: %w", v)
		} else {
			err = r.AsError()
		}
	}
	if err != nil {
		return &TaskError{Index: index, Err: err}
	}
	return nil
}
