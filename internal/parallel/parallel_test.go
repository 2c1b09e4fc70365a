package parallel

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachZeroCount(t *testing.T) {
	p := New(4)
	calls := 0
	err := p.ForEach(0, func(int) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestForEachVisitsEveryIndexOnce(t *testing.T) {
	for _, workers := range []int{1, 3, 16} {
		p := New(workers)
		const n = 1000
		hits := make([]int32, n)
		err := p.ForEach(n, func(i int) error {
			atomic.AddInt32(&hits[i], 1)
			return nil
		})
		require.NoError(t, err)
		for i, h := range hits {
			require.Equal(t, int32(1), h, "index %d (workers=%d)", i, workers)
		}
	}
}

func TestForEachBoundsConcurrency(t *testing.T) {
	p := New(3)
	var running, peak atomic.Int32
	err := p.ForEach(200, func(int) error {
		cur := running.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		running.Add(-1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestForEachCollectsErrorsAfterBarrier(t *testing.T) {
	p := New(4)
	boom := errors.New("boom")
	results := make([]int, 50)

	err := p.ForEach(len(results), func(i int) error {
		if i%10 == 3 {
			return boom
		}
		results[i] = i * i
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var te *TaskError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 3, te.Index%10)

	for i, r := range results {
		if i%10 != 3 {
			assert.Equal(t, i*i, r)
		}
	}
}

func TestForEachRecoversPanics(t *testing.T) {
	p := New(2)
	var done atomic.Int32
	err := p.ForEach(10, func(i int) error {
		if i == 7 {
			panic("bad genotype")
		}
		done.Add(1)
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad genotype")
	assert.Equal(t, int32(9), done.Load())

	var te *TaskError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 7, te.Index)
}

func TestForEachRejectsNesting(t *testing.T) {
	p := New(2)
	var inner error
	err := p.ForEach(1, func(int) error {
		inner = p.ForEach(1, func(int) error { return nil })
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, inner, ErrNested)

	// the pool is usable again once the outer loop returned
	assert.NoError(t, p.ForEach(2, func(int) error { return nil }))
}

func TestNegativeCountPanics(t *testing.T) {
	assert.Panics(t, func() {
		_ = New(1).ForEach(-1, func(int) error { return nil })
	})
}

func TestDefaultWorkers(t *testing.T) {
	assert.Positive(t, New(0).Workers())
}

func TestForEachKeepsPanicErrors(t *testing.T) {
	sentinel := errors.New("contract broken")
	err := New(2).ForEach(4, func(i int) error {
		if i == 2 {
			panic(sentinel)
		}
		return nil
	})
	assert.ErrorIs(t, err, sentinel)
}
