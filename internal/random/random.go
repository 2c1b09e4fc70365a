package random

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
	"sync/atomic"
)

const golden = 0x9e3779b97f4a7c15

// Source hands out seeds for per-task random engines.
// Seed is safe for concurrent use.
type Source struct {
	base  uint64
	state atomic.Uint64
}

// NewSource returns a deterministic seed sequence starting from seed
func NewSource(seed uint64) *Source {
	s := &Source{base: seed}
	s.state.Store(seed)
	return s
}

// NewEntropySource returns a source seeded from the operating system
func NewEntropySource() *Source {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	return NewSource(binary.LittleEndian.Uint64(buf[:]))
}

// Seed draws the next seed from the sequence (splitmix64)
func (s *Source) Seed() uint64 {
	return mix(s.state.Add(golden))
}

// Jump moves the sequence to a position that depends only on the initial
// seed and key. Draws made before the jump do not affect later ones.
func (s *Source) Jump(key int) {
	s.state.Store(Derive(s.base, key))
}

// Derive mixes a phase seed with a task index, so parallel tasks get
// independent engines that do not depend on scheduling order
func Derive(phase uint64, index int) uint64 {
	return mix(phase ^ mix(uint64(index)+golden))
}

// NewRand creates a random engine owned by a single task
func NewRand(seed uint64) *mrand.Rand {
	return mrand.New(mrand.NewPCG(seed, mix(seed)))
}

func mix(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
