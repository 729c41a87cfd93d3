// Package particles owns particle state storage and the per-tick compute
// stage. State lives in two SoA buffers whose roles ping-pong every tick:
// the compute stage reads "current" and writes "next", then the store swaps.
package particles

import (
	"errors"
	"log/slog"

	"github.com/pthm-cable/flux/preset"
)

// ErrAllocationFailed reports that a buffer allocation was rejected.
// The store keeps its previous buffers, so the caller can continue at the
// last good particle count.
var ErrAllocationFailed = errors.New("particle buffer allocation failed")

// Buffer holds particle state in SoA layout. One index per particle across
// all slices.
type Buffer struct {
	X, Y   []float32 // Position in pixel space
	VX, VY []float32 // Velocity in px/s
	Seed   []float32 // Stable hue seed, constant for a particle's lifetime
}

func newBuffer(n int) *Buffer {
	return &Buffer{
		X:    make([]float32, n),
		Y:    make([]float32, n),
		VX:   make([]float32, n),
		VY:   make([]float32, n),
		Seed: make([]float32, n),
	}
}

// Store manages the double-buffered particle state.
type Store struct {
	current  *Buffer
	next     *Buffer
	count    int
	maxCount int
}

// NewStore creates an empty store. maxCount caps allocations; requests above
// it fail with ErrAllocationFailed instead of exhausting memory.
func NewStore(maxCount int) *Store {
	if maxCount < 1 {
		maxCount = 1
	}
	return &Store{maxCount: maxCount}
}

// Allocate creates both buffer generations for count particles and populates
// the current one from the distribution. Previously held buffers are released.
// On failure the store is left untouched at its last good state.
func (s *Store) Allocate(count int, dist preset.DistributeFunc, w, h float32) error {
	if count < 1 || count > s.maxCount {
		return ErrAllocationFailed
	}
	if dist == nil {
		return ErrAllocationFailed
	}

	// One extra generation lives here until the old buffers are dropped below.
	cur := newBuffer(count)
	nxt := newBuffer(count)

	for i := 0; i < count; i++ {
		init := dist(i, count, w, h)
		cur.X[i] = init.X
		cur.Y[i] = init.Y
		cur.VX[i] = init.VX
		cur.VY[i] = init.VY
		cur.Seed[i] = init.Seed
	}

	s.current = cur
	s.next = nxt
	s.count = count

	slog.Debug("particle_buffers_allocated", "count", count)
	return nil
}

// Swap exchanges the roles of current and next. Called once per tick after
// the compute stage has fully written next; never call mid-integration.
func (s *Store) Swap() {
	s.current, s.next = s.next, s.current
}

// Count returns the live particle count. Exactly matches the last successful
// Allocate request.
func (s *Store) Count() int {
	return s.count
}

// Current returns the buffer holding this tick's readable state.
func (s *Store) Current() *Buffer {
	return s.current
}

// Next returns the buffer the compute stage writes into.
func (s *Store) Next() *Buffer {
	return s.next
}

// Release drops both buffer generations. The store remains usable; a later
// Allocate starts fresh.
func (s *Store) Release() {
	s.current = nil
	s.next = nil
	s.count = 0
}
