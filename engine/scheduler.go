package engine

import (
	"time"
)

// State is the scheduler lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateDisposed
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateDisposed:
		return "disposed"
	default:
		return "idle"
	}
}

// Scheduler owns the tick cadence: it measures inter-frame time, clamps it,
// and gates ticks on the lifecycle state. Disposal is terminal and
// idempotent; no tick can begin once the scheduler is disposed.
type Scheduler struct {
	state State

	// now is the clock; tests override it to drive deterministic runs.
	now func() time.Time

	// fixedDT, when positive, replaces measured frame time entirely
	// (headless runs and reproducibility tests).
	fixedDT float32

	maxDT float32
	last  time.Time
	tick  int64
}

// NewScheduler creates an idle scheduler. maxDT is the upper clamp on
// measured frame time; spikes beyond it (backgrounded window, GC pauses)
// would otherwise destabilize integration.
func NewScheduler(maxDT float32) *Scheduler {
	if maxDT <= 0 {
		maxDT = 1.0 / 30.0
	}
	return &Scheduler{
		now:   time.Now,
		maxDT: maxDT,
	}
}

// SetClock overrides the wall clock. Test hook; call before Start.
func (s *Scheduler) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// SetFixedDT forces every tick to use dt seconds regardless of wall time.
// Zero restores measured timing.
func (s *Scheduler) SetFixedDT(dt float32) {
	if dt < 0 {
		dt = 0
	}
	s.fixedDT = dt
}

// Start transitions Idle to Running. Running and Paused are left unchanged;
// starting a disposed scheduler is a no-op.
func (s *Scheduler) Start() {
	if s.state == StateIdle {
		s.state = StateRunning
		s.last = time.Time{}
	}
}

// Pause suspends ticking. Only valid from Running; otherwise a no-op.
func (s *Scheduler) Pause() {
	if s.state == StateRunning {
		s.state = StatePaused
	}
}

// Resume returns from Paused to Running. The elapsed-time baseline resets
// so the pause gap never reaches integration.
func (s *Scheduler) Resume() {
	if s.state == StatePaused {
		s.state = StateRunning
		s.last = time.Time{}
	}
}

// Dispose terminates the scheduler. Safe to call from any state, any number
// of times.
func (s *Scheduler) Dispose() {
	s.state = StateDisposed
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	return s.state
}

// Running reports whether ticks may proceed.
func (s *Scheduler) Running() bool {
	return s.state == StateRunning
}

// Tick returns the clamped dt for the next tick, or ok=false when the
// scheduler is not running. The clamp is a correctness invariant: a
// one-second frame gap must never integrate as one second of physics.
func (s *Scheduler) Tick() (dt float32, ok bool) {
	if s.state != StateRunning {
		return 0, false
	}
	s.tick++

	if s.fixedDT > 0 {
		return s.fixedDT, true
	}

	now := s.now()
	if s.last.IsZero() {
		s.last = now
		// No baseline yet; assume one nominal display frame
		return minf32(1.0/60.0, s.maxDT), true
	}

	dt = float32(now.Sub(s.last).Seconds())
	s.last = now

	if dt <= 0 {
		dt = 1.0 / 60.0
	}
	if dt > s.maxDT {
		dt = s.maxDT
	}
	return dt, true
}

// TickCount returns the number of ticks issued so far.
func (s *Scheduler) TickCount() int64 {
	return s.tick
}

func minf32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
