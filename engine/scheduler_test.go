package engine

import (
	"testing"
	"time"
)

func TestSchedulerLifecycle(t *testing.T) {
	s := NewScheduler(1.0 / 30.0)

	if s.State() != StateIdle {
		t.Fatalf("expected idle, got %v", s.State())
	}
	if _, ok := s.Tick(); ok {
		t.Error("idle scheduler must not tick")
	}

	s.Start()
	if s.State() != StateRunning {
		t.Fatalf("expected running, got %v", s.State())
	}
	if _, ok := s.Tick(); !ok {
		t.Error("running scheduler must tick")
	}

	s.Pause()
	if s.State() != StatePaused {
		t.Fatalf("expected paused, got %v", s.State())
	}
	if _, ok := s.Tick(); ok {
		t.Error("paused scheduler must not tick")
	}

	s.Resume()
	if s.State() != StateRunning {
		t.Fatalf("expected running after resume, got %v", s.State())
	}

	s.Dispose()
	if s.State() != StateDisposed {
		t.Fatalf("expected disposed, got %v", s.State())
	}
	if _, ok := s.Tick(); ok {
		t.Error("disposed scheduler must not tick")
	}
}

func TestSchedulerDisposeIdempotent(t *testing.T) {
	s := NewScheduler(1.0 / 30.0)
	s.Start()
	s.Dispose()
	s.Dispose()
	s.Dispose()
	if s.State() != StateDisposed {
		t.Fatalf("expected disposed, got %v", s.State())
	}

	// Lifecycle calls after dispose are no-ops
	s.Start()
	s.Resume()
	if s.State() != StateDisposed {
		t.Errorf("disposed is terminal, got %v", s.State())
	}
}

func TestSchedulerPauseFromIdleIsNoOp(t *testing.T) {
	s := NewScheduler(1.0 / 30.0)
	s.Pause()
	if s.State() != StateIdle {
		t.Errorf("pause from idle must be a no-op, got %v", s.State())
	}
	s.Resume()
	if s.State() != StateIdle {
		t.Errorf("resume from idle must be a no-op, got %v", s.State())
	}
}

func TestSchedulerDTClamp(t *testing.T) {
	s := NewScheduler(1.0 / 30.0)

	now := time.Unix(0, 0)
	s.SetClock(func() time.Time { return now })
	s.Start()

	// First tick has no baseline and uses a nominal frame
	dt, ok := s.Tick()
	if !ok {
		t.Fatal("expected tick")
	}
	if dt <= 0 || dt > 1.0/30.0 {
		t.Errorf("first tick dt out of range: %v", dt)
	}

	// A one-second stall must clamp to maxDT, never integrate as a second
	now = now.Add(time.Second)
	dt, ok = s.Tick()
	if !ok {
		t.Fatal("expected tick")
	}
	if dt != 1.0/30.0 {
		t.Errorf("expected dt clamped to %v, got %v", 1.0/30.0, dt)
	}

	// A normal frame passes through unclamped
	now = now.Add(16 * time.Millisecond)
	dt, _ = s.Tick()
	if dt < 0.015 || dt > 0.017 {
		t.Errorf("expected ~16ms dt, got %v", dt)
	}
}

func TestSchedulerFixedDT(t *testing.T) {
	s := NewScheduler(1.0 / 30.0)
	s.SetFixedDT(1.0 / 120.0)
	s.Start()

	for i := 0; i < 10; i++ {
		dt, ok := s.Tick()
		if !ok {
			t.Fatal("expected tick")
		}
		if dt != 1.0/120.0 {
			t.Fatalf("expected fixed dt, got %v", dt)
		}
	}
	if s.TickCount() != 10 {
		t.Errorf("expected 10 ticks, got %d", s.TickCount())
	}
}

func TestSchedulerResumeResetsBaseline(t *testing.T) {
	s := NewScheduler(1.0 / 30.0)

	now := time.Unix(0, 0)
	s.SetClock(func() time.Time { return now })
	s.Start()
	s.Tick()

	now = now.Add(16 * time.Millisecond)
	s.Tick()

	// Long pause; the gap must not reach the next tick
	s.Pause()
	now = now.Add(10 * time.Second)
	s.Resume()

	dt, ok := s.Tick()
	if !ok {
		t.Fatal("expected tick after resume")
	}
	if dt > 1.0/30.0 {
		t.Errorf("pause gap leaked into dt: %v", dt)
	}
}
