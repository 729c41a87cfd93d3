package telemetry

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/stat"
)

func TestFrameMetricsBasicTiming(t *testing.T) {
	fm := NewFrameMetrics(10)

	for i := 0; i < 5; i++ {
		fm.BeginFrame()
		fm.BeginPhase(PhaseCompute)
		time.Sleep(100 * time.Microsecond)
		fm.BeginPhase(PhaseRender)
		time.Sleep(200 * time.Microsecond)
		fm.EndFrame()
	}

	stats := fm.Stats()

	if stats.AvgFrame <= 0 {
		t.Error("expected positive average frame duration")
	}
	if stats.MinFrame <= 0 || stats.MaxFrame < stats.MinFrame {
		t.Errorf("inconsistent min/max: %v / %v", stats.MinFrame, stats.MaxFrame)
	}

	if _, ok := stats.PhasePct[PhaseCompute]; !ok {
		t.Error("expected compute phase to be tracked")
	}
	if _, ok := stats.PhasePct[PhaseRender]; !ok {
		t.Error("expected render phase to be tracked")
	}
}

func TestFrameMetricsPhaseShares(t *testing.T) {
	fm := NewFrameMetrics(10)

	// The gap between the two phases must dwarf sleep granularity, or
	// scheduler overshoot drowns out the difference
	for i := 0; i < 5; i++ {
		fm.BeginFrame()
		fm.BeginPhase("fast")
		time.Sleep(time.Millisecond)
		fm.BeginPhase("slow")
		time.Sleep(20 * time.Millisecond)
		fm.EndFrame()
	}

	stats := fm.Stats()
	if stats.PhasePct["slow"] <= stats.PhasePct["fast"] {
		t.Errorf("expected slow phase share (%v%%) > fast phase share (%v%%)",
			stats.PhasePct["slow"], stats.PhasePct["fast"])
	}
}

func TestFrameMetricsRollingWindow(t *testing.T) {
	fm := NewFrameMetrics(5)

	// Overfill the window; collector must keep working
	for i := 0; i < 12; i++ {
		fm.BeginFrame()
		fm.BeginPhase(PhaseCompute)
		fm.EndFrame()
	}

	stats := fm.Stats()
	if stats.AvgFrame <= 0 {
		t.Error("expected positive average after window overfill")
	}
}

func TestFrameMetricsEmpty(t *testing.T) {
	fm := NewFrameMetrics(10)

	stats := fm.Stats()
	if stats.AvgFrame != 0 {
		t.Error("expected zero average for empty collector")
	}
	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
	if stats.FPS != 0 {
		t.Error("expected zero FPS before any frames")
	}
}

func TestFrameMetricsFPS(t *testing.T) {
	fm := NewFrameMetrics(10)

	fm.BeginFrame()
	fm.EndFrame()
	time.Sleep(16 * time.Millisecond)
	fm.BeginFrame()
	fm.EndFrame()

	stats := fm.Stats()
	if stats.FPS <= 0 {
		t.Fatal("expected positive FPS after two frames")
	}
	// 16ms spacing is roughly 60fps; allow a generous band for scheduler noise
	if stats.FPS < 20 || stats.FPS > 80 {
		t.Errorf("expected FPS between 20-80 with 16ms frames, got %v", stats.FPS)
	}
}

func TestFrameMetricsMeanMatchesGonum(t *testing.T) {
	fm := NewFrameMetrics(8)

	var secs []float64
	sleeps := []time.Duration{50, 100, 150, 200}
	for _, d := range sleeps {
		fm.BeginFrame()
		time.Sleep(d * time.Microsecond)
		fm.EndFrame()
	}
	for i := 0; i < fm.sampleCount; i++ {
		secs = append(secs, fm.samples[i].Duration.Seconds())
	}

	want := stat.Mean(secs, nil)
	got := fm.Stats().AvgFrame.Seconds()
	if math.Abs(want-got) > 1e-6 {
		t.Errorf("window mean %v != gonum mean %v", got, want)
	}
}

func TestFrameStatsToCSV(t *testing.T) {
	fm := NewFrameMetrics(4)
	fm.BeginFrame()
	fm.BeginPhase(PhaseCompute)
	time.Sleep(50 * time.Microsecond)
	fm.EndFrame()

	rec := fm.Stats().ToCSV(42, 5000)
	if rec.Tick != 42 {
		t.Errorf("expected tick 42, got %d", rec.Tick)
	}
	if rec.ParticleCnt != 5000 {
		t.Errorf("expected particle count 5000, got %d", rec.ParticleCnt)
	}
	if rec.AvgFrameUS <= 0 {
		t.Error("expected positive average frame time in CSV record")
	}
}
