// Package telemetry tracks frame timing for the simulator. Metrics are
// observational only; nothing here feeds back into physics.
package telemetry

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase names for one simulator tick.
const (
	PhaseCompute = "compute"
	PhaseRender  = "render"
	PhaseSwap    = "swap"
)

// FrameSample holds timing data for a single frame.
type FrameSample struct {
	Duration time.Duration
	Phases   map[string]time.Duration
}

// FrameMetrics tracks frame timings over a rolling window.
type FrameMetrics struct {
	windowSize  int
	samples     []FrameSample
	writeIndex  int
	sampleCount int

	currentPhases map[string]time.Duration
	frameStart    time.Time
	phaseStart    time.Time
	lastPhase     string

	// Wall-clock spacing between BeginFrame calls; this is what FPS is
	// derived from, not the tick's internal duration.
	lastBegin     time.Time
	frameInterval time.Duration
}

// NewFrameMetrics creates a collector averaging over windowSize frames
// (e.g. 120 for two seconds at 60fps).
func NewFrameMetrics(windowSize int) *FrameMetrics {
	if windowSize < 1 {
		windowSize = 60
	}
	return &FrameMetrics{
		windowSize:    windowSize,
		samples:       make([]FrameSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// BeginFrame starts timing a new frame.
func (m *FrameMetrics) BeginFrame() {
	now := time.Now()
	if !m.lastBegin.IsZero() {
		m.frameInterval = now.Sub(m.lastBegin)
	}
	m.lastBegin = now
	m.frameStart = now
	m.currentPhases = make(map[string]time.Duration)
	m.lastPhase = ""
}

// BeginPhase starts timing a named phase, ending the previous one.
func (m *FrameMetrics) BeginPhase(phase string) {
	now := time.Now()
	if m.lastPhase != "" {
		m.currentPhases[m.lastPhase] += now.Sub(m.phaseStart)
	}
	m.phaseStart = now
	m.lastPhase = phase
}

// EndFrame finishes the current frame and records the sample.
func (m *FrameMetrics) EndFrame() {
	now := time.Now()
	if m.lastPhase != "" {
		m.currentPhases[m.lastPhase] += now.Sub(m.phaseStart)
	}

	m.samples[m.writeIndex] = FrameSample{
		Duration: now.Sub(m.frameStart),
		Phases:   m.currentPhases,
	}
	m.writeIndex = (m.writeIndex + 1) % m.windowSize
	if m.sampleCount < m.windowSize {
		m.sampleCount++
	}
}

// FPS returns the instantaneous frames-per-second estimate from the spacing
// of the last two BeginFrame calls. Cheap enough to read every tick.
func (m *FrameMetrics) FPS() float64 {
	if m.frameInterval <= 0 {
		return 0
	}
	return float64(time.Second) / float64(m.frameInterval)
}

// FrameStats holds aggregated timing statistics over the window.
type FrameStats struct {
	FPS           float64
	AvgFrame      time.Duration
	MinFrame      time.Duration
	MaxFrame      time.Duration
	StdDevFrame   time.Duration
	FrameInterval time.Duration

	// Phase share of total frame time, in percent
	PhasePct map[string]float64
}

// Stats computes aggregated statistics over the current window.
func (m *FrameMetrics) Stats() FrameStats {
	var fps float64
	if m.frameInterval > 0 {
		fps = float64(time.Second) / float64(m.frameInterval)
	}

	if m.sampleCount == 0 {
		return FrameStats{
			FPS:           fps,
			FrameInterval: m.frameInterval,
			PhasePct:      make(map[string]float64),
		}
	}

	durations := make([]float64, m.sampleCount)
	var minFrame, maxFrame time.Duration
	phaseSum := make(map[string]time.Duration)
	var total time.Duration

	for i := 0; i < m.sampleCount; i++ {
		s := m.samples[i]
		durations[i] = s.Duration.Seconds()
		total += s.Duration

		if i == 0 || s.Duration < minFrame {
			minFrame = s.Duration
		}
		if s.Duration > maxFrame {
			maxFrame = s.Duration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	mean, std := stat.MeanStdDev(durations, nil)
	if m.sampleCount < 2 {
		std = 0
	}

	phasePct := make(map[string]float64)
	if total > 0 {
		for phase, sum := range phaseSum {
			phasePct[phase] = float64(sum) / float64(total) * 100
		}
	}

	return FrameStats{
		FPS:           fps,
		AvgFrame:      time.Duration(mean * float64(time.Second)),
		MinFrame:      minFrame,
		MaxFrame:      maxFrame,
		StdDevFrame:   time.Duration(std * float64(time.Second)),
		FrameInterval: m.frameInterval,
		PhasePct:      phasePct,
	}
}

// LogStats emits a perf event for the current window.
func (s FrameStats) LogStats() {
	attrs := []any{
		"avg_frame_us", s.AvgFrame.Microseconds(),
		"min_frame_us", s.MinFrame.Microseconds(),
		"max_frame_us", s.MaxFrame.Microseconds(),
		"stddev_frame_us", s.StdDevFrame.Microseconds(),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, phase := range []string{PhaseCompute, PhaseRender, PhaseSwap} {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// FrameStatsCSV is a flat struct for CSV export of frame stats.
type FrameStatsCSV struct {
	Tick        int64   `csv:"tick"`
	FPS         float64 `csv:"fps"`
	AvgFrameUS  int64   `csv:"avg_frame_us"`
	MinFrameUS  int64   `csv:"min_frame_us"`
	MaxFrameUS  int64   `csv:"max_frame_us"`
	StdDevUS    int64   `csv:"stddev_frame_us"`
	ComputePct  float64 `csv:"compute_pct"`
	RenderPct   float64 `csv:"render_pct"`
	SwapPct     float64 `csv:"swap_pct"`
	ParticleCnt int     `csv:"particles"`
}

// ToCSV converts FrameStats to a flat CSV-friendly record.
func (s FrameStats) ToCSV(tick int64, particles int) FrameStatsCSV {
	return FrameStatsCSV{
		Tick:        tick,
		FPS:         s.FPS,
		AvgFrameUS:  s.AvgFrame.Microseconds(),
		MinFrameUS:  s.MinFrame.Microseconds(),
		MaxFrameUS:  s.MaxFrame.Microseconds(),
		StdDevUS:    s.StdDevFrame.Microseconds(),
		ComputePct:  s.PhasePct[PhaseCompute],
		RenderPct:   s.PhasePct[PhaseRender],
		SwapPct:     s.PhasePct[PhaseSwap],
		ParticleCnt: particles,
	}
}
