// Package engine composes the particle simulator: buffer store, compute
// stage, frame scheduler, and an attached render stage. One Engine instance
// owns all simulation state and GPU resources; the UI talks to it only
// through the setter surface and never touches buffers directly.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/flux/config"
	"github.com/pthm-cable/flux/particles"
	"github.com/pthm-cable/flux/preset"
	"github.com/pthm-cable/flux/telemetry"
)

// maxRenderFailures is the number of consecutive render errors tolerated
// before the engine stops instead of spinning.
const maxRenderFailures = 60

// Surface is the drawable target handed to Init, sized in device pixels.
type Surface struct {
	Width, Height int32
}

// Frame is the read-only view the render stage consumes each tick.
// Buf holds the state produced by this tick's compute pass.
type Frame struct {
	Buf     *particles.Buffer
	Count   int
	Params  Params
	Pointer particles.Pointer
	Tick    int64
}

// Renderer is the render stage attached at init. Nil means headless.
type Renderer interface {
	// Resize updates the render target dimensions.
	Resize(w, h int32)
	// Draw composites one frame onto the surface. Must not mutate Buf.
	Draw(frame Frame) error
	// Unload releases GPU resources. Called exactly once, from Dispose.
	Unload()
}

// Options configures a new Engine.
type Options struct {
	Renderer      Renderer // nil = headless
	PresetID      string   // empty = default preset
	ParticleCount int      // 0 = config default
	FixedDT       float64  // >0 forces a constant dt per tick
}

// Engine is the simulation facade.
type Engine struct {
	store      *particles.Store
	integrator *particles.Integrator
	sched      *Scheduler
	metrics    *telemetry.FrameMetrics
	renderer   Renderer

	params  Params
	pointer particles.Pointer
	active  *preset.Preset

	width, height float32

	fps            float64
	renderFailures int
	lastErr        error
}

// New creates an engine. No GPU resources are touched until Init.
func New(opts Options) *Engine {
	cfg := config.Cfg()

	p := preset.ByID(opts.PresetID)
	if p == nil {
		p = preset.Default()
	}

	params := defaultParams(cfg)
	params.applyOverrides(cfg, p.Overrides)
	if opts.ParticleCount > 0 {
		params.ParticleCount = clampInt(opts.ParticleCount, cfg.Simulation.MinCount, cfg.Simulation.MaxCount)
	}

	sched := NewScheduler(cfg.Derived.MaxDT32)
	if opts.FixedDT > 0 {
		sched.SetFixedDT(float32(opts.FixedDT))
	}

	return &Engine{
		store:      particles.NewStore(cfg.Simulation.MaxCount),
		integrator: particles.NewIntegrator(),
		sched:      sched,
		metrics:    telemetry.NewFrameMetrics(cfg.Telemetry.FrameWindow),
		renderer:   opts.Renderer,
		params:     params,
		active:     p,
	}
}

// Init allocates the initial buffers from the active preset and starts the
// scheduler. Fails with ErrInitializationFailed if the surface is unusable
// or the initial allocation is rejected; the engine never enters Running on
// failure.
func (e *Engine) Init(surface Surface) error {
	if e.sched.State() == StateDisposed {
		return fmt.Errorf("%w: engine is disposed", ErrInitializationFailed)
	}
	if surface.Width <= 0 || surface.Height <= 0 {
		return fmt.Errorf("%w: bad surface %dx%d", ErrInitializationFailed, surface.Width, surface.Height)
	}

	e.width = float32(surface.Width)
	e.height = float32(surface.Height)

	if err := e.store.Allocate(e.params.ParticleCount, e.active.Distribute, e.width, e.height); err != nil {
		return fmt.Errorf("%w: initial allocation of %d particles: %v", ErrInitializationFailed, e.params.ParticleCount, err)
	}

	e.sched.Start()
	slog.Info("engine_init",
		"preset", e.active.ID,
		"particles", e.params.ParticleCount,
		"surface_w", surface.Width,
		"surface_h", surface.Height,
	)
	return nil
}

// Update runs one tick: compute, render, swap. A no-op when paused or
// disposed. The render stage consumes the state the compute stage just
// produced; the swap afterwards makes it next tick's readable state.
func (e *Engine) Update() {
	dt, ok := e.sched.Tick()
	if !ok {
		return
	}
	e.step(dt)
}

// StepOnce advances a single tick while paused. Used by the single-step key.
func (e *Engine) StepOnce() {
	if e.sched.State() != StatePaused {
		return
	}
	dt := float32(1.0 / 60.0)
	if e.sched.fixedDT > 0 {
		dt = e.sched.fixedDT
	}
	e.step(dt)
}

func (e *Engine) step(dt float32) {
	e.metrics.BeginFrame()

	e.metrics.BeginPhase(telemetry.PhaseCompute)
	e.integrator.Step(e.store, e.computeParams(), e.pointer, e.width, e.height, dt)

	e.metrics.BeginPhase(telemetry.PhaseRender)
	if e.renderer != nil {
		frame := Frame{
			Buf:     e.store.Next(),
			Count:   e.store.Count(),
			Params:  e.params,
			Pointer: e.pointer,
			Tick:    e.sched.TickCount(),
		}
		if err := e.renderer.Draw(frame); err != nil {
			e.renderFailures++
			slog.Error("render_error", "error", err, "consecutive", e.renderFailures)
			if e.renderFailures >= maxRenderFailures {
				e.lastErr = fmt.Errorf("render stage failing persistently: %w", err)
				e.metrics.EndFrame()
				e.Dispose()
				return
			}
		} else {
			e.renderFailures = 0
		}
	}

	e.metrics.BeginPhase(telemetry.PhaseSwap)
	e.store.Swap()

	e.metrics.EndFrame()
	e.fps = e.metrics.FPS()
}

// computeParams snapshots the parameters the compute stage reads this tick.
func (e *Engine) computeParams() particles.Params {
	cfg := config.Cfg()
	return particles.Params{
		Gravity:     float32(e.params.Gravity),
		Friction:    float32(e.params.Friction),
		MinDistance: cfg.Derived.MinDist32,
		Attract:     e.params.PointerMode == PointerAttract,
	}
}

// Resize updates the coordinate space and render target without touching
// particle state. Particles outside the new bounds wrap back in on the next
// tick. Never fails; a resize after dispose is a no-op.
func (e *Engine) Resize(width, height int32) {
	if e.sched.State() == StateDisposed {
		return
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	e.width = float32(width)
	e.height = float32(height)
	if e.renderer != nil {
		e.renderer.Resize(width, height)
	}
}

// SetParticleCount reallocates buffers for n particles using the active
// preset's distribution, discarding prior particle state. Counts below the
// configured minimum are raised to it; counts above the maximum are passed
// through and rejected by the store with ErrAllocationFailed, in which case
// the engine keeps running at its previous count and the error is returned
// for display.
func (e *Engine) SetParticleCount(n int) error {
	if e.sched.State() == StateDisposed {
		return nil
	}
	cfg := config.Cfg()
	if n < cfg.Simulation.MinCount {
		n = cfg.Simulation.MinCount
	}
	if n == e.store.Count() {
		return nil
	}

	if err := e.store.Allocate(n, e.active.Distribute, e.width, e.height); err != nil {
		slog.Warn("reallocate_failed", "requested", n, "kept", e.store.Count(), "error", err)
		return err
	}
	e.params.ParticleCount = n
	slog.Info("reallocate", "particles", n, "preset", e.active.ID)
	return nil
}

// SetGravity updates the pointer force strength, clamped to config bounds.
func (e *Engine) SetGravity(g float64) {
	if e.sched.State() == StateDisposed {
		return
	}
	cfg := config.Cfg()
	e.params.Gravity = clamp(g, cfg.Simulation.MinGravity, cfg.Simulation.MaxGravity)
}

// SetFriction updates velocity damping, clamped to config bounds.
func (e *Engine) SetFriction(f float64) {
	if e.sched.State() == StateDisposed {
		return
	}
	cfg := config.Cfg()
	e.params.Friction = clamp(f, cfg.Simulation.MinFriction, cfg.Simulation.MaxFriction)
}

// SetTrailFade updates the trail fade strength, clamped to config bounds.
func (e *Engine) SetTrailFade(f float64) {
	if e.sched.State() == StateDisposed {
		return
	}
	cfg := config.Cfg()
	e.params.TrailFade = clamp(f, cfg.Simulation.MinTrailFade, cfg.Simulation.MaxTrailFade)
}

// SetColorMode switches the particle color mapping.
func (e *Engine) SetColorMode(m ColorMode) {
	if e.sched.State() == StateDisposed {
		return
	}
	if m < ColorRainbow || m > ColorEmber {
		m = ColorRainbow
	}
	e.params.ColorMode = m
}

// SetPointerMode switches between attraction and repulsion.
func (e *Engine) SetPointerMode(m PointerMode) {
	if e.sched.State() == StateDisposed {
		return
	}
	if m != PointerRepel {
		m = PointerAttract
	}
	e.params.PointerMode = m
}

// SetFieldOverlay toggles the force field visualization.
func (e *Engine) SetFieldOverlay(on bool) {
	if e.sched.State() == StateDisposed {
		return
	}
	e.params.FieldOverlay = on
}

// SetPointerForce updates the pointer force state read by the next tick.
func (e *Engine) SetPointerForce(x, y float32, active bool) {
	if e.sched.State() == StateDisposed {
		return
	}
	e.pointer = particles.Pointer{X: x, Y: y, Active: active}
}

// SetPreset switches the active preset: its parameter overrides are applied
// and buffers are re-seeded from its distribution at the current count.
// Unknown ids fall back to the default preset.
func (e *Engine) SetPreset(id string) error {
	if e.sched.State() == StateDisposed {
		return nil
	}
	p := preset.ByID(id)
	if p == nil {
		p = preset.Default()
	}
	e.active = p
	e.params.applyOverrides(config.Cfg(), p.Overrides)
	return e.Reset(0)
}

// Reset re-applies the active preset's distribution, optionally at a new
// count (count <= 0 keeps the current one). Prior particle state is
// discarded.
func (e *Engine) Reset(count int) error {
	if e.sched.State() == StateDisposed {
		return nil
	}
	if count <= 0 {
		count = e.store.Count()
	}
	cfg := config.Cfg()
	if count < cfg.Simulation.MinCount {
		count = cfg.Simulation.MinCount
	}

	if err := e.store.Allocate(count, e.active.Distribute, e.width, e.height); err != nil {
		slog.Warn("reset_failed", "requested", count, "kept", e.store.Count(), "error", err)
		return err
	}
	e.params.ParticleCount = count
	return nil
}

// Pause suspends ticking; Resume continues it. Both are no-ops outside
// their valid source state.
func (e *Engine) Pause()  { e.sched.Pause() }
func (e *Engine) Resume() { e.sched.Resume() }

// TogglePause flips between Running and Paused and reports whether the
// engine is now paused.
func (e *Engine) TogglePause() bool {
	if e.sched.State() == StatePaused {
		e.sched.Resume()
		return false
	}
	e.sched.Pause()
	return e.sched.State() == StatePaused
}

// Dispose tears the engine down: no tick begins afterwards, in-flight
// compute workers are drained before buffers are released, and GPU
// resources are unloaded exactly once. Idempotent from any state.
func (e *Engine) Dispose() {
	if e.sched.State() == StateDisposed {
		return
	}
	e.sched.Dispose()

	// Wait for compute workers before dropping the buffers they write into
	e.integrator.Stop()
	e.store.Release()

	if e.renderer != nil {
		e.renderer.Unload()
		e.renderer = nil
	}
	slog.Info("engine_disposed")
}

// Disposed reports whether Dispose has run.
func (e *Engine) Disposed() bool {
	return e.sched.State() == StateDisposed
}

// Paused reports whether the scheduler is paused.
func (e *Engine) Paused() bool {
	return e.sched.State() == StatePaused
}

// Params returns a copy of the current parameters for display.
func (e *Engine) Params() Params {
	return e.params
}

// ActivePreset returns the id of the active preset.
func (e *Engine) ActivePreset() string {
	return e.active.ID
}

// Count returns the live particle count.
func (e *Engine) Count() int {
	return e.store.Count()
}

// FPS returns the rolling frames-per-second estimate, updated once per tick.
func (e *Engine) FPS() float64 {
	return e.fps
}

// Tick returns the number of completed ticks.
func (e *Engine) Tick() int64 {
	return e.sched.TickCount()
}

// Metrics exposes the frame metrics collector for perf logging and CSV
// output.
func (e *Engine) Metrics() *telemetry.FrameMetrics {
	return e.metrics
}

// Err returns the error that stopped the engine, if any.
func (e *Engine) Err() error {
	return e.lastErr
}

// Snapshot copies particle positions into the given slices for inspection.
// Test and debug hook; slices are grown as needed.
func (e *Engine) Snapshot(xs, ys []float32) ([]float32, []float32) {
	cur := e.store.Current()
	if cur == nil {
		return xs[:0], ys[:0]
	}
	xs = append(xs[:0], cur.X...)
	ys = append(ys[:0], cur.Y...)
	return xs, ys
}
