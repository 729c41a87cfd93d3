package engine

import (
	"errors"
	"os"
	"testing"

	"github.com/pthm-cable/flux/config"
)

func TestMain(m *testing.M) {
	config.MustInit("")
	os.Exit(m.Run())
}

// nullRenderer counts draw calls and can be told to fail.
type nullRenderer struct {
	draws    int
	unloads  int
	resizes  int
	failWith error
}

func (r *nullRenderer) Resize(w, h int32) { r.resizes++ }
func (r *nullRenderer) Draw(frame Frame) error {
	r.draws++
	return r.failWith
}
func (r *nullRenderer) Unload() { r.unloads++ }

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.FixedDT == 0 {
		opts.FixedDT = 1.0 / 60.0
	}
	e := New(opts)
	if err := e.Init(Surface{Width: 1280, Height: 720}); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(e.Dispose)
	return e
}

func TestEngineInitBadSurface(t *testing.T) {
	e := New(Options{})
	err := e.Init(Surface{Width: 0, Height: 720})
	if !errors.Is(err, ErrInitializationFailed) {
		t.Fatalf("expected ErrInitializationFailed, got %v", err)
	}
	if e.Tick() != 0 {
		t.Error("failed init must not start ticking")
	}
}

func TestEngineUpdateAdvancesTicks(t *testing.T) {
	e := newTestEngine(t, Options{ParticleCount: 1000})

	for i := 0; i < 10; i++ {
		e.Update()
	}
	if e.Tick() != 10 {
		t.Errorf("expected 10 ticks, got %d", e.Tick())
	}
	if e.Count() != 1000 {
		t.Errorf("expected 1000 particles, got %d", e.Count())
	}
}

func TestEngineRendererSeesEveryTick(t *testing.T) {
	r := &nullRenderer{}
	e := newTestEngine(t, Options{Renderer: r, ParticleCount: 500})

	for i := 0; i < 20; i++ {
		e.Update()
	}
	if r.draws != 20 {
		t.Errorf("expected 20 draws, got %d", r.draws)
	}
}

func TestEnginePauseFreezesState(t *testing.T) {
	e := newTestEngine(t, Options{ParticleCount: 1000})
	e.SetPointerForce(640, 360, true)
	e.Update()
	e.Update()

	e.Pause()
	xs, ys := e.Snapshot(nil, nil)
	ticks := e.Tick()

	for i := 0; i < 30; i++ {
		e.Update()
	}

	if e.Tick() != ticks {
		t.Errorf("paused engine advanced ticks: %d -> %d", ticks, e.Tick())
	}
	xs2, ys2 := e.Snapshot(nil, nil)
	for i := range xs {
		if xs[i] != xs2[i] || ys[i] != ys2[i] {
			t.Fatalf("particle %d moved while paused", i)
		}
	}

	e.Resume()
	e.Update()
	if e.Tick() != ticks+1 {
		t.Errorf("resume did not restore ticking")
	}
}

func TestEngineStepOnceWhilePaused(t *testing.T) {
	e := newTestEngine(t, Options{ParticleCount: 500})
	e.SetPointerForce(640, 360, true)
	e.Update()
	e.Pause()

	xs, _ := e.Snapshot(nil, nil)
	e.StepOnce()
	xs2, _ := e.Snapshot(nil, nil)

	moved := false
	for i := range xs {
		if xs[i] != xs2[i] {
			moved = true
			break
		}
	}
	if !moved {
		t.Error("single step must advance the simulation exactly once")
	}

	// StepOnce while running is a no-op; Update owns the cadence there
	e.Resume()
	ticks := e.Tick()
	e.StepOnce()
	if e.Tick() != ticks {
		t.Error("StepOnce while running must not tick")
	}
}

func TestEngineSetParticleCount(t *testing.T) {
	e := newTestEngine(t, Options{ParticleCount: 1000})

	for _, n := range []int{5000, 10000, 50000, 1000} {
		if err := e.SetParticleCount(n); err != nil {
			t.Fatalf("SetParticleCount(%d): %v", n, err)
		}
		if e.Count() != n {
			t.Errorf("expected exactly %d particles, got %d", n, e.Count())
		}
		e.Update()
	}
}

func TestEngineSetParticleCountOverCapKeepsState(t *testing.T) {
	e := newTestEngine(t, Options{ParticleCount: 1000})
	cfg := config.Cfg()

	err := e.SetParticleCount(cfg.Simulation.MaxCount + 1)
	if !errors.Is(err, ErrAllocationFailed) {
		t.Fatalf("expected ErrAllocationFailed for over-cap request, got %v", err)
	}
	if e.Count() != 1000 {
		t.Errorf("failed allocation must keep last good count, got %d", e.Count())
	}

	// The engine keeps ticking at the old count after the failure
	e.Update()
	if e.Count() != 1000 {
		t.Errorf("count changed after failed allocation: %d", e.Count())
	}

	if err := e.SetParticleCount(-5); err != nil {
		t.Fatalf("below-minimum request must clamp, not fail: %v", err)
	}
	if e.Count() != cfg.Simulation.MinCount {
		t.Errorf("expected clamp to %d, got %d", cfg.Simulation.MinCount, e.Count())
	}
}

func TestEngineResizeKeepsCount(t *testing.T) {
	e := newTestEngine(t, Options{ParticleCount: 2000})
	r := &nullRenderer{}
	e.renderer = r

	e.Resize(640, 360)
	e.Resize(1920, 1080)
	e.Resize(0, 0)

	if e.Count() != 2000 {
		t.Errorf("resize changed particle count: %d", e.Count())
	}
	if r.resizes != 3 {
		t.Errorf("expected 3 renderer resizes, got %d", r.resizes)
	}

	// Particles wrap back into the new bounds on the next tick
	e.Resize(640, 360)
	e.Update()
	xs, ys := e.Snapshot(nil, nil)
	for i := range xs {
		if xs[i] < 0 || xs[i] >= 640 || ys[i] < 0 || ys[i] >= 360 {
			t.Fatalf("particle %d out of bounds after shrink: (%v, %v)", i, xs[i], ys[i])
		}
	}
}

func TestEngineParamSettersClamp(t *testing.T) {
	e := newTestEngine(t, Options{})
	cfg := config.Cfg()

	e.SetGravity(1e9)
	if e.Params().Gravity != cfg.Simulation.MaxGravity {
		t.Errorf("gravity not clamped: %v", e.Params().Gravity)
	}
	e.SetFriction(2.0)
	if e.Params().Friction != cfg.Simulation.MaxFriction {
		t.Errorf("friction not clamped: %v", e.Params().Friction)
	}
	if e.Params().Friction >= 1.0 {
		t.Error("friction must stay strictly below 1")
	}
	e.SetTrailFade(-1)
	if e.Params().TrailFade != cfg.Simulation.MinTrailFade {
		t.Errorf("trail fade not clamped: %v", e.Params().TrailFade)
	}

	e.SetColorMode(ColorThermal)
	if e.Params().ColorMode != ColorThermal {
		t.Error("color mode not applied")
	}
	e.SetPointerMode(PointerRepel)
	if e.Params().PointerMode != PointerRepel {
		t.Error("pointer mode not applied")
	}
}

func TestEngineSetPreset(t *testing.T) {
	e := newTestEngine(t, Options{ParticleCount: 1000})

	if err := e.SetPreset("vortex"); err != nil {
		t.Fatalf("SetPreset: %v", err)
	}
	if e.ActivePreset() != "vortex" {
		t.Errorf("expected vortex active, got %s", e.ActivePreset())
	}
	if e.Count() != 1000 {
		t.Errorf("preset switch changed count: %d", e.Count())
	}
	// Vortex carries a friction override
	if e.Params().Friction != 0.995 {
		t.Errorf("expected vortex friction override, got %v", e.Params().Friction)
	}

	if err := e.SetPreset("no-such-preset"); err != nil {
		t.Fatalf("unknown preset must fall back, got %v", err)
	}
	if e.ActivePreset() != "uniform" {
		t.Errorf("expected fallback to default preset, got %s", e.ActivePreset())
	}
}

func TestEngineDisposeIdempotent(t *testing.T) {
	r := &nullRenderer{}
	e := newTestEngine(t, Options{Renderer: r})
	e.Update()

	e.Dispose()
	e.Dispose()
	e.Dispose()

	if !e.Disposed() {
		t.Fatal("expected disposed state")
	}
	if r.unloads != 1 {
		t.Errorf("renderer must unload exactly once, got %d", r.unloads)
	}

	// Everything after dispose is a no-op
	ticks := e.Tick()
	e.Update()
	e.StepOnce()
	if e.Tick() != ticks {
		t.Error("disposed engine must not tick")
	}
	e.SetGravity(123)
	e.SetFriction(0.5)
	e.SetPointerForce(1, 2, true)
	if err := e.SetParticleCount(5000); err != nil {
		t.Errorf("SetParticleCount after dispose must be a silent no-op, got %v", err)
	}
	if err := e.SetPreset("ring"); err != nil {
		t.Errorf("SetPreset after dispose must be a silent no-op, got %v", err)
	}
}

func TestEngineFixedDTReproducible(t *testing.T) {
	run := func() ([]float32, []float32) {
		e := New(Options{PresetID: "burst", ParticleCount: 3000, FixedDT: 1.0 / 60.0})
		if err := e.Init(Surface{Width: 1280, Height: 720}); err != nil {
			t.Fatalf("init: %v", err)
		}
		defer e.Dispose()

		e.SetPointerForce(300, 200, true)
		for i := 0; i < 180; i++ {
			e.Update()
		}
		return e.Snapshot(nil, nil)
	}

	xs1, ys1 := run()
	xs2, ys2 := run()

	for i := range xs1 {
		if xs1[i] != xs2[i] || ys1[i] != ys2[i] {
			t.Fatalf("particle %d diverged between identical runs: (%v,%v) vs (%v,%v)",
				i, xs1[i], ys1[i], xs2[i], ys2[i])
		}
	}
}

func TestEngineRenderFailureHalts(t *testing.T) {
	r := &nullRenderer{failWith: errors.New("device lost")}
	e := newTestEngine(t, Options{Renderer: r, ParticleCount: 200})

	for i := 0; i < maxRenderFailures+10 && !e.Disposed(); i++ {
		e.Update()
	}

	if !e.Disposed() {
		t.Fatal("persistently failing render stage must halt the engine")
	}
	if e.Err() == nil {
		t.Error("halt reason must be reported via Err")
	}
	if r.unloads != 1 {
		t.Errorf("renderer must still unload exactly once, got %d", r.unloads)
	}
}

func TestEngineRenderFailureCounterResets(t *testing.T) {
	r := &nullRenderer{failWith: errors.New("transient")}
	e := newTestEngine(t, Options{Renderer: r, ParticleCount: 200})

	for i := 0; i < maxRenderFailures/2; i++ {
		e.Update()
	}
	// A successful draw clears the streak
	r.failWith = nil
	e.Update()
	r.failWith = errors.New("transient")
	for i := 0; i < maxRenderFailures/2; i++ {
		e.Update()
	}

	if e.Disposed() {
		t.Fatal("interleaved successes must keep the engine alive")
	}
	if e.Err() != nil {
		t.Errorf("no halt error expected, got %v", e.Err())
	}
}
