package main

import (
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flux/config"
	"github.com/pthm-cable/flux/engine"
	"github.com/pthm-cable/flux/preset"
	"github.com/pthm-cable/flux/renderer"
	"github.com/pthm-cable/flux/telemetry"
	"github.com/pthm-cable/flux/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics at a fixed timestep")
	presetID := flag.String("preset", "", "Initial preset id (empty = default)")
	particleCount := flag.Int("particles", 0, "Initial particle count (0 = use config)")
	fixedDT := flag.Float64("fixed-dt", 0, "Fixed timestep in seconds (0 = measured; headless default 1/60)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited; headless requires > 0)")
	logStats := flag.Bool("log-stats", false, "Emit periodic perf stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output dir", "error", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	opts := engine.Options{
		PresetID:      *presetID,
		ParticleCount: *particleCount,
		FixedDT:       *fixedDT,
	}

	if *headless {
		runHeadless(cfg, opts, *maxTicks, *logStats, out)
		return
	}
	runWindowed(cfg, opts, *maxTicks, *logStats, out)
}

// runHeadless drives the engine without a window, always at a fixed
// timestep so runs are reproducible.
func runHeadless(cfg *config.Config, opts engine.Options, maxTicks int, logStats bool, out *telemetry.OutputManager) {
	if opts.FixedDT <= 0 {
		opts.FixedDT = 1.0 / 60.0
	}
	if maxTicks <= 0 {
		slog.Error("headless mode requires -max-ticks > 0")
		os.Exit(1)
	}

	eng := engine.New(opts)
	if err := eng.Init(engine.Surface{
		Width:  int32(cfg.Screen.Width),
		Height: int32(cfg.Screen.Height),
	}); err != nil {
		slog.Error("engine init failed", "error", err)
		os.Exit(1)
	}
	defer eng.Dispose()

	slog.Info("starting headless run",
		"preset", eng.ActivePreset(),
		"particles", eng.Count(),
		"fixed_dt", opts.FixedDT,
		"max_ticks", maxTicks,
	)

	statsEvery := int64(float64(cfg.Screen.TargetFPS) * cfg.Telemetry.StatsWindow)
	if statsEvery < 1 {
		statsEvery = 60
	}

	for int(eng.Tick()) < maxTicks {
		eng.Update()

		if eng.Tick()%statsEvery == 0 {
			stats := eng.Metrics().Stats()
			if logStats {
				stats.LogStats()
			}
			if err := out.WritePerf(stats, eng.Tick(), eng.Count()); err != nil {
				slog.Warn("perf output failed", "error", err)
			}
		}
	}
	slog.Info("max ticks reached", "tick", eng.Tick())
}

// runWindowed is the interactive path: raylib window, trail renderer,
// pointer input, and the parameter panel.
func runWindowed(cfg *config.Config, opts engine.Options, maxTicks int, logStats bool, out *telemetry.OutputManager) {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	rend, err := renderer.New(int32(cfg.Screen.Width), int32(cfg.Screen.Height))
	if err != nil {
		slog.Error("renderer init failed", "error", err)
		os.Exit(1)
	}
	opts.Renderer = rend

	eng := engine.New(opts)
	if err := eng.Init(engine.Surface{
		Width:  int32(cfg.Screen.Width),
		Height: int32(cfg.Screen.Height),
	}); err != nil {
		slog.Error("engine init failed", "error", err)
		os.Exit(1)
	}
	defer eng.Dispose()

	panel := ui.NewPanel(280)
	hud := ui.NewHUD()

	statsEvery := int64(float64(cfg.Screen.TargetFPS) * cfg.Telemetry.StatsWindow)
	if statsEvery < 1 {
		statsEvery = 60
	}

	for !rl.WindowShouldClose() && !eng.Disposed() {
		screenW := int32(rl.GetScreenWidth())
		screenH := int32(rl.GetScreenHeight())
		if rl.IsWindowResized() {
			eng.Resize(screenW, screenH)
		}

		handleInput(eng, panel, screenW)

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)

		eng.Update()

		hud.Draw(ui.HUDData{
			Title:        cfg.Screen.Title,
			Particles:    eng.Count(),
			Preset:       eng.ActivePreset(),
			Tick:         eng.Tick(),
			FPS:          int(eng.FPS()),
			Paused:       eng.Paused(),
			ScreenHeight: screenH,
		})
		hud.DrawControls(screenH)
		panel.Draw(eng, screenW)

		rl.EndDrawing()

		if eng.Tick() > 0 && eng.Tick()%statsEvery == 0 {
			stats := eng.Metrics().Stats()
			if logStats {
				stats.LogStats()
			}
			if err := out.WritePerf(stats, eng.Tick(), eng.Count()); err != nil {
				slog.Warn("perf output failed", "error", err)
			}
		}
		if maxTicks > 0 && int(eng.Tick()) >= maxTicks {
			break
		}
	}

	if err := eng.Err(); err != nil {
		slog.Error("engine halted", "error", err)
	}
}

// handleInput maps pointer and keyboard input onto the engine.
func handleInput(eng *engine.Engine, panel *ui.Panel, screenW int32) {
	pos := rl.GetMousePosition()
	overPanel := panel.Contains(pos.X, pos.Y, screenW)

	switch {
	case overPanel:
		eng.SetPointerForce(0, 0, false)
	case rl.IsMouseButtonDown(rl.MouseLeftButton):
		eng.SetPointerMode(engine.PointerAttract)
		eng.SetPointerForce(pos.X, pos.Y, true)
	case rl.IsMouseButtonDown(rl.MouseRightButton):
		eng.SetPointerMode(engine.PointerRepel)
		eng.SetPointerForce(pos.X, pos.Y, true)
	default:
		eng.SetPointerForce(pos.X, pos.Y, false)
	}

	switch {
	case rl.IsKeyPressed(rl.KeyTab):
		panel.Toggle()
	case rl.IsKeyPressed(rl.KeySpace):
		eng.TogglePause()
	case rl.IsKeyPressed(rl.KeyPeriod):
		eng.StepOnce()
	case rl.IsKeyPressed(rl.KeyP):
		next := preset.Next(eng.ActivePreset())
		if err := eng.SetPreset(next.ID); err != nil {
			slog.Warn("preset switch failed", "error", err)
		}
	case rl.IsKeyPressed(rl.KeyC):
		eng.SetColorMode(nextColorMode(eng.Params().ColorMode))
	case rl.IsKeyPressed(rl.KeyR):
		if err := eng.Reset(0); err != nil {
			slog.Warn("reset failed", "error", err)
		}
	}
}

func nextColorMode(m engine.ColorMode) engine.ColorMode {
	switch m {
	case engine.ColorRainbow:
		return engine.ColorThermal
	case engine.ColorThermal:
		return engine.ColorEmber
	default:
		return engine.ColorRainbow
	}
}
