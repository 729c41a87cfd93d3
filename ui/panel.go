package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flux/config"
	"github.com/pthm-cable/flux/engine"
	"github.com/pthm-cable/flux/preset"
)

// countSteps are the quick-set particle count buttons.
var countSteps = []int{1000, 5000, 10000, 50000}

// Panel is the right-side parameter panel. It reads the engine's current
// parameters every frame and pushes changes back through the setters, so
// external changes (preset overrides) show up immediately.
type Panel struct {
	theme   Theme
	width   int32
	visible bool

	// Last allocation error, shown until the next successful change
	errMsg string
}

// NewPanel creates a hidden panel of the given width.
func NewPanel(width int32) *Panel {
	return &Panel{theme: DefaultTheme(), width: width}
}

// Toggle switches panel visibility and returns the new state.
func (p *Panel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// Visible returns whether the panel is shown.
func (p *Panel) Visible() bool {
	return p.visible
}

// Contains reports whether a screen point lies inside the open panel, so
// the caller can suppress pointer forces while the user drags a slider.
func (p *Panel) Contains(x, y float32, screenWidth int32) bool {
	if !p.visible {
		return false
	}
	return x >= float32(screenWidth-p.width)
}

// Draw renders the panel and applies any changed values to the engine.
func (p *Panel) Draw(eng *engine.Engine, screenWidth int32) {
	if !p.visible {
		return
	}

	cfg := config.Cfg()
	params := eng.Params()

	x := screenWidth - p.width
	pad := p.theme.Padding
	innerX := float32(x + pad)
	innerW := float32(p.width - pad*2)

	drawPanel(p.theme, x, 0, p.width, 460)

	y := float32(pad)
	rl.DrawText("Parameters", x+pad, int32(y), p.theme.TitleSize, rl.White)
	y += 30

	y = p.slider(innerX, y, innerW, "Gravity", params.Gravity,
		cfg.Simulation.MinGravity, cfg.Simulation.MaxGravity, "%.0f", eng.SetGravity)
	y = p.slider(innerX, y, innerW, "Friction", params.Friction,
		cfg.Simulation.MinFriction, cfg.Simulation.MaxFriction, "%.3f", eng.SetFriction)
	y = p.slider(innerX, y, innerW, "Trail fade", params.TrailFade,
		cfg.Simulation.MinTrailFade, cfg.Simulation.MaxTrailFade, "%.2f", eng.SetTrailFade)

	y = p.countButtons(eng, innerX, y, innerW)
	y = p.modeButtons(eng, params, innerX, y)
	y = p.presetButton(eng, innerX, y)

	if p.errMsg != "" {
		rl.DrawText(p.errMsg, x+pad, int32(y), p.theme.FontSize, rl.Red)
	}
}

// slider draws one labeled SliderBar and pushes the value through set when
// the user moves it.
func (p *Panel) slider(x, y, width float32, label string, value, min, max float64, format string, set func(float64)) float32 {
	rl.DrawText(label, int32(x), int32(y), p.theme.FontSize, p.theme.LabelColor)
	y += 16

	next := gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: width - 60, Height: 20},
		"", "",
		float32(value), float32(min), float32(max),
	)
	rl.DrawText(fmt.Sprintf(format, value), int32(x+width-52), int32(y+3), p.theme.FontSize, p.theme.ValueColor)

	if float64(next) != value {
		set(float64(next))
		p.errMsg = ""
	}
	return y + 32
}

func (p *Panel) countButtons(eng *engine.Engine, x, y, width float32) float32 {
	rl.DrawText(fmt.Sprintf("Particles: %d", eng.Count()), int32(x), int32(y), p.theme.FontSize, p.theme.LabelColor)
	y += 18

	bw := (width - float32(len(countSteps)-1)*6) / float32(len(countSteps))
	for i, n := range countSteps {
		bx := x + float32(i)*(bw+6)
		if gui.Button(rl.Rectangle{X: bx, Y: y, Width: bw, Height: 26}, countLabel(n)) {
			if err := eng.SetParticleCount(n); err != nil {
				p.errMsg = fmt.Sprintf("allocation failed, kept %d", eng.Count())
			} else {
				p.errMsg = ""
			}
		}
	}
	return y + 38
}

func (p *Panel) modeButtons(eng *engine.Engine, params engine.Params, x, y float32) float32 {
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 120, Height: 26},
		"Colors: "+params.ColorMode.String()) {
		eng.SetColorMode(nextColorMode(params.ColorMode))
	}
	if gui.Button(rl.Rectangle{X: x + 130, Y: y, Width: 120, Height: 26},
		"Pointer: "+params.PointerMode.String()) {
		if params.PointerMode == engine.PointerAttract {
			eng.SetPointerMode(engine.PointerRepel)
		} else {
			eng.SetPointerMode(engine.PointerAttract)
		}
	}
	y += 32
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 250, Height: 26},
		"Field overlay: "+onOff(params.FieldOverlay)) {
		eng.SetFieldOverlay(!params.FieldOverlay)
	}
	return y + 38
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (p *Panel) presetButton(eng *engine.Engine, x, y float32) float32 {
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 250, Height: 26},
		"Preset: "+eng.ActivePreset()) {
		next := preset.Next(eng.ActivePreset())
		if err := eng.SetPreset(next.ID); err != nil {
			p.errMsg = "preset allocation failed"
		} else {
			p.errMsg = ""
		}
	}
	return y + 38
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

func countLabel(n int) string {
	if n >= 1000 {
		return fmt.Sprintf("%dk", n/1000)
	}
	return fmt.Sprintf("%d", n)
}
