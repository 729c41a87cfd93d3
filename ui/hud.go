package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds the per-frame values the HUD displays.
type HUDData struct {
	Title        string
	Particles    int
	Preset       string
	Tick         int64
	FPS          int
	Paused       bool
	ScreenHeight int32
}

// HUD renders the top-left status readout and the control legend.
type HUD struct {
	theme Theme
}

// NewHUD creates a HUD with the default theme.
func NewHUD() *HUD {
	return &HUD{theme: DefaultTheme()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Particles: %d | Preset: %s", data.Particles, data.Preset),
		10, 35, 16, h.theme.LabelColor,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | FPS: %d", data.Tick, data.FPS),
		10, 55, 16, h.theme.LabelColor,
	)

	if data.Paused {
		rl.DrawText("PAUSED (. steps one tick)", 10, 75, 16, h.theme.AccentColor)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32) {
	legend := "LMB attract | RMB repel | Tab panel | Space pause | . step | P preset | C colors | R reset"
	rl.DrawText(legend, 10, screenHeight-25, 14, rl.Gray)
}
