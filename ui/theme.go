// Package ui renders the heads-up display and the parameter panel. All
// simulation state flows in through the engine facade; nothing here touches
// particle buffers.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg     rl.Color
	PanelBorder rl.Color
	LabelColor  rl.Color
	ValueColor  rl.Color
	AccentColor rl.Color

	Padding    int32
	LineHeight int32
	FontSize   int32
	TitleSize  int32
}

// DefaultTheme returns the default dark panel styling.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:     rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder: rl.Color{R: 60, G: 70, B: 80, A: 255},
		LabelColor:  rl.LightGray,
		ValueColor:  rl.White,
		AccentColor: rl.Yellow,
		Padding:     10,
		LineHeight:  18,
		FontSize:    12,
		TitleSize:   16,
	}
}

// drawPanel draws a panel background with border.
func drawPanel(t Theme, x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, t.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, t.PanelBorder)
}
