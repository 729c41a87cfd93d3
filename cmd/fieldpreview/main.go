// Pointer force field preview tool - interactive falloff visualization
// with sliders.
//
// Usage: go run ./cmd/fieldpreview
package main

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flux/config"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
)

// FieldParams holds the falloff parameters under preview.
type FieldParams struct {
	Gravity     float32
	MinDistance float32
	Attract     bool
}

func main() {
	if err := config.Init(""); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rl.InitWindow(windowWidth, windowHeight, "Force Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := FieldParams{
		Gravity:     float32(cfg.Simulation.DefaultGravity),
		MinDistance: cfg.Derived.MinDist32,
		Attract:     true,
	}

	gridSize := 256
	grid := make([]float32, gridSize*gridSize)
	img := rl.GenImageColor(gridSize, gridSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	generateField(grid, gridSize, params)
	updateTexture(texture, grid, gridSize, params.Attract)
	needsRegen := false

	for !rl.WindowShouldClose() {
		if needsRegen {
			generateField(grid, gridSize, params)
			updateTexture(texture, grid, gridSize, params.Attract)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(gridSize), Height: float32(gridSize)},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		// Acceleration at a few reference radii
		statsY := int32(previewSize + 25)
		for i, r := range []float32{10, 50, 200} {
			a := params.Gravity / maxf(r, params.MinDistance)
			rl.DrawText(fmt.Sprintf("a(r=%3.0fpx) = %7.1f px/s^2", r, a),
				15, statsY+int32(i)*20, 16, rl.DarkGray)
		}

		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Pointer Force Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rl.DrawText("Gravity (force strength)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newGravity := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "5000",
			params.Gravity, float32(cfg.Simulation.MinGravity), float32(cfg.Simulation.MaxGravity),
		)
		rl.DrawText(fmt.Sprintf("%.0f", params.Gravity), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newGravity != params.Gravity {
			params.Gravity = newGravity
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Min distance (falloff clamp, px)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newMinDist := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"1", "200",
			params.MinDistance, 1, 200,
		)
		rl.DrawText(fmt.Sprintf("%.0f", params.MinDistance), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newMinDist != params.MinDistance {
			params.MinDistance = newMinDist
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(params.Attract, "Attract", "Repel")) {
			params.Attract = !params.Attract
			needsRegen = true
		}

		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset") {
			params = FieldParams{
				Gravity:     float32(cfg.Simulation.DefaultGravity),
				MinDistance: cfg.Derived.MinDist32,
				Attract:     true,
			}
			needsRegen = true
		}
		panelY += 55

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yamlLines := []string{
			"simulation:",
			fmt.Sprintf("  default_gravity: %.0f", params.Gravity),
			"pointer:",
			fmt.Sprintf("  min_distance: %.0f", params.MinDistance),
		}
		for _, line := range yamlLines {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.EndDrawing()
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

// generateField fills the grid with the normalized force magnitude around a
// centered pointer, matching the falloff the compute stage applies.
func generateField(grid []float32, size int, params FieldParams) {
	cx := float32(size) / 2
	cy := float32(size) / 2
	norm := params.Gravity / maxf(params.MinDistance, 1)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float32(x) - cx
			dy := float32(y) - cy
			r := sqrtf(dx*dx + dy*dy)
			a := params.Gravity / maxf(r, params.MinDistance)
			if norm > 0 {
				grid[y*size+x] = a / norm
			} else {
				grid[y*size+x] = 0
			}
		}
	}
}

// updateTexture maps magnitudes onto the preview gradient: cool tones for
// attraction, warm for repulsion.
func updateTexture(texture rl.Texture2D, grid []float32, size int, attract bool) {
	pixels := make([]color.RGBA, size*size)
	for i, v := range grid {
		if v > 1 {
			v = 1
		}
		var r, g, b uint8
		if attract {
			r = uint8(30 + v*50)
			g = uint8(60 + v*120)
			b = uint8(120 + v*135)
		} else {
			r = uint8(120 + v*135)
			g = uint8(60 + v*80)
			b = uint8(30 + v*30)
		}
		pixels[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	rl.UpdateTexture(texture, pixels)
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func sqrtf(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}
