package renderer

import (
	"image/color"
	"math"

	"github.com/pthm-cable/flux/engine"
)

// speedNorm is the speed (px/s) mapped to the hot end of the speed-driven
// color modes. Faster particles saturate.
const speedNorm = 400.0

// hueDriftPerTick slowly rotates the rainbow palette so a settled scene
// still shifts color over time.
const hueDriftPerTick = 0.05

// particleColor maps one particle to its display color. Pure function of
// the inputs so it can be tested without a window.
func particleColor(mode engine.ColorMode, seed, speed float32, tick int64) color.RGBA {
	switch mode {
	case engine.ColorThermal:
		return thermalColor(speed)
	case engine.ColorEmber:
		return emberColor(speed)
	default:
		return rainbowColor(seed, tick)
	}
}

// rainbowColor derives hue from the particle's immutable seed plus a slow
// global rotation.
func rainbowColor(seed float32, tick int64) color.RGBA {
	hue := math.Mod(float64(seed)*360+float64(tick)*hueDriftPerTick, 360)
	r, g, b := hsvToRGB(hue, 0.85, 1)
	return color.RGBA{uint8(r * 255), uint8(g * 255), uint8(b * 255), 255}
}

// thermalColor maps speed onto a cold-to-hot gradient: deep blue at rest,
// through violet and red, to near white at speedNorm and above.
func thermalColor(speed float32) color.RGBA {
	t := clamp01(float64(speed) / speedNorm)
	// Hue sweeps 240 (blue) down to 0 (red); the top 20% bleeds toward white
	hue := 240 * (1 - t)
	sat := 1.0
	if t > 0.8 {
		sat = 1 - (t-0.8)*3
	}
	r, g, b := hsvToRGB(hue, clamp01(sat), 1)
	return color.RGBA{uint8(r * 255), uint8(g * 255), uint8(b * 255), 255}
}

// emberColor keeps a single warm hue and drives brightness from speed, so
// slow particles smolder and fast ones flare.
func emberColor(speed float32) color.RGBA {
	t := clamp01(float64(speed) / speedNorm)
	hue := 18 + 22*t
	val := 0.25 + 0.75*t
	r, g, b := hsvToRGB(hue, 0.95, val)
	return color.RGBA{uint8(r * 255), uint8(g * 255), uint8(b * 255), 255}
}

func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	h = math.Mod(math.Mod(h, 360)+360, 360)
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
