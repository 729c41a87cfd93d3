// Package preset defines the catalog of named initial-condition bundles.
// A preset pairs a deterministic particle distribution with default
// parameter overrides. Presets are immutable and registered at process start.
package preset

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Init holds the initial state for a single particle.
type Init struct {
	X, Y   float32 // Position in pixel space
	VX, VY float32 // Velocity in px/s
	Seed   float32 // Stable hue seed in [0,1)
}

// DistributeFunc maps a particle index and total count to initial state.
// Must be pure: identical (i, n, w, h) always yields identical state.
type DistributeFunc func(i, n int, w, h float32) Init

// Overrides holds optional parameter defaults a preset carries.
// Nil fields leave the configured default untouched.
type Overrides struct {
	Gravity   *float64
	Friction  *float64
	TrailFade *float64
}

// Preset is a named, immutable initial-condition bundle.
type Preset struct {
	ID         string
	Label      string
	Distribute DistributeFunc
	Overrides  Overrides
}

// nebulaNoise is shared by the nebula distribution. The fixed seed keeps
// the preset deterministic across runs.
var nebulaNoise = opensimplex.NewNormalized(1337)

// registry holds all presets in display order.
var registry = []Preset{
	{
		ID:         "uniform",
		Label:      "Uniform",
		Distribute: distributeUniform,
	},
	{
		ID:         "ring",
		Label:      "Ring",
		Distribute: distributeRing,
		Overrides:  Overrides{Friction: f64(0.98)},
	},
	{
		ID:         "vortex",
		Label:      "Vortex",
		Distribute: distributeVortex,
		Overrides:  Overrides{Friction: f64(0.995), TrailFade: f64(0.04)},
	},
	{
		ID:         "burst",
		Label:      "Burst",
		Distribute: distributeBurst,
		Overrides:  Overrides{TrailFade: f64(0.12)},
	},
	{
		ID:         "nebula",
		Label:      "Nebula",
		Distribute: distributeNebula,
		Overrides:  Overrides{Gravity: f64(1800)},
	},
}

var byID = func() map[string]*Preset {
	m := make(map[string]*Preset, len(registry))
	for i := range registry {
		m[registry[i].ID] = &registry[i]
	}
	return m
}()

// Default returns the preset used when none is requested.
func Default() *Preset {
	return &registry[0]
}

// ByID returns the preset with the given id, or nil.
func ByID(id string) *Preset {
	return byID[id]
}

// All returns the presets in display order.
func All() []Preset {
	out := make([]Preset, len(registry))
	copy(out, registry)
	return out
}

// Next returns the preset after the given id, wrapping around.
// Unknown ids yield the default preset.
func Next(id string) *Preset {
	for i := range registry {
		if registry[i].ID == id {
			return &registry[(i+1)%len(registry)]
		}
	}
	return Default()
}

// distributeUniform scatters particles over the full surface at rest.
func distributeUniform(i, n int, w, h float32) Init {
	return Init{
		X:    hash01(uint64(i), 0) * w,
		Y:    hash01(uint64(i), 1) * h,
		Seed: hueSeed(i, n),
	}
}

// distributeRing places particles on a circle at 1/3 of the short axis,
// with slight radial jitter and no initial velocity.
func distributeRing(i, n int, w, h float32) Init {
	cx, cy := w/2, h/2
	radius := minf(w, h) / 3
	angle := float64(i) / float64(n) * 2 * math.Pi
	jitter := (hash01(uint64(i), 2) - 0.5) * radius * 0.1
	r := radius + jitter
	return Init{
		X:    cx + float32(math.Cos(angle))*r,
		Y:    cy + float32(math.Sin(angle))*r,
		Seed: hueSeed(i, n),
	}
}

// distributeVortex arranges particles in a spiral with tangential velocity,
// so the field starts already swirling around the center.
func distributeVortex(i, n int, w, h float32) Init {
	cx, cy := w/2, h/2
	maxR := minf(w, h) * 0.45
	t := float64(i) / float64(n)
	// Three spiral arms
	angle := t*2*math.Pi*3 + float64(hash01(uint64(i), 3))*0.3
	r := float32(math.Sqrt(t)) * maxR
	cos := float32(math.Cos(angle))
	sin := float32(math.Sin(angle))
	// Tangential speed grows toward the rim
	speed := 40 + r*0.4
	return Init{
		X:    cx + cos*r,
		Y:    cy + sin*r,
		VX:   -sin * speed,
		VY:   cos * speed,
		Seed: hueSeed(i, n),
	}
}

// distributeBurst packs particles near the center with outward radial
// velocity, like a firework the moment it pops.
func distributeBurst(i, n int, w, h float32) Init {
	cx, cy := w/2, h/2
	angle := float64(hash01(uint64(i), 4)) * 2 * math.Pi
	cos := float32(math.Cos(angle))
	sin := float32(math.Sin(angle))
	speed := 120 + hash01(uint64(i), 5)*280
	spawnR := hash01(uint64(i), 6) * 10
	return Init{
		X:    cx + cos*spawnR,
		Y:    cy + sin*spawnR,
		VX:   cos * speed,
		VY:   sin * speed,
		Seed: hueSeed(i, n),
	}
}

// nebulaAttempts bounds the rejection loop so distribution cost stays O(1)
// per particle.
const nebulaAttempts = 8

// distributeNebula clusters particles into noise-defined clouds. Candidate
// positions are rehashed until one lands in a dense region of the noise
// field; the last candidate is used if none qualifies.
func distributeNebula(i, n int, w, h float32) Init {
	const noiseScale = 3.0
	var x, y float32
	for attempt := 0; attempt < nebulaAttempts; attempt++ {
		x = hash01(uint64(i), uint64(7+attempt*2))
		y = hash01(uint64(i), uint64(8+attempt*2))
		d := nebulaNoise.Eval2(float64(x)*noiseScale, float64(y)*noiseScale)
		if d > 0.6 {
			break
		}
	}
	return Init{
		X:    x * w,
		Y:    y * h,
		Seed: hueSeed(i, n),
	}
}

// hueSeed spreads hue seeds evenly over the index range so rainbow mode
// covers the full wheel at any count.
func hueSeed(i, n int) float32 {
	if n <= 0 {
		return 0
	}
	return float32(i) / float32(n)
}

// hash01 returns a deterministic value in [0,1) from an index and stream.
// splitmix64 finalizer; good enough scatter for initial conditions.
func hash01(i, stream uint64) float32 {
	z := i*0x9e3779b97f4a7c15 + stream*0xbf58476d1ce4e5b9 + 0x94d049bb133111eb
	z ^= z >> 30
	z *= 0xbf58476d1ce4e5b9
	z ^= z >> 27
	z *= 0x94d049bb133111eb
	z ^= z >> 31
	return float32(z>>40) / float32(1<<24)
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func f64(v float64) *float64 {
	return &v
}
