package engine

import (
	"github.com/pthm-cable/flux/config"
	"github.com/pthm-cable/flux/preset"
)

// ColorMode selects the particle color mapping.
type ColorMode int

const (
	ColorRainbow ColorMode = iota // Hue from per-particle seed plus slow rotation
	ColorThermal                  // Cold-to-hot gradient from instantaneous speed
	ColorEmber                    // Single warm hue, intensity from speed
)

// String returns the mode's config/UI name.
func (m ColorMode) String() string {
	switch m {
	case ColorThermal:
		return "thermal"
	case ColorEmber:
		return "ember"
	default:
		return "rainbow"
	}
}

// PointerMode selects the pointer force direction.
type PointerMode int

const (
	PointerAttract PointerMode = iota
	PointerRepel
)

// String returns the mode's config/UI name.
func (m PointerMode) String() string {
	if m == PointerRepel {
		return "repel"
	}
	return "attract"
}

// Params holds the simulation parameters the UI can hot-swap. Values are
// always within the bounds declared in config; setters clamp, never reject.
type Params struct {
	ParticleCount int
	Gravity       float64 // Pointer force strength
	Friction      float64 // Velocity retention per 60Hz tick, [0,1)
	TrailFade     float64 // Fade overlay alpha per frame
	ColorMode     ColorMode
	PointerMode   PointerMode
	FieldOverlay  bool // Show the force field visualization while the pointer is active
}

// defaultParams builds the startup parameters from config.
func defaultParams(cfg *config.Config) Params {
	return Params{
		ParticleCount: cfg.Simulation.DefaultCount,
		Gravity:       cfg.Simulation.DefaultGravity,
		Friction:      cfg.Simulation.DefaultFriction,
		TrailFade:     cfg.Simulation.DefaultTrailFade,
		ColorMode:     ColorRainbow,
		PointerMode:   PointerAttract,
		FieldOverlay:  true,
	}
}

// applyOverrides folds a preset's parameter overrides into p, clamped.
func (p *Params) applyOverrides(cfg *config.Config, o preset.Overrides) {
	if o.Gravity != nil {
		p.Gravity = clamp(*o.Gravity, cfg.Simulation.MinGravity, cfg.Simulation.MaxGravity)
	}
	if o.Friction != nil {
		p.Friction = clamp(*o.Friction, cfg.Simulation.MinFriction, cfg.Simulation.MaxFriction)
	}
	if o.TrailFade != nil {
		p.TrailFade = clamp(*o.TrailFade, cfg.Simulation.MinTrailFade, cfg.Simulation.MaxTrailFade)
	}
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

func clampInt(x, min, max int) int {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
