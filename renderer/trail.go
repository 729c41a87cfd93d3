// Package renderer is the raylib render stage: an accumulation texture
// carries the previous frame's image, a translucent fade pass dims it, and
// the current particle state is drawn on top. Everything raylib lives here;
// the engine package stays window-free.
package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flux/engine"
	"github.com/pthm-cable/flux/particles"
)

// TrailRenderer draws particles with motion trails into an offscreen
// accumulation texture and blits it to the screen each frame.
type TrailRenderer struct {
	accum  rl.RenderTexture2D
	field  *ForceField
	width  int32
	height int32
}

// New creates the render stage for a window-sized surface. Fails with
// ErrUnsupportedDevice when no usable GL context exists, so headless runs
// get a clean error instead of a crash inside the driver.
func New(width, height int32) (*TrailRenderer, error) {
	if !rl.IsWindowReady() {
		return nil, fmt.Errorf("%w: no window or GL context", engine.ErrUnsupportedDevice)
	}

	r := &TrailRenderer{width: width, height: height}
	r.accum = rl.LoadRenderTexture(width, height)
	if r.accum.ID == 0 {
		return nil, fmt.Errorf("%w: render texture creation failed", engine.ErrUnsupportedDevice)
	}
	r.clearAccum()

	r.field = NewForceField(float32(width), float32(height))
	return r, nil
}

func (r *TrailRenderer) clearAccum() {
	rl.BeginTextureMode(r.accum)
	rl.ClearBackground(rl.Black)
	rl.EndTextureMode()
}

// Resize recreates the accumulation texture at the new dimensions. Trails
// restart from black; particle state is untouched.
func (r *TrailRenderer) Resize(width, height int32) {
	if width == r.width && height == r.height {
		return
	}
	r.width = width
	r.height = height

	rl.UnloadRenderTexture(r.accum)
	r.accum = rl.LoadRenderTexture(width, height)
	r.clearAccum()

	if r.field != nil {
		r.field.Resize(float32(width), float32(height))
	}
}

// Draw composites one frame: fade the accumulated image by the trail fade
// alpha, overlay the force field when the pointer is active, draw the
// particles, then blit to the screen.
func (r *TrailRenderer) Draw(frame engine.Frame) error {
	if r.accum.ID == 0 {
		return fmt.Errorf("%w: accumulation texture lost", engine.ErrUnsupportedDevice)
	}

	if r.field != nil && frame.Params.FieldOverlay {
		r.field.Update(frame.Tick, frame.Pointer, frame.Params)
	}

	rl.BeginTextureMode(r.accum)

	// Low alpha keeps long trails; high alpha approaches a hard clear
	fadeAlpha := uint8(frame.Params.TrailFade * 255)
	rl.DrawRectangle(0, 0, r.width, r.height, rl.Color{R: 0, G: 0, B: 0, A: fadeAlpha})

	if r.field != nil && frame.Params.FieldOverlay && frame.Pointer.Active {
		r.field.DrawOverlay(r.width, r.height)
	}

	r.drawParticles(frame)
	rl.EndTextureMode()

	// Render textures are stored bottom-up; flip on blit
	src := rl.Rectangle{Width: float32(r.width), Height: -float32(r.height)}
	rl.DrawTextureRec(r.accum.Texture, src, rl.Vector2{}, rl.White)
	return nil
}

func (r *TrailRenderer) drawParticles(frame engine.Frame) {
	buf := frame.Buf
	mode := frame.Params.ColorMode

	for i := 0; i < frame.Count; i++ {
		speed := particles.Speed(buf, i)
		c := particleColor(mode, buf.Seed[i], speed, frame.Tick)
		rl.DrawPixel(int32(buf.X[i]), int32(buf.Y[i]), rl.Color{R: c.R, G: c.G, B: c.B, A: c.A})
	}
}

// Unload releases the accumulation texture and the force field shader.
func (r *TrailRenderer) Unload() {
	if r.field != nil {
		r.field.Unload()
		r.field = nil
	}
	if r.accum.ID != 0 {
		rl.UnloadRenderTexture(r.accum)
		r.accum = rl.RenderTexture2D{}
	}
}

var _ engine.Renderer = (*TrailRenderer)(nil)
