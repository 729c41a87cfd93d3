package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flux/config"
	"github.com/pthm-cable/flux/engine"
	"github.com/pthm-cable/flux/particles"
)

// ForceField visualizes the pointer force on the GPU: a fragment shader
// evaluates the same falloff the compute stage uses and writes it to a
// small texture that gets stretched over the scene as a faint overlay.
type ForceField struct {
	shader     rl.Shader
	target     rl.RenderTexture2D
	pointerLoc int32
	gravityLoc int32
	attractLoc int32
	minDistLoc int32
	resLoc     int32

	size         int32
	screenWidth  float32
	screenHeight float32

	lastUpdate int64
}

// NewForceField loads the field shader and its render target. Returns nil
// when the shader fails to load; the overlay is optional and the render
// stage runs without it.
func NewForceField(screenWidth, screenHeight float32) *ForceField {
	cfg := config.Cfg().GPU

	ff := &ForceField{
		size:         int32(cfg.FieldTextureSize),
		screenWidth:  screenWidth,
		screenHeight: screenHeight,
		lastUpdate:   -1,
	}

	ff.shader = rl.LoadShader("", "shaders/forcefield.fs")
	if ff.shader.ID == 0 {
		return nil
	}
	ff.pointerLoc = rl.GetShaderLocation(ff.shader, "pointer")
	ff.gravityLoc = rl.GetShaderLocation(ff.shader, "gravity")
	ff.attractLoc = rl.GetShaderLocation(ff.shader, "attract")
	ff.minDistLoc = rl.GetShaderLocation(ff.shader, "minDistance")
	ff.resLoc = rl.GetShaderLocation(ff.shader, "resolution")

	ff.target = rl.LoadRenderTexture(ff.size, ff.size)
	ff.setResolution()
	return ff
}

func (ff *ForceField) setResolution() {
	res := []float32{ff.screenWidth, ff.screenHeight}
	rl.SetShaderValue(ff.shader, ff.resLoc, res, rl.ShaderUniformVec2)
}

// Resize updates the world-to-texture mapping. The field texture itself
// stays at its configured size.
func (ff *ForceField) Resize(screenWidth, screenHeight float32) {
	ff.screenWidth = screenWidth
	ff.screenHeight = screenHeight
	ff.setResolution()
	ff.lastUpdate = -1
}

// Update regenerates the field texture when the pointer is active and the
// configured interval has elapsed.
func (ff *ForceField) Update(tick int64, ptr particles.Pointer, params engine.Params) {
	if !ptr.Active {
		return
	}
	interval := int64(config.Cfg().GPU.FieldUpdateInterval)
	if ff.lastUpdate >= 0 && tick-ff.lastUpdate < interval {
		return
	}
	ff.lastUpdate = tick

	rl.SetShaderValue(ff.shader, ff.pointerLoc, []float32{ptr.X, ptr.Y}, rl.ShaderUniformVec2)
	rl.SetShaderValue(ff.shader, ff.gravityLoc, []float32{float32(params.Gravity)}, rl.ShaderUniformFloat)
	rl.SetShaderValue(ff.shader, ff.minDistLoc, []float32{config.Cfg().Derived.MinDist32}, rl.ShaderUniformFloat)
	sign := float32(1)
	if params.PointerMode == engine.PointerRepel {
		sign = -1
	}
	rl.SetShaderValue(ff.shader, ff.attractLoc, []float32{sign}, rl.ShaderUniformFloat)

	rl.BeginTextureMode(ff.target)
	rl.ClearBackground(rl.Black)
	rl.BeginShaderMode(ff.shader)
	rl.DrawRectangle(0, 0, ff.size, ff.size, rl.White)
	rl.EndShaderMode()
	rl.EndTextureMode()
}

// DrawOverlay stretches the field texture over the scene at the configured
// alpha. Must be called inside the caller's texture mode.
func (ff *ForceField) DrawOverlay(width, height int32) {
	alpha := uint8(config.Cfg().GPU.FieldOverlayAlpha * 255)
	src := rl.Rectangle{Width: float32(ff.size), Height: -float32(ff.size)}
	dst := rl.Rectangle{Width: float32(width), Height: float32(height)}
	rl.DrawTexturePro(ff.target.Texture, src, dst, rl.Vector2{}, 0, rl.Color{R: 255, G: 255, B: 255, A: alpha})
}

// Unload releases the shader and render target.
func (ff *ForceField) Unload() {
	rl.UnloadShader(ff.shader)
	rl.UnloadRenderTexture(ff.target)
}
