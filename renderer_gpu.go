package shadows

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenRenderer runs the passes on the GPU with Kage shaders. The shared
// caster, overlay and composite targets have the viewport size; per-light
// depth and mask images come from a pool of square textures.
type EbitenRenderer struct {
	w, h int

	casters     *RenderTexture
	overlays    *RenderTexture
	composite   *RenderTexture
	scratch     *RenderTexture
	fromCasters bool

	pool renderTexturePool

	depthUniforms map[string]any
	maskUniforms  map[string]any
	center        [2]float32
	shaderOp      ebiten.DrawRectShaderOptions
	imgOp         ebiten.DrawImageOptions

	skipped int
}

// NewEbitenRenderer creates a GPU renderer with w x h targets.
func NewEbitenRenderer(w, h int) *EbitenRenderer {
	r := &EbitenRenderer{
		depthUniforms: make(map[string]any, 6),
		maskUniforms:  make(map[string]any, 9),
	}
	r.Resize(w, h)
	return r
}

// Resize implements Renderer.
func (r *EbitenRenderer) Resize(w, h int) {
	r.disposeTargets()
	if w <= 0 || h <= 0 {
		return
	}
	r.w, r.h = w, h
	r.casters = NewRenderTexture(w, h)
	r.overlays = NewRenderTexture(w, h)
	r.composite = NewRenderTexture(w, h)
	r.scratch = NewRenderTexture(w, h)
	Logger().Debug("gpu targets recreated", "w", w, "h", h)
}

// Ready implements Renderer.
func (r *EbitenRenderer) Ready() bool {
	return r.composite != nil
}

// CaptureCasters implements Renderer.
func (r *EbitenRenderer) CaptureCasters(view Affine, casters []Member) {
	if !r.Ready() {
		return
	}
	r.skipped = 0
	r.casters.Clear()
	r.drawMembers(r.casters.Image(), view, casters, LightParams{})
}

// CaptureOverlays implements Renderer.
func (r *EbitenRenderer) CaptureOverlays(view Affine, overlays []Member, fromCasters bool) {
	if !r.Ready() {
		return
	}
	r.fromCasters = fromCasters
	if fromCasters {
		return
	}
	r.overlays.Clear()
	r.drawMembers(r.overlays.Image(), view, overlays, LightParams{})
}

// BeginMask implements Renderer.
func (r *EbitenRenderer) BeginMask() {
	if !r.Ready() {
		return
	}
	r.composite.Clear()
}

// RenderLight implements Renderer.
func (r *EbitenRenderer) RenderLight(view Affine, p LightParams, casters []Member) {
	if !r.Ready() || p.Size <= 0 {
		return
	}
	ox, oy := p.Origin()
	n := max(p.Size, p.RadialResolution, p.PointCount)

	lc := r.pool.Acquire(n)
	lo := r.pool.Acquire(n)
	depth := r.pool.Acquire(n)
	mask := r.pool.Acquire(n)
	defer func() {
		r.pool.Release(lc)
		r.pool.Release(lo)
		r.pool.Release(depth)
		r.pool.Release(mask)
	}()
	side := lc.Bounds().Dx()

	src := r.casters.Image()
	if p.Ignore != nil {
		r.scratch.Clear()
		r.drawMembers(r.scratch.Image(), view, casters, p)
		src = r.scratch.Image()
	}
	r.copyLocal(lc, src, ox, oy)
	r.copyLocal(lo, r.overlaySource(), ox, oy)

	r.center = [2]float32{float32(p.CenterX - ox), float32(p.CenterY - oy)}

	u := r.depthUniforms
	u["Center"] = r.center[:]
	u["Range"] = float32(p.Range)
	u["Scatter"] = float32(p.ScatterRange)
	u["PointCount"] = float32(p.PointCount)
	u["Radial"] = float32(p.RadialResolution)
	u["Steps"] = float32(depthSteps(p))
	r.shaderOp.Images = [4]*ebiten.Image{lc}
	r.shaderOp.Uniforms = u
	depth.DrawRectShader(side, side, ensureDepthShader(), &r.shaderOp)

	u = r.maskUniforms
	u["Center"] = r.center[:]
	u["Range"] = float32(p.Range)
	u["Scatter"] = float32(p.ScatterRange)
	u["PointCount"] = float32(p.PointCount)
	u["Radial"] = float32(p.RadialResolution)
	u["Intensity"] = float32(p.Intensity)
	u["OverlayLength"] = overlayLengthUniform(p.OverlayLightLength)
	u["Policy"] = policyUniform(p.Policy)
	u["Size"] = float32(p.Size)
	r.shaderOp.Images = [4]*ebiten.Image{depth, lo}
	r.shaderOp.Uniforms = u
	mask.DrawRectShader(side, side, ensureMaskShader(), &r.shaderOp)

	sub := mask.SubImage(image.Rect(0, 0, p.Size, p.Size)).(*ebiten.Image)
	r.composite.DrawImageAt(sub, ox, oy, BlendMax)
}

// Dispose implements Renderer.
func (r *EbitenRenderer) Dispose() {
	r.disposeTargets()
	r.pool.Dispose()
}

// Mask returns the composite mask of the last frame, or nil when the
// renderer has no targets.
func (r *EbitenRenderer) Mask() *ebiten.Image {
	if r.composite == nil {
		return nil
	}
	return r.composite.Image()
}

// Skipped returns how many members the last capture could not draw.
func (r *EbitenRenderer) Skipped() int { return r.skipped }

func (r *EbitenRenderer) overlaySource() *ebiten.Image {
	if r.fromCasters {
		return r.casters.Image()
	}
	return r.overlays.Image()
}

// copyLocal copies the light-centered square at (ox, oy) of src into the
// top-left corner of dst.
func (r *EbitenRenderer) copyLocal(dst, src *ebiten.Image, ox, oy float64) {
	op := &r.imgOp
	op.GeoM.Reset()
	op.GeoM.Translate(-ox, -oy)
	op.ColorScale.Reset()
	op.Blend = ebiten.BlendCopy
	op.Filter = ebiten.FilterNearest
	dst.DrawImage(src, op)
}

func (r *EbitenRenderer) drawMembers(dst *ebiten.Image, view Affine, members []Member, p LightParams) {
	for _, m := range members {
		if isIgnored(m, p) {
			continue
		}
		d, ok := m.(EbitenDrawer)
		if !ok {
			r.skipped++
			Logger().Debug("member cannot be drawn on the GPU", "id", m.MemberID())
			continue
		}
		d.DrawEbiten(dst, view)
	}
}

func (r *EbitenRenderer) disposeTargets() {
	for _, rt := range []*RenderTexture{r.casters, r.overlays, r.composite, r.scratch} {
		if rt != nil {
			rt.Dispose()
		}
	}
	r.casters, r.overlays, r.composite, r.scratch = nil, nil, nil, nil
	r.w, r.h = 0, 0
}

// overlayLengthUniform encodes an infinite overlay light length as -1.
func overlayLengthUniform(v float64) float32 {
	if math.IsInf(v, 1) {
		return -1
	}
	return float32(v)
}
