package shadows

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// FrameHook connects a Pipeline to a Scene. It classifies every member
// once per frame as its transform is updated, and runs the passes right
// before the scene is drawn, darkening the drawn scene with a ShadowFilter
// when the pipeline renders on the GPU.
//
// With a SoftRenderer the mask lives in CPU memory and Render draws the
// scene undarkened. Use DarkenSoft on a read-back frame to apply the final
// pass.
type FrameHook struct {
	pipeline *Pipeline
	buckets  *Buckets
	filter   *ShadowFilter

	world *RenderTexture
	lit   *RenderTexture
	imgOp ebiten.DrawImageOptions

	scene       *Scene
	transformID int
	renderID    int
}

// NewFrameHook creates a hook driving p. Nothing happens until Install.
// Only a renderer implementing MaskSource gets a screen filter; see
// DarkenSoft for the CPU renderer.
func NewFrameHook(p *Pipeline) *FrameHook {
	h := &FrameHook{
		pipeline: p,
		buckets:  NewBuckets(),
	}
	if src, ok := p.Renderer().(MaskSource); ok {
		h.filter = NewShadowFilter(src, p.AmbientLight())
	}
	return h
}

// Buckets returns the buckets filled since the last frame.
func (h *FrameHook) Buckets() *Buckets { return h.buckets }

// Filter returns the screen filter, or nil when the renderer has no GPU mask.
func (h *FrameHook) Filter() *ShadowFilter { return h.filter }

// OnTransformUpdated classifies m on its first update of the frame; later
// updates of the same member in the frame are ignored.
func (h *FrameHook) OnTransformUpdated(m Member) {
	h.buckets.Add(m)
}

// Render runs one frame: it starts a new classification generation, forces
// a transform pass from the root, runs the pipeline and then draws the
// scene through next, darkened by the composite mask.
func (h *FrameHook) Render(s *Scene, screen *ebiten.Image, next DrawFunc) {
	h.buckets.Reset()
	if h.scene != s || h.transformID == 0 {
		// Not driven by our own transform hook: classify directly.
		updateWorldTransform(s.root, Identity, false, func(n *Node) { h.OnTransformUpdated(n) })
	} else {
		s.UpdateTransforms()
	}

	view := s.View()
	h.pipeline.RunFrame(h.buckets, view)

	vp := s.Viewport()
	if h.filter == nil {
		next(screen, Translation(vp.X, vp.Y).Multiply(view))
		return
	}

	cfg := h.pipeline.Config()
	h.world = ensureTarget(h.world, cfg.Width, cfg.Height)
	h.lit = ensureTarget(h.lit, cfg.Width, cfg.Height)

	h.world.Clear()
	next(h.world.Image(), view)

	h.filter.Ambient = h.pipeline.AmbientLight()
	h.lit.Clear()
	h.filter.Apply(h.world.Image(), h.lit.Image())

	h.imgOp.GeoM.Reset()
	h.imgOp.GeoM.Translate(vp.X, vp.Y)
	screen.DrawImage(h.lit.Image(), &h.imgOp)
}

// DarkenSoft darkens scene with the composite mask of the last frame when
// the pipeline renders on the CPU. scene must cover the viewport with the
// same view the frame used. Other renderers return scene unchanged.
func (h *FrameHook) DarkenSoft(scene *image.RGBA) *image.RGBA {
	r, ok := h.pipeline.Renderer().(*SoftRenderer)
	if !ok || !r.Ready() {
		return scene
	}
	return Darken(scene, r.Composite(), h.pipeline.AmbientLight(), Identity)
}

// Install registers the hook's transform and render callbacks on s.
// Installing twice on the same scene is a no-op; installing on another
// scene moves the hook.
func (h *FrameHook) Install(s *Scene) {
	if h.scene == s {
		Logger().Debug("frame hook already installed")
		return
	}
	h.Uninstall()
	h.scene = s
	h.transformID = s.AddTransformHook(h.OnTransformUpdated)
	h.renderID = s.AddRenderHook(h.Render)
}

// Uninstall removes both callbacks. It is a no-op when not installed.
func (h *FrameHook) Uninstall() {
	if h.scene == nil {
		return
	}
	h.scene.RemoveTransformHook(h.transformID)
	h.scene.RemoveRenderHook(h.renderID)
	h.scene = nil
	h.transformID, h.renderID = 0, 0
}

// Installed reports whether the hook is installed on a scene.
func (h *FrameHook) Installed() bool { return h.scene != nil }

// Dispose uninstalls the hook and releases its targets. The pipeline is
// not disposed.
func (h *FrameHook) Dispose() {
	h.Uninstall()
	for _, rt := range []*RenderTexture{h.world, h.lit} {
		if rt != nil {
			rt.Dispose()
		}
	}
	h.world, h.lit = nil, nil
}

// ensureTarget returns rt if it already has the given size, or a new target.
func ensureTarget(rt *RenderTexture, w, h int) *RenderTexture {
	if rt != nil && rt.Width() == w && rt.Height() == h {
		return rt
	}
	if rt != nil {
		rt.Dispose()
	}
	return NewRenderTexture(w, h)
}
