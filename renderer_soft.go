package shadows

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// LightLayers holds the intermediate images one light produced on the CPU.
// Every image except Depth is the light-centered Size x Size square.
type LightLayers struct {
	Params  LightParams
	Casters *image.RGBA
	Overlay *image.RGBA
	Depth   *image.RGBA
	Mask    *image.RGBA
}

// SoftRenderer runs the passes on the CPU with golang.org/x/image. It
// produces the same layers as EbitenRenderer and can be read back, which
// makes it the reference for tests and for layer dumps.
type SoftRenderer struct {
	w, h int

	casters    *image.RGBA
	overlays   *image.RGBA
	overlaySrc *image.RGBA
	composite  *image.RGBA
	// scratch holds the casters of a light that ignores one of them.
	scratch *image.RGBA

	layers []LightLayers

	// skipped counts members that could not be drawn in the last capture.
	skipped int
}

// NewSoftRenderer creates a CPU renderer with w x h targets.
func NewSoftRenderer(w, h int) *SoftRenderer {
	r := &SoftRenderer{}
	r.Resize(w, h)
	return r
}

// Resize implements Renderer.
func (r *SoftRenderer) Resize(w, h int) {
	r.Dispose()
	if w <= 0 || h <= 0 {
		return
	}
	r.w, r.h = w, h
	rect := image.Rect(0, 0, w, h)
	r.casters = image.NewRGBA(rect)
	r.overlays = image.NewRGBA(rect)
	r.composite = image.NewRGBA(rect)
	r.scratch = image.NewRGBA(rect)
	r.overlaySrc = r.casters
	Logger().Debug("soft targets recreated", "w", w, "h", h)
}

// Ready implements Renderer.
func (r *SoftRenderer) Ready() bool {
	return r.composite != nil
}

// CaptureCasters implements Renderer.
func (r *SoftRenderer) CaptureCasters(view Affine, casters []Member) {
	if !r.Ready() {
		return
	}
	r.skipped = 0
	clear(r.casters.Pix)
	r.drawMembers(r.casters, view, casters, LightParams{})
}

// CaptureOverlays implements Renderer.
func (r *SoftRenderer) CaptureOverlays(view Affine, overlays []Member, fromCasters bool) {
	if !r.Ready() {
		return
	}
	if fromCasters {
		r.overlaySrc = r.casters
		return
	}
	clear(r.overlays.Pix)
	r.drawMembers(r.overlays, view, overlays, LightParams{})
	r.overlaySrc = r.overlays
}

// BeginMask implements Renderer.
func (r *SoftRenderer) BeginMask() {
	if !r.Ready() {
		return
	}
	clear(r.composite.Pix)
	clear(r.layers)
	r.layers = r.layers[:0]
}

// RenderLight implements Renderer.
func (r *SoftRenderer) RenderLight(view Affine, p LightParams, casters []Member) {
	if !r.Ready() || p.Size <= 0 {
		return
	}
	ox, oy := p.Origin()
	local := image.Rect(0, 0, p.Size, p.Size)
	sp := image.Pt(int(ox), int(oy))

	src := r.casters
	if p.Ignore != nil {
		// Same clipping as the shared target: offscreen casters stay out.
		clear(r.scratch.Pix)
		r.drawMembers(r.scratch, view, casters, p)
		src = r.scratch
	}
	lc := image.NewRGBA(local)
	xdraw.Draw(lc, local, src, sp, xdraw.Src)
	lo := image.NewRGBA(local)
	xdraw.Draw(lo, local, r.overlaySrc, sp, xdraw.Src)

	dm := EncodeDepthMap(lc, p)
	mask := CompositeMask(dm, lo, p)
	maxInto(r.composite, mask, sp)

	r.layers = append(r.layers, LightLayers{Params: p, Casters: lc, Overlay: lo, Depth: dm, Mask: mask})
}

// Dispose implements Renderer.
func (r *SoftRenderer) Dispose() {
	r.w, r.h = 0, 0
	r.casters, r.overlays, r.overlaySrc, r.composite = nil, nil, nil, nil
	r.scratch = nil
	r.layers = nil
}

// Composite returns the composite mask of the last frame, or nil before the
// first Resize.
func (r *SoftRenderer) Composite() *image.RGBA { return r.composite }

// Casters returns the shared caster target.
func (r *SoftRenderer) Casters() *image.RGBA { return r.casters }

// Overlays returns the image the last frame used as overlay source.
func (r *SoftRenderer) Overlays() *image.RGBA { return r.overlaySrc }

// Layers returns the per-light intermediates of the last frame in light
// order. The slice is reused by the next frame.
func (r *SoftRenderer) Layers() []LightLayers { return r.layers }

// Skipped returns how many members the last capture could not draw.
func (r *SoftRenderer) Skipped() int { return r.skipped }

// drawMembers draws every member but the one ignored by p into dst.
func (r *SoftRenderer) drawMembers(dst *image.RGBA, view Affine, members []Member, p LightParams) {
	for _, m := range members {
		if isIgnored(m, p) {
			continue
		}
		d, ok := m.(SoftDrawer)
		if !ok || !d.DrawSoft(dst, view) {
			r.skipped++
			Logger().Debug("member cannot be drawn on the CPU", "id", m.MemberID())
		}
	}
}

// maxInto merges src into dst at offset with a per-channel max. Texels of
// src that fall outside dst are dropped.
func maxInto(dst, src *image.RGBA, offset image.Point) {
	sb := src.Bounds()
	area := sb.Add(offset).Intersect(dst.Bounds())
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			do := dst.PixOffset(x, y)
			so := src.PixOffset(x-offset.X, y-offset.Y)
			for c := 0; c < 4; c++ {
				dst.Pix[do+c] = max(dst.Pix[do+c], src.Pix[so+c])
			}
		}
	}
}
