package shadows

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// RenderTexture is a persistent offscreen target owned by a renderer. It is
// recreated, never resized in place, when the viewport changes.
type RenderTexture struct {
	image *ebiten.Image
	w, h  int
}

// NewRenderTexture creates an offscreen target of the given size.
func NewRenderTexture(w, h int) *RenderTexture {
	return &RenderTexture{
		image: ebiten.NewImage(w, h),
		w:     w,
		h:     h,
	}
}

// Image returns the underlying *ebiten.Image for direct manipulation.
func (rt *RenderTexture) Image() *ebiten.Image {
	return rt.image
}

// Width returns the texture width in pixels.
func (rt *RenderTexture) Width() int {
	return rt.w
}

// Height returns the texture height in pixels.
func (rt *RenderTexture) Height() int {
	return rt.h
}

// Clear fills the texture with transparent black.
func (rt *RenderTexture) Clear() {
	rt.image.Clear()
}

// DrawImageAt draws src at the given position with the given blend.
func (rt *RenderTexture) DrawImageAt(src *ebiten.Image, x, y float64, blend ebiten.Blend) {
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(x, y)
	op.Blend = blend
	rt.image.DrawImage(src, &op)
}

// Resize deallocates the old image and creates a new one at the given dimensions.
func (rt *RenderTexture) Resize(width, height int) {
	if rt.image != nil {
		rt.image.Deallocate()
	}
	rt.image = ebiten.NewImage(width, height)
	rt.w = width
	rt.h = height
}

// Dispose deallocates the underlying image. The RenderTexture should not be
// used after calling Dispose.
func (rt *RenderTexture) Dispose() {
	if rt.image != nil {
		rt.image.Deallocate()
		rt.image = nil
	}
}

// BlendMax keeps the per-channel maximum of source and destination. Masks of
// several lights merge with it so overlapping lights never darken each
// other and the result does not depend on light order.
var BlendMax = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorOne,
	BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
	BlendFactorDestinationRGB:   ebiten.BlendFactorOne,
	BlendFactorDestinationAlpha: ebiten.BlendFactorOne,
	BlendOperationRGB:           ebiten.BlendOperationMax,
	BlendOperationAlpha:         ebiten.BlendOperationMax,
}

// --- Render texture pool ---

// renderTexturePool manages reusable square offscreen images for the
// per-light passes, keyed by power-of-two side. After warmup,
// Acquire/Release are zero-alloc.
type renderTexturePool struct {
	buckets map[int][]*ebiten.Image
	live    int
}

// Acquire returns a cleared square image with a side of at least n pixels,
// rounded up to the next power of two.
func (p *renderTexturePool) Acquire(n int) *ebiten.Image {
	side := nextPowerOfTwo(n)
	p.live++
	if stack := p.buckets[side]; len(stack) > 0 {
		img := stack[len(stack)-1]
		p.buckets[side] = stack[:len(stack)-1]
		img.Clear()
		return img
	}
	return ebiten.NewImageWithOptions(
		image.Rect(0, 0, side, side),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
}

// Release returns an image to the pool for reuse. The image is cleared on
// next Acquire, not here.
func (p *renderTexturePool) Release(img *ebiten.Image) {
	if img == nil {
		return
	}
	if p.buckets == nil {
		p.buckets = make(map[int][]*ebiten.Image)
	}
	p.live--
	side := img.Bounds().Dx()
	p.buckets[side] = append(p.buckets[side], img)
}

// Dispose deallocates every pooled image.
func (p *renderTexturePool) Dispose() {
	for side, stack := range p.buckets {
		for _, img := range stack {
			img.Deallocate()
		}
		delete(p.buckets, side)
	}
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}
