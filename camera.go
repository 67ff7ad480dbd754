package shadows

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Camera controls the view into the scene: position, zoom and rotation.
// Lights, casters and the mask all go through the same view matrix, so the
// shadows stay aligned with the scene under pan, zoom and rotation.
type Camera struct {
	// X and Y are the world-space position the camera centers on.
	X, Y float64
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	Zoom float64
	// Rotation is the camera rotation in radians (clockwise).
	Rotation float64
	// Viewport is the screen-space rectangle this camera renders into.
	Viewport Rect

	// scrollX and scrollY are nil unless a ScrollTo is running.
	scrollX, scrollY *gween.Tween

	view  Affine
	inv   Affine
	dirty bool
}

// NewCamera creates a camera centered on the middle of viewport.
func NewCamera(viewport Rect) *Camera {
	return &Camera{
		X:        viewport.Width / 2,
		Y:        viewport.Height / 2,
		Zoom:     1.0,
		Viewport: viewport,
		dirty:    true,
	}
}

// ScrollTo pans the camera to (x, y) over duration seconds. A new call
// replaces the running scroll, starting from the current position.
func (c *Camera) ScrollTo(x, y float64, duration float32, fn ease.TweenFunc) {
	c.scrollX = gween.New(float32(c.X), float32(x), duration, fn)
	c.scrollY = gween.New(float32(c.Y), float32(y), duration, fn)
}

// Scrolling reports whether a ScrollTo is still running.
func (c *Camera) Scrolling() bool { return c.scrollX != nil }

// update advances a running scroll by dt seconds. Called from Scene.Update.
func (c *Camera) update(dt float32) {
	if c.scrollX == nil {
		return
	}
	x, doneX := c.scrollX.Update(dt)
	y, doneY := c.scrollY.Update(dt)
	c.X, c.Y = float64(x), float64(y)
	c.dirty = true
	if doneX && doneY {
		c.scrollX, c.scrollY = nil, nil
	}
}

// ViewMatrix returns the matrix mapping world coordinates to viewport-local
// pixels, recomputing it if the camera moved.
//
// view = Translate(w/2, h/2) * Scale(zoom) * Rotate(-rotation) * Translate(-X, -Y)
func (c *Camera) ViewMatrix() Affine {
	if !c.dirty {
		return c.view
	}
	c.dirty = false

	sin, cos := math.Sincos(-c.Rotation)
	z := c.Zoom
	c.view = Translation(c.Viewport.Width/2, c.Viewport.Height/2).
		Multiply(Affine{z * cos, z * sin, -z * sin, z * cos, 0, 0}).
		Multiply(Translation(-c.X, -c.Y))
	c.inv = c.view.Invert()
	return c.view
}

// WorldToScreen converts world coordinates to viewport-local coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return c.ViewMatrix().Apply(wx, wy)
}

// ScreenToWorld converts viewport-local coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	c.ViewMatrix()
	return c.inv.Apply(sx, sy)
}

// MarkDirty forces a recomputation of the view matrix. Call it after
// changing X, Y, Zoom or Rotation directly.
func (c *Camera) MarkDirty() {
	c.dirty = true
}
