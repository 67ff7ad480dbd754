package shadows

import "math"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default fill for polygon members.
var ColorWhite = Color{1, 1, 1, 1}

// Vec2 is a 2D vector used for positions, offsets and polygon points.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Tag marks what role a scene member plays for the shadow pipeline.
type Tag uint8

const (
	TagNone    Tag = iota // ignored by the classifier
	TagCaster             // blocks light and casts a shadow
	TagOverlay            // drawn atop shadows, lit independently
	TagLight              // a point of view; must also carry a *Light
)

// String returns the tag name.
func (t Tag) String() string {
	switch t {
	case TagCaster:
		return "caster"
	case TagOverlay:
		return "overlay"
	case TagLight:
		return "light"
	default:
		return "none"
	}
}

const (
	// DepthScale is the integer range normalized depth is quantized into
	// before being packed into the RGB channels of the depth map.
	DepthScale = 100000

	// MaxPointCount bounds the number of scatter samples per light. The mask
	// shader loop is unrolled up to this count.
	MaxPointCount = 1000

	// OverlayAlphaThreshold is the overlay alpha above which a pixel counts
	// as covered by an overlay. Also used as the caster hit threshold.
	OverlayAlphaThreshold = 0.5

	// DarkenOverlayExponent shapes the falloff of lit overlays behind a
	// caster when DarkenOverlay is enabled.
	DarkenOverlayExponent = 2.5
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// to8 converts a [0, 1] channel value to a byte, rounding to nearest.
func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}
