package shadows

import (
	"image"
	"math"
)

// scatterOffset returns the offset of scatter sample i of n from the light
// center. Samples sit on a circle of radius scatter at angles 2π(i+0.5)/n.
func scatterOffset(i, n int, scatter float64) (float64, float64) {
	frac := (float64(i) + 0.5) / float64(n)
	sin, cos := math.Sincos(2 * math.Pi * frac)
	return cos * scatter, sin * scatter
}

// depthSteps returns the number of ray-march samples for a light, bounded
// by the loop limit of the depth shader.
func depthSteps(p LightParams) int {
	return min(max(int(math.Ceil(p.Range*p.DepthResolution)), 1), maxDepthSteps)
}

// alphaAt returns the alpha of the texel containing (x, y), or 0 outside img.
func alphaAt(img *image.RGBA, x, y float64) float64 {
	b := img.Bounds()
	ix := int(math.Floor(x)) + b.Min.X
	iy := int(math.Floor(y)) + b.Min.Y
	if ix < b.Min.X || iy < b.Min.Y || ix >= b.Max.X || iy >= b.Max.Y {
		return 0
	}
	return float64(img.Pix[img.PixOffset(ix, iy)+3]) / 255
}

// EncodeDepthMap builds the radial depth map of one light on the CPU.
//
// casters holds the light's caster layer as a Size x Size square whose
// texel (0, 0) is p.Origin(). The result is RadialResolution x PointCount:
// texel (x, i) encodes, for scatter sample i and angle 2π(x+0.5)/R, the
// distance from the sample to the first caster texel with alpha above
// OverlayAlphaThreshold, normalized by Range. Rays that hit nothing encode
// 1 (distance == range).
func EncodeDepthMap(casters *image.RGBA, p LightParams) *image.RGBA {
	dm := image.NewRGBA(image.Rect(0, 0, p.RadialResolution, p.PointCount))
	if p.Range <= 0 {
		return dm
	}
	ox, oy := p.Origin()
	cx, cy := p.CenterX-ox, p.CenterY-oy
	steps := depthSteps(p)

	for i := 0; i < p.PointCount; i++ {
		offX, offY := scatterOffset(i, p.PointCount, p.ScatterRange)
		sx, sy := cx+offX, cy+offY
		for x := 0; x < p.RadialResolution; x++ {
			angle := 2 * math.Pi * (float64(x) + 0.5) / float64(p.RadialResolution)
			sin, cos := math.Sincos(angle)
			norm := 1.0
			for s := 0; s < steps; s++ {
				t := float64(s) / float64(steps)
				d := t * p.Range
				if alphaAt(casters, sx+cos*d, sy+sin*d) > OverlayAlphaThreshold {
					norm = t
					break
				}
			}
			r, g, b := EncodeDepth(norm)
			off := dm.PixOffset(x, i)
			dm.Pix[off+0] = r
			dm.Pix[off+1] = g
			dm.Pix[off+2] = b
			dm.Pix[off+3] = 0xff
		}
	}
	return dm
}

// depthAt returns the decoded object distance (pixels) stored in dm for
// scatter row i at angle (radians, [0, 2π)).
func depthAt(dm *image.RGBA, i int, angle, rng float64) float64 {
	w := dm.Bounds().Dx()
	col := min(int(angle/(2*math.Pi)*float64(w)), w-1)
	off := dm.PixOffset(dm.Bounds().Min.X+col, dm.Bounds().Min.Y+i)
	return DecodeDepth(dm.Pix[off], dm.Pix[off+1], dm.Pix[off+2]) * rng
}
