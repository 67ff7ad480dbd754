package shadows

import (
	"image"
	"math"
)

// SampleIntensity returns the light reaching a pixel from one scatter
// sample.
//
// distance is the pixel's distance from the light center, pointDistance its
// distance from the scatter sample, objectDistance the nearest caster along
// the sample's ray and overlayAlpha the overlay coverage at the pixel. The
// sample is unoccluded when the caster lies beyond the pixel or beyond range.
func SampleIntensity(policy MaskPolicy, distance, pointDistance, objectDistance, rng, overlayAlpha, overlayLightLength float64) float64 {
	unoccluded := objectDistance > pointDistance || objectDistance >= rng
	covered := overlayAlpha > OverlayAlphaThreshold
	falloff := 1 - distance/rng

	switch policy {
	case PolicyDarkenOverlay:
		if unoccluded {
			return falloff
		}
		if covered {
			base := max(1-(distance-objectDistance)/(rng-objectDistance), 0)
			return falloff * math.Pow(base, DarkenOverlayExponent) * overlayAlpha
		}
		return 0
	case PolicyInverted:
		if covered {
			return 1 - overlayAlpha
		}
		if unoccluded {
			return 0
		}
		return 1
	default:
		if unoccluded {
			return falloff
		}
		if covered {
			return falloff * (1 - (pointDistance-objectDistance)/overlayLightLength)
		}
		return 0
	}
}

// MaskIntensity returns the unclamped light intensity at a point (dx, dy)
// relative to the light center, averaging every scatter sample's lookup in
// the depth map.
func MaskIntensity(dm *image.RGBA, p LightParams, dx, dy, overlayAlpha float64) float64 {
	distance := math.Hypot(dx, dy)
	if p.Range <= 0 || distance > p.Range {
		return 0
	}
	n := float64(p.PointCount)
	total := 0.0
	for i := 0; i < p.PointCount; i++ {
		offX, offY := scatterOffset(i, p.PointCount, p.ScatterRange)
		px, py := dx-offX, dy-offY
		pointDistance := math.Hypot(px, py)
		angle := math.Mod(math.Atan2(py, px)+2*math.Pi, 2*math.Pi)
		objectDistance := depthAt(dm, i, angle, p.Range)
		total += SampleIntensity(p.Policy, distance, pointDistance, objectDistance, p.Range, overlayAlpha, p.OverlayLightLength) / n
	}
	return p.Intensity * total
}

// CompositeMask builds the visibility mask of one light on the CPU.
//
// overlay is the overlay layer cropped to the same light-centered square
// as the mask (texel (0, 0) = p.Origin()). Texels beyond range stay
// transparent; others hold the intensity as opaque gray.
func CompositeMask(dm, overlay *image.RGBA, p LightParams) *image.RGBA {
	mask := image.NewRGBA(image.Rect(0, 0, p.Size, p.Size))
	ox, oy := p.Origin()
	for y := 0; y < p.Size; y++ {
		dy := oy + float64(y) + 0.5 - p.CenterY
		for x := 0; x < p.Size; x++ {
			dx := ox + float64(x) + 0.5 - p.CenterX
			if math.Hypot(dx, dy) > p.Range {
				continue
			}
			var a float64
			if overlay != nil {
				a = alphaAt(overlay, float64(x)+0.5, float64(y)+0.5)
			}
			v := to8(MaskIntensity(dm, p, dx, dy, a))
			off := mask.PixOffset(x, y)
			mask.Pix[off+0] = v
			mask.Pix[off+1] = v
			mask.Pix[off+2] = v
			mask.Pix[off+3] = 0xff
		}
	}
	return mask
}
