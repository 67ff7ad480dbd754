package shadows

import (
	"image"
	"math"
	"testing"
)

func TestSampleIntensity(t *testing.T) {
	inf := math.Inf(1)
	darkened := 0.9 * math.Pow(1-5.0/95, DarkenOverlayExponent) * 0.8

	tests := []struct {
		name                        string
		policy                      MaskPolicy
		dist, pointDist, obj, rng   float64
		overlayAlpha, overlayLength float64
		want                        float64
	}{
		{"default unoccluded", PolicyDefault, 10, 10, 20, 100, 0, inf, 0.9},
		{"default caster beyond range", PolicyDefault, 50, 120, 100, 100, 0, inf, 0.5},
		{"default occluded", PolicyDefault, 10, 10, 5, 100, 0, inf, 0},
		{"default occluded overlay infinite", PolicyDefault, 10, 10, 5, 100, 1, inf, 0.9},
		{"default occluded overlay falloff", PolicyDefault, 10, 10, 5, 100, 1, 10, 0.45},
		{"default overlay below threshold", PolicyDefault, 10, 10, 5, 100, 0.5, inf, 0},
		{"inverted unoccluded", PolicyInverted, 10, 10, 20, 100, 0, inf, 0},
		{"inverted occluded", PolicyInverted, 10, 10, 5, 100, 0, inf, 1},
		{"inverted overlay", PolicyInverted, 10, 10, 20, 100, 0.6, inf, 0.4},
		{"darken unoccluded", PolicyDarkenOverlay, 10, 10, 20, 100, 0, inf, 0.9},
		{"darken occluded", PolicyDarkenOverlay, 10, 10, 5, 100, 0, inf, 0},
		{"darken occluded overlay", PolicyDarkenOverlay, 10, 10, 5, 100, 0.8, inf, darkened},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SampleIntensity(tt.policy, tt.dist, tt.pointDist, tt.obj, tt.rng, tt.overlayAlpha, tt.overlayLength)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("SampleIntensity = %v, want %v", got, tt.want)
			}
		})
	}
}

// syntheticDepthMap builds a single-row depth map with r columns that all
// report no hit, except column wallCol which reports a caster at wallNorm.
func syntheticDepthMap(r, wallCol int, wallNorm float64) *image.RGBA {
	dm := image.NewRGBA(image.Rect(0, 0, r, 1))
	for x := 0; x < r; x++ {
		norm := 1.0
		if x == wallCol {
			norm = wallNorm
		}
		cr, cg, cb := EncodeDepth(norm)
		off := dm.PixOffset(x, 0)
		dm.Pix[off], dm.Pix[off+1], dm.Pix[off+2], dm.Pix[off+3] = cr, cg, cb, 0xff
	}
	return dm
}

func TestMaskIntensityHardShadow(t *testing.T) {
	// Range 700, a single sample without scatter and a caster 70px out at 0°.
	p := LightParams{Range: 700, Intensity: 1, PointCount: 1, RadialResolution: 8, OverlayLightLength: math.Inf(1)}
	dm := syntheticDepthMap(8, 0, 0.1)

	tests := []struct {
		name   string
		dx, dy float64
		want   float64
	}{
		{"behind caster", 100, 0, 0},
		{"in front of caster", 50, 0, 1 - 50.0/700},
		{"diagonal", 60, 80, 1 - 100.0/700},
		{"at range", 0, 700, 0},
		{"beyond range", 0, 701, 0},
		{"center", 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskIntensity(dm, p, tt.dx, tt.dy, 0)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("MaskIntensity(%v,%v) = %v, want %v", tt.dx, tt.dy, got, tt.want)
			}
		})
	}
}

func TestMaskIntensityScalesWithIntensity(t *testing.T) {
	p := LightParams{Range: 100, Intensity: 2, PointCount: 1, RadialResolution: 4, OverlayLightLength: math.Inf(1)}
	dm := syntheticDepthMap(4, -1, 1)
	if got := MaskIntensity(dm, p, 50, 0, 0); math.Abs(got-1) > 1e-9 {
		t.Errorf("MaskIntensity = %v, want 1 (unclamped 2 * 0.5)", got)
	}
}

func TestMaskIntensityAveragesSamples(t *testing.T) {
	// Two samples; the second row reports a wall everywhere at 1px, so it
	// never lights anything past it.
	p := LightParams{Range: 100, Intensity: 1, PointCount: 2, RadialResolution: 4, OverlayLightLength: math.Inf(1)}
	dm := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		for i, norm := range []float64{1, 0.01} {
			cr, cg, cb := EncodeDepth(norm)
			off := dm.PixOffset(x, i)
			dm.Pix[off], dm.Pix[off+1], dm.Pix[off+2], dm.Pix[off+3] = cr, cg, cb, 0xff
		}
	}
	if got := MaskIntensity(dm, p, 50, 0, 0); math.Abs(got-0.25) > 1e-9 {
		t.Errorf("MaskIntensity = %v, want 0.25", got)
	}
}

func TestCompositeMaskScenario(t *testing.T) {
	p := hardLight(40, 50, 50)
	ox, oy := p.Origin()
	cx, cy := int(p.CenterX-ox), int(p.CenterY-oy)

	casters := image.NewRGBA(image.Rect(0, 0, p.Size, p.Size))
	fillRect(casters, image.Rect(cx+10, cy-3, cx+12, cy+4))
	dm := EncodeDepthMap(casters, p)
	mask := CompositeMask(dm, nil, p)

	if b := mask.Bounds(); b.Dx() != p.Size || b.Dy() != p.Size {
		t.Fatalf("mask size = %v, want %dx%d", b, p.Size, p.Size)
	}

	// Directly behind the wall.
	if v := mask.RGBAAt(cx+20, cy); v.R != 0 || v.A != 255 {
		t.Errorf("behind wall = %v, want opaque black", v)
	}
	// A diagonal pixel with a clear line of sight.
	x, y := cx+15, cy-15
	d := math.Hypot(float64(x)+0.5-float64(cx), float64(y)+0.5-float64(cy))
	want := 1 - d/40
	if v := mask.RGBAAt(x, y); math.Abs(float64(v.R)/255-want) > 1.0/255 {
		t.Errorf("diagonal = %d, want %v", v.R, want*255)
	}
	// Outside range stays transparent.
	if v := mask.RGBAAt(0, 0); v.A != 0 {
		t.Errorf("corner = %v, want transparent", v)
	}
}

func TestCompositeMaskOverlayLit(t *testing.T) {
	p := hardLight(40, 50, 50)
	ox, oy := p.Origin()
	cx, cy := int(p.CenterX-ox), int(p.CenterY-oy)

	casters := image.NewRGBA(image.Rect(0, 0, p.Size, p.Size))
	fillRect(casters, image.Rect(cx+10, cy-3, cx+12, cy+4))
	overlay := image.NewRGBA(image.Rect(0, 0, p.Size, p.Size))
	fillRect(overlay, image.Rect(cx+18, cy-1, cx+22, cy+2))

	mask := CompositeMask(EncodeDepthMap(casters, p), overlay, p)
	// An overlay behind the wall is lit as if unshadowed, with an infinite
	// overlay light length.
	d := 20.5
	want := 1 - d/40
	if v := mask.RGBAAt(cx+20, cy); math.Abs(float64(v.R)/255-want) > 1.0/255 {
		t.Errorf("overlay behind wall = %d, want %v", v.R, want*255)
	}
}

func BenchmarkEncodeDepthMap(b *testing.B) {
	l := NewLight(100, 1)
	p := l.Params(Translation(120, 120))
	casters := image.NewRGBA(image.Rect(0, 0, p.Size, p.Size))
	fillRect(casters, image.Rect(p.Size/2+30, p.Size/2-10, p.Size/2+40, p.Size/2+10))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		EncodeDepthMap(casters, p)
	}
}

func BenchmarkCompositeMask(b *testing.B) {
	l := NewLight(100, 1)
	p := l.Params(Translation(120, 120))
	casters := image.NewRGBA(image.Rect(0, 0, p.Size, p.Size))
	fillRect(casters, image.Rect(p.Size/2+30, p.Size/2-10, p.Size/2+40, p.Size/2+10))
	dm := EncodeDepthMap(casters, p)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CompositeMask(dm, casters, p)
	}
}
