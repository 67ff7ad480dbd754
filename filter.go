package shadows

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Filter is the interface for screen effects applied to a rendered layer.
type Filter interface {
	// Apply renders src into dst with the filter effect.
	Apply(src, dst *ebiten.Image)
	// Padding returns the extra pixels needed around the source to accommodate
	// the effect. Zero means no padding.
	Padding() int
}

// MaskSource provides the composite mask a ShadowFilter samples.
// *EbitenRenderer implements it.
type MaskSource interface {
	Ready() bool
	Mask() *ebiten.Image
}

// ShadowFilter darkens a rendered layer outside the union of all light
// masks: every pixel is scaled by ambient + (1-ambient)*mask luminance.
// Until the mask exists the input passes through unmodified.
type ShadowFilter struct {
	// Ambient is the light level of fully shadowed pixels, in [0, 1].
	Ambient float64
	// MaskTransform places the composite mask in the filtered layer: it maps
	// mask texels to layer pixels. The identity suits a mask rendered with
	// the same view as the layer.
	MaskTransform Affine

	source   MaskSource
	uniforms map[string]any
	matrix   [6]float32
	shaderOp ebiten.DrawRectShaderOptions
	imgOp    ebiten.DrawImageOptions
}

// NewShadowFilter creates a filter sampling the mask of source.
func NewShadowFilter(source MaskSource, ambient float64) *ShadowFilter {
	f := &ShadowFilter{
		Ambient:       clamp01(ambient),
		MaskTransform: Identity,
		source:        source,
		uniforms:      make(map[string]any, 2),
	}
	f.uniforms["MaskMatrix"] = f.matrix[:]
	return f
}

// Apply renders src into dst, darkened by the composite mask.
func (f *ShadowFilter) Apply(src, dst *ebiten.Image) {
	mask := f.mask(src)
	if mask == nil {
		f.imgOp.GeoM.Reset()
		f.imgOp.ColorScale.Reset()
		dst.DrawImage(src, &f.imgOp)
		return
	}
	m := SpriteMatrix(f.MaskTransform)
	for i, v := range m {
		f.matrix[i] = float32(v)
	}
	f.uniforms["Ambient"] = float32(clamp01(f.Ambient))

	bounds := src.Bounds()
	f.shaderOp.Images[0] = src
	f.shaderOp.Images[1] = mask
	f.shaderOp.Uniforms = f.uniforms
	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), ensureDarkenShader(), &f.shaderOp)
}

// Padding returns 0; darkening does not expand the image bounds.
func (f *ShadowFilter) Padding() int { return 0 }

// mask returns the composite mask if it can be sampled alongside src.
func (f *ShadowFilter) mask(src *ebiten.Image) *ebiten.Image {
	if f.source == nil || !f.source.Ready() {
		return nil
	}
	mask := f.source.Mask()
	if mask == nil {
		return nil
	}
	if mask.Bounds().Size() != src.Bounds().Size() {
		Logger().Debug("shadow filter skipped: mask size differs from layer",
			"mask", mask.Bounds().Size(), "layer", src.Bounds().Size())
		return nil
	}
	return mask
}
