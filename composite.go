package shadows

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// SpriteMatrix returns the matrix the final filter samples the composite
// mask through. sprite maps mask texels to destination pixels (the mask's
// placement in the frame); the result maps destination pixels back to mask
// texels, keeping the mask aligned under scale, rotation and pan.
func SpriteMatrix(sprite Affine) Affine {
	return sprite.Invert()
}

// DarkenFactor returns the multiplier applied to a scene pixel whose mask
// texel is (r, g, b): ambient + (1-ambient)*luminance, with luminance the
// mean of the three channels.
func DarkenFactor(ambient float64, r, g, b uint8) float64 {
	lum := (float64(r) + float64(g) + float64(b)) / (3 * 255)
	return ambient + (1-ambient)*lum
}

// Darken applies the final screen filter on the CPU. scene and the result
// hold premultiplied RGBA; all four channels are scaled by the darken
// factor. mask is sampled through spriteMatrix; texels outside the mask
// count as unlit. A nil mask passes the scene through unmodified.
func Darken(scene, mask *image.RGBA, ambient float64, spriteMatrix Affine) *image.RGBA {
	b := scene.Bounds()
	out := image.NewRGBA(b)
	xdraw.Draw(out, b, scene, b.Min, xdraw.Src)
	if mask == nil {
		return out
	}
	ambient = clamp01(ambient)
	if ambient == 1 {
		return out
	}
	mb := mask.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			mx, my := spriteMatrix.Apply(float64(x-b.Min.X)+0.5, float64(y-b.Min.Y)+0.5)
			ix := int(math.Floor(mx)) + mb.Min.X
			iy := int(math.Floor(my)) + mb.Min.Y
			var f float64
			if image.Pt(ix, iy).In(mb) {
				mo := mask.PixOffset(ix, iy)
				f = DarkenFactor(ambient, mask.Pix[mo], mask.Pix[mo+1], mask.Pix[mo+2])
			} else {
				f = ambient
			}
			o := out.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				out.Pix[o+c] = uint8(math.Round(float64(out.Pix[o+c]) * f))
			}
		}
	}
	return out
}
