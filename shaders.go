package shadows

import "github.com/hajimehoshi/ebiten/v2"

// --- Kage shader sources ---
// All shaders use //kage:unit pixels. Every source image of a pass has the
// same size, so positions are taken relative to imageDstOrigin and offset
// by each source's origin before sampling.

// depthShaderSrc builds the radial depth map. Texel (x, i) marches along
// angle 2π(x+0.5)/Radial from scatter sample i through the caster layer
// (Images[0]) and stores the normalized hit distance packed base-256 in RGB.
const depthShaderSrc = `//kage:unit pixels
package main

const pi = 3.141592653589793

var Center vec2
var Range float
var Scatter float
var PointCount float
var Radial float
var Steps float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	pos := dst.xy - imageDstOrigin()
	x := floor(pos.x)
	i := floor(pos.y)
	if x >= Radial || i >= PointCount {
		return vec4(0)
	}
	sa := 2 * pi * (i + 0.5) / PointCount
	origin := Center + Scatter*vec2(cos(sa), sin(sa))
	a := 2 * pi * (x + 0.5) / Radial
	dir := vec2(cos(a), sin(a))

	norm := 1.0
	for s := 0; s < 16384; s++ {
		t := float(s) / Steps
		if float(s) >= Steps {
			break
		}
		p := floor(origin+dir*(t*Range)) + 0.5
		if imageSrc0At(p+imageSrc0Origin()).a > 0.5 {
			norm = t
			break
		}
	}

	v := floor(norm*100000 + 0.5)
	r := mod(v, 256)
	g := mod(floor(v/256), 256)
	b := floor(v / 65536)
	return vec4(r/255, g/255, b/255, 1)
}
`

// maskShaderSrc composites one light's visibility mask from the depth map
// (Images[0]) and the light-local overlay layer (Images[1]).
const maskShaderSrc = `//kage:unit pixels
package main

const pi = 3.141592653589793

var Center vec2
var Range float
var Scatter float
var PointCount float
var Radial float
var Intensity float
var OverlayLength float
var Policy float
var Size float

func decodeDepth(c vec4) float {
	r := floor(c.r*255 + 0.5)
	g := floor(c.g*255 + 0.5)
	b := floor(c.b*255 + 0.5)
	return (r + g*256 + b*65536) / 100000
}

func sampleIntensity(distance, pointDistance, objectDistance, overlayAlpha float) float {
	unoccluded := objectDistance > pointDistance || objectDistance >= Range
	covered := overlayAlpha > 0.5
	falloff := 1 - distance/Range
	if Policy == 2 {
		if unoccluded {
			return falloff
		}
		if covered {
			base := max(1-(distance-objectDistance)/(Range-objectDistance), 0)
			return falloff * pow(base, 2.5) * overlayAlpha
		}
		return 0
	}
	if Policy == 1 {
		if covered {
			return 1 - overlayAlpha
		}
		if unoccluded {
			return 0
		}
		return 1
	}
	if unoccluded {
		return falloff
	}
	if covered {
		fade := 1.0
		if OverlayLength > 0 {
			fade = 1 - (pointDistance-objectDistance)/OverlayLength
		}
		return falloff * fade
	}
	return 0
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	pos := dst.xy - imageDstOrigin()
	if pos.x >= Size || pos.y >= Size {
		return vec4(0)
	}
	delta := pos - Center
	distance := length(delta)
	if distance > Range {
		return vec4(0)
	}
	overlayAlpha := imageSrc1At(pos + imageSrc1Origin()).a

	total := 0.0
	for k := 0; k < 1000; k++ {
		i := float(k)
		if i >= PointCount {
			break
		}
		sa := 2 * pi * (i + 0.5) / PointCount
		pd := delta - Scatter*vec2(cos(sa), sin(sa))
		angle := mod(atan2(pd.y, pd.x)+2*pi, 2*pi)
		col := min(floor(angle/(2*pi)*Radial), Radial-1)
		c := imageSrc0At(vec2(col+0.5, i+0.5) + imageSrc0Origin())
		objectDistance := decodeDepth(c) * Range
		total += sampleIntensity(distance, length(pd), objectDistance, overlayAlpha) / PointCount
	}
	v := clamp(Intensity*total, 0, 1)
	return vec4(v, v, v, 1)
}
`

// darkenShaderSrc is the final screen filter. The scene (Images[0]) is
// scaled by ambient + (1-ambient)*luminance of the composite mask
// (Images[1]) sampled through MaskMatrix.
const darkenShaderSrc = `//kage:unit pixels
package main

var Ambient float
var MaskMatrix [6]float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	p := dst.xy - imageDstOrigin()
	m := vec2(
		MaskMatrix[0]*p.x+MaskMatrix[2]*p.y+MaskMatrix[4],
		MaskMatrix[1]*p.x+MaskMatrix[3]*p.y+MaskMatrix[5],
	)
	mc := imageSrc1At(floor(m) + 0.5 + imageSrc1Origin())
	lum := (mc.r + mc.g + mc.b) / 3
	return c * (Ambient + (1-Ambient)*lum)
}
`

// maxDepthSteps bounds the ray-march loop of depthShaderSrc.
const maxDepthSteps = 16384

// --- Lazy shader compilation (no sync.Once, frames are single-threaded) ---

var (
	depthShader  *ebiten.Shader
	maskShader   *ebiten.Shader
	darkenShader *ebiten.Shader
)

func ensureDepthShader() *ebiten.Shader {
	if depthShader == nil {
		s, err := ebiten.NewShader([]byte(depthShaderSrc))
		if err != nil {
			panic("shadows: failed to compile depth shader: " + err.Error())
		}
		depthShader = s
	}
	return depthShader
}

func ensureMaskShader() *ebiten.Shader {
	if maskShader == nil {
		s, err := ebiten.NewShader([]byte(maskShaderSrc))
		if err != nil {
			panic("shadows: failed to compile mask shader: " + err.Error())
		}
		maskShader = s
	}
	return maskShader
}

func ensureDarkenShader() *ebiten.Shader {
	if darkenShader == nil {
		s, err := ebiten.NewShader([]byte(darkenShaderSrc))
		if err != nil {
			panic("shadows: failed to compile darken shader: " + err.Error())
		}
		darkenShader = s
	}
	return darkenShader
}

// policyUniform maps a MaskPolicy to the value the mask shader branches on.
func policyUniform(p MaskPolicy) float32 {
	switch p {
	case PolicyInverted:
		return 1
	case PolicyDarkenOverlay:
		return 2
	default:
		return 0
	}
}
