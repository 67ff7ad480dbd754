package shadows

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

const (
	defaultPointCount       = 20
	defaultScatterRange     = 15
	defaultRadialResolution = 800
	defaultDepthResolution  = 1

	// maxRadialResolution keeps the depth map within common GPU texture limits.
	maxRadialResolution = 8192
	minDepthResolution  = 0.01
)

// Light is a point of view: a light source whose visibility is computed by
// casting rays through the caster layer. Attach it to the scene with
// NewLightNode; its world position is the node's origin.
//
// Numeric parameters are validated by their setters and take effect on the
// next frame.
type Light struct {
	// Enabled determines whether this light takes part in the mask pass.
	Enabled bool
	// DarkenOverlay darkens overlays that lie behind a caster with a steep
	// falloff instead of lighting them uniformly.
	DarkenOverlay bool
	// Inverted lights only what is hidden: shadowed pixels become lit and
	// visible pixels dark. Ignored when DarkenOverlay is set.
	Inverted bool
	// IgnoreShadowCaster, if set, is excluded from casting for this light
	// only. Other lights still see it.
	IgnoreShadowCaster Member

	rng                float64
	intensity          float64
	pointCount         int
	scatterRange       float64
	radialResolution   int
	depthResolution    float64
	overlayLightLength float64
}

// NewLight creates an enabled light with the given range (world units) and
// intensity multiplier. Invalid arguments are clamped and logged.
func NewLight(rng, intensity float64) *Light {
	l := &Light{
		Enabled:            true,
		pointCount:         defaultPointCount,
		scatterRange:       defaultScatterRange,
		radialResolution:   defaultRadialResolution,
		depthResolution:    defaultDepthResolution,
		overlayLightLength: math.Inf(1),
	}
	if err := errors.Join(l.SetRange(rng), l.SetIntensity(intensity)); err != nil {
		Logger().Warn("light parameters clamped", "err", err)
	}
	return l
}

// Range returns the maximum light radius in world units.
func (l *Light) Range() float64 { return l.rng }

// SetRange sets the maximum light radius in world units.
func (l *Light) SetRange(v float64) error {
	if math.IsNaN(v) || v < 0 || math.IsInf(v, 0) {
		l.rng = 0
		return fmt.Errorf("range %v: %w", v, ErrInvalidRange)
	}
	l.rng = v
	return nil
}

// Intensity returns the light intensity multiplier.
func (l *Light) Intensity() float64 { return l.intensity }

// SetIntensity sets the light intensity multiplier.
func (l *Light) SetIntensity(v float64) error {
	if math.IsNaN(v) || v < 0 || math.IsInf(v, 0) {
		l.intensity = 0
		return fmt.Errorf("intensity %v: %w", v, ErrInvalidIntensity)
	}
	l.intensity = v
	return nil
}

// PointCount returns the number of scatter samples.
func (l *Light) PointCount() int { return l.pointCount }

// SetPointCount sets the number of scatter samples, which is also the
// height of the depth map.
func (l *Light) SetPointCount(n int) error {
	switch {
	case n < 1:
		l.pointCount = 1
	case n > MaxPointCount:
		l.pointCount = MaxPointCount
	default:
		l.pointCount = n
		return nil
	}
	return fmt.Errorf("point count %d: %w", n, ErrInvalidPointCount)
}

// ScatterRange returns the radius (world units) scatter samples are
// offset from the light center.
func (l *Light) ScatterRange() float64 { return l.scatterRange }

// SetScatterRange sets the scatter sample radius in world units.
func (l *Light) SetScatterRange(v float64) error {
	if math.IsNaN(v) || v < 0 || math.IsInf(v, 0) {
		l.scatterRange = 0
		return fmt.Errorf("scatter range %v: %w", v, ErrInvalidScatter)
	}
	l.scatterRange = v
	return nil
}

// RadialResolution returns the number of angular samples in the depth map.
func (l *Light) RadialResolution() int { return l.radialResolution }

// SetRadialResolution sets the number of angular samples (depth map width).
func (l *Light) SetRadialResolution(n int) error {
	switch {
	case n < 1:
		l.radialResolution = 1
	case n > maxRadialResolution:
		l.radialResolution = maxRadialResolution
	default:
		l.radialResolution = n
		return nil
	}
	return fmt.Errorf("radial resolution %d: %w", n, ErrInvalidResolution)
}

// DepthResolution returns the number of depth samples taken per pixel of
// range along each ray.
func (l *Light) DepthResolution() float64 { return l.depthResolution }

// SetDepthResolution sets the ray-march sample density.
func (l *Light) SetDepthResolution(v float64) error {
	switch {
	case math.IsNaN(v) || v < minDepthResolution:
		l.depthResolution = minDepthResolution
	case math.IsInf(v, 1):
		l.depthResolution = defaultDepthResolution
	default:
		l.depthResolution = v
		return nil
	}
	return fmt.Errorf("depth resolution %v: %w", v, ErrInvalidResolution)
}

// OverlayLightLength returns how deep (world units) light reaches into an
// overlay behind a caster.
func (l *Light) OverlayLightLength() float64 { return l.overlayLightLength }

// SetOverlayLightLength sets the overlay falloff distance. +Inf lights
// overlays uniformly.
func (l *Light) SetOverlayLightLength(v float64) error {
	if math.IsNaN(v) || v <= 0 {
		l.overlayLightLength = math.Inf(1)
		return fmt.Errorf("overlay light length %v: %w", v, ErrInvalidOverlayLength)
	}
	l.overlayLightLength = v
	return nil
}

// Validate reports every parameter that is out of range. Lights built
// through the setters always validate.
func (l *Light) Validate() error {
	var errs []error
	if math.IsNaN(l.rng) || l.rng < 0 || math.IsInf(l.rng, 0) {
		errs = append(errs, fmt.Errorf("range %v: %w", l.rng, ErrInvalidRange))
	}
	if math.IsNaN(l.intensity) || l.intensity < 0 || math.IsInf(l.intensity, 0) {
		errs = append(errs, fmt.Errorf("intensity %v: %w", l.intensity, ErrInvalidIntensity))
	}
	if l.pointCount < 1 || l.pointCount > MaxPointCount {
		errs = append(errs, fmt.Errorf("point count %d: %w", l.pointCount, ErrInvalidPointCount))
	}
	if l.radialResolution < 1 || l.radialResolution > maxRadialResolution {
		errs = append(errs, fmt.Errorf("radial resolution %d: %w", l.radialResolution, ErrInvalidResolution))
	}
	if math.IsNaN(l.depthResolution) || l.depthResolution < minDepthResolution {
		errs = append(errs, fmt.Errorf("depth resolution %v: %w", l.depthResolution, ErrInvalidResolution))
	}
	if math.IsNaN(l.scatterRange) || l.scatterRange < 0 {
		errs = append(errs, fmt.Errorf("scatter range %v: %w", l.scatterRange, ErrInvalidScatter))
	}
	if math.IsNaN(l.overlayLightLength) || l.overlayLightLength <= 0 {
		errs = append(errs, fmt.Errorf("overlay light length %v: %w", l.overlayLightLength, ErrInvalidOverlayLength))
	}
	return errors.Join(errs...)
}

// MaskPolicy selects how a light treats overlays and shadowed pixels.
type MaskPolicy uint8

const (
	PolicyDefault       MaskPolicy = iota // lit falloff; overlays lit up to OverlayLightLength
	PolicyInverted                        // hidden pixels lit, visible pixels dark
	PolicyDarkenOverlay                   // overlays behind casters fade out steeply
)

// Policy returns the mask policy selected by DarkenOverlay and Inverted.
func (l *Light) Policy() MaskPolicy {
	switch {
	case l.DarkenOverlay:
		return PolicyDarkenOverlay
	case l.Inverted:
		return PolicyInverted
	default:
		return PolicyDefault
	}
}

// LightParams is the per-frame snapshot of a light handed to the depth and
// mask passes. All distances are in target pixels.
type LightParams struct {
	// CenterX and CenterY are the light center in viewport pixels.
	CenterX, CenterY float64

	Range              float64
	ScatterRange       float64
	OverlayLightLength float64
	Intensity          float64
	DepthResolution    float64
	PointCount         int
	RadialResolution   int
	Policy             MaskPolicy

	// Size is the side of the square, light-centered region the depth and
	// mask passes cover. It holds every ray of every scatter sample.
	Size int

	// Ignore is excluded from the caster set for this light.
	Ignore Member
}

// Origin returns the viewport pixel that maps to texel (0, 0) of the
// light-centered square.
func (p LightParams) Origin() (float64, float64) {
	half := float64(p.Size) / 2
	return math.Floor(p.CenterX - half), math.Floor(p.CenterY - half)
}

// Params snapshots l for one frame. m maps the light's local origin to
// viewport pixels (view * world); its scale converts world units to pixels.
func (l *Light) Params(m Affine) LightParams {
	scale := m.Scale()
	p := LightParams{
		CenterX:          m[4],
		CenterY:          m[5],
		Range:            l.rng * scale,
		ScatterRange:     l.scatterRange * scale,
		Intensity:        l.intensity,
		DepthResolution:  l.depthResolution,
		PointCount:       l.pointCount,
		RadialResolution: l.radialResolution,
		Policy:           l.Policy(),
		Ignore:           l.IgnoreShadowCaster,
	}
	p.OverlayLightLength = math.Inf(1)
	if !math.IsInf(l.overlayLightLength, 1) {
		p.OverlayLightLength = l.overlayLightLength * scale
	}
	if p.Range > 0 {
		// Rays start up to ScatterRange off center. Two texels of slack on
		// each side cover the snapping of the origin to whole pixels.
		p.Size = int(math.Ceil(2*(p.Range+p.ScatterRange))) + 4
	}
	return p
}

// LightPreset is the JSON form of a light's parameters. Omitted fields keep
// the defaults of NewLight.
type LightPreset struct {
	Range              float64  `json:"range"`
	Intensity          *float64 `json:"intensity,omitempty"`
	PointCount         *int     `json:"pointCount,omitempty"`
	ScatterRange       *float64 `json:"scatterRange,omitempty"`
	RadialResolution   *int     `json:"radialResolution,omitempty"`
	DepthResolution    *float64 `json:"depthResolution,omitempty"`
	OverlayLightLength *float64 `json:"overlayLightLength,omitempty"`
	DarkenOverlay      bool     `json:"darkenOverlay,omitempty"`
	Inverted           bool     `json:"inverted,omitempty"`
	Disabled           bool     `json:"disabled,omitempty"`
}

// LoadLightPreset parses a JSON light preset. The light is returned even
// when some values had to be clamped; err then lists every clamped field.
func LoadLightPreset(jsonData []byte) (*Light, error) {
	var p LightPreset
	if err := json.Unmarshal(jsonData, &p); err != nil {
		return nil, fmt.Errorf("parse light preset: %w", err)
	}
	return p.Light()
}

// Light builds a light from the preset.
func (p LightPreset) Light() (*Light, error) {
	l := &Light{
		Enabled:            !p.Disabled,
		DarkenOverlay:      p.DarkenOverlay,
		Inverted:           p.Inverted,
		intensity:          1,
		pointCount:         defaultPointCount,
		scatterRange:       defaultScatterRange,
		radialResolution:   defaultRadialResolution,
		depthResolution:    defaultDepthResolution,
		overlayLightLength: math.Inf(1),
	}
	errs := []error{l.SetRange(p.Range)}
	if p.Intensity != nil {
		errs = append(errs, l.SetIntensity(*p.Intensity))
	}
	if p.PointCount != nil {
		errs = append(errs, l.SetPointCount(*p.PointCount))
		if *p.PointCount == 1 && p.ScatterRange == nil {
			l.scatterRange = 0
		}
	}
	if p.ScatterRange != nil {
		errs = append(errs, l.SetScatterRange(*p.ScatterRange))
	}
	if p.RadialResolution != nil {
		errs = append(errs, l.SetRadialResolution(*p.RadialResolution))
	}
	if p.DepthResolution != nil {
		errs = append(errs, l.SetDepthResolution(*p.DepthResolution))
	}
	if p.OverlayLightLength != nil {
		errs = append(errs, l.SetOverlayLightLength(*p.OverlayLightLength))
	}
	if err := errors.Join(errs...); err != nil {
		return l, fmt.Errorf("light preset: %w", err)
	}
	return l, nil
}
