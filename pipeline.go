package shadows

import (
	"fmt"
	"math"
	"time"
)

// Config holds the pipeline settings recognized by New and NewPipeline.
type Config struct {
	// Width and Height are the viewport size in pixels.
	Width, Height int
	// AmbientLight is the light level of fully shadowed pixels, in [0, 1].
	AmbientLight float64
	// UseShadowCasterAsOverlay makes the caster layer double as the overlay
	// layer, skipping the overlay capture pass.
	UseShadowCasterAsOverlay bool
}

// DefaultConfig returns the settings for a w x h viewport: no ambient light
// and casters used as overlays.
func DefaultConfig(w, h int) Config {
	return Config{
		Width:                    w,
		Height:                   h,
		UseShadowCasterAsOverlay: true,
	}
}

// FrameStats describes the work of one RunFrame call.
type FrameStats struct {
	Frame    uint64
	Casters  int
	Overlays int
	Lights   int // lights rendered; disabled and zero-range lights excluded
	Resized  bool

	CaptureTime time.Duration
	MaskTime    time.Duration
}

// EventSink receives the stats of every frame. See the ecs subpackage for
// a Donburi implementation.
type EventSink interface {
	OnFrame(stats FrameStats)
}

// Pipeline orders the passes of a frame and owns the renderer. It is not
// safe for concurrent use; call it from the game loop only.
type Pipeline struct {
	renderer Renderer
	cfg      Config

	pendingW, pendingH int
	resizePending      bool

	frame uint64
	stats FrameStats
	sink  EventSink
	debug bool
}

// NewPipeline creates a pipeline rendering through r. The renderer is resized
// to cfg's viewport before the first frame. An invalid ambient light is
// clamped and reported together with an invalid size.
func NewPipeline(r Renderer, cfg Config) (*Pipeline, error) {
	if r == nil {
		panic("shadows: NewPipeline with nil renderer")
	}
	p := &Pipeline{renderer: r}
	err := p.SetAmbientLight(cfg.AmbientLight)
	p.cfg.UseShadowCasterAsOverlay = cfg.UseShadowCasterAsOverlay
	if sizeErr := p.SetSize(cfg.Width, cfg.Height); sizeErr != nil {
		return nil, sizeErr
	}
	return p, err
}

// Renderer returns the renderer the pipeline drives.
func (p *Pipeline) Renderer() Renderer { return p.renderer }

// Config returns the current settings. Width and Height reflect a pending
// resize.
func (p *Pipeline) Config() Config { return p.cfg }

// AmbientLight returns the light level of fully shadowed pixels.
func (p *Pipeline) AmbientLight() float64 { return p.cfg.AmbientLight }

// SetAmbientLight sets the light level of fully shadowed pixels. Values
// outside [0, 1] are clamped.
func (p *Pipeline) SetAmbientLight(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		if math.IsNaN(v) {
			p.cfg.AmbientLight = 0
		} else {
			p.cfg.AmbientLight = clamp01(v)
		}
		return fmt.Errorf("ambient light %v: %w", v, ErrInvalidAmbient)
	}
	p.cfg.AmbientLight = v
	return nil
}

// SetUseShadowCasterAsOverlay switches the overlay source from the next frame on.
func (p *Pipeline) SetUseShadowCasterAsOverlay(v bool) {
	p.cfg.UseShadowCasterAsOverlay = v
}

// SetSize changes the viewport size. Targets are recreated at the start of
// the next frame, never mid-frame.
func (p *Pipeline) SetSize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("size %dx%d: %w", w, h, ErrInvalidSize)
	}
	if w == p.cfg.Width && h == p.cfg.Height && !p.resizePending && p.frame > 0 {
		return nil
	}
	p.cfg.Width, p.cfg.Height = w, h
	p.pendingW, p.pendingH = w, h
	p.resizePending = true
	return nil
}

// SetEventSink installs a receiver for per-frame stats. Pass nil to remove it.
func (p *Pipeline) SetEventSink(s EventSink) { p.sink = s }

// SetDebugMode enables per-frame stats on stderr.
func (p *Pipeline) SetDebugMode(enabled bool) { p.debug = enabled }

// Stats returns the stats of the last frame.
func (p *Pipeline) Stats() FrameStats { return p.stats }

// RunFrame runs the passes of one frame over b and resets b:
//
//  1. casters into the shared caster target
//  2. overlays into the shared overlay target, unless casters double as overlays
//  3. depth and mask of every enabled light, merged into the composite mask
//
// view maps world coordinates to viewport pixels. The final darkening is
// applied afterwards by a ShadowFilter (or Darken on the CPU).
func (p *Pipeline) RunFrame(b *Buckets, view Affine) {
	p.frame++
	stats := FrameStats{
		Frame:    p.frame,
		Casters:  len(b.Casters),
		Overlays: len(b.Overlays),
	}
	if p.resizePending {
		p.renderer.Resize(p.pendingW, p.pendingH)
		p.resizePending = false
		stats.Resized = true
	}

	t0 := time.Now()
	p.renderer.CaptureCasters(view, b.Casters)
	p.renderer.CaptureOverlays(view, b.Overlays, p.cfg.UseShadowCasterAsOverlay)
	stats.CaptureTime = time.Since(t0)

	t0 = time.Now()
	p.renderer.BeginMask()
	for _, lm := range b.Lights {
		l := lm.PointOfView()
		// Disposed after classification.
		if l == nil || !l.Enabled {
			continue
		}
		params := l.Params(view.Multiply(lm.WorldTransform()))
		if params.Size == 0 {
			continue
		}
		p.renderer.RenderLight(view, params, b.Casters)
		stats.Lights++
	}
	stats.MaskTime = time.Since(t0)

	b.Reset()

	p.stats = stats
	Logger().Debug("frame rendered",
		"frame", stats.Frame, "casters", stats.Casters, "overlays", stats.Overlays,
		"lights", stats.Lights, "capture", stats.CaptureTime, "mask", stats.MaskTime)
	if p.debug {
		debugLog(stats)
	}
	if p.sink != nil {
		p.sink.OnFrame(stats)
	}
}

// Dispose releases the renderer's targets.
func (p *Pipeline) Dispose() {
	p.renderer.Dispose()
}
