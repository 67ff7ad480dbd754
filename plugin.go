package shadows

// Shadows bundles what an application needs to light a scene: a GPU
// pipeline and the hook driving it.
type Shadows struct {
	Pipeline *Pipeline
	Hook     *FrameHook
}

// New creates a GPU pipeline for cfg and installs its hook on scene. Tag
// members TagCaster, TagOverlay or attach lights with NewLightNode; they
// are picked up on the next frame. A clamped ambient light is reported in
// err while the returned Shadows is still usable.
func New(scene *Scene, cfg Config) (*Shadows, error) {
	r := NewEbitenRenderer(cfg.Width, cfg.Height)
	p, err := NewPipeline(r, cfg)
	if p == nil {
		r.Dispose()
		return nil, err
	}
	h := NewFrameHook(p)
	h.Install(scene)
	return &Shadows{Pipeline: p, Hook: h}, err
}

// SetSize forwards a viewport change to the pipeline. Targets are recreated
// at the start of the next frame.
func (s *Shadows) SetSize(w, h int) error {
	return s.Pipeline.SetSize(w, h)
}

// Dispose uninstalls the hook and releases every target.
func (s *Shadows) Dispose() {
	s.Hook.Dispose()
	s.Pipeline.Dispose()
}
