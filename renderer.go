package shadows

// Renderer executes the passes of one frame against a concrete set of
// render targets. All coordinates handed to a Renderer are viewport pixels:
// view maps world coordinates to them.
//
// The pipeline calls the methods in a fixed order each frame:
//
//	Resize (only when the size changed) -> CaptureCasters -> CaptureOverlays
//	-> BeginMask -> RenderLight (once per enabled light)
//
// Implementations are not safe for concurrent use.
type Renderer interface {
	// Resize destroys and recreates every viewport-sized target.
	Resize(w, h int)
	// Ready reports whether the targets exist and the composite mask of the
	// last frame can be sampled.
	Ready() bool
	// CaptureCasters renders the caster bucket into the shared caster target.
	CaptureCasters(view Affine, casters []Member)
	// CaptureOverlays renders the overlay bucket into the shared overlay
	// target. With fromCasters set the caster target doubles as the overlay
	// source and overlays is ignored.
	CaptureOverlays(view Affine, overlays []Member, fromCasters bool)
	// BeginMask clears the composite mask.
	BeginMask()
	// RenderLight runs the depth and mask passes of one light and merges the
	// result into the composite mask with a pointwise max. casters is the
	// frame's caster bucket; p.Ignore, if set, is left out for this light.
	RenderLight(view Affine, p LightParams, casters []Member)
	// Dispose releases every target.
	Dispose()
}

// isIgnored reports whether m is the member p excludes from casting.
func isIgnored(m Member, p LightParams) bool {
	return p.Ignore != nil && p.Ignore.MemberID() == m.MemberID()
}
