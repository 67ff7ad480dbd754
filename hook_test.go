package shadows

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func newSoftHook(t *testing.T) *FrameHook {
	t.Helper()
	p, err := NewPipeline(NewSoftRenderer(64, 64), DefaultConfig(64, 64))
	if err != nil {
		t.Fatal(err)
	}
	return NewFrameHook(p)
}

func TestFrameHookNoFilterOnCPU(t *testing.T) {
	h := newSoftHook(t)
	if h.Filter() != nil {
		t.Error("software renderer should not get a screen filter")
	}
}

func TestFrameHookInstallIdempotent(t *testing.T) {
	s := NewScene()
	h := newSoftHook(t)

	h.Install(s)
	h.Install(s)
	if len(s.transformHooks) != 1 || len(s.renderHooks) != 1 {
		t.Errorf("hooks = %d/%d, want 1/1", len(s.transformHooks), len(s.renderHooks))
	}
	if !h.Installed() {
		t.Error("Installed() should be true")
	}

	other := NewScene()
	h.Install(other)
	if len(s.transformHooks) != 0 || len(s.renderHooks) != 0 {
		t.Error("moving the hook should remove it from the first scene")
	}
	if len(other.transformHooks) != 1 || len(other.renderHooks) != 1 {
		t.Error("hook should be installed on the second scene")
	}

	h.Uninstall()
	h.Uninstall()
	if h.Installed() || len(other.renderHooks) != 0 {
		t.Error("Uninstall should remove the hooks")
	}
}

func TestFrameHookOnTransformUpdatedDedup(t *testing.T) {
	h := newSoftHook(t)
	wall := taggedNode("wall", TagCaster)
	h.OnTransformUpdated(wall)
	h.OnTransformUpdated(wall)
	if n := len(h.Buckets().Casters); n != 1 {
		t.Errorf("casters = %d, want 1", n)
	}
}

func TestFrameHookRender(t *testing.T) {
	s := NewScene()
	w := newTestWorld()
	s.Root().AddChild(w.root)

	h := newSoftHook(t)
	h.Install(s)

	var drawn int
	var drawView Affine
	next := func(dst *ebiten.Image, view Affine) {
		drawn++
		drawView = view
	}

	// Stale entries from a previous frame must not leak into this one.
	h.OnTransformUpdated(taggedNode("stale", TagCaster))

	h.Render(s, nil, next)
	if drawn != 1 {
		t.Fatalf("next called %d times, want 1", drawn)
	}
	assertMatrix(t, "draw view", drawView, Identity)

	st := h.pipeline.Stats()
	if st.Casters != 1 || st.Lights != 1 {
		t.Errorf("stats = %+v, want 1 caster and 1 light", st)
	}
	if h.Buckets().Len() != 0 {
		t.Error("buckets should be reset after the frame")
	}

	// A second frame classifies everything again.
	h.Render(s, nil, next)
	if st := h.pipeline.Stats(); st.Casters != 1 || st.Lights != 1 {
		t.Errorf("frame 2 stats = %+v", st)
	}
}

func TestFrameHookRenderNotInstalled(t *testing.T) {
	s := NewScene()
	w := newTestWorld()
	s.Root().AddChild(w.root)
	h := newSoftHook(t)

	h.Render(s, nil, func(*ebiten.Image, Affine) {})
	if st := h.pipeline.Stats(); st.Casters != 1 || st.Lights != 1 {
		t.Errorf("stats = %+v, want 1 caster and 1 light", st)
	}
}

func TestFrameHookRenderViewport(t *testing.T) {
	s := NewScene()
	cam := NewCamera(Rect{X: 5, Y: 7, Width: 64, Height: 64})
	s.SetCamera(cam)
	h := newSoftHook(t)
	h.Install(s)

	var got Affine
	h.Render(s, nil, func(_ *ebiten.Image, view Affine) { got = view })
	want := Translation(5, 7).Multiply(cam.ViewMatrix())
	assertMatrix(t, "draw view", got, want)
}

func TestFrameHookDarkenSoft(t *testing.T) {
	s := NewScene()
	w := newTestWorld()
	s.Root().AddChild(w.root)
	h := newSoftHook(t)
	if err := h.pipeline.SetAmbientLight(0.5); err != nil {
		t.Fatal(err)
	}
	h.Install(s)
	h.Render(s, nil, func(*ebiten.Image, Affine) {})

	out := h.DarkenSoft(solidRGBA(64, 64, colorGray(200)))
	tests := []struct {
		name   string
		x, y   int
		lo, hi uint8
	}{
		{"light center", 32, 32, 190, 200},
		{"behind wall", 48, 32, 100, 100},
		{"out of range", 2, 2, 100, 100},
	}
	for _, tt := range tests {
		if v := out.RGBAAt(tt.x, tt.y).R; v < tt.lo || v > tt.hi {
			t.Errorf("%s = %d, want in [%d, %d]", tt.name, v, tt.lo, tt.hi)
		}
	}
}

func TestFrameHookDarkenSoftNotReady(t *testing.T) {
	p, err := NewPipeline(NewSoftRenderer(0, 0), DefaultConfig(64, 64))
	if err != nil {
		t.Fatal(err)
	}
	h := NewFrameHook(p)
	scene := solidRGBA(4, 4, colorGray(200))
	if got := h.DarkenSoft(scene); got != scene {
		t.Error("DarkenSoft before the first frame should return the scene")
	}
}
