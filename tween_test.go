package shadows

import (
	"errors"
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestTweenPosition(t *testing.T) {
	n := NewContainer("n")
	updateWorldTransform(n, Identity, false, nil)
	g := TweenPosition(n, 100, 50, 1, ease.Linear)

	g.Update(0.5)
	if math.Abs(n.X-50) > 0.01 || math.Abs(n.Y-25) > 0.01 {
		t.Errorf("halfway = (%v,%v), want (50,25)", n.X, n.Y)
	}
	if !n.transformDirty {
		t.Error("tween should mark the node dirty")
	}
	if g.Done {
		t.Error("tween should not be done halfway")
	}
	g.Update(0.6)
	if n.X != 100 || n.Y != 50 || !g.Done {
		t.Errorf("finished = (%v,%v) done=%v", n.X, n.Y, g.Done)
	}
}

func TestTweenRotation(t *testing.T) {
	n := NewContainer("n")
	g := TweenRotation(n, 2, 1, ease.Linear)
	g.Update(1)
	if math.Abs(n.Rotation-2) > 1e-6 || !g.Done {
		t.Errorf("rotation = %v done=%v, want 2 and done", n.Rotation, g.Done)
	}
}

func TestTweenStopsOnDisposedNode(t *testing.T) {
	n := NewContainer("n")
	g := TweenPosition(n, 100, 100, 1, ease.Linear)
	n.Dispose()
	g.Update(0.5)
	if !g.Done {
		t.Error("tween of a disposed node should be done")
	}
	if n.X != 0 {
		t.Errorf("disposed node X = %v, want 0", n.X)
	}
}

func TestTweenLightRange(t *testing.T) {
	l := NewLight(100, 1)
	n := NewLightNode("light", l)
	g := TweenLightRange(n, 200, 1, ease.Linear)
	g.Update(0.5)
	if math.Abs(l.Range()-150) > 0.01 {
		t.Errorf("Range halfway = %v, want 150", l.Range())
	}
	g.Update(0.5)
	if l.Range() != 200 || !g.Done {
		t.Errorf("Range = %v done=%v, want 200 and done", l.Range(), g.Done)
	}
	if g.Err != nil {
		t.Errorf("Err = %v, want nil", g.Err)
	}
}

func TestTweenLightGoesThroughSetters(t *testing.T) {
	l := NewLight(100, 1)
	g := TweenLightIntensity(NewLightNode("light", l), -1, 1, ease.Linear)
	g.Update(1)
	// The setter rejects the negative end value and clamps to 0.
	if l.Intensity() != 0 {
		t.Errorf("Intensity = %v, want 0", l.Intensity())
	}
	if !errors.Is(g.Err, ErrInvalidIntensity) {
		t.Errorf("Err = %v, want ErrInvalidIntensity", g.Err)
	}
	if err := l.Validate(); err != nil {
		t.Errorf("light invalid after tween: %v", err)
	}
}

func TestTweenLightScatter(t *testing.T) {
	l := NewLight(100, 1)
	g := TweenLightScatter(NewLightNode("light", l), 0, 1, ease.Linear)
	g.Update(1)
	if l.ScatterRange() != 0 {
		t.Errorf("ScatterRange = %v, want 0", l.ScatterRange())
	}
}

func TestTweenLightStopsOnDisposedNode(t *testing.T) {
	l := NewLight(100, 1)
	n := NewLightNode("light", l)
	g := TweenLightRange(n, 200, 1, ease.Linear)
	n.Dispose()
	g.Update(0.5)
	if !g.Done {
		t.Error("tween of a disposed light node should be done")
	}
	if l.Range() != 100 {
		t.Errorf("Range = %v, want 100", l.Range())
	}
}

func TestTweenLightWithoutLightPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for a node without a light")
		}
	}()
	TweenLightRange(NewContainer("n"), 10, 1, ease.Linear)
}
