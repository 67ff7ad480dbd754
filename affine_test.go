package shadows

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want Affine) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

// --- localTransform ---

func TestLocalTransformIdentity(t *testing.T) {
	n := NewContainer("test")
	assertMatrix(t, "identity", localTransform(n), Identity)
}

func TestLocalTransformTranslation(t *testing.T) {
	n := NewContainer("test")
	n.X = 10
	n.Y = 20
	assertMatrix(t, "translation", localTransform(n), Affine{1, 0, 0, 1, 10, 20})
}

func TestLocalTransformScale(t *testing.T) {
	n := NewContainer("test")
	n.ScaleX = 2
	n.ScaleY = 3
	assertMatrix(t, "scale", localTransform(n), Affine{2, 0, 0, 3, 0, 0})
}

func TestLocalTransformRotation90(t *testing.T) {
	n := NewContainer("test")
	n.Rotation = math.Pi / 2
	// cos(90)=0, sin(90)=1 → a=0, b=1, c=-1, d=0
	assertMatrix(t, "rot90", localTransform(n), Affine{0, 1, -1, 0, 0, 0})
}

func TestLocalTransformPivot(t *testing.T) {
	n := NewContainer("test")
	n.X = 100
	n.Y = 100
	n.PivotX = 10
	n.PivotY = 10
	// The pivot maps onto the node position.
	x, y := localTransform(n).Apply(10, 10)
	assertNear(t, "x", x, 100)
	assertNear(t, "y", y, 100)
}

// --- Affine ---

func TestAffineMultiplyOrder(t *testing.T) {
	scale := Affine{2, 0, 0, 2, 0, 0}
	move := Translation(5, 0)
	// move * scale: scale first, then move.
	x, y := move.Multiply(scale).Apply(1, 1)
	assertNear(t, "x", x, 7)
	assertNear(t, "y", y, 2)
}

func TestAffineInvertRoundTrip(t *testing.T) {
	m := Affine{0, 2, -2, 0, 30, -7}
	x, y := m.Apply(3, 4)
	bx, by := m.Invert().Apply(x, y)
	assertNear(t, "x", bx, 3)
	assertNear(t, "y", by, 4)
	assertMatrix(t, "m*inv", m.Multiply(m.Invert()), Identity)
}

func TestAffineInvertSingular(t *testing.T) {
	m := Affine{0, 0, 0, 0, 5, 5}
	assertMatrix(t, "singular", m.Invert(), Identity)
}

func TestAffineScale(t *testing.T) {
	tests := []struct {
		name string
		m    Affine
		want float64
	}{
		{"identity", Identity, 1},
		{"uniform", Affine{3, 0, 0, 3, 10, 10}, 3},
		{"rotated", Affine{0, 2, -2, 0, 0, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertNear(t, "Scale()", tt.m.Scale(), tt.want)
		})
	}
}

func TestAffineGeoM(t *testing.T) {
	m := Affine{1, 2, 3, 4, 5, 6}
	g := m.GeoM()
	x, y := g.Apply(1, 1)
	wx, wy := m.Apply(1, 1)
	assertNear(t, "x", x, wx)
	assertNear(t, "y", y, wy)
}

func TestAffineAff3(t *testing.T) {
	m := Affine{1, 2, 3, 4, 5, 6}
	a := m.Aff3()
	// Row-major: x' = a[0]x + a[1]y + a[2]
	x := a[0]*1 + a[1]*1 + a[2]
	y := a[3]*1 + a[4]*1 + a[5]
	wx, wy := m.Apply(1, 1)
	assertNear(t, "x", x, wx)
	assertNear(t, "y", y, wy)
}
