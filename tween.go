package shadows

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 fields simultaneously. Create one via
// the convenience constructors and call Update(dt) each frame. Node tweens
// mark the node dirty; light tweens write through the light's setters so the
// values stay validated, and keep the last setter error in Err. If the
// target node is disposed, the group stops.
//
// There is no global animation manager; users call Update themselves.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	apply  func() error
	target *Node
	Done   bool
	Err    error
}

// Update advances all tweens by dt seconds and writes values to the target
// fields. If the target node has been disposed, Done is set to true and no
// writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}

	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone

	if g.apply != nil {
		if err := g.apply(); err != nil {
			g.Err = err
			Logger().Warn("tween value rejected", "node", g.target.Name, "err", err)
		}
	}
	if g.target != nil {
		g.target.MarkDirty()
	}
}

// TweenPosition creates a TweenGroup that animates node.X and node.Y to the
// given target coordinates over the specified duration using the easing function.
func TweenPosition(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: node}
	g.tweens[0] = gween.New(float32(node.X), float32(toX), duration, fn)
	g.tweens[1] = gween.New(float32(node.Y), float32(toY), duration, fn)
	g.fields[0] = &node.X
	g.fields[1] = &node.Y
	return g
}

// TweenRotation creates a TweenGroup that animates node.Rotation to the target
// value over the specified duration using the easing function.
func TweenRotation(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: node}
	g.tweens[0] = gween.New(float32(node.Rotation), float32(to), duration, fn)
	g.fields[0] = &node.Rotation
	return g
}

// TweenLightRange animates the range of the light on node.
func TweenLightRange(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return tweenLight(node, lightOf(node).Range(), to, duration, fn, (*Light).SetRange)
}

// TweenLightIntensity animates the intensity of the light on node.
func TweenLightIntensity(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return tweenLight(node, lightOf(node).Intensity(), to, duration, fn, (*Light).SetIntensity)
}

// TweenLightScatter animates the scatter range of the light on node,
// softening or hardening its penumbra.
func TweenLightScatter(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return tweenLight(node, lightOf(node).ScatterRange(), to, duration, fn, (*Light).SetScatterRange)
}

func lightOf(node *Node) *Light {
	if node == nil || node.Light == nil {
		panic("shadows: light tween on a node without a light")
	}
	return node.Light
}

func tweenLight(node *Node, from, to float64, duration float32, fn ease.TweenFunc, set func(*Light, float64) error) *TweenGroup {
	v := from
	g := &TweenGroup{count: 1, target: node}
	g.tweens[0] = gween.New(float32(from), float32(to), duration, fn)
	g.fields[0] = &v
	g.apply = func() error { return set(node.Light, v) }
	return g
}
