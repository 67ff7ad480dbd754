package shadows

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// DrawFunc draws the scene's visible members into dst under view.
type DrawFunc func(dst *ebiten.Image, view Affine)

// RenderHook wraps the scene draw. It must call next exactly once to get
// the scene drawn, into screen or into a target of its own.
type RenderHook func(s *Scene, screen *ebiten.Image, next DrawFunc)

type transformHookEntry struct {
	id int
	fn func(Member)
}

type renderHookEntry struct {
	id int
	fn RenderHook
}

// Scene is the top-level object that owns the node tree and the camera, and
// runs the installed hooks around transform updates and drawing.
type Scene struct {
	root   *Node
	camera *Camera
	debug  bool

	transformHooks []transformHookEntry
	renderHooks    []renderHookEntry
	nextHookID     int
}

// NewScene creates a new scene with a pre-created root container.
func NewScene() *Scene {
	return &Scene{root: NewContainer("root")}
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// Camera returns the scene camera, or nil when the scene is drawn without one.
func (s *Scene) Camera() *Camera {
	return s.camera
}

// SetCamera sets the camera the scene is viewed through. nil restores the
// identity view.
func (s *Scene) SetCamera(c *Camera) {
	s.camera = c
}

// View returns the matrix mapping world coordinates to viewport-local pixels.
func (s *Scene) View() Affine {
	if s.camera == nil {
		return Identity
	}
	return s.camera.ViewMatrix()
}

// Viewport returns the screen rectangle the scene is drawn into. Without a
// camera it is the zero Rect, meaning the whole screen.
func (s *Scene) Viewport() Rect {
	if s.camera == nil {
		return Rect{}
	}
	return s.camera.Viewport
}

// Update advances the camera and refreshes world transforms, reporting every
// visible node to the transform hooks.
func (s *Scene) Update() {
	dt := float32(1.0 / float64(ebiten.TPS()))
	if s.camera != nil {
		s.camera.update(dt)
	}
	s.UpdateTransforms()
}

// UpdateTransforms recomputes dirty world transforms from the root down and
// calls every transform hook once per visible node, root included.
func (s *Scene) UpdateTransforms() {
	var visit func(*Node)
	if len(s.transformHooks) > 0 {
		visit = s.notifyTransform
	}
	updateWorldTransform(s.root, Identity, false, visit)
}

func (s *Scene) notifyTransform(n *Node) {
	for _, h := range s.transformHooks {
		h.fn(n)
	}
}

// Draw draws the scene into screen, through the render hooks if any are
// installed. Hooks added later wrap hooks added earlier.
func (s *Scene) Draw(screen *ebiten.Image) {
	if len(s.renderHooks) == 0 {
		vp := s.Viewport()
		s.drawWorld(screen, Translation(vp.X, vp.Y).Multiply(s.View()))
		return
	}
	s.drawHook(len(s.renderHooks)-1, screen)
}

func (s *Scene) drawHook(i int, screen *ebiten.Image) {
	h := s.renderHooks[i]
	var next DrawFunc
	if i == 0 {
		next = s.drawWorld
	} else {
		next = func(dst *ebiten.Image, view Affine) {
			s.drawHook(i-1, dst)
		}
	}
	h.fn(s, screen, next)
}

// drawWorld draws visible nodes in tree order.
func (s *Scene) drawWorld(dst *ebiten.Image, view Affine) {
	drawSubtree(s.root, dst, view)
}

func drawSubtree(n *Node, dst *ebiten.Image, view Affine) {
	if !n.Visible {
		return
	}
	n.DrawEbiten(dst, view)
	for _, child := range n.children {
		drawSubtree(child, dst, view)
	}
}

// AddTransformHook registers fn to be called for every visible node each
// time transforms are updated. It returns a handle for RemoveTransformHook.
func (s *Scene) AddTransformHook(fn func(Member)) int {
	s.nextHookID++
	s.transformHooks = append(s.transformHooks, transformHookEntry{id: s.nextHookID, fn: fn})
	return s.nextHookID
}

// RemoveTransformHook unregisters a transform hook. Unknown handles are ignored.
func (s *Scene) RemoveTransformHook(id int) {
	for i, h := range s.transformHooks {
		if h.id == id {
			s.transformHooks = append(s.transformHooks[:i], s.transformHooks[i+1:]...)
			return
		}
	}
}

// AddRenderHook registers a hook around Draw. It returns a handle for
// RemoveRenderHook.
func (s *Scene) AddRenderHook(fn RenderHook) int {
	s.nextHookID++
	s.renderHooks = append(s.renderHooks, renderHookEntry{id: s.nextHookID, fn: fn})
	return s.nextHookID
}

// RemoveRenderHook unregisters a render hook. Unknown handles are ignored.
func (s *Scene) RemoveRenderHook(id int) {
	for i, h := range s.renderHooks {
		if h.id == id {
			s.renderHooks = append(s.renderHooks[:i], s.renderHooks[i+1:]...)
			return
		}
	}
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics and tree depth warnings are printed to stderr.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}
