package shadows

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Member is a scene-graph node as seen by the shadow pipeline. The pipeline
// only reads members; it never creates, reparents or destroys them.
type Member interface {
	// MemberID returns a stable, small, non-zero integer identity.
	MemberID() uint32
	// MemberTag returns the member's shadow role.
	MemberTag() Tag
	// WorldTransform returns the member's last computed world matrix.
	WorldTransform() Affine
	// IsVisible reports whether the member takes part in this frame.
	IsVisible() bool
}

// LightMember is a Member that acts as a point of view.
type LightMember interface {
	Member
	PointOfView() *Light
}

// NodeType distinguishes what a Node draws.
type NodeType uint8

const (
	NodeTypeContainer NodeType = iota // group node with no visual output
	NodeTypeSprite                    // draws Image under its world transform
	NodeTypePolygon                   // draws a filled polygon in Color
	NodeTypeLight                     // carries a *Light, draws nothing
)

// nodeIDCounter is a plain counter (no atomic; the frame model is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is the reference scene member used by Scene. A single flat struct is
// used for all node types to avoid interface dispatch on the hot path.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Type NodeType
	Tag  Tag

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local)
	X, Y     float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
	PivotX   float64
	PivotY   float64

	worldTransform Affine
	transformDirty bool

	Visible bool

	// Sprite content (NodeTypeSprite). An *ebiten.Image can only be drawn by
	// the GPU renderer; any other image.Image works with both.
	Image       image.Image
	ebitenImage *ebiten.Image

	// Polygon content (NodeTypePolygon), in local coordinates.
	Points []Vec2
	Color  Color

	// Light (NodeTypeLight)
	Light *Light

	UserData any

	disposed bool
}

func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Color = ColorWhite
	n.Visible = true
	n.transformDirty = true
	n.worldTransform = Identity
}

// NewContainer creates a container node with no visual representation.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeContainer}
	nodeDefaults(n)
	return n
}

// NewSprite creates a sprite node that draws img with its top-left corner at
// the node's local origin.
func NewSprite(name string, img image.Image) *Node {
	n := &Node{Name: name, Type: NodeTypeSprite, Image: img}
	nodeDefaults(n)
	return n
}

// NewPolygon creates a node drawing a filled polygon. Points are in local
// coordinates; concave outlines are supported by the software renderer, the
// GPU renderer fan-triangulates and expects convex outlines.
func NewPolygon(name string, points []Vec2, c Color) *Node {
	n := &Node{Name: name, Type: NodeTypePolygon, Points: points}
	nodeDefaults(n)
	n.Color = c
	return n
}

// NewLightNode creates a node carrying l, tagged as a light source.
// Panics if l is nil.
func NewLightNode(name string, l *Light) *Node {
	if l == nil {
		panic("shadows: cannot create light node with nil light")
	}
	n := &Node{Name: name, Type: NodeTypeLight, Tag: TagLight, Light: l}
	nodeDefaults(n)
	return n
}

// MemberID implements Member.
func (n *Node) MemberID() uint32 { return n.ID }

// MemberTag implements Member.
func (n *Node) MemberTag() Tag { return n.Tag }

// WorldTransform implements Member.
func (n *Node) WorldTransform() Affine { return n.worldTransform }

// IsVisible implements Member.
func (n *Node) IsVisible() bool { return n.Visible && !n.disposed }

// PointOfView implements LightMember.
func (n *Node) PointOfView() *Light { return n.Light }

// WorldPosition returns the node's local origin in world space.
func (n *Node) WorldPosition() (float64, float64) {
	return n.worldTransform[4], n.worldTransform[5]
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("shadows: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild")
		debugCheckDisposed(child, "AddChild")
	}
	if isAncestor(child, n) {
		panic("shadows: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	markSubtreeDirty(child)
	if globalDebug {
		debugCheckTreeDepth(child)
	}
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("shadows: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	markSubtreeDirty(child)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// Dispose removes this node from its parent, marks it and all descendants
// as disposed and releases the cached GPU image.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	if n.ebitenImage != nil && n.ebitenImage != n.Image {
		n.ebitenImage.Deallocate()
	}
	n.ebitenImage = nil
	n.Image = nil
	n.Light = nil
	n.UserData = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Transform property setters ---

// SetPosition sets the node's local X and Y and marks it dirty.
func (n *Node) SetPosition(x, y float64) {
	n.X = x
	n.Y = y
	n.transformDirty = true
}

// SetScale sets the node's ScaleX and ScaleY and marks it dirty.
func (n *Node) SetScale(sx, sy float64) {
	n.ScaleX = sx
	n.ScaleY = sy
	n.transformDirty = true
}

// SetRotation sets the node's rotation (in radians) and marks it dirty.
func (n *Node) SetRotation(r float64) {
	n.Rotation = r
	n.transformDirty = true
}

// MarkDirty forces recomputation of the world transform on the next
// traversal. Useful after bulk-setting fields directly.
func (n *Node) MarkDirty() {
	n.transformDirty = true
}

// updateWorldTransform recomputes n's world matrix and then reports it to
// visit, recursing into visible children. Invisible subtrees are neither
// updated nor reported.
func updateWorldTransform(n *Node, parent Affine, parentRecomputed bool, visit func(*Node)) {
	if !n.Visible {
		return
	}
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		n.worldTransform = parent.Multiply(localTransform(n))
		n.transformDirty = false
	}
	if visit != nil {
		visit(n)
	}
	for _, child := range n.children {
		updateWorldTransform(child, n.worldTransform, recompute, visit)
	}
}

// --- Helpers ---

func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}
