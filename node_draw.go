package shadows

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// EbitenDrawer is implemented by members the GPU renderer can draw. view
// maps world coordinates to target pixels.
type EbitenDrawer interface {
	DrawEbiten(dst *ebiten.Image, view Affine)
}

// SoftDrawer is implemented by members the software renderer can draw.
// It returns false when the member's content cannot be read on the CPU.
type SoftDrawer interface {
	DrawSoft(dst *image.RGBA, view Affine) bool
}

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image.
// Used by untextured polygons.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// spriteImage returns the GPU image for a sprite node, uploading the CPU
// image once and caching it.
func (n *Node) spriteImage() *ebiten.Image {
	if n.Image == nil {
		return nil
	}
	if img, ok := n.Image.(*ebiten.Image); ok {
		return img
	}
	if n.ebitenImage == nil {
		n.ebitenImage = ebiten.NewImageFromImage(n.Image)
	}
	return n.ebitenImage
}

// InvalidateImage drops the cached GPU copy of Image. Call after mutating
// the pixels of a CPU-side sprite image.
func (n *Node) InvalidateImage() {
	if n.ebitenImage != nil && n.ebitenImage != n.Image {
		n.ebitenImage.Deallocate()
	}
	n.ebitenImage = nil
}

// DrawEbiten renders the node into dst under view * world.
func (n *Node) DrawEbiten(dst *ebiten.Image, view Affine) {
	m := view.Multiply(n.worldTransform)
	switch n.Type {
	case NodeTypeSprite:
		img := n.spriteImage()
		if img == nil {
			return
		}
		var op ebiten.DrawImageOptions
		op.GeoM = m.GeoM()
		dst.DrawImage(img, &op)
	case NodeTypePolygon:
		verts, inds := buildPolygonFan(n.Points, m, n.Color)
		if len(verts) == 0 {
			return
		}
		dst.DrawTriangles(verts, inds, ensureWhitePixel(), nil)
	}
}

// DrawSoft renders the node into dst under view * world.
func (n *Node) DrawSoft(dst *image.RGBA, view Affine) bool {
	m := view.Multiply(n.worldTransform)
	switch n.Type {
	case NodeTypeSprite:
		if n.Image == nil {
			return true
		}
		if _, gpu := n.Image.(*ebiten.Image); gpu {
			return false
		}
		xdraw.NearestNeighbor.Transform(dst, m.Aff3(), n.Image, n.Image.Bounds(), xdraw.Over, nil)
	case NodeTypePolygon:
		if len(n.Points) < 3 {
			return true
		}
		b := dst.Bounds()
		r := vector.NewRasterizer(b.Dx(), b.Dy())
		for i, p := range n.Points {
			x, y := m.Apply(p.X, p.Y)
			if i == 0 {
				r.MoveTo(float32(x), float32(y))
			} else {
				r.LineTo(float32(x), float32(y))
			}
		}
		r.ClosePath()
		c := n.Color
		src := image.NewUniform(color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)})
		r.Draw(dst, b, src, image.Point{})
	}
	return true
}

// buildPolygonFan generates transformed vertices and indices for a
// fan-triangulated polygon. N vertices, 3*(N-2) indices.
func buildPolygonFan(points []Vec2, m Affine, c Color) ([]ebiten.Vertex, []uint16) {
	n := len(points)
	if n < 3 {
		return nil, nil
	}
	verts := make([]ebiten.Vertex, n)
	inds := make([]uint16, (n-2)*3)
	for i, p := range points {
		x, y := m.Apply(p.X, p.Y)
		verts[i] = ebiten.Vertex{
			DstX:   float32(x),
			DstY:   float32(y),
			SrcX:   0.5,
			SrcY:   0.5,
			ColorR: float32(c.R * c.A),
			ColorG: float32(c.G * c.A),
			ColorB: float32(c.B * c.A),
			ColorA: float32(c.A),
		}
	}
	// Vertex 0 is the hub.
	for i := 0; i < n-2; i++ {
		inds[i*3+0] = 0
		inds[i*3+1] = uint16(i + 1)
		inds[i*3+2] = uint16(i + 2)
	}
	return verts, inds
}
