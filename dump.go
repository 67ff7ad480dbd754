package shadows

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Dump writes the layers of the last frame as PNG files into dir: the
// caster and overlay targets, the composite mask, and the depth map and mask
// of every light. Files are prefixed with a timestamp and label.
func (r *SoftRenderer) Dump(dir, label string) error {
	if !r.Ready() {
		return errors.New("shadows: dump: renderer has no targets")
	}
	d := newDumper(dir, label)
	d.write("casters", r.casters.Pix, r.casters.Rect)
	d.write("overlays", r.overlaySrc.Pix, r.overlaySrc.Rect)
	d.write("composite", r.composite.Pix, r.composite.Rect)
	for i, l := range r.layers {
		d.write(fmt.Sprintf("light%d_depth", i), l.Depth.Pix, l.Depth.Rect)
		d.write(fmt.Sprintf("light%d_mask", i), l.Mask.Pix, l.Mask.Rect)
	}
	return d.err()
}

// Dump writes the shared targets of the last frame as PNG files into dir.
// It reads pixels back from the GPU and must be called from the game loop
// after the frame's passes ran.
func (r *EbitenRenderer) Dump(dir, label string) error {
	if !r.Ready() {
		return errors.New("shadows: dump: renderer has no targets")
	}
	d := newDumper(dir, label)
	for _, t := range []struct {
		name string
		img  *ebiten.Image
	}{
		{"casters", r.casters.Image()},
		{"overlays", r.overlaySource()},
		{"composite", r.composite.Image()},
	} {
		b := t.img.Bounds()
		pix := make([]byte, 4*b.Dx()*b.Dy())
		t.img.ReadPixels(pix)
		d.write(t.name, pix, image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	return d.err()
}

type dumper struct {
	dir    string
	prefix string
	errs   []error
}

func newDumper(dir, label string) *dumper {
	d := &dumper{
		dir:    dir,
		prefix: time.Now().Format("20060102_150405") + "_" + sanitizeLabel(label),
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		d.errs = append(d.errs, fmt.Errorf("mkdir %s: %w", dir, err))
	}
	return d
}

func (d *dumper) write(name string, pix []byte, rect image.Rectangle) {
	if rect.Empty() {
		return
	}
	path := filepath.Join(d.dir, d.prefix+"_"+name+".png")
	if err := writePNG(path, unpremultiply(pix, rect)); err != nil {
		d.errs = append(d.errs, err)
	}
}

func (d *dumper) err() error {
	return errors.Join(d.errs...)
}

// unpremultiply converts premultiplied RGBA pixels to straight-alpha NRGBA.
func unpremultiply(pix []byte, rect image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for i := 0; i+3 < len(pix) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pix[i], pix[i+1], pix[i+2], pix[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
