// Package canvas provides an image-backed 2D drawing surface with
// configurable fill color, global alpha, line width and composite mode.
package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"math"

	"golang.org/x/image/vector"
)

// kappa is the control-point distance for approximating a quarter circle
// with a cubic Bézier curve.
const kappa = 0.5522847498

// Canvas is a mutable RGBA pixel surface. It is not safe for concurrent use.
type Canvas struct {
	img *image.RGBA

	fill      color.RGBA
	blend     Blend
	alpha     float64
	lineWidth float64

	raster  *vector.Rasterizer
	maskBuf []uint8
}

// New creates a width x height canvas filled with opaque black.
func New(width, height int) *Canvas {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("canvas: invalid size %dx%d", width, height))
	}
	c := &Canvas{
		img:       image.NewRGBA(image.Rect(0, 0, width, height)),
		fill:      color.RGBA{A: 255},
		alpha:     1,
		lineWidth: 1,
		raster:    vector.NewRasterizer(1, 1),
	}
	c.Clear()
	return c
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Rect.Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

// Image returns the backing pixel buffer. Callers must not retain it across
// draw calls if they need a stable copy; use Snapshot for that.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Snapshot returns a copy of the current pixels.
func (c *Canvas) Snapshot() *image.RGBA {
	cp := image.NewRGBA(c.img.Rect)
	copy(cp.Pix, c.img.Pix)
	return cp
}

// SetFillColor sets the color used by fill operations.
func (c *Canvas) SetFillColor(col color.RGBA) { c.fill = col }

// FillColor returns the current fill color.
func (c *Canvas) FillColor() color.RGBA { return c.fill }

// ApplyStyle sets the fill color and composite mode together.
func (c *Canvas) ApplyStyle(s Style) {
	c.fill = s.Color
	c.blend = s.Blend
}

// SetBlend sets the composite mode for subsequent draws.
func (c *Canvas) SetBlend(b Blend) { c.blend = b }

// Blend returns the current composite mode.
func (c *Canvas) Blend() Blend { return c.blend }

// SetGlobalAlpha sets the opacity multiplier applied to every draw, clamped to [0, 1].
func (c *Canvas) SetGlobalAlpha(a float64) {
	switch {
	case math.IsNaN(a) || a < 0:
		a = 0
	case a > 1:
		a = 1
	}
	c.alpha = a
}

// GlobalAlpha returns the current opacity multiplier.
func (c *Canvas) GlobalAlpha() float64 { return c.alpha }

// SetLineWidth sets the stroke width. Non-positive widths are ignored.
func (c *Canvas) SetLineWidth(w float64) {
	if w > 0 {
		c.lineWidth = w
	}
}

// LineWidth returns the current stroke width.
func (c *Canvas) LineWidth() float64 { return c.lineWidth }

// Clear resets every pixel to opaque black using source-over compositing.
// The configured draw state is left untouched.
func (c *Canvas) Clear() {
	pix := c.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i] = 0
		pix[i+1] = 0
		pix[i+2] = 0
		pix[i+3] = 255
	}
}

// At returns the pixel at (x, y).
func (c *Canvas) At(x, y int) color.RGBA {
	return c.img.RGBAAt(x, y)
}

// FillRect fills an axis-aligned rectangle with exact area coverage at the edges.
func (c *Canvas) FillRect(x, y, w, h float64) {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	x0 := max(int(math.Floor(x)), 0)
	y0 := max(int(math.Floor(y)), 0)
	x1 := min(int(math.Ceil(x+w)), c.Width())
	y1 := min(int(math.Ceil(y+h)), c.Height())
	if x0 >= x1 || y0 >= y1 {
		return
	}

	sr, sg, sb, sa := c.source()
	for py := y0; py < y1; py++ {
		cy := overlap(float64(py), y, y+h)
		row := c.img.Pix[c.img.PixOffset(x0, py):]
		for px := x0; px < x1; px++ {
			cov := cy * overlap(float64(px), x, x+w)
			if cov <= 0 {
				continue
			}
			i := (px - x0) * 4
			compose(row[i:i+4], sr, sg, sb, sa, cov*c.alpha, c.blend)
		}
	}
}

// FillCircle fills an anti-aliased circle centered at (cx, cy).
func (c *Canvas) FillCircle(cx, cy, r float64) {
	if r <= 0 || math.IsNaN(cx) || math.IsNaN(cy) {
		return
	}
	bx0 := int(math.Floor(cx - r))
	by0 := int(math.Floor(cy - r))
	bx1 := int(math.Ceil(cx + r))
	by1 := int(math.Ceil(cy + r))
	if bx1 <= 0 || by1 <= 0 || bx0 >= c.Width() || by0 >= c.Height() {
		return
	}
	bw, bh := bx1-bx0, by1-by0

	// Rasterize in the local (unclipped) box so partially visible circles keep
	// their true coverage.
	lx := float32(cx - float64(bx0))
	ly := float32(cy - float64(by0))
	rr := float32(r)
	k := float32(kappa) * rr

	z := c.raster
	z.Reset(bw, bh)
	z.MoveTo(lx+rr, ly)
	z.CubeTo(lx+rr, ly+k, lx+k, ly+rr, lx, ly+rr)
	z.CubeTo(lx-k, ly+rr, lx-rr, ly+k, lx-rr, ly)
	z.CubeTo(lx-rr, ly-k, lx-k, ly-rr, lx, ly-rr)
	z.CubeTo(lx+k, ly-rr, lx+rr, ly-k, lx+rr, ly)
	z.ClosePath()

	mask := c.mask(bw, bh)
	z.Draw(mask, mask.Rect, image.Opaque, image.Point{})

	c.composeMask(mask, bx0, by0)
}

// EncodeJPEG writes the current pixels as a JPEG with the given quality (1-100).
func (c *Canvas) EncodeJPEG(w io.Writer, quality int) error {
	if err := jpeg.Encode(w, c.img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("encoding jpeg: %w", err)
	}
	return nil
}

// source returns the premultiplied fill color as floats.
func (c *Canvas) source() (r, g, b, a float64) {
	return float64(c.fill.R), float64(c.fill.G), float64(c.fill.B), float64(c.fill.A)
}

func (c *Canvas) mask(w, h int) *image.Alpha {
	n := w * h
	if cap(c.maskBuf) < n {
		c.maskBuf = make([]uint8, n)
	}
	buf := c.maskBuf[:n]
	clear(buf)
	return &image.Alpha{Pix: buf, Stride: w, Rect: image.Rect(0, 0, w, h)}
}

func (c *Canvas) composeMask(mask *image.Alpha, ox, oy int) {
	sr, sg, sb, sa := c.source()
	w, h := c.Width(), c.Height()
	for my := 0; my < mask.Rect.Dy(); my++ {
		py := oy + my
		if py < 0 || py >= h {
			continue
		}
		for mx := 0; mx < mask.Rect.Dx(); mx++ {
			px := ox + mx
			if px < 0 || px >= w {
				continue
			}
			m := mask.Pix[my*mask.Stride+mx]
			if m == 0 {
				continue
			}
			i := c.img.PixOffset(px, py)
			compose(c.img.Pix[i:i+4], sr, sg, sb, sa, float64(m)/255*c.alpha, c.blend)
		}
	}
}

// overlap returns how much of the unit cell [p, p+1) lies inside [lo, hi).
func overlap(p, lo, hi float64) float64 {
	return math.Max(0, math.Min(p+1, hi)-math.Max(p, lo))
}
