package renderer

import (
	"image"
	"image/color"
	gomath "math"

	"github.com/spaghettifunk/prism/engine/math"
)

/**
 * @brief Framebuffer is a plain software render target for backends that have
 * no rasterizer of their own. Triangles are expected in pixel space; pixels
 * outside the buffer are dropped.
 */
type Framebuffer struct {
	img *image.NRGBA
}

func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

func (f *Framebuffer) Size() (int, int) {
	b := f.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize drops the current contents.
func (f *Framebuffer) Resize(width, height int) {
	f.img = image.NewNRGBA(image.Rect(0, 0, width, height))
}

func (f *Framebuffer) Image() *image.NRGBA {
	return f.img
}

func (f *Framebuffer) At(x, y int) color.NRGBA {
	return f.img.NRGBAAt(x, y)
}

func (f *Framebuffer) Set(x, y int, c color.NRGBA) {
	f.img.SetNRGBA(x, y, c)
}

func (f *Framebuffer) Clear(c color.NRGBA) {
	pix := f.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
	}
}

/**
 * @brief Fills the pixels whose centres fall inside the triangle. Both
 * windings are accepted; zero-area triangles draw nothing.
 */
func (f *Framebuffer) FillTriangle(t math.Triangle, c color.NRGBA) {
	w, h := f.Size()
	p0, p1, p2 := t.Points[0], t.Points[1], t.Points[2]

	minX := clampInt(int(gomath.Floor(float64(min(p0.X, p1.X, p2.X)))), 0, w-1)
	maxX := clampInt(int(gomath.Ceil(float64(max(p0.X, p1.X, p2.X)))), 0, w-1)
	minY := clampInt(int(gomath.Floor(float64(min(p0.Y, p1.Y, p2.Y)))), 0, h-1)
	maxY := clampInt(int(gomath.Ceil(float64(max(p0.Y, p1.Y, p2.Y)))), 0, h-1)

	area := edgeFn(p0.X, p0.Y, p1.X, p1.Y, p2.X, p2.Y)
	if area == 0 || area != area {
		return
	}
	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			w0 := edgeFn(p1.X, p1.Y, p2.X, p2.Y, px, py)
			w1 := edgeFn(p2.X, p2.Y, p0.X, p0.Y, px, py)
			w2 := edgeFn(p0.X, p0.Y, p1.X, p1.Y, px, py)
			if area < 0 {
				w0, w1, w2 = -w0, -w1, -w2
			}
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			f.img.SetNRGBA(x, y, c)
		}
	}
}

// StrokeTriangle draws the three edges. Triangles far outside the buffer are skipped.
func (f *Framebuffer) StrokeTriangle(t math.Triangle, c color.NRGBA) {
	for _, p := range t.Points {
		if !(p.X > -maxLineExtent && p.X < maxLineExtent && p.Y > -maxLineExtent && p.Y < maxLineExtent) {
			return
		}
	}
	for i := 0; i < 3; i++ {
		a, b := t.Points[i], t.Points[(i+1)%3]
		f.DrawLine(int(a.X), int(a.Y), int(b.X), int(b.Y), c)
	}
}

// DrawLine is Bresenham's line.
func (f *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.NRGBA) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		f.img.SetNRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

const maxLineExtent = 1 << 15

func edgeFn(x0, y0, x1, y1, x, y float32) float32 {
	return (x-x0)*(y1-y0) - (y-y0)*(x1-x0)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
