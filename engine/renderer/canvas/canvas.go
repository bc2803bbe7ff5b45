package canvas

import (
	"fmt"
	"image"
	"image/draw"
	"io"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/pipeline"
	"github.com/spaghettifunk/prism/engine/renderer"
)

const (
	DefaultFontSize = 14.0
	textMargin      = 8.0
)

/**
 * @brief Backend rasterizes screen-space triangles into an offscreen gg
 * canvas. It has no window; frames are read back through Image or written
 * out as PNG. Used for frame export and headless runs.
 */
type Backend struct {
	dc        *gg.Context
	font      *text.FontSource
	face      text.Face
	fontSize  float64
	lineWidth float64
}

func New() *Backend {
	return &Backend{fontSize: DefaultFontSize, lineWidth: 1}
}

func (b *Backend) Name() string {
	return "canvas"
}

// Mode is screen space with edge clipping; gg fills paths without a depth buffer.
func (b *Backend) Mode() pipeline.Mode {
	return pipeline.ModeScreen2D
}

func (b *Backend) Initialize(vp pipeline.Viewport) error {
	font, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return fmt.Errorf("load overlay font: %w", err)
	}
	b.font = font
	b.face = font.Face(b.fontSize)
	b.dc = gg.NewContext(int(vp.Width), int(vp.Height))
	b.dc.SetFont(b.face)
	return nil
}

func (b *Backend) Shutdown() error {
	if b.dc == nil {
		return nil
	}
	err := b.dc.Close()
	if ferr := b.font.Close(); err == nil {
		err = ferr
	}
	b.dc = nil
	return err
}

func (b *Backend) Resized(vp pipeline.Viewport) error {
	if b.dc == nil {
		return renderer.ErrNotInitialized
	}
	return b.dc.Resize(int(vp.Width), int(vp.Height))
}

func (b *Backend) BeginFrame(clear math.Vec4) error {
	if b.dc == nil {
		return renderer.ErrNotInitialized
	}
	b.dc.ClearWithColor(gg.RGBA2(float64(clear.X), float64(clear.Y), float64(clear.Z), float64(clear.W)))
	return nil
}

func (b *Backend) DrawTriangles(triangles []math.Triangle, wireframe bool) error {
	b.dc.SetLineWidth(b.lineWidth)
	for i := range triangles {
		t := &triangles[i]
		c := t.Colour
		b.dc.SetRGBA(float64(c.X), float64(c.Y), float64(c.Z), float64(c.W))
		b.dc.MoveTo(float64(t.Points[0].X), float64(t.Points[0].Y))
		b.dc.LineTo(float64(t.Points[1].X), float64(t.Points[1].Y))
		b.dc.LineTo(float64(t.Points[2].X), float64(t.Points[2].Y))
		b.dc.ClosePath()
		var err error
		if wireframe {
			err = b.dc.Stroke()
		} else {
			err = b.dc.Fill()
		}
		if err != nil {
			return fmt.Errorf("draw triangle %d: %w", i, err)
		}
	}
	return nil
}

func (b *Backend) DrawText(lines []string) error {
	lineHeight := b.face.Metrics().LineHeight()
	b.dc.SetRGBA(1, 1, 1, 1)
	for i, line := range lines {
		b.dc.DrawString(line, textMargin, textMargin+lineHeight*float64(i+1))
	}
	return nil
}

func (b *Backend) EndFrame() error {
	return b.dc.FlushGPU()
}

func (b *Backend) Image() image.Image {
	return b.dc.Image()
}

// Snapshot copies the current frame so it can be encoded while the next one is drawn.
func (b *Backend) Snapshot() *image.RGBA {
	src := b.dc.Image()
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

func (b *Backend) EncodePNG(w io.Writer) error {
	return b.dc.EncodePNG(w)
}

func (b *Backend) SavePNG(path string) error {
	return b.dc.SavePNG(path)
}
