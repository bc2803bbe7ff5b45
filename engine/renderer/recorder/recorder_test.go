package recorder

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/pipeline"
	"github.com/spaghettifunk/prism/engine/renderer"
)

func TestRecorderKeepsHistory(t *testing.T) {
	b := New(pipeline.ModeScreen2D, 2)
	r := renderer.New(b, renderer.Options{Overlay: true, ClearColour: math.NewVec4(0, 0, 0, 1)})
	if err := r.Initialize(pipeline.Viewport{Width: 32, Height: 32}); err != nil {
		t.Fatal(err)
	}

	tri := math.Triangle{Points: [3]math.Vec4{{X: 1, Y: 1, W: 1}, {X: 5, Y: 1, W: 1}, {X: 1, Y: 5, W: 1}}}
	buf := []math.Triangle{tri}
	for i := 0; i < 3; i++ {
		if err := r.DrawFrame(&renderer.RenderPacket{Triangles: buf, Overlay: []string{"hello"}}); err != nil {
			t.Fatal(err)
		}
	}
	// The caller reuses its buffer; recorded frames must not change.
	buf[0].Points[0].X = 99

	last, ok := b.Last()
	if !ok || len(last.Triangles) != 1 || last.Triangles[0].Points[0].X != 1 {
		t.Fatalf("last frame = %+v", last)
	}
	if len(last.Text) != 1 || last.Text[0] != "hello" {
		t.Errorf("text = %v", last.Text)
	}
	if b.FrameCount() != 3 {
		t.Errorf("frame count = %d", b.FrameCount())
	}
	if frames := b.Drain(); len(frames) != 2 {
		t.Errorf("retained %d frames, want 2", len(frames))
	}
	if frames := b.Drain(); len(frames) != 0 {
		t.Errorf("drain twice returned %d frames", len(frames))
	}
}

func TestRecorderRejectsDrawOutsideFrame(t *testing.T) {
	b := New(pipeline.ModeClipSpace, 0)
	if b.Mode() != pipeline.ModeClipSpace {
		t.Errorf("mode = %v", b.Mode())
	}
	if err := b.DrawTriangles(nil, false); !errors.Is(err, ErrFrameNotStarted) {
		t.Errorf("DrawTriangles = %v", err)
	}
	if err := b.EndFrame(); !errors.Is(err, ErrFrameNotStarted) {
		t.Errorf("EndFrame = %v", err)
	}
	if _, ok := b.Last(); ok {
		t.Errorf("Last reported a frame before any was drawn")
	}
}
