package ebitengine

import (
	"errors"
	"fmt"
	"image/color"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/spaghettifunk/prism/engine"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/pipeline"
	"github.com/spaghettifunk/prism/engine/renderer"
)

func tri(colour math.Vec4) math.Triangle {
	return math.Triangle{
		Points: [3]math.Vec4{
			math.NewVec4(0, 0, 0, 1),
			math.NewVec4(10, 0, 0, 1),
			math.NewVec4(0, 10, 0, 1),
		},
		Colour: colour,
	}
}

func TestAppendTriangleSplitsBatches(t *testing.T) {
	var batches []batch
	red := color.NRGBA{R: 255, A: 255}
	n := maxBatchVertices/3 + 1
	for i := 0; i < n; i++ {
		batches = appendTriangle(batches, tri(math.NewVec4(1, 0, 0, 1)), red)
	}
	if len(batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(batches))
	}
	if got := len(batches[0].vertices); got != maxBatchVertices {
		t.Errorf("first batch holds %d vertices", got)
	}
	second := batches[1]
	if len(second.vertices) != 3 || len(second.indices) != 3 {
		t.Fatalf("second batch = %d vertices, %d indices", len(second.vertices), len(second.indices))
	}
	if second.indices[0] != 0 || second.indices[2] != 2 {
		t.Errorf("second batch indices restart at %v", second.indices)
	}
	last := batches[0].indices[len(batches[0].indices)-1]
	if int(last) != maxBatchVertices-1 {
		t.Errorf("last index of first batch = %d", last)
	}
	v := second.vertices[1]
	if v.DstX != 10 || v.DstY != 0 || v.ColorR != 1 || v.ColorG != 0 || v.ColorA != 1 {
		t.Errorf("vertex = %+v", v)
	}
}

func TestAppendOutline(t *testing.T) {
	lines := appendOutline(nil, tri(math.NewVec4(1, 1, 1, 1)), color.NRGBA{A: 255})
	if len(lines) != 3 {
		t.Fatalf("lines = %d", len(lines))
	}
	// The outline closes back on the first point.
	if l := lines[2]; l.x0 != 0 || l.y0 != 10 || l.x1 != 0 || l.y1 != 0 {
		t.Errorf("closing edge = %+v", l)
	}
}

func TestBackendPublishesFrames(t *testing.T) {
	b := New()
	if err := b.BeginFrame(math.NewVec4(0, 0, 0, 1)); !errors.Is(err, renderer.ErrNotInitialized) {
		t.Errorf("BeginFrame before Initialize = %v", err)
	}
	if b.Mode() != pipeline.ModeAccelerated {
		t.Errorf("mode = %v", b.Mode())
	}
	if err := b.Initialize(pipeline.Viewport{Width: 64, Height: 48}); err != nil {
		t.Fatal(err)
	}

	_ = b.BeginFrame(math.NewVec4(0, 0, 1, 0.2))
	_ = b.DrawTriangles([]math.Triangle{tri(math.NewVec4(1, 0, 0, 1))}, false)
	_ = b.DrawTriangles([]math.Triangle{tri(math.NewVec4(0, 1, 0, 1))}, true)
	_ = b.DrawText([]string{"fps 60"})
	if len(b.presented.batches) != 0 {
		t.Fatalf("frame visible before EndFrame")
	}
	if err := b.EndFrame(); err != nil {
		t.Fatal(err)
	}

	f := b.presented
	if f.clear != (color.NRGBA{B: 255, A: 255}) {
		t.Errorf("clear = %v", f.clear)
	}
	if len(f.batches) != 1 || len(f.lines) != 3 || len(f.overlay) != 1 {
		t.Errorf("frame = %d batches, %d lines, %d overlay", len(f.batches), len(f.lines), len(f.overlay))
	}

	// Recording the next frame leaves the presented one intact.
	_ = b.BeginFrame(math.NewVec4(0, 0, 0, 1))
	_ = b.DrawTriangles([]math.Triangle{tri(math.NewVec4(1, 1, 1, 1))}, false)
	if b.presented.batches[0].vertices[0].ColorG != 0 {
		t.Errorf("presented frame overwritten while recording")
	}

	if err := b.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if err := b.Resized(pipeline.Viewport{Width: 1, Height: 1}); !errors.Is(err, renderer.ErrNotInitialized) {
		t.Errorf("Resized after Shutdown = %v", err)
	}
}

func TestKeyStates(t *testing.T) {
	held := map[ebiten.Key]bool{
		ebiten.KeyW:          true,
		ebiten.KeyShiftRight: true,
		ebiten.KeyDigit3:     true,
		ebiten.KeyEqual:      true,
	}
	states := keyStates(func(k ebiten.Key) bool { return held[k] })

	tests := []struct {
		code core.KeyCode
		want bool
	}{
		{core.KEY_W, true},
		{core.KEY_S, false},
		{core.KEY_SHIFT, true},
		{core.KEY_RSHIFT, true},
		{core.KEY_LSHIFT, false},
		{core.KEY_3, true},
		{core.KEY_PLUS, true},
		{core.KEY_Z, false},
	}
	for _, tc := range tests {
		if got := states[tc.code]; got != tc.want {
			t.Errorf("key 0x%02X = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestLayoutPostsResize(t *testing.T) {
	bus := core.NewEventBus()
	h := NewHost(New(), "test", 320, 200, 0)
	h.bus = bus

	var sizes [][2]uint32
	if err := bus.Register(core.EVENT_CODE_RESIZED, t, func(ctx core.EventContext) bool {
		e := ctx.Data.(*core.SystemEvent)
		sizes = append(sizes, [2]uint32{e.WindowWidth, e.WindowHeight})
		return true
	}); err != nil {
		t.Fatal(err)
	}

	if w, hh := h.Layout(320, 200); w != 320 || hh != 200 {
		t.Errorf("Layout = %dx%d", w, hh)
	}
	h.Layout(640, 400)
	h.Layout(640, 400)
	bus.Dispatch()

	if len(sizes) != 1 || sizes[0] != [2]uint32{640, 400} {
		t.Errorf("resize events = %v", sizes)
	}
	if vp := h.Viewport(); vp.Width != 640 || vp.Height != 400 {
		t.Errorf("viewport = %+v", vp)
	}
}

func TestTerminate(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"running", nil, nil},
		{"quit", engine.ErrQuit, ebiten.Termination},
		{"wrapped quit", fmt.Errorf("frame: %w", engine.ErrQuit), ebiten.Termination},
		{"failure", boom, boom},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := terminate(tc.in); got != tc.want {
				t.Errorf("terminate(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
