package terminal

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/pipeline"
	"github.com/spaghettifunk/prism/engine/renderer"
)

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	screen.SetSize(20, 10)
	return screen
}

func cell(t *testing.T, screen tcell.SimulationScreen, x, y int) tcell.SimCell {
	t.Helper()
	cells, w, _ := screen.GetContents()
	return cells[y*w+x]
}

func TestViewportFor(t *testing.T) {
	if vp := ViewportFor(80, 25); vp != (pipeline.Viewport{Width: 80, Height: 50}) {
		t.Errorf("ViewportFor(80, 25) = %v", vp)
	}
	if vp := ViewportFor(-1, 3); vp.Width != 0 {
		t.Errorf("negative width gave %v", vp)
	}
}

func TestBackendDrawsHalfBlocks(t *testing.T) {
	screen := newScreen(t)
	defer screen.Fini()

	b := New(screen)
	r := renderer.New(b, renderer.Options{ClearColour: math.NewVec4(0, 0, 0, 1)})
	if err := r.Initialize(ViewportFor(screen.Size())); err != nil {
		t.Fatal(err)
	}
	red := math.Triangle{
		Points: [3]math.Vec4{{X: 0, Y: 0, W: 1}, {X: 8, Y: 0, W: 1}, {X: 0, Y: 8, W: 1}},
		Colour: math.NewVec4(1, 0, 0, 1),
	}
	if err := r.DrawFrame(&renderer.RenderPacket{Triangles: []math.Triangle{red}}); err != nil {
		t.Fatal(err)
	}

	redColour := tcell.NewRGBColor(255, 0, 0)
	blackColour := tcell.NewRGBColor(0, 0, 0)

	c := cell(t, screen, 0, 0)
	if len(c.Runes) == 0 || c.Runes[0] != halfBlock {
		t.Fatalf("cell runes = %q", c.Runes)
	}
	if fg, bg, _ := c.Style.Decompose(); fg != redColour || bg != redColour {
		t.Errorf("corner cell fg=%v bg=%v", fg, bg)
	}
	if fg, bg, _ := cell(t, screen, 19, 9).Style.Decompose(); fg != blackColour || bg != blackColour {
		t.Errorf("far cell fg=%v bg=%v", fg, bg)
	}

	r.SetOverlay(true)
	if err := r.DrawFrame(&renderer.RenderPacket{Overlay: []string{"hi"}}); err != nil {
		t.Fatal(err)
	}
	if got := cell(t, screen, 1, 0).Runes; len(got) == 0 || got[0] != 'i' {
		t.Errorf("overlay cell = %q", got)
	}
}

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		key  tcell.Key
		r    rune
		want core.KeyCode
		ok   bool
	}{
		{tcell.KeyRune, 'w', core.KEY_W, true},
		{tcell.KeyRune, 'D', core.KEY_D, true},
		{tcell.KeyRune, ' ', core.KEY_SPACE, true},
		{tcell.KeyRune, '7', core.KEY_7, true},
		{tcell.KeyLeft, 0, core.KEY_LEFT, true},
		{tcell.KeyTab, 0, core.KEY_TAB, true},
		{tcell.KeyEscape, 0, core.KEY_ESCAPE, true},
		{tcell.KeyRune, 'é', 0, false},
	}
	for _, tc := range tests {
		got, ok := translateKey(tcell.NewEventKey(tc.key, tc.r, tcell.ModNone))
		if got != tc.want || ok != tc.ok {
			t.Errorf("translateKey(%v, %q) = %v, %v", tc.key, tc.r, got, ok)
		}
	}
}

func TestHostKeysAndEvents(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	bus := core.NewEventBus()
	input := core.NewInputState(bus)
	h := NewHost(screen, 60)
	clock := time.Unix(0, 0)
	h.now = func() time.Time { return clock }
	if err := h.Start(input, bus); err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	screen.InjectKey(tcell.KeyRune, 'w', tcell.ModNone)
	deadline := time.Now().Add(2 * time.Second)
	for !input.IsKeyDown(core.KEY_W) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !input.IsKeyDown(core.KEY_W) {
		t.Fatal("injected key never arrived")
	}

	// Still held inside the window, released after it.
	h.ReleaseStaleKeys()
	if !input.IsKeyDown(core.KEY_W) {
		t.Errorf("key released before KeyHold elapsed")
	}
	clock = clock.Add(h.KeyHold)
	h.ReleaseStaleKeys()
	if input.IsKeyDown(core.KEY_W) {
		t.Errorf("key still held after KeyHold")
	}

	var quit, resized int
	var size core.SystemEvent
	_ = bus.Register(core.EVENT_CODE_APPLICATION_QUIT, t, func(core.EventContext) bool { quit++; return true })
	_ = bus.Register(core.EVENT_CODE_RESIZED, t, func(ctx core.EventContext) bool {
		resized++
		size = *ctx.Data.(*core.SystemEvent)
		return true
	})
	h.handle(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl))
	h.handle(tcell.NewEventResize(30, 12))
	bus.Dispatch()
	if quit != 1 {
		t.Errorf("ctrl-c posted %d quit events", quit)
	}
	if resized != 1 || size.WindowWidth != 30 || size.WindowHeight != 24 {
		t.Errorf("resize events=%d size=%+v", resized, size)
	}

	// Dragging with the left button turns; plain motion does not.
	h.handle(tcell.NewEventMouse(5, 5, tcell.Button1, tcell.ModNone))
	h.handle(tcell.NewEventMouse(8, 4, tcell.Button1, tcell.ModNone))
	h.handle(tcell.NewEventMouse(20, 20, tcell.ButtonNone, tcell.ModNone))
	s := input.Snapshot()
	if s.MouseDX != 3 || s.MouseDY != -2 {
		t.Errorf("drag delta = %v,%v", s.MouseDX, s.MouseDY)
	}

	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
	if err := h.Run(func() error { return nil }); err != nil {
		t.Errorf("Run after Close = %v", err)
	}
}
