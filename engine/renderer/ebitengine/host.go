package ebitengine

import (
	"errors"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/spaghettifunk/prism/engine"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/pipeline"
)

type binding struct {
	key  ebiten.Key
	code core.KeyCode
}

var bindings = buildBindings()

func buildBindings() []binding {
	bs := []binding{
		{ebiten.KeySpace, core.KEY_SPACE},
		{ebiten.KeyShiftLeft, core.KEY_SHIFT},
		{ebiten.KeyShiftRight, core.KEY_SHIFT},
		{ebiten.KeyShiftLeft, core.KEY_LSHIFT},
		{ebiten.KeyShiftRight, core.KEY_RSHIFT},
		{ebiten.KeyControlLeft, core.KEY_CONTROL},
		{ebiten.KeyControlRight, core.KEY_CONTROL},
		{ebiten.KeyControlLeft, core.KEY_LCONTROL},
		{ebiten.KeyControlRight, core.KEY_RCONTROL},
		{ebiten.KeyArrowLeft, core.KEY_LEFT},
		{ebiten.KeyArrowRight, core.KEY_RIGHT},
		{ebiten.KeyArrowUp, core.KEY_UP},
		{ebiten.KeyArrowDown, core.KEY_DOWN},
		{ebiten.KeyPageUp, core.KEY_PRIOR},
		{ebiten.KeyPageDown, core.KEY_NEXT},
		{ebiten.KeyHome, core.KEY_HOME},
		{ebiten.KeyEnd, core.KEY_END},
		{ebiten.KeyInsert, core.KEY_INSERT},
		{ebiten.KeyDelete, core.KEY_DELETE},
		{ebiten.KeyEscape, core.KEY_ESCAPE},
		{ebiten.KeyTab, core.KEY_TAB},
		{ebiten.KeyEnter, core.KEY_ENTER},
		{ebiten.KeyBackspace, core.KEY_BACKSPACE},
		{ebiten.KeyMinus, core.KEY_MINUS},
		{ebiten.KeyEqual, core.KEY_PLUS},
		{ebiten.KeyF1, core.KEY_F1},
		{ebiten.KeyF2, core.KEY_F2},
	}
	for i := 0; i < 26; i++ {
		bs = append(bs, binding{ebiten.KeyA + ebiten.Key(i), core.KEY_A + core.KeyCode(i)})
	}
	for i := 0; i < 10; i++ {
		bs = append(bs, binding{ebiten.KeyDigit0 + ebiten.Key(i), core.KEY_0 + core.KeyCode(i)})
	}
	return bs
}

// keyStates folds the pressed ebiten keys into engine key codes. A code is
// down when any key bound to it is down.
func keyStates(pressed func(ebiten.Key) bool) map[core.KeyCode]bool {
	states := make(map[core.KeyCode]bool, len(bindings))
	for _, b := range bindings {
		states[b.code] = states[b.code] || pressed(b.key)
	}
	return states
}

/**
 * @brief Host opens a desktop window through ebiten and drives the engine
 * from ebiten's Update. The camera turns while the right mouse button is
 * held.
 */
type Host struct {
	backend *Backend
	title   string
	tps     int
	// Resizable lets the user drag the window edges. Defaults to true.
	Resizable bool

	input *core.InputState
	bus   *core.EventBus
	frame func() error

	mu      sync.Mutex
	width   int
	height  int
	looking bool
	lastX   int
	lastY   int
}

func NewHost(backend *Backend, title string, width, height, tps int) *Host {
	if tps <= 0 {
		tps = ebiten.DefaultTPS
	}
	return &Host{
		backend:   backend,
		title:     title,
		tps:       tps,
		Resizable: true,
		width:     width,
		height:    height,
	}
}

func (h *Host) Name() string {
	return "ebitengine"
}

func (h *Host) Start(input *core.InputState, bus *core.EventBus) error {
	h.input = input
	h.bus = bus
	ebiten.SetWindowTitle(h.title)
	ebiten.SetWindowSize(h.width, h.height)
	if h.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	} else {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	}
	ebiten.SetTPS(h.tps)
	return nil
}

func (h *Host) Viewport() pipeline.Viewport {
	h.mu.Lock()
	defer h.mu.Unlock()
	return pipeline.Viewport{Width: uint32(h.width), Height: uint32(h.height)}
}

// Run blocks in ebiten's loop until the window closes, the engine quits or
// frame fails. Quitting returns nil.
func (h *Host) Run(frame func() error) error {
	h.frame = frame
	return ebiten.RunGame(h)
}

func (h *Host) Close() error {
	return nil
}

func (h *Host) Update() error {
	h.poll()
	return terminate(h.frame())
}

// terminate turns the engine's quit into ebiten's clean-exit sentinel.
func terminate(err error) error {
	if errors.Is(err, engine.ErrQuit) {
		return ebiten.Termination
	}
	return err
}

func (h *Host) Draw(screen *ebiten.Image) {
	h.backend.Present(screen)
}

// Layout keeps one pixel per window unit and reports size changes to the engine.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	h.mu.Lock()
	changed := outsideWidth != h.width || outsideHeight != h.height
	h.width, h.height = outsideWidth, outsideHeight
	h.mu.Unlock()

	if changed && h.bus != nil {
		h.bus.Post(core.EventContext{
			Type: core.EVENT_CODE_RESIZED,
			Data: &core.SystemEvent{WindowWidth: uint32(outsideWidth), WindowHeight: uint32(outsideHeight)},
		})
	}
	return outsideWidth, outsideHeight
}

func (h *Host) poll() {
	for code, down := range keyStates(ebiten.IsKeyPressed) {
		if h.input.IsKeyDown(code) != down {
			h.input.ProcessKey(code, down)
		}
	}

	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	if h.input.IsButtonDown(core.BUTTON_LEFT) != left {
		h.input.ProcessButton(core.BUTTON_LEFT, left)
	}
	if h.input.IsButtonDown(core.BUTTON_RIGHT) != right {
		h.input.ProcessButton(core.BUTTON_RIGHT, right)
	}

	x, y := ebiten.CursorPosition()
	if right {
		if h.looking {
			h.input.ProcessMouseDelta(float32(x-h.lastX), float32(y-h.lastY))
		}
		h.looking = true
	} else {
		h.looking = false
	}
	h.lastX, h.lastY = x, y

	if _, dy := ebiten.Wheel(); dy != 0 {
		h.input.ProcessMouseWheel(wheelStep(dy))
	}
}

func wheelStep(dy float64) int8 {
	if dy > 0 {
		return 1
	}
	return -1
}
