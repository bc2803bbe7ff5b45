package terminal

import (
	"sync"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/pipeline"
)

// DefaultKeyHold is how long a key counts as held after the terminal last reported it.
const DefaultKeyHold = 250 * time.Millisecond

/**
 * @brief Host runs the engine inside a terminal. Terminals report key
 * presses and repeats but never releases, so a key stays down until no
 * repeat has arrived for KeyHold. Dragging with the left button turns the
 * camera.
 */
type Host struct {
	screen   tcell.Screen
	input    *core.InputState
	bus      *core.EventBus
	interval time.Duration
	KeyHold  time.Duration
	now      func() time.Time

	mu       sync.Mutex
	held     map[core.KeyCode]time.Time
	dragging bool
	lastX    int
	lastY    int

	quit      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewHost(screen tcell.Screen, fps int) *Host {
	if fps <= 0 {
		fps = 30
	}
	return &Host{
		screen:   screen,
		interval: time.Second / time.Duration(fps),
		KeyHold:  DefaultKeyHold,
		now:      time.Now,
		held:     make(map[core.KeyCode]time.Time),
		quit:     make(chan struct{}),
	}
}

func (h *Host) Name() string {
	return "terminal"
}

func (h *Host) Start(input *core.InputState, bus *core.EventBus) error {
	if err := h.screen.Init(); err != nil {
		return err
	}
	h.input = input
	h.bus = bus
	h.screen.EnableMouse(tcell.MouseDragEvents)
	h.screen.HideCursor()
	h.screen.Clear()

	h.wg.Add(1)
	go h.poll()
	return nil
}

func (h *Host) Viewport() pipeline.Viewport {
	return ViewportFor(h.screen.Size())
}

func (h *Host) Run(frame func() error) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-h.quit:
			return nil
		case <-ticker.C:
			h.ReleaseStaleKeys()
			if err := frame(); err != nil {
				return err
			}
		}
	}
}

func (h *Host) Close() error {
	h.closeOnce.Do(func() {
		close(h.quit)
		h.screen.Fini()
		h.wg.Wait()
	})
	return nil
}

func (h *Host) poll() {
	defer h.wg.Done()
	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			return
		}
		h.handle(ev)
	}
}

func (h *Host) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC {
			h.bus.Post(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
			return
		}
		code, ok := translateKey(ev)
		if !ok {
			return
		}
		h.press(code)
		if ev.Modifiers()&tcell.ModShift != 0 || (ev.Key() == tcell.KeyRune && unicode.IsUpper(ev.Rune())) {
			h.press(core.KEY_SHIFT)
		}
	case *tcell.EventResize:
		cols, rows := ev.Size()
		vp := ViewportFor(cols, rows)
		h.bus.Post(core.EventContext{
			Type: core.EVENT_CODE_RESIZED,
			Data: &core.SystemEvent{WindowWidth: vp.Width, WindowHeight: vp.Height},
		})
		h.screen.Sync()
	case *tcell.EventMouse:
		h.mouse(ev)
	}
}

func (h *Host) mouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()
	if buttons&tcell.WheelUp != 0 {
		h.input.ProcessMouseWheel(1)
	}
	if buttons&tcell.WheelDown != 0 {
		h.input.ProcessMouseWheel(-1)
	}
	h.input.ProcessButton(core.BUTTON_LEFT, buttons&tcell.Button1 != 0)
	h.input.ProcessButton(core.BUTTON_RIGHT, buttons&tcell.Button2 != 0)

	h.mu.Lock()
	defer h.mu.Unlock()
	if buttons&tcell.Button1 == 0 {
		h.dragging = false
		return
	}
	if h.dragging {
		// Rows are two pixels tall.
		h.input.ProcessMouseDelta(float32(x-h.lastX), float32(2*(y-h.lastY)))
	}
	h.dragging = true
	h.lastX, h.lastY = x, y
}

func (h *Host) press(code core.KeyCode) {
	h.mu.Lock()
	h.held[code] = h.now()
	h.mu.Unlock()
	h.input.ProcessKey(code, true)
}

// ReleaseStaleKeys releases every key not reported within KeyHold.
func (h *Host) ReleaseStaleKeys() {
	now := h.now()
	var released []core.KeyCode
	h.mu.Lock()
	for code, at := range h.held {
		if now.Sub(at) >= h.KeyHold {
			released = append(released, code)
			delete(h.held, code)
		}
	}
	h.mu.Unlock()
	for _, code := range released {
		h.input.ProcessKey(code, false)
	}
}

var specialKeys = map[tcell.Key]core.KeyCode{
	tcell.KeyUp:        core.KEY_UP,
	tcell.KeyDown:      core.KEY_DOWN,
	tcell.KeyLeft:      core.KEY_LEFT,
	tcell.KeyRight:     core.KEY_RIGHT,
	tcell.KeyEscape:    core.KEY_ESCAPE,
	tcell.KeyTab:       core.KEY_TAB,
	tcell.KeyEnter:     core.KEY_ENTER,
	tcell.KeyBackspace: core.KEY_BACKSPACE,
	tcell.KeyPgUp:      core.KEY_PRIOR,
	tcell.KeyPgDn:      core.KEY_NEXT,
	tcell.KeyHome:      core.KEY_HOME,
	tcell.KeyEnd:       core.KEY_END,
	tcell.KeyF1:        core.KEY_F1,
	tcell.KeyF2:        core.KEY_F2,
	tcell.KeyF3:        core.KEY_F3,
	tcell.KeyF4:        core.KEY_F4,
}

func translateKey(ev *tcell.EventKey) (core.KeyCode, bool) {
	if ev.Key() != tcell.KeyRune {
		code, ok := specialKeys[ev.Key()]
		return code, ok
	}
	r := unicode.ToUpper(ev.Rune())
	switch {
	case r >= 'A' && r <= 'Z':
		return core.KEY_A + core.KeyCode(r-'A'), true
	case r >= '0' && r <= '9':
		return core.KEY_0 + core.KeyCode(r-'0'), true
	case r == ' ':
		return core.KEY_SPACE, true
	case r == '-':
		return core.KEY_MINUS, true
	case r == '+' || r == '=':
		return core.KEY_PLUS, true
	}
	return 0, false
}
