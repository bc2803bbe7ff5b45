package core

import "sync"

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key code definitions (virtual-key numbering). Hosts translate their own key
// identifiers into these.
type KeyCode uint16

const (
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_SHIFT     KeyCode = 0x10
	KEY_CONTROL   KeyCode = 0x11
	KEY_PAUSE     KeyCode = 0x13
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_PRIOR     KeyCode = 0x21
	KEY_NEXT      KeyCode = 0x22
	KEY_END       KeyCode = 0x23
	KEY_HOME      KeyCode = 0x24
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_INSERT    KeyCode = 0x2D
	KEY_DELETE    KeyCode = 0x2E
	KEY_0         KeyCode = 0x30
	KEY_1         KeyCode = 0x31
	KEY_2         KeyCode = 0x32
	KEY_3         KeyCode = 0x33
	KEY_4         KeyCode = 0x34
	KEY_5         KeyCode = 0x35
	KEY_6         KeyCode = 0x36
	KEY_7         KeyCode = 0x37
	KEY_8         KeyCode = 0x38
	KEY_9         KeyCode = 0x39
	KEY_A         KeyCode = 0x41
	KEY_B         KeyCode = 0x42
	KEY_C         KeyCode = 0x43
	KEY_D         KeyCode = 0x44
	KEY_E         KeyCode = 0x45
	KEY_F         KeyCode = 0x46
	KEY_G         KeyCode = 0x47
	KEY_H         KeyCode = 0x48
	KEY_I         KeyCode = 0x49
	KEY_J         KeyCode = 0x4A
	KEY_K         KeyCode = 0x4B
	KEY_L         KeyCode = 0x4C
	KEY_M         KeyCode = 0x4D
	KEY_N         KeyCode = 0x4E
	KEY_O         KeyCode = 0x4F
	KEY_P         KeyCode = 0x50
	KEY_Q         KeyCode = 0x51
	KEY_R         KeyCode = 0x52
	KEY_S         KeyCode = 0x53
	KEY_T         KeyCode = 0x54
	KEY_U         KeyCode = 0x55
	KEY_V         KeyCode = 0x56
	KEY_W         KeyCode = 0x57
	KEY_X         KeyCode = 0x58
	KEY_Y         KeyCode = 0x59
	KEY_Z         KeyCode = 0x5A
	KEY_F1        KeyCode = 0x70
	KEY_F2        KeyCode = 0x71
	KEY_F3        KeyCode = 0x72
	KEY_F4        KeyCode = 0x73
	KEY_LSHIFT    KeyCode = 0xA0
	KEY_RSHIFT    KeyCode = 0xA1
	KEY_LCONTROL  KeyCode = 0xA2
	KEY_RCONTROL  KeyCode = 0xA3
	KEY_MINUS     KeyCode = 0xBD
	KEY_PLUS      KeyCode = 0xBB
	KEYS_MAX_KEYS KeyCode = 0x100
)

// Mouse state structure
type MouseState struct {
	X       int32
	Y       int32
	Buttons [BUTTON_MAX_BUTTONS]bool // button states (pressed/released)
}

// Keyboard state structure
type KeyboardState struct {
	Keys [KEYS_MAX_KEYS]bool
}

/**
 * InputSnapshot is what a frame consumes: the keys held now, the keys held at
 * the end of the previous frame and the mouse movement accumulated in between.
 */
type InputSnapshot struct {
	Current  KeyboardState
	Previous KeyboardState
	MouseDX  float32
	MouseDY  float32
	Wheel    int32
}

func (s InputSnapshot) IsKeyDown(key KeyCode) bool {
	return s.Current.Keys[key]
}

// WasKeyPressed reports a key that went down during this frame.
func (s InputSnapshot) WasKeyPressed(key KeyCode) bool {
	return s.Current.Keys[key] && !s.Previous.Keys[key]
}

// HasInput reports whether anything moved or any key is held.
func (s InputSnapshot) HasInput() bool {
	if s.MouseDX != 0 || s.MouseDY != 0 || s.Wheel != 0 {
		return true
	}
	for _, k := range s.Current.Keys {
		if k {
			return true
		}
	}
	return false
}

/**
 * InputState is written by host goroutines (window or terminal event loops)
 * and read by the frame loop, so every access is locked. State changes are
 * posted to the event bus rather than fired inline.
 */
type InputState struct {
	mu               sync.Mutex
	keyboardCurrent  KeyboardState
	keyboardPrevious KeyboardState
	mouseCurrent     MouseState
	mousePrevious    MouseState
	mouseSeen        bool
	mouseDX          float32
	mouseDY          float32
	wheel            int32
	bus              *EventBus
}

func NewInputState(bus *EventBus) *InputState {
	return &InputState{bus: bus}
}

func (i *InputState) post(context EventContext) {
	if i.bus != nil {
		i.bus.Post(context)
	}
}

// Update copies current states to previous states. Called once at the end of each frame.
func (i *InputState) Update(deltaTime float64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.keyboardPrevious = i.keyboardCurrent
	i.mousePrevious = i.mouseCurrent
}

// Snapshot returns the current keyboard state and drains the accumulated mouse motion.
func (i *InputState) Snapshot() InputSnapshot {
	i.mu.Lock()
	defer i.mu.Unlock()
	s := InputSnapshot{
		Current:  i.keyboardCurrent,
		Previous: i.keyboardPrevious,
		MouseDX:  i.mouseDX,
		MouseDY:  i.mouseDY,
		Wheel:    i.wheel,
	}
	i.mouseDX, i.mouseDY, i.wheel = 0, 0, 0
	return s
}

// keyboard input
func (i *InputState) IsKeyDown(key KeyCode) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.keyboardCurrent.Keys[key]
}

func (i *InputState) WasKeyDown(key KeyCode) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.keyboardPrevious.Keys[key]
}

func (i *InputState) ProcessKey(key KeyCode, pressed bool) {
	if key >= KEYS_MAX_KEYS {
		return
	}
	i.mu.Lock()
	// Only handle this if the state actually changed.
	changed := i.keyboardCurrent.Keys[key] != pressed
	i.keyboardCurrent.Keys[key] = pressed
	i.mu.Unlock()

	if !changed {
		return
	}
	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	i.post(EventContext{Type: code, Data: &KeyEvent{KeyCode: key}})
}

// mouse input
func (i *InputState) IsButtonDown(button Button) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.mouseCurrent.Buttons[button]
}

func (i *InputState) GetMousePosition() (int32, int32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.mouseCurrent.X, i.mouseCurrent.Y
}

func (i *InputState) ProcessButton(button Button, pressed bool) {
	if button >= BUTTON_MAX_BUTTONS {
		return
	}
	i.mu.Lock()
	changed := i.mouseCurrent.Buttons[button] != pressed
	i.mouseCurrent.Buttons[button] = pressed
	i.mu.Unlock()

	if !changed {
		return
	}
	code := EVENT_CODE_BUTTON_RELEASED
	if pressed {
		code = EVENT_CODE_BUTTON_PRESSED
	}
	i.post(EventContext{Type: code, Data: &MouseEvent{Button: button}})
}

// ProcessMouseMove records an absolute cursor position. The first position
// seen only establishes the origin; later ones add to the frame's delta.
func (i *InputState) ProcessMouseMove(x, y int32) {
	i.mu.Lock()
	if i.mouseSeen && i.mouseCurrent.X == x && i.mouseCurrent.Y == y {
		i.mu.Unlock()
		return
	}
	if i.mouseSeen {
		i.mouseDX += float32(x - i.mouseCurrent.X)
		i.mouseDY += float32(y - i.mouseCurrent.Y)
	}
	i.mouseSeen = true
	i.mouseCurrent.X = x
	i.mouseCurrent.Y = y
	i.mu.Unlock()

	i.post(EventContext{Type: EVENT_CODE_MOUSE_MOVED, Data: &MouseEvent{PosX: x, PosY: y}})
}

// ProcessMouseDelta adds relative motion, for hosts that report it directly.
func (i *InputState) ProcessMouseDelta(dx, dy float32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.mouseDX += dx
	i.mouseDY += dy
}

func (i *InputState) ProcessMouseWheel(zDelta int8) {
	i.mu.Lock()
	i.wheel += int32(zDelta)
	i.mu.Unlock()
	i.post(EventContext{Type: EVENT_CODE_MOUSE_WHEEL, Data: &MouseEvent{Scroll: zDelta}})
}
