package core

import (
	"sync"

	"github.com/spaghettifunk/prism/engine/containers"
)

// System internal event codes. Application should use codes beyond 255.
type EventCode uint16

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01

	// Keyboard key pressed. Data: *KeyEvent
	EVENT_CODE_KEY_PRESSED EventCode = 0x02

	// Keyboard key released. Data: *KeyEvent
	EVENT_CODE_KEY_RELEASED EventCode = 0x03

	// Mouse button pressed. Data: *MouseEvent
	EVENT_CODE_BUTTON_PRESSED EventCode = 0x04

	// Mouse button released. Data: *MouseEvent
	EVENT_CODE_BUTTON_RELEASED EventCode = 0x05

	// Mouse moved. Data: *MouseEvent
	EVENT_CODE_MOUSE_MOVED EventCode = 0x06

	// Mouse wheel. Data: *MouseEvent
	EVENT_CODE_MOUSE_WHEEL EventCode = 0x07

	// Resized/resolution changed from the OS. Data: *SystemEvent
	EVENT_CODE_RESIZED EventCode = 0x08

	// A watched scene file changed on disk. Data: *SceneEvent
	EVENT_CODE_SCENE_CHANGED EventCode = 0x09

	MAX_EVENT_CODE EventCode = 0xFF
)

// This should be more than enough codes...
const MAX_MESSAGE_CODES = 16384

type EventContext struct {
	Type EventCode
	Data interface{}
}

type KeyEvent struct {
	KeyCode KeyCode
}

type MouseEvent struct {
	Button Button
	PosX   int32
	PosY   int32
	Scroll int8
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

type SceneEvent struct {
	Path string
}

// Should return true if handled.
type FnOnEvent func(context EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

/**
 * EventBus routes events to registered listeners. Fire delivers synchronously
 * on the calling goroutine. Post queues the event from any goroutine and
 * Dispatch delivers the queue on the frame goroutine, so listeners that touch
 * frame state never run concurrently with a frame.
 */
type EventBus struct {
	mu         sync.Mutex
	registered map[EventCode][]*registeredEvent
	pending    *containers.RingQueue[EventContext]
	shutdown   bool
}

func NewEventBus() *EventBus {
	return &EventBus{
		registered: make(map[EventCode][]*registeredEvent),
		pending:    containers.NewGrowableRingQueue[EventContext](64),
	}
}

/**
 * Register to listen for when events are sent with the provided code. A
 * listener may register once per code; a second attempt returns
 * ErrEventAlreadyRegistered.
 */
func (b *EventBus) Register(code EventCode, listener interface{}, onEvent FnOnEvent) error {
	if code >= MAX_MESSAGE_CODES {
		return ErrEventCodeInvalid
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.shutdown {
		return ErrEventSystemShutdown
	}
	for _, e := range b.registered[code] {
		if e.listener == listener {
			return ErrEventAlreadyRegistered
		}
	}
	b.registered[code] = append(b.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return nil
}

// Unregister removes the listener's registration for code.
func (b *EventBus) Unregister(code EventCode, listener interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	events := b.registered[code]
	for i, e := range events {
		if e.listener == listener {
			b.registered[code] = append(events[:i:i], events[i+1:]...)
			return nil
		}
	}
	return ErrEventListenerNotFound
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 * Returns true if handled.
 */
func (b *EventBus) Fire(context EventContext) bool {
	b.mu.Lock()
	if b.shutdown {
		b.mu.Unlock()
		return false
	}
	// Copy so callbacks may register or unregister while we iterate.
	events := append([]*registeredEvent(nil), b.registered[context.Type]...)
	b.mu.Unlock()

	for _, e := range events {
		if e.callback(context) {
			return true
		}
	}
	return false
}

// Post queues an event for the next Dispatch. Safe from any goroutine.
func (b *EventBus) Post(context EventContext) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.shutdown {
		return
	}
	_ = b.pending.Enqueue(context)
}

// Dispatch fires every queued event in arrival order and returns how many were delivered.
func (b *EventBus) Dispatch() int {
	n := 0
	for {
		b.mu.Lock()
		context, err := b.pending.Dequeue()
		b.mu.Unlock()
		if err != nil {
			return n
		}
		b.Fire(context)
		n++
	}
}

// Shutdown drops all listeners and queued events. Later calls are no-ops.
func (b *EventBus) Shutdown() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registered = make(map[EventCode][]*registeredEvent)
	b.pending.Reset()
	b.shutdown = true
	return nil
}
