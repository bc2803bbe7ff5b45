package recorder

import (
	"errors"
	"slices"

	"github.com/spaghettifunk/prism/engine/containers"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/pipeline"
)

var ErrFrameNotStarted = errors.New("recorder: draw outside BeginFrame/EndFrame")

const DefaultHistory = 8

// Frame is one recorded frame. Triangles are copies; the pipeline reuses its buffers.
type Frame struct {
	Viewport  pipeline.Viewport
	Clear     math.Vec4
	Triangles []math.Triangle
	Wireframe bool
	Text      []string
}

/**
 * @brief Backend is a headless renderer that keeps the last few frames in
 * memory. It accepts any pipeline mode, which makes it the backend of choice
 * for tests and for checking what a scene emits without a display.
 */
type Backend struct {
	mode     pipeline.Mode
	viewport pipeline.Viewport
	history  *containers.RingQueue[Frame]
	current  *Frame
	last     *Frame
	count    int
}

func New(mode pipeline.Mode, history int) *Backend {
	if history <= 0 {
		history = DefaultHistory
	}
	return &Backend{mode: mode, history: containers.NewRingQueue[Frame](history)}
}

func (b *Backend) Name() string {
	return "recorder"
}

func (b *Backend) Mode() pipeline.Mode {
	return b.mode
}

func (b *Backend) Initialize(vp pipeline.Viewport) error {
	b.viewport = vp
	return nil
}

func (b *Backend) Shutdown() error {
	b.history.Reset()
	b.current = nil
	return nil
}

func (b *Backend) Resized(vp pipeline.Viewport) error {
	b.viewport = vp
	return nil
}

func (b *Backend) BeginFrame(clear math.Vec4) error {
	b.current = &Frame{Viewport: b.viewport, Clear: clear}
	return nil
}

func (b *Backend) DrawTriangles(triangles []math.Triangle, wireframe bool) error {
	if b.current == nil {
		return ErrFrameNotStarted
	}
	b.current.Triangles = append(b.current.Triangles, triangles...)
	b.current.Wireframe = wireframe
	return nil
}

func (b *Backend) DrawText(lines []string) error {
	if b.current == nil {
		return ErrFrameNotStarted
	}
	b.current.Text = append(b.current.Text, slices.Clone(lines)...)
	return nil
}

func (b *Backend) EndFrame() error {
	if b.current == nil {
		return ErrFrameNotStarted
	}
	if b.history.IsFull() {
		if _, err := b.history.Dequeue(); err != nil {
			return err
		}
	}
	if err := b.history.Enqueue(*b.current); err != nil {
		return err
	}
	b.last = b.current
	b.current = nil
	b.count++
	core.LogDebug("recorded frame %d with %d triangles", b.count, len(b.last.Triangles))
	return nil
}

// Last returns the most recently completed frame.
func (b *Backend) Last() (Frame, bool) {
	if b.last == nil {
		return Frame{}, false
	}
	return *b.last, true
}

// FrameCount is the number of frames completed since creation.
func (b *Backend) FrameCount() int {
	return b.count
}

// Drain removes and returns the retained frames, oldest first.
func (b *Backend) Drain() []Frame {
	frames := make([]Frame, 0, b.history.Len())
	for !b.history.IsEmpty() {
		f, err := b.history.Dequeue()
		if err != nil {
			break
		}
		frames = append(frames, f)
	}
	return frames
}
