package engine

import (
	"time"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/pipeline"
)

/**
 * @brief A Host owns the display surface and the event loop. It feeds the
 * input state, posts resize and quit events to the bus and calls frame once
 * per tick until frame returns an error.
 */
type Host interface {
	Name() string
	Start(input *core.InputState, bus *core.EventBus) error
	Viewport() pipeline.Viewport
	Run(frame func() error) error
	Close() error
}

// HeadlessHost runs frames with no display, for tests, exports and the recorder backend.
type HeadlessHost struct {
	viewport pipeline.Viewport
	frames   int
	interval time.Duration
	ran      int
}

// NewHeadlessHost runs frames ticks, or until quit when frames is zero,
// sleeping interval between them.
func NewHeadlessHost(vp pipeline.Viewport, frames int, interval time.Duration) *HeadlessHost {
	return &HeadlessHost{viewport: vp, frames: frames, interval: interval}
}

func (h *HeadlessHost) Name() string {
	return "headless"
}

func (h *HeadlessHost) Start(input *core.InputState, bus *core.EventBus) error {
	return nil
}

func (h *HeadlessHost) Viewport() pipeline.Viewport {
	return h.viewport
}

func (h *HeadlessHost) Run(frame func() error) error {
	for h.frames <= 0 || h.ran < h.frames {
		if err := frame(); err != nil {
			return err
		}
		h.ran++
		if h.interval > 0 {
			time.Sleep(h.interval)
		}
	}
	return nil
}

func (h *HeadlessHost) Close() error {
	return nil
}

// Frames is the number of frames run so far.
func (h *HeadlessHost) Frames() int {
	return h.ran
}
