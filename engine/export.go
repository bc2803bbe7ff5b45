package engine

import (
	"fmt"
	"image"
	"image/png"
	"io"
	gomath "math"
	"os"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/systems"
)

const ExportCameraName = "export"

// Snapshotter copies the last drawn frame. The canvas backend implements it.
type Snapshotter interface {
	Snapshot() *image.RGBA
}

type ExportOptions struct {
	Frames int
	Out    string
	// The camera circles Target at Radius, Height above it, once over all frames.
	Target math.Vec3
	Radius float32
	Height float32
	// Progress receives the progress bar; nil means stderr.
	Progress io.Writer
}

/**
 * @brief Exporter renders a fixed number of frames along an orbit and writes
 * each one as a PNG. Encoding runs on the job system while the next frame is
 * drawn.
 */
type Exporter struct {
	opts   ExportOptions
	source Snapshotter
	jobs   *systems.JobSystem
	rig    *components.CameraRig
	bar    *progressbar.ProgressBar

	mu       sync.Mutex
	firstErr error
	written  []string
}

// NewExporter registers the orbit camera, makes it active and hooks into e's frames.
func NewExporter(e *Engine, source Snapshotter, opts ExportOptions) (*Exporter, error) {
	if opts.Frames <= 0 {
		return nil, fmt.Errorf("export needs at least one frame, got %d", opts.Frames)
	}
	if err := os.MkdirAll(opts.Out, 0o755); err != nil {
		return nil, err
	}
	if opts.Radius == 0 {
		opts.Radius = 6
	}

	cameras := e.SystemManager().CameraSystem
	rig := components.NewCameraRig(math.NewVec3Zero(), cameras.Config.Settings)
	if err := cameras.Register(ExportCameraName, rig); err != nil {
		return nil, err
	}
	if err := cameras.SetActive(ExportCameraName); err != nil {
		return nil, err
	}

	progressOut := opts.Progress
	if progressOut == nil {
		progressOut = os.Stderr
	}
	x := &Exporter{
		opts:   opts,
		source: source,
		jobs:   e.SystemManager().JobSystem,
		rig:    rig,
		bar: progressbar.NewOptions(opts.Frames,
			progressbar.OptionSetWriter(progressOut),
			progressbar.OptionSetDescription("exporting frames"),
			progressbar.OptionShowCount(),
		),
	}
	e.AddFrameHook(FrameHook{Before: x.place, After: x.capture})
	return x, nil
}

// OrbitPosition is where the camera sits on frame i of n.
func OrbitPosition(target math.Vec3, radius, height float32, i, n int) math.Vec3 {
	angle := float64(math.K_PI_2) * float64(i) / float64(n)
	return math.NewVec3(
		target.X+radius*float32(gomath.Sin(angle)),
		target.Y+height,
		target.Z-radius*float32(gomath.Cos(angle)),
	)
}

func (x *Exporter) place(frame uint64, deltaTime float64) error {
	x.rig.SetPosition(OrbitPosition(x.opts.Target, x.opts.Radius, x.opts.Height, int(frame), x.opts.Frames))
	x.rig.LookAt(x.opts.Target)
	return nil
}

func (x *Exporter) capture(frame uint64) error {
	if int(frame) >= x.opts.Frames {
		return ErrQuit
	}
	img := x.source.Snapshot()
	path := filepath.Join(x.opts.Out, fmt.Sprintf("frame_%04d.png", frame))
	return x.jobs.Submit(systems.JobTask{
		Name: path,
		Run:  func() error { return writePNG(path, img) },
		OnComplete: func() {
			x.mu.Lock()
			x.written = append(x.written, path)
			x.mu.Unlock()
			_ = x.bar.Add(1)
		},
		OnFailure: func(err error) {
			x.mu.Lock()
			if x.firstErr == nil {
				x.firstErr = err
			}
			x.mu.Unlock()
		},
	})
}

// Wait blocks until every queued frame is written and returns the first write error.
func (x *Exporter) Wait() error {
	x.jobs.Wait()
	_ = x.bar.Finish()
	x.mu.Lock()
	defer x.mu.Unlock()
	core.LogInfo("exported %d frames to %s", len(x.written), x.opts.Out)
	return x.firstErr
}

// Written lists the files written so far, in completion order.
func (x *Exporter) Written() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]string(nil), x.written...)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
