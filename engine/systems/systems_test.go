package systems

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/components"
)

func newCameras(t *testing.T, max uint16) *CameraSystem {
	t.Helper()
	cs, err := NewCameraSystem(&CameraSystemConfig{MaxCameraCount: max, Settings: components.DefaultCameraSettings()})
	if err != nil {
		t.Fatal(err)
	}
	return cs
}

func TestCameraSystemAcquireRelease(t *testing.T) {
	cs := newCameras(t, 2)

	a, err := cs.Acquire("orbit")
	if err != nil {
		t.Fatal(err)
	}
	again, _ := cs.Acquire("orbit")
	if a != again {
		t.Errorf("second acquire returned a different rig")
	}
	if _, err := cs.Acquire("top"); err != nil {
		t.Fatal(err)
	}
	if _, err := cs.Acquire("side"); !errors.Is(err, ErrCameraLimitReached) {
		t.Errorf("third camera: %v", err)
	}

	// Two references: the first release keeps it.
	cs.Release("orbit")
	if _, err := cs.Get("orbit"); err != nil {
		t.Errorf("released too early: %v", err)
	}
	cs.Release("orbit")
	if _, err := cs.Get("orbit"); !errors.Is(err, ErrCameraNotFound) {
		t.Errorf("Get after release = %v", err)
	}

	if d, _ := cs.Acquire(components.DEFAULT_CAMERA_NAME); d != cs.GetDefault() {
		t.Errorf("default camera not returned")
	}
	cs.Release(components.DEFAULT_CAMERA_NAME)
	if cs.GetDefault() == nil {
		t.Errorf("default camera released")
	}
}

func TestCameraSystemCycle(t *testing.T) {
	cs := newCameras(t, 4)
	rig := components.NewCameraRig(math.NewVec3(0, 10, 0), components.DefaultCameraSettings())
	if err := cs.Register("top", rig); err != nil {
		t.Fatal(err)
	}
	if err := cs.Register("top", rig); !errors.Is(err, ErrCameraAlreadyExists) {
		t.Errorf("duplicate register = %v", err)
	}
	if _, err := cs.Acquire("side"); err != nil {
		t.Fatal(err)
	}

	want := []string{"top", "side", components.DEFAULT_CAMERA_NAME, "top"}
	for _, w := range want {
		if name, _ := cs.Next(); name != w {
			t.Fatalf("Next() = %s, want %s", name, w)
		}
	}
	if _, active := cs.Active(); active != rig {
		t.Errorf("active rig is not the registered one")
	}

	// Releasing another camera keeps the active one.
	cs.Release("side")
	if name, _ := cs.Active(); name != "top" {
		t.Errorf("active = %s after releasing side", name)
	}
	// Releasing the active one falls back to default.
	cs.Release("top")
	if name, _ := cs.Active(); name != components.DEFAULT_CAMERA_NAME {
		t.Errorf("active = %s after releasing top", name)
	}
	if err := cs.SetActive("gone"); !errors.Is(err, ErrCameraNotFound) {
		t.Errorf("SetActive(gone) = %v", err)
	}
}

func TestCameraSystemRejectsZeroCapacity(t *testing.T) {
	if _, err := NewCameraSystem(&CameraSystemConfig{}); err == nil {
		t.Errorf("zero capacity accepted")
	}
}

func TestJobSystemRunsEveryJob(t *testing.T) {
	js, err := NewJobSystem(4, 8)
	if err != nil {
		t.Fatal(err)
	}
	var ran, completed, failed atomic.Int32
	boom := errors.New("boom")
	for i := 0; i < 50; i++ {
		fail := i%10 == 0
		err := js.Submit(JobTask{
			Name: "count",
			Run: func() error {
				ran.Add(1)
				if fail {
					return boom
				}
				return nil
			},
			OnComplete: func() { completed.Add(1) },
			OnFailure: func(err error) {
				if errors.Is(err, boom) {
					failed.Add(1)
				}
			},
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	js.Wait()
	if ran.Load() != 50 || completed.Load() != 45 || failed.Load() != 5 {
		t.Errorf("ran=%d completed=%d failed=%d", ran.Load(), completed.Load(), failed.Load())
	}

	if err := js.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if err := js.Submit(JobTask{Run: func() error { return nil }}); !errors.Is(err, ErrJobSystemClosed) {
		t.Errorf("submit after shutdown = %v", err)
	}
	if err := js.Shutdown(); err != nil {
		t.Errorf("second shutdown: %v", err)
	}
}

func TestJobSystemConfig(t *testing.T) {
	if _, err := NewJobSystem(0, 1); !errors.Is(err, ErrNoWorkers) {
		t.Errorf("zero workers = %v", err)
	}
	if _, err := NewJobSystem(1, -1); !errors.Is(err, ErrNegativeChannelSize) {
		t.Errorf("negative queue = %v", err)
	}
}

func TestSystemManager(t *testing.T) {
	sm, err := NewSystemManager(SystemManagerConfig{MaxCameraCount: 4, JobWorkers: 2, CameraSettings: components.DefaultCameraSettings()})
	if err != nil {
		t.Fatal(err)
	}
	if sm.CameraSystem == nil || sm.JobSystem.Workers() != 2 {
		t.Fatalf("manager not wired: %+v", sm)
	}
	if err := sm.Shutdown(); err != nil {
		t.Fatal(err)
	}

	if _, err := NewSystemManager(SystemManagerConfig{MaxCameraCount: 0, JobWorkers: 1}); err == nil {
		t.Errorf("zero camera capacity accepted")
	}
}
