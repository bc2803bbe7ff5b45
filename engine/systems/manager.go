package systems

import (
	"github.com/spaghettifunk/prism/engine/renderer/components"
)

type SystemManagerConfig struct {
	MaxCameraCount uint16
	CameraSettings components.CameraSettings
	JobWorkers     int
	JobQueueSize   int
}

// SystemManager owns the engine subsystems and shuts them down in reverse order.
type SystemManager struct {
	CameraSystem *CameraSystem
	JobSystem    *JobSystem
}

func NewSystemManager(config SystemManagerConfig) (*SystemManager, error) {
	js, err := NewJobSystem(config.JobWorkers, config.JobQueueSize)
	if err != nil {
		return nil, err
	}
	cs, err := NewCameraSystem(&CameraSystemConfig{
		MaxCameraCount: config.MaxCameraCount,
		Settings:       config.CameraSettings,
	})
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}
	return &SystemManager{
		CameraSystem: cs,
		JobSystem:    js,
	}, nil
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.CameraSystem.Shutdown(); err != nil {
		return err
	}
	return sm.JobSystem.Shutdown()
}
