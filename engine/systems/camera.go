package systems

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/components"
)

var (
	ErrCameraNotFound      = errors.New("camera not found")
	ErrCameraLimitReached  = errors.New("camera limit reached")
	ErrCameraAlreadyExists = errors.New("camera already registered")
)

type CameraLookup struct {
	ID             uuid.UUID
	Name           string
	ReferenceCount uint16
	Camera         *components.CameraRig
}

/** @brief The camera system configuration. */
type CameraSystemConfig struct {
	/** @brief The maximum number of named cameras, not counting the default. */
	MaxCameraCount uint16
	/** @brief Settings given to cameras created by Acquire. */
	Settings components.CameraSettings
}

/**
 * @brief CameraSystem owns the named camera rigs and which of them is active.
 * The default camera always exists and is never released. Cycling visits the
 * default camera first and then the named ones in registration order.
 */
type CameraSystem struct {
	Config *CameraSystemConfig
	// A default, non-registered camera that always exists as a fallback.
	DefaultCamera *components.CameraRig

	lookup map[string]*CameraLookup
	order  []string
	// Index into the cycle; 0 is the default camera.
	active int
}

func NewCameraSystem(config *CameraSystemConfig) (*CameraSystem, error) {
	if config.MaxCameraCount == 0 {
		err := fmt.Errorf("func NewCameraSystem - config.MaxCameraCount must be > 0")
		core.LogError("%s", err)
		return nil, err
	}
	return &CameraSystem{
		Config:        config,
		DefaultCamera: components.NewCameraRig(math.NewVec3Zero(), config.Settings),
		lookup:        make(map[string]*CameraLookup, config.MaxCameraCount),
	}, nil
}

func (cs *CameraSystem) Shutdown() error {
	cs.lookup = make(map[string]*CameraLookup)
	cs.order = nil
	cs.active = 0
	return nil
}

/**
 * @brief Acquires a camera by name, creating it at the origin if it does not
 * exist yet. The internal reference counter is incremented.
 */
func (cs *CameraSystem) Acquire(name string) (*components.CameraRig, error) {
	if name == components.DEFAULT_CAMERA_NAME {
		return cs.DefaultCamera, nil
	}
	if l, ok := cs.lookup[name]; ok {
		l.ReferenceCount++
		return l.Camera, nil
	}
	rig := components.NewCameraRig(math.NewVec3Zero(), cs.Config.Settings)
	l, err := cs.add(name, rig)
	if err != nil {
		return nil, err
	}
	l.ReferenceCount = 1
	return rig, nil
}

// Register adds an already configured rig under name.
func (cs *CameraSystem) Register(name string, rig *components.CameraRig) error {
	if name == components.DEFAULT_CAMERA_NAME {
		return fmt.Errorf("%w: %s", ErrCameraAlreadyExists, name)
	}
	if _, ok := cs.lookup[name]; ok {
		return fmt.Errorf("%w: %s", ErrCameraAlreadyExists, name)
	}
	l, err := cs.add(name, rig)
	if err != nil {
		return err
	}
	l.ReferenceCount = 1
	return nil
}

func (cs *CameraSystem) add(name string, rig *components.CameraRig) (*CameraLookup, error) {
	if len(cs.lookup) >= int(cs.Config.MaxCameraCount) {
		core.LogError("cannot add camera '%s': adjust the camera system config to allow more", name)
		return nil, ErrCameraLimitReached
	}
	l := &CameraLookup{ID: uuid.New(), Name: name, Camera: rig}
	cs.lookup[name] = l
	cs.order = append(cs.order, name)
	core.LogDebug("created camera '%s' (%s)", name, l.ID)
	return l, nil
}

/**
 * @brief Releases a camera by name. When the reference counter reaches 0 the
 * camera is removed; if it was active, the default camera becomes active.
 */
func (cs *CameraSystem) Release(name string) {
	if name == components.DEFAULT_CAMERA_NAME {
		core.LogDebug("Cannot release default camera. Nothing was done.")
		return
	}
	l, ok := cs.lookup[name]
	if !ok {
		core.LogWarn("CameraSystem.Release failed lookup for '%s'. Nothing was done.", name)
		return
	}
	l.ReferenceCount--
	if l.ReferenceCount > 0 {
		return
	}
	activeName, _ := cs.Active()
	delete(cs.lookup, name)
	for i, n := range cs.order {
		if n == name {
			cs.order = append(cs.order[:i:i], cs.order[i+1:]...)
			break
		}
	}
	cs.active = 0
	if activeName != name {
		_ = cs.SetActive(activeName)
	}
}

func (cs *CameraSystem) Get(name string) (*components.CameraRig, error) {
	if name == components.DEFAULT_CAMERA_NAME {
		return cs.DefaultCamera, nil
	}
	l, ok := cs.lookup[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCameraNotFound, name)
	}
	return l.Camera, nil
}

func (cs *CameraSystem) GetDefault() *components.CameraRig {
	return cs.DefaultCamera
}

// Names lists the cameras in cycle order, default first.
func (cs *CameraSystem) Names() []string {
	return append([]string{components.DEFAULT_CAMERA_NAME}, cs.order...)
}

func (cs *CameraSystem) Active() (string, *components.CameraRig) {
	if cs.active == 0 {
		return components.DEFAULT_CAMERA_NAME, cs.DefaultCamera
	}
	name := cs.order[cs.active-1]
	return name, cs.lookup[name].Camera
}

func (cs *CameraSystem) SetActive(name string) error {
	for i, n := range cs.Names() {
		if n == name {
			cs.active = i
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrCameraNotFound, name)
}

// Next makes the following camera in the cycle active and returns it.
func (cs *CameraSystem) Next() (string, *components.CameraRig) {
	cs.active = (cs.active + 1) % (len(cs.order) + 1)
	name, rig := cs.Active()
	core.LogInfo("active camera: %s", name)
	return name, rig
}
