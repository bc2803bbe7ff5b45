package components

import (
	gomath "math"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
)

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

// PitchEpsilon keeps pitch strictly inside (-pi/2, pi/2) so the look vector
// never lines up with the up vector.
const PitchEpsilon float32 = 0.01

// MovementModel selects how input turns into camera motion.
type MovementModel uint8

const (
	// ModelFly moves freely in 3D; vertical keys raise and lower the camera.
	ModelFly MovementModel = iota
	// ModelWalk keeps the camera ground-bound and tilts the look vector
	// directly around the right axis.
	ModelWalk
)

func (m MovementModel) String() string {
	switch m {
	case ModelFly:
		return "fly"
	case ModelWalk:
		return "walk"
	}
	return "unknown"
}

// ParseMovementModel accepts "fly" or "walk".
func ParseMovementModel(s string) (MovementModel, bool) {
	switch s {
	case "fly":
		return ModelFly, true
	case "walk":
		return ModelWalk, true
	}
	return ModelFly, false
}

type CameraSettings struct {
	// MoveSpeed in world units per second.
	MoveSpeed float32
	// TurnSpeed in radians per second, for the arrow keys.
	TurnSpeed float32
	// MouseSensitivity in radians per pixel of mouse motion.
	MouseSensitivity float32
}

func DefaultCameraSettings() CameraSettings {
	return CameraSettings{
		MoveSpeed:        8,
		TurnSpeed:        2,
		MouseSensitivity: 0.003,
	}
}

// CameraOutput is what a movement model produces each update.
type CameraOutput struct {
	LookDir      math.Vec3
	MoveDir      math.Vec3
	CameraMatrix math.Mat4
}

/**
 * @brief CameraRig is a first-person camera. It owns position, yaw and pitch,
 * turns them into a placement matrix through one of two movement models, and
 * hands the pipeline the inverse of that placement as the view matrix.
 * Ideally, rigs are created and managed by the camera system.
 */
type CameraRig struct {
	position math.Vec3
	up       math.Vec3
	yaw      float32
	pitch    float32
	model    MovementModel
	settings CameraSettings

	lookDir      math.Vec3
	moveDir      math.Vec3
	cameraMatrix math.Mat4
	view         math.Mat4
	/** @brief Internal flag used to determine when the matrices need to be rebuilt. */
	isDirty bool
}

func NewCameraRig(position math.Vec3, settings CameraSettings) *CameraRig {
	c := &CameraRig{settings: settings}
	c.Reset()
	c.SetPosition(position)
	c.rebuild()
	return c
}

// Reset puts the rig at the origin looking down +z in fly mode.
func (c *CameraRig) Reset() {
	c.position = math.NewVec3Zero()
	c.up = math.NewVec3Up()
	c.yaw = 0
	c.pitch = 0
	c.model = ModelFly
	c.isDirty = true
	c.rebuild()
}

func (c *CameraRig) Position() math.Vec3 {
	return c.position
}

func (c *CameraRig) SetPosition(position math.Vec3) {
	c.position = position
	c.isDirty = true
}

func (c *CameraRig) Up() math.Vec3 {
	return c.up
}

func (c *CameraRig) Yaw() float32 {
	return c.yaw
}

func (c *CameraRig) Pitch() float32 {
	return c.pitch
}

// SetYawPitch sets the orientation directly, applying the usual wrap and clamp.
func (c *CameraRig) SetYawPitch(yaw, pitch float32) {
	c.yaw = wrapYaw(yaw)
	c.pitch = clampPitch(pitch)
	c.isDirty = true
}

// LookAt turns the rig toward target without moving it.
func (c *CameraRig) LookAt(target math.Vec3) {
	d := target.Sub(c.position)
	if d.LengthSquared() == 0 {
		return
	}
	d = d.Normalize()
	yaw := float32(gomath.Atan2(float64(d.X), float64(d.Z)))
	pitch := float32(gomath.Asin(float64(math.Clamp(d.Y, -1, 1))))
	c.SetYawPitch(yaw, pitch)
}

func (c *CameraRig) Model() MovementModel {
	return c.model
}

func (c *CameraRig) SetModel(model MovementModel) {
	if c.model == model {
		return
	}
	c.model = model
	c.isDirty = true
	core.LogDebug("camera movement model set to %s", model)
}

// ToggleModel switches between fly and walk and returns the new model.
func (c *CameraRig) ToggleModel() MovementModel {
	if c.model == ModelFly {
		c.SetModel(ModelWalk)
	} else {
		c.SetModel(ModelFly)
	}
	return c.model
}

func (c *CameraRig) Settings() CameraSettings {
	return c.settings
}

func (c *CameraRig) SetSettings(settings CameraSettings) {
	c.settings = settings
}

/**
 * @brief Update applies one frame of input. Mouse motion turns the camera,
 * the arrow keys turn it at TurnSpeed, WASD moves along the ground direction
 * and, in fly mode, Space and Shift move it up and down. dt is in seconds.
 */
func (c *CameraRig) Update(input core.InputSnapshot, dt float64) {
	step := float32(dt)

	yaw, pitch := c.yaw, c.pitch
	yaw -= input.MouseDX * c.settings.MouseSensitivity
	pitch -= input.MouseDY * c.settings.MouseSensitivity

	turn := c.settings.TurnSpeed * step
	if input.IsKeyDown(core.KEY_LEFT) {
		yaw += turn
	}
	if input.IsKeyDown(core.KEY_RIGHT) {
		yaw -= turn
	}
	if input.IsKeyDown(core.KEY_UP) {
		pitch += turn
	}
	if input.IsKeyDown(core.KEY_DOWN) {
		pitch -= turn
	}
	if yaw != c.yaw || pitch != c.pitch {
		c.SetYawPitch(yaw, pitch)
	}

	// Movement follows the orientation that was just applied.
	c.rebuild()

	velocity := math.NewVec3Zero()
	right := c.moveDir.Cross(c.up)
	if input.IsKeyDown(core.KEY_W) {
		velocity = velocity.Add(c.moveDir)
	}
	if input.IsKeyDown(core.KEY_S) {
		velocity = velocity.Sub(c.moveDir)
	}
	if input.IsKeyDown(core.KEY_A) {
		velocity = velocity.Sub(right)
	}
	if input.IsKeyDown(core.KEY_D) {
		velocity = velocity.Add(right)
	}
	if c.model == ModelFly {
		if input.IsKeyDown(core.KEY_SPACE) {
			velocity = velocity.Add(c.up)
		}
		if input.IsKeyDown(core.KEY_SHIFT) || input.IsKeyDown(core.KEY_LSHIFT) || input.IsKeyDown(core.KEY_RSHIFT) {
			velocity = velocity.Sub(c.up)
		}
	}
	if velocity.LengthSquared() > 0 && step > 0 {
		c.position = c.position.Add(velocity.Normalize().MulScalar(c.settings.MoveSpeed * step))
		c.isDirty = true
	}
	c.rebuild()
}

// Output returns the directions and placement matrix of the current state.
func (c *CameraRig) Output() CameraOutput {
	c.rebuild()
	return CameraOutput{LookDir: c.lookDir, MoveDir: c.moveDir, CameraMatrix: c.cameraMatrix}
}

func (c *CameraRig) LookDir() math.Vec3 {
	c.rebuild()
	return c.lookDir
}

func (c *CameraRig) MoveDir() math.Vec3 {
	c.rebuild()
	return c.moveDir
}

// View returns the world-to-view matrix, the rigid inverse of the placement.
func (c *CameraRig) View() math.Mat4 {
	c.rebuild()
	return c.view
}

func (c *CameraRig) rebuild() {
	if !c.isDirty {
		return
	}
	var out CameraOutput
	if c.model == ModelWalk {
		out = walk(c.position, c.up, c.yaw, c.pitch)
	} else {
		out = fly(c.position, c.up, c.yaw, c.pitch)
	}
	c.lookDir = out.LookDir
	c.moveDir = out.MoveDir
	c.cameraMatrix = out.CameraMatrix
	c.view = out.CameraMatrix.QuickInverse()
	c.isDirty = false
}

/**
 * @brief fly composes the yaw rotation with a tilt around the yawed right
 * axis. The target sits behind the camera, at pos - look, and the placement
 * inverts its forward axis so the rendered view still faces along look.
 */
func fly(pos, up math.Vec3, yaw, pitch float32) CameraOutput {
	forward := math.NewVec3Forward().ToVec4(0)
	yawRot := math.NewMat4RotationY(yaw)
	move := yawRot.MulVec4(forward).ToVec3()

	right := move.Cross(up)
	tilt := yawRot.Mul(math.NewMat4RotationAxis(right, pitch))
	look := tilt.MulVec4(forward).ToVec3()

	target := pos.Sub(look)
	return CameraOutput{
		LookDir:      look,
		MoveDir:      move,
		CameraMatrix: math.NewMat4PointAt(pos, target, up, true),
	}
}

// walk tilts the yawed move direction around the right axis directly.
func walk(pos, up math.Vec3, yaw, pitch float32) CameraOutput {
	move := math.NewMat4RotationY(yaw).MulVec4(math.NewVec3Forward().ToVec4(0)).ToVec3()
	right := move.Cross(up)
	look := move.RotateByAxis(right, pitch)

	target := pos.Add(look)
	return CameraOutput{
		LookDir:      look,
		MoveDir:      move,
		CameraMatrix: math.NewMat4PointAt(pos, target, up, false),
	}
}

// wrapYaw resets yaw to 0 once it reaches a full turn either way.
func wrapYaw(yaw float32) float32 {
	if yaw >= math.K_PI_2 || yaw <= -math.K_PI_2 {
		return 0
	}
	return yaw
}

func clampPitch(pitch float32) float32 {
	limit := math.K_HALF_PI - PitchEpsilon
	return math.Clamp(pitch, -limit, limit)
}
