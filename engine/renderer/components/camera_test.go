package components

import (
	"testing"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
)

const tolerance = 1e-4

func keys(codes ...core.KeyCode) core.InputSnapshot {
	var s core.InputSnapshot
	for _, k := range codes {
		s.Current.Keys[k] = true
	}
	return s
}

func TestZeroInputLeavesCameraUnchanged(t *testing.T) {
	for _, model := range []MovementModel{ModelFly, ModelWalk} {
		t.Run(model.String(), func(t *testing.T) {
			c := NewCameraRig(math.NewVec3(1, 2, -3), DefaultCameraSettings())
			c.SetModel(model)
			c.SetYawPitch(0.4, -0.2)
			pos, look, view := c.Position(), c.LookDir(), c.View()

			c.Update(core.InputSnapshot{}, 0)
			c.Update(keys(core.KEY_W, core.KEY_LEFT), 0)

			if c.Position() != pos {
				t.Errorf("position moved: %v -> %v", pos, c.Position())
			}
			if !c.LookDir().Compare(look, tolerance) {
				t.Errorf("look changed: %v -> %v", look, c.LookDir())
			}
			if !c.View().Compare(view, tolerance) {
				t.Errorf("view changed")
			}
		})
	}
}

func TestYawWrapsAtFullTurn(t *testing.T) {
	c := NewCameraRig(math.NewVec3Zero(), DefaultCameraSettings())
	c.SetYawPitch(math.K_PI_2-0.01, 0)
	c.Update(keys(core.KEY_LEFT), 1)
	if c.Yaw() != 0 {
		t.Errorf("yaw = %f, want wrapped to 0", c.Yaw())
	}

	c.SetYawPitch(-math.K_PI_2, 0)
	if c.Yaw() != 0 {
		t.Errorf("yaw = %f, want wrapped to 0", c.Yaw())
	}
}

func TestPitchIsClamped(t *testing.T) {
	limit := math.K_HALF_PI - PitchEpsilon
	c := NewCameraRig(math.NewVec3Zero(), DefaultCameraSettings())

	c.Update(core.InputSnapshot{MouseDY: -100000}, 0.016)
	if c.Pitch() != limit {
		t.Errorf("pitch = %f, want %f", c.Pitch(), limit)
	}
	c.Update(core.InputSnapshot{MouseDY: 200000}, 0.016)
	if c.Pitch() != -limit {
		t.Errorf("pitch = %f, want %f", c.Pitch(), -limit)
	}
	if l := c.LookDir(); l.Y >= 0 || !math.IsFinite(l.Y) {
		t.Errorf("look at lowest pitch = %v", l)
	}
}

func TestMouseTurnsTheExpectedWay(t *testing.T) {
	c := NewCameraRig(math.NewVec3Zero(), DefaultCameraSettings())
	// Mouse right turns right, which is world -x when facing +z.
	c.Update(core.InputSnapshot{MouseDX: 100}, 0.016)
	if c.Yaw() >= 0 || c.LookDir().X >= 0 {
		t.Errorf("yaw = %f look = %v", c.Yaw(), c.LookDir())
	}
	// Mouse up looks up.
	c.Update(core.InputSnapshot{MouseDY: -100}, 0.016)
	if c.Pitch() <= 0 || c.LookDir().Y <= 0 {
		t.Errorf("pitch = %f look = %v", c.Pitch(), c.LookDir())
	}
}

func TestKeyboardMovement(t *testing.T) {
	settings := DefaultCameraSettings()
	settings.MoveSpeed = 2

	tests := []struct {
		name  string
		model MovementModel
		keys  []core.KeyCode
		want  math.Vec3
	}{
		{"forward", ModelFly, []core.KeyCode{core.KEY_W}, math.NewVec3(0, 0, 1)},
		{"backward", ModelFly, []core.KeyCode{core.KEY_S}, math.NewVec3(0, 0, -1)},
		{"strafe right", ModelFly, []core.KeyCode{core.KEY_D}, math.NewVec3(-1, 0, 0)},
		{"strafe left", ModelFly, []core.KeyCode{core.KEY_A}, math.NewVec3(1, 0, 0)},
		{"rise", ModelFly, []core.KeyCode{core.KEY_SPACE}, math.NewVec3(0, 1, 0)},
		{"sink", ModelFly, []core.KeyCode{core.KEY_SHIFT}, math.NewVec3(0, -1, 0)},
		{"walk ignores rise", ModelWalk, []core.KeyCode{core.KEY_SPACE}, math.NewVec3(0, 0, 0)},
		{"walk forward", ModelWalk, []core.KeyCode{core.KEY_W}, math.NewVec3(0, 0, 1)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCameraRig(math.NewVec3Zero(), settings)
			c.SetModel(tc.model)
			c.Update(keys(tc.keys...), 0.5)
			if !c.Position().Compare(tc.want, tolerance) {
				t.Errorf("position = %v, want %v", c.Position(), tc.want)
			}
		})
	}
}

func TestForwardIgnoresPitch(t *testing.T) {
	c := NewCameraRig(math.NewVec3Zero(), DefaultCameraSettings())
	c.SetYawPitch(0, 1)
	c.Update(keys(core.KEY_W), 1)
	if p := c.Position(); p.Y != 0 || p.Z <= 0 {
		t.Errorf("moving forward while looking up left the ground plane: %v", p)
	}
}

func TestFlyAndWalkAgreeOnLookDirection(t *testing.T) {
	angles := [][2]float32{{0, 0}, {0.5, 0.3}, {-1.2, -0.7}, {3, 1.2}, {-5, 0.01}}
	for _, a := range angles {
		fly := NewCameraRig(math.NewVec3(3, 1, 2), DefaultCameraSettings())
		fly.SetYawPitch(a[0], a[1])
		walk := NewCameraRig(math.NewVec3(3, 1, 2), DefaultCameraSettings())
		walk.SetModel(ModelWalk)
		walk.SetYawPitch(a[0], a[1])

		if !fly.LookDir().Compare(walk.LookDir(), tolerance) {
			t.Errorf("yaw %f pitch %f: fly %v walk %v", a[0], a[1], fly.LookDir(), walk.LookDir())
		}
		if !fly.View().Compare(walk.View(), tolerance) {
			t.Errorf("yaw %f pitch %f: views differ", a[0], a[1])
		}
	}
}

func TestViewPutsLookOnPositiveZ(t *testing.T) {
	for _, model := range []MovementModel{ModelFly, ModelWalk} {
		c := NewCameraRig(math.NewVec3(1, 2, 3), DefaultCameraSettings())
		c.SetModel(model)
		c.SetYawPitch(0.3, 0.2)

		view := c.View()
		if !view.Compare(c.Output().CameraMatrix.QuickInverse(), tolerance) {
			t.Errorf("%s: view is not the inverse placement", model)
		}

		ahead := c.Position().Add(c.LookDir().MulScalar(3)).ToVec4(1)
		got := view.MulVec4(ahead)
		if !got.Compare(math.NewVec4(0, 0, 3, 1), tolerance) {
			t.Errorf("%s: point ahead maps to %v", model, got)
		}
		origin := view.MulVec4(c.Position().ToVec4(1))
		if !origin.Compare(math.NewVec4(0, 0, 0, 1), tolerance) {
			t.Errorf("%s: camera position maps to %v", model, origin)
		}
	}
}

func TestLookAt(t *testing.T) {
	c := NewCameraRig(math.NewVec3(0, 0, -5), DefaultCameraSettings())
	c.LookAt(math.NewVec3Zero())
	if c.Yaw() != 0 || c.Pitch() != 0 {
		t.Errorf("yaw %f pitch %f, want 0 0", c.Yaw(), c.Pitch())
	}

	target := math.NewVec3(4, 3, 1)
	c.LookAt(target)
	want := target.Sub(c.Position()).Normalize()
	if !c.LookDir().Compare(want, tolerance) {
		t.Errorf("look = %v, want %v", c.LookDir(), want)
	}
}

func TestToggleModel(t *testing.T) {
	c := NewCameraRig(math.NewVec3Zero(), DefaultCameraSettings())
	if c.ToggleModel() != ModelWalk || c.ToggleModel() != ModelFly {
		t.Errorf("toggle did not alternate")
	}
	if m, ok := ParseMovementModel("walk"); !ok || m != ModelWalk {
		t.Errorf("parse walk = %v %v", m, ok)
	}
	if _, ok := ParseMovementModel("swim"); ok {
		t.Errorf("parse accepted swim")
	}
}
