package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/pipeline"
)

const yamlScene = `
name: demo
objects:
  - name: base
    primitive: cube
    size: 2
    position: [0, 0, 3]
    colour: [1, 0, 0, 1]
    spin: [0, 90, 0]
  - name: roof
    primitive: pyramid
    parent: base
    size: 2
    height: 1
    position: [0, 1, 0]
  - name: ground
    primitive: grid
    size: 10
    cells: 4
`

const tomlScene = `
name = "toml demo"

[[objects]]
name = "tile"
primitive = "plane"
size = 4.0

[[objects]]
name = "dust"
primitive = "scatter"
size = 0.1
count = 5
seed = 42
radius = 2.0
`

func writeScene(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAMLScene(t *testing.T) {
	s, err := Load(writeScene(t, "demo.yaml", yamlScene))
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "demo" || len(s.Objects) != 3 {
		t.Fatalf("scene %q with %d objects", s.Name, len(s.Objects))
	}
	// cube 12 + pyramid 6 + grid 4x4x2
	if got := s.TriangleCount(); got != 12+6+32 {
		t.Errorf("triangles = %d", got)
	}

	base, _ := s.Find("base")
	roof, ok := s.Find("roof")
	if !ok || roof.Transform.Parent != base.Transform {
		t.Fatalf("roof not parented to base")
	}
	if base.ID == roof.ID {
		t.Errorf("objects share an id")
	}
	if base.Mesh.Triangles[0].Colour != math.NewVec4(1, 0, 0, 1) {
		t.Errorf("base colour = %v", base.Mesh.Triangles[0].Colour)
	}
	if roof.Mesh.Triangles[0].Colour != math.NewVec4(1, 1, 1, 1) {
		t.Errorf("default colour = %v", roof.Mesh.Triangles[0].Colour)
	}

	// The roof follows its parent's placement.
	world := roof.Transform.GetWorld().Position()
	if !world.Compare(math.NewVec3(0, 1, 3), 1e-4) {
		t.Errorf("roof world position = %v", world)
	}
}

func TestLoadTOMLScene(t *testing.T) {
	s, err := Load(writeScene(t, "demo.toml", tomlScene))
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "toml demo" {
		t.Errorf("name = %q", s.Name)
	}
	dust, ok := s.Find("dust")
	if !ok {
		t.Fatal("dust missing")
	}
	if len(dust.Mesh.Triangles) != 5*12 {
		t.Errorf("scatter triangles = %d", len(dust.Mesh.Triangles))
	}
	ext := dust.Mesh.Extents()
	for _, v := range []float32{ext.Min.X, ext.Min.Y, ext.Min.Z, ext.Max.X, ext.Max.Y, ext.Max.Z} {
		if v < -2.2 || v > 2.2 {
			t.Errorf("scatter escaped its radius: %+v", ext)
			break
		}
	}
}

func TestScatterIsDeterministic(t *testing.T) {
	od := ObjectDesc{Name: "s", Primitive: PrimitiveScatter, Size: 0.5, Count: 3, Seed: 9, Radius: 4}
	a, _ := generate(od)
	b, _ := generate(od)
	for i := range a.Triangles {
		if a.Triangles[i] != b.Triangles[i] {
			t.Fatalf("triangle %d differs between runs", i)
		}
	}
}

func TestDescriptionErrors(t *testing.T) {
	tests := []struct {
		name string
		desc Description
		want error
	}{
		{"unknown primitive", Description{Objects: []ObjectDesc{{Name: "a", Primitive: "teapot"}}}, ErrUnknownPrimitive},
		{"duplicate", Description{Objects: []ObjectDesc{{Name: "a", Primitive: "cube"}, {Name: "a", Primitive: "cube"}}}, ErrDuplicateObject},
		{"negative scatter count", Description{Objects: []ObjectDesc{{Name: "dust", Primitive: PrimitiveScatter, Count: -1}}}, ErrNegativeCount},
		{"negative grid cells", Description{Objects: []ObjectDesc{{Name: "floor", Primitive: PrimitiveGrid, Cells: -2}}}, ErrNegativeCount},
		{"parent declared later", Description{Objects: []ObjectDesc{{Name: "a", Primitive: "cube", Parent: "b"}, {Name: "b", Primitive: "cube"}}}, ErrUnknownParent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Build(&tc.desc); !errors.Is(err, tc.want) {
				t.Errorf("Build() = %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := Load(writeScene(t, "scene.json", "{}")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("json scene: %v", err)
	}
	negative := "objects:\n  - name: dust\n    primitive: scatter\n    count: -1\n"
	if _, err := Load(writeScene(t, "negative.yaml", negative)); !errors.Is(err, ErrNegativeCount) {
		t.Errorf("negative count file: %v", err)
	}
	if _, err := Load(writeScene(t, "bad.yaml", "objects: [")); err == nil {
		t.Errorf("malformed yaml accepted")
	}
}

func TestDefaultSceneRendersThroughPipeline(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	p := pipeline.New(pipeline.Viewport{Width: 160, Height: 120}, pipeline.DefaultOptions())
	camPos := math.NewVec3(0, 0, -5)
	view := math.NewMat4PointAt(camPos, math.NewVec3Zero(), math.NewVec3Up(), false).QuickInverse()

	p.BeginFrame(view, camPos)
	s.Submit(p)
	out := p.EndFrame()
	if p.Stats().Submitted != s.TriangleCount() {
		t.Errorf("submitted %d of %d triangles", p.Stats().Submitted, s.TriangleCount())
	}
	if len(out) == 0 {
		t.Errorf("default scene produced nothing")
	}
	for _, tr := range out {
		for _, pt := range tr.Points {
			if !p.Viewport().Contains(pt, 1e-2) {
				t.Fatalf("vertex %v off screen", pt)
			}
		}
	}
}

func TestUpdateSpins(t *testing.T) {
	s, err := Build(&Description{Objects: []ObjectDesc{
		{Name: "still", Primitive: PrimitiveCube},
		{Name: "turning", Primitive: PrimitiveCube, Spin: [3]float32{0, 90, 0}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	s.Update(1)

	still, _ := s.Find("still")
	if still.Transform.Rotation != math.NewQuatIdentity() {
		t.Errorf("still object rotated: %v", still.Transform.Rotation)
	}
	turning, _ := s.Find("turning")
	// A quarter turn around y takes +x to -z.
	got := math.NewVec3(1, 0, 0).Transform(turning.Transform.GetLocal())
	if !got.Compare(math.NewVec3(0, 0, -1), 1e-4) {
		t.Errorf("+x after a quarter turn = %v", got)
	}
}

func TestWatcherPostsSceneChanged(t *testing.T) {
	bus := core.NewEventBus()
	w, err := NewWatcher(bus)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	path := writeScene(t, "live.yaml", yamlScene)
	other := filepath.Join(filepath.Dir(path), "other.yaml")
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}

	var got []string
	if err := bus.Register(core.EVENT_CODE_SCENE_CHANGED, t, func(ctx core.EventContext) bool {
		got = append(got, ctx.Data.(*core.SceneEvent).Path)
		return true
	}); err != nil {
		t.Fatal(err)
	}

	// A file next to the watched one must not trigger.
	if err := os.WriteFile(other, []byte("name: x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(yamlScene+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for len(got) == 0 && time.Now().Before(deadline) {
		bus.Dispatch()
		time.Sleep(10 * time.Millisecond)
	}
	if len(got) == 0 {
		t.Fatal("no SCENE_CHANGED event")
	}
	abs, _ := filepath.Abs(path)
	for _, p := range got {
		if p != abs {
			t.Errorf("event for %s, want only %s", p, abs)
		}
	}

	if err := w.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
	if err := w.Watch(path); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("watch after close = %v", err)
	}
}
