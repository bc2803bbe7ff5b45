package testbed

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine"
	"github.com/spaghettifunk/prism/engine/config"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/pipeline"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/scene"
)

const (
	MainCameraName = "main"
	TopCameraName  = "top"
)

type TestGame struct {
	*engine.Game
	cfg   *config.Config
	state *gameState
}

type gameState struct {
	scene     *scene.Scene
	scenePath string
	watcher   *scene.Watcher

	width  uint32
	height uint32

	culling bool
	// Pipeline counters of the previous frame, shown in the overlay.
	stats pipeline.Stats
}

func NewTestGame(cfg *config.Config) (*TestGame, error) {
	app, err := engine.NewApplicationConfig(cfg)
	if err != nil {
		return nil, err
	}
	state := &gameState{scenePath: cfg.Scene.Path}
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: app,
			State:             state,
		},
		cfg:   cfg,
		state: state,
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) Initialize() error {
	core.LogInfo("initializing testbed...")

	s, err := scene.Load(g.state.scenePath)
	if err != nil {
		return err
	}
	g.state.scene = s
	core.LogInfo("scene '%s' loaded: %d objects, %d triangles", s.Name, len(s.Objects), s.TriangleCount())

	cameras := g.SystemManager.CameraSystem
	if err := cameras.Register(MainCameraName, g.cfg.NewCamera()); err != nil {
		return err
	}
	top := components.NewCameraRig(math.NewVec3(0, 12, -0.5), g.cfg.CameraSettings())
	top.LookAt(math.NewVec3Zero())
	if err := cameras.Register(TopCameraName, top); err != nil {
		return err
	}
	if err := cameras.SetActive(MainCameraName); err != nil {
		return err
	}

	g.state.culling = g.Pipeline.Options().Culling

	if err := g.EventBus.Register(core.EVENT_CODE_SCENE_CHANGED, g, g.onSceneChanged); err != nil {
		return err
	}
	if g.cfg.Scene.Watch && g.state.scenePath != "" {
		w, err := scene.NewWatcher(g.EventBus)
		if err != nil {
			return err
		}
		if err := w.Watch(g.state.scenePath); err != nil {
			_ = w.Close()
			return err
		}
		g.state.watcher = w
		core.LogInfo("watching %s for changes", g.state.scenePath)
	}
	return nil
}

func (g *TestGame) Update(deltaTime float64, input core.InputSnapshot) error {
	cameras := g.SystemManager.CameraSystem
	name, rig := cameras.Active()

	if input.WasKeyPressed(core.KEY_TAB) {
		name, rig = cameras.Next()
	}
	if input.WasKeyPressed(core.KEY_M) {
		core.LogInfo("camera '%s' movement: %s", name, rig.ToggleModel())
	}
	if input.WasKeyPressed(core.KEY_C) {
		g.state.culling = !g.state.culling
		g.Pipeline.SetCulling(g.state.culling)
		core.LogInfo("back-face culling: %t", g.state.culling)
	}
	if input.WasKeyPressed(core.KEY_P) {
		p := rig.Position()
		core.LogInfo("camera '%s' at (%.2f, %.2f, %.2f) yaw %.1f pitch %.1f",
			name, p.X, p.Y, p.Z, math.RadToDeg(rig.Yaw()), math.RadToDeg(rig.Pitch()))
	}
	if input.WasKeyPressed(core.KEY_F1) {
		g.Renderer.SetOverlay(!g.Renderer.Overlay())
	}
	if input.WasKeyPressed(core.KEY_F2) {
		g.Renderer.SetWireframe(!g.Renderer.Wireframe())
	}

	rig.Update(input, deltaTime)
	g.state.scene.Update(deltaTime)
	g.state.stats = g.Pipeline.Stats()
	return nil
}

func (g *TestGame) Render(p *pipeline.Pipeline, packet *renderer.RenderPacket, deltaTime float64) error {
	g.state.scene.Submit(p)
	if g.Renderer.Overlay() {
		packet.Overlay = g.overlay()
	}
	return nil
}

func (g *TestGame) overlay() []string {
	name, rig := g.SystemManager.CameraSystem.Active()
	pos := rig.Position()
	fps, ms := g.Metrics.Frame()
	st := g.state.stats
	return []string{
		fmt.Sprintf("%.0f fps  %.2f ms  %dx%d", fps, ms, g.state.width, g.state.height),
		fmt.Sprintf("camera %s (%s)  %.1f %.1f %.1f", name, rig.Model(), pos.X, pos.Y, pos.Z),
		fmt.Sprintf("tris %d  culled %d  near %d  edge %d  drawn %d",
			st.Submitted, st.Culled, st.NearClipped, st.EdgeClipped, st.Emitted),
	}
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	g.state.width = width
	g.state.height = height
	core.LogDebug("testbed resized to %dx%d", width, height)
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("shutting down testbed...")
	if g.state.watcher != nil {
		return g.state.watcher.Close()
	}
	return nil
}

// Scene returns the scene currently drawn.
func (g *TestGame) Scene() *scene.Scene {
	return g.state.scene
}

// onSceneChanged reloads on the frame goroutine. A broken file keeps the old scene.
func (g *TestGame) onSceneChanged(context core.EventContext) bool {
	ev, ok := context.Data.(*core.SceneEvent)
	if !ok {
		return false
	}
	s, err := scene.Load(ev.Path)
	if err != nil {
		core.LogError("reloading %s: %s", ev.Path, err)
		return true
	}
	g.state.scene = s
	core.LogInfo("scene '%s' reloaded: %d objects", s.Name, len(s.Objects))
	return true
}
