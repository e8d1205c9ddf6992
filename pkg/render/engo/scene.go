// pkg/render/engo/scene.go
package engo

import (
	"context"
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-arena/pkg/engine"
	"github.com/opd-ai/go-arena/pkg/render"
)

// maxStepsPerFrame bounds catch-up ticks after a slow frame.
const maxStepsPerFrame = 5

// ArenaScene runs an engine.Game inside engo and draws its collider
// overlay.
type ArenaScene struct {
	game *engine.Game
	ctx  context.Context

	// Rendering components
	assets  *AssetManager
	camera  *CameraSystem
	overlay *OverlayRenderer
	input   *InputSystem
	hud     *HUDSystem

	accumulator float64
}

// NewArenaScene creates a scene for game. The overlay starts in the state
// the scene config asks for.
func NewArenaScene(game *engine.Game) *ArenaScene {
	scene := &ArenaScene{
		game:   game,
		ctx:    context.Background(),
		assets: NewAssetManager(),
		camera: NewCameraSystem(),
		hud:    NewHUDSystem(),
	}
	scene.overlay = NewOverlayRenderer(scene.camera, scene.hud)
	scene.input = NewInputSystem(game, scene.camera, scene.overlay)
	scene.hud.Subscribe(game.EventBus)

	state := game.GetGameState()
	scene.overlay.SetEnabled(state.DebugOverlay)
	return scene
}

// Type returns the scene type (required by Engo)
func (scene *ArenaScene) Type() string {
	return "ArenaScene"
}

// Preload loads the HUD font. The viewer runs without a HUD if that fails.
func (scene *ArenaScene) Preload() {
	if err := scene.assets.LoadAssets(); err != nil {
		scene.game.Logger().Warn(scene.ctx, "HUD font unavailable", "error", err)
	}
}

// Setup is called when the scene starts (required by Engo)
func (scene *ArenaScene) Setup(u engo.Updater) {
	world, _ := u.(*ecs.World)
	if world == nil {
		return
	}
	common.SetBackground(color.RGBA{R: 20, G: 20, B: 26, A: 255})

	renderSystem := &common.RenderSystem{}
	world.AddSystem(renderSystem)
	scene.overlay.SetRenderSystem(renderSystem)

	scene.hud.SetFont(scene.assets.Font())
	scene.hud.SetRenderSystem(renderSystem)

	SetupInputBindings()
	scene.camera.SetViewport(engo.GameWidth(), engo.GameHeight())
	scene.camera.FitWorld(scene.game.GetGameState().WorldSize)

	world.AddSystem(scene.camera)
	world.AddSystem(scene.input)
	world.AddSystem(scene)
	world.AddSystem(scene.hud)

	scene.game.Start()
}

// Remove satisfies the ecs.System interface
func (scene *ArenaScene) Remove(basic ecs.BasicEntity) {}

// Update advances the game by whole ticks of frame time and draws the
// result.
func (scene *ArenaScene) Update(dt float32) {
	if !scene.input.Paused() {
		scene.Advance(float64(dt))
	}
	render.Frame(scene.overlay, scene.game.GetGameState())
}

// Advance runs as many fixed ticks as dt covers and returns how many ran.
// Leftover time carries into the next frame.
func (scene *ArenaScene) Advance(dt float64) int {
	step := scene.game.GetGameState().TimeStep
	if step <= 0 {
		return 0
	}

	scene.accumulator += dt
	steps := 0
	for scene.accumulator >= step && steps < maxStepsPerFrame {
		scene.game.Update()
		scene.accumulator -= step
		steps++
	}
	if steps == maxStepsPerFrame {
		scene.accumulator = 0
	}
	return steps
}

// Overlay returns the collider overlay.
func (scene *ArenaScene) Overlay() *OverlayRenderer {
	return scene.overlay
}

// Input returns the input system.
func (scene *ArenaScene) Input() *InputSystem {
	return scene.input
}

// HUD returns the HUD system.
func (scene *ArenaScene) HUD() *HUDSystem {
	return scene.hud
}

// Exit stops the game when the window closes.
func (scene *ArenaScene) Exit() {
	scene.hud.Close()
	scene.game.Stop()
}
