// pkg/render/engo/input.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-arena/pkg/physics"
)

// Button names registered by SetupInputBindings.
const (
	ButtonOverlay   = "overlay"
	ButtonPause     = "pause"
	ButtonResetZoom = "resetZoom"
	ButtonQuit      = "quit"
)

// CursorSetter receives the mouse position in world coordinates.
type CursorSetter interface {
	SetCursor(pos physics.Vector2D)
}

// InputState is what the input system reads each frame.
type InputState struct {
	Mouse   engo.Point
	Overlay bool // overlay toggle pressed this frame
	Pause   bool
	Quit    bool
}

// InputSystem moves the game cursor with the mouse and handles the
// viewer's key bindings.
type InputSystem struct {
	cursor  CursorSetter
	camera  *CameraSystem
	overlay *OverlayRenderer

	paused bool
	onQuit func()
}

// NewInputSystem creates a new input system
func NewInputSystem(cursor CursorSetter, camera *CameraSystem, overlay *OverlayRenderer) *InputSystem {
	return &InputSystem{
		cursor:  cursor,
		camera:  camera,
		overlay: overlay,
		onQuit:  engo.Exit,
	}
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(basic ecs.BasicEntity) {}

// Update polls engo's input manager.
func (is *InputSystem) Update(dt float32) {
	if engo.Input == nil {
		return
	}
	is.Handle(InputState{
		Mouse:   engo.Point{X: engo.Input.Mouse.X, Y: engo.Input.Mouse.Y},
		Overlay: engo.Input.Button(ButtonOverlay).JustPressed(),
		Pause:   engo.Input.Button(ButtonPause).JustPressed(),
		Quit:    engo.Input.Button(ButtonQuit).JustPressed(),
	})
}

// Handle applies one frame of input.
func (is *InputSystem) Handle(in InputState) {
	if in.Quit && is.onQuit != nil {
		is.onQuit()
		return
	}
	if in.Pause {
		is.paused = !is.paused
	}
	if in.Overlay && is.overlay != nil {
		is.overlay.Toggle()
	}
	if is.cursor != nil && is.camera != nil {
		is.cursor.SetCursor(is.camera.ScreenToWorld(in.Mouse))
	}
}

// Paused reports whether the simulation is paused.
func (is *InputSystem) Paused() bool {
	return is.paused
}

// SetupInputBindings sets up the key bindings for the viewer
func SetupInputBindings() {
	engo.Input.RegisterButton(ButtonOverlay, engo.KeyO)
	engo.Input.RegisterButton(ButtonPause, engo.KeySpace)
	engo.Input.RegisterButton(ButtonResetZoom, engo.KeyR)
	engo.Input.RegisterButton(ButtonQuit, engo.KeyEscape, engo.KeyQ)
}
