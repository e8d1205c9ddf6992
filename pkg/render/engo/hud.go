// pkg/render/engo/hud.go
package engo

import (
	"fmt"
	"sync"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-arena/pkg/engine"
	"github.com/opd-ai/go-arena/pkg/event"
	"github.com/opd-ai/go-arena/pkg/render"
)

// HUDSystem draws the status line in the top left corner. It also counts
// deaths reported on the event bus since the last scene load.
type HUDSystem struct {
	mu     sync.Mutex
	line   string
	deaths int
	subs   []*event.Subscription

	font         *common.Font
	renderSystem *common.RenderSystem
	text         *hudText
	drawn        string
}

type hudText struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
}

// NewHUDSystem creates a new HUD system
func NewHUDSystem() *HUDSystem {
	return &HUDSystem{}
}

// Subscribe starts counting deaths on bus.
func (hud *HUDSystem) Subscribe(bus *event.Bus) {
	hud.subs = append(hud.subs,
		bus.Subscribe(event.EntityDied, func(event.Event) {
			hud.mu.Lock()
			hud.deaths++
			hud.mu.Unlock()
		}),
		bus.Subscribe(event.SceneLoaded, func(event.Event) {
			hud.mu.Lock()
			hud.deaths = 0
			hud.mu.Unlock()
		}),
	)
}

// Close cancels the bus subscriptions.
func (hud *HUDSystem) Close() {
	for _, sub := range hud.subs {
		sub.Cancel()
	}
	hud.subs = nil
}

// SetFont sets the font used to draw the status line.
func (hud *HUDSystem) SetFont(font *common.Font) {
	hud.font = font
}

// SetRenderSystem attaches the engo render system the text is drawn by.
func (hud *HUDSystem) SetRenderSystem(rs *common.RenderSystem) {
	hud.renderSystem = rs
}

// Remove satisfies the ecs.System interface
func (hud *HUDSystem) Remove(basic ecs.BasicEntity) {}

// Update redraws the status text when it changed.
func (hud *HUDSystem) Update(dt float32) {
	if hud.font == nil || hud.renderSystem == nil {
		return
	}

	line := hud.Line()
	if hud.text == nil {
		hud.text = &hudText{BasicEntity: ecs.NewBasic()}
		hud.text.SpaceComponent = common.SpaceComponent{Position: engo.Point{X: 8, Y: 8}}
		hud.text.RenderComponent = common.RenderComponent{
			Drawable: common.Text{Font: hud.font, Text: line},
		}
		hud.text.SetShader(common.HUDShader)
		hud.text.SetZIndex(1000)
		hud.renderSystem.Add(&hud.text.BasicEntity, &hud.text.RenderComponent, &hud.text.SpaceComponent)
		hud.drawn = line
		return
	}

	if line != hud.drawn {
		hud.text.Drawable = common.Text{Font: hud.font, Text: line}
		hud.drawn = line
	}
}

// UpdateGameState records the snapshot the next status line describes.
func (hud *HUDSystem) UpdateGameState(state *engine.GameState, overlay bool) {
	if state == nil {
		return
	}
	hud.mu.Lock()
	defer hud.mu.Unlock()
	hud.line = render.StatusLine(state, overlay) + fmt.Sprintf(" deaths %d ", hud.deaths)
}

// Line returns the current status text.
func (hud *HUDSystem) Line() string {
	hud.mu.Lock()
	defer hud.mu.Unlock()
	return hud.line
}

// Deaths returns the number of deaths since the last scene load.
func (hud *HUDSystem) Deaths() int {
	hud.mu.Lock()
	defer hud.mu.Unlock()
	return hud.deaths
}
