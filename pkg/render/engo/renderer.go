// pkg/render/engo/renderer.go
package engo

import (
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-arena/pkg/engine"
	"github.com/opd-ai/go-arena/pkg/physics"
	"github.com/opd-ai/go-arena/pkg/render"
)

var _ render.Renderer = (*OverlayRenderer)(nil)

// proxy is the engo entity that draws one collider outline.
type proxy struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent

	kind physics.ShapeKind
}

// OverlayRenderer implements render.Renderer by keeping one outline proxy
// per collider in engo's render system. Proxies for entities missing from
// a frame are removed when the frame is presented.
type OverlayRenderer struct {
	renderSystem *common.RenderSystem
	camera       *CameraSystem
	hud          *HUDSystem

	proxies map[uint64]*proxy
	seen    map[uint64]bool
	enabled bool
}

// NewOverlayRenderer creates an overlay that maps positions through
// camera. hud may be nil.
func NewOverlayRenderer(camera *CameraSystem, hud *HUDSystem) *OverlayRenderer {
	return &OverlayRenderer{
		camera:  camera,
		hud:     hud,
		proxies: make(map[uint64]*proxy),
		seen:    make(map[uint64]bool),
		enabled: true,
	}
}

// SetRenderSystem attaches the engo render system proxies are drawn by.
// Without one the overlay only tracks proxies.
func (r *OverlayRenderer) SetRenderSystem(rs *common.RenderSystem) {
	r.renderSystem = rs
}

// SetEnabled turns the overlay on or off. Turning it off removes every
// proxy.
func (r *OverlayRenderer) SetEnabled(on bool) {
	r.enabled = on
	if !on {
		for id := range r.proxies {
			r.removeProxy(id)
		}
	}
}

// Toggle flips the overlay and returns the new state.
func (r *OverlayRenderer) Toggle() bool {
	r.SetEnabled(!r.enabled)
	return r.enabled
}

// Enabled reports whether outlines are drawn.
func (r *OverlayRenderer) Enabled() bool {
	return r.enabled
}

// Clear implements render.Renderer.
func (r *OverlayRenderer) Clear() {
	clear(r.seen)
}

// RenderEntity implements render.Renderer.
func (r *OverlayRenderer) RenderEntity(e engine.EntityState) {
	if !r.enabled || !e.HasShape || !e.Shape.Valid() {
		return
	}
	r.seen[e.ID] = true

	p := r.getOrCreateProxy(e)
	r.updateProxy(p, e)
}

// RenderStatus implements render.Renderer.
func (r *OverlayRenderer) RenderStatus(state *engine.GameState) {
	if r.hud != nil {
		r.hud.UpdateGameState(state, r.enabled)
	}
}

// Present implements render.Renderer.
func (r *OverlayRenderer) Present() {
	r.cleanupInactiveEntities()
}

// ProxyCount returns the number of live outline proxies.
func (r *OverlayRenderer) ProxyCount() int {
	return len(r.proxies)
}

// ProxyColor returns the outline colour of id's proxy.
func (r *OverlayRenderer) ProxyColor(id uint64) (color.Color, bool) {
	p, ok := r.proxies[id]
	if !ok {
		return nil, false
	}
	return borderColor(p.Drawable), true
}

// ProxySpace returns the screen rectangle of id's proxy.
func (r *OverlayRenderer) ProxySpace(id uint64) (common.SpaceComponent, bool) {
	p, ok := r.proxies[id]
	if !ok {
		return common.SpaceComponent{}, false
	}
	return p.SpaceComponent, true
}

func (r *OverlayRenderer) getOrCreateProxy(e engine.EntityState) *proxy {
	if p, ok := r.proxies[e.ID]; ok && p.kind == e.Shape.Kind() {
		return p
	}
	// Shape kind changed, start over.
	r.removeProxy(e.ID)

	p := &proxy{
		BasicEntity: ecs.NewBasic(),
		kind:        e.Shape.Kind(),
	}
	p.RenderComponent = common.RenderComponent{
		Drawable: OutlineDrawable(e.Shape, OutlineColor(e.Colliding)),
		Color:    color.Transparent,
	}
	r.proxies[e.ID] = p

	if r.renderSystem != nil {
		r.renderSystem.Add(&p.BasicEntity, &p.RenderComponent, &p.SpaceComponent)
	}
	return p
}

func (r *OverlayRenderer) updateProxy(p *proxy, e engine.EntityState) {
	bounds := e.Shape.Bounds(e.Position)
	zoom := r.camera.GetZoom()
	size := e.Shape.Size()

	p.SpaceComponent = common.SpaceComponent{
		Position: r.camera.WorldToScreen(bounds.Min),
		Width:    float32(size.X) * zoom,
		Height:   float32(size.Y) * zoom,
	}

	want := OutlineColor(e.Colliding)
	if borderColor(p.Drawable) != want {
		p.Drawable = OutlineDrawable(e.Shape, want)
	}
}

// cleanupInactiveEntities drops proxies whose entity was not drawn this
// frame.
func (r *OverlayRenderer) cleanupInactiveEntities() {
	for id := range r.proxies {
		if !r.seen[id] {
			r.removeProxy(id)
		}
	}
}

func (r *OverlayRenderer) removeProxy(id uint64) {
	p, ok := r.proxies[id]
	if !ok {
		return
	}
	if r.renderSystem != nil {
		r.renderSystem.Remove(p.BasicEntity)
	}
	delete(r.proxies, id)
}

func borderColor(d common.Drawable) color.Color {
	switch s := d.(type) {
	case common.Rectangle:
		return s.BorderColor
	case common.Circle:
		return s.BorderColor
	}
	return nil
}
