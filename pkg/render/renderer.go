// pkg/render/renderer.go
package render

import (
	"context"
	"fmt"

	"github.com/opd-ai/go-arena/pkg/engine"
	"github.com/opd-ai/go-arena/pkg/logging"
)

// Renderer draws game state snapshots.
type Renderer interface {
	Clear()
	RenderEntity(e engine.EntityState)
	RenderStatus(state *engine.GameState)
	Present()
}

// Frame draws one snapshot with r.
func Frame(r Renderer, state *engine.GameState) {
	r.Clear()
	for _, e := range state.Entities {
		if e.Placed {
			r.RenderEntity(e)
		}
	}
	r.RenderStatus(state)
	r.Present()
}

// StatusLine formats the one-line scene summary shown above the playfield.
func StatusLine(state *engine.GameState, overlay bool) string {
	on := "off"
	if overlay {
		on = "on"
	}
	return fmt.Sprintf(" %s  tick %d  entities %d  pairs %d  overlay %s (o) ",
		state.Scene, state.Tick, len(state.Entities), len(state.Pairs), on)
}

// NullRenderer logs what it would draw at debug level.
type NullRenderer struct {
	logger *logging.Logger
	ctx    context.Context
}

// NewNullRenderer creates a NullRenderer writing to logger.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	return &NullRenderer{
		logger: logger,
		ctx:    context.Background(),
	}
}

// Clear implements Renderer.
func (d *NullRenderer) Clear() {}

// Present implements Renderer.
func (d *NullRenderer) Present() {}

// RenderEntity implements Renderer.
func (d *NullRenderer) RenderEntity(e engine.EntityState) {
	if !d.logger.DebugEnabled(d.ctx) {
		return
	}
	d.logger.Debug(d.ctx, "RenderEntity called",
		"entity_id", e.ID,
		"entity_name", e.Name,
		"x", e.Position.X,
		"y", e.Position.Y,
		"colliding", e.Colliding,
	)
}

// RenderStatus implements Renderer.
func (d *NullRenderer) RenderStatus(state *engine.GameState) {
	if state == nil {
		d.logger.Debug(d.ctx, "RenderStatus called with nil state")
		return
	}
	d.logger.Debug(logging.WithTick(d.ctx, state.Tick), "RenderStatus called",
		"entities", len(state.Entities),
		"pairs", len(state.Pairs),
	)
}
