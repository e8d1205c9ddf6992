// pkg/entity/entity.go
package entity

import (
	"errors"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-arena/pkg/collision"
	"github.com/opd-ai/go-arena/pkg/physics"
)

// ErrNoCollider is returned when a collider is required but missing.
var ErrNoCollider = errors.New("entity has no collider")

// Transform holds an entity's placement. Placed is false while the entity
// has no position, for example before a follow target has reported one.
type Transform struct {
	Position physics.Vector2D
	Velocity physics.Vector2D
	Placed   bool
}

// Entity is a named game object. Identity comes from the embedded
// ecs.BasicEntity so the same id is used by every system.
type Entity struct {
	ecs.BasicEntity
	Name      string
	Transform *Transform
	Collider  *collision.Collider
}

// New creates an entity placed at pos.
func New(name string, pos physics.Vector2D, collider *collision.Collider) *Entity {
	return &Entity{
		BasicEntity: ecs.NewBasic(),
		Name:        name,
		Transform:   &Transform{Position: pos, Placed: true},
		Collider:    collider,
	}
}

// Position returns the entity's position for the current tick. It
// implements collision.PositionSource.
func (e *Entity) Position() (physics.Vector2D, bool) {
	if e.Transform == nil || !e.Transform.Placed {
		return physics.Vector2D{}, false
	}
	return e.Transform.Position, true
}

// SetPosition places the entity at pos.
func (e *Entity) SetPosition(pos physics.Vector2D) {
	if e.Transform == nil {
		e.Transform = &Transform{}
	}
	e.Transform.Position = pos
	e.Transform.Placed = true
}

// Bounds returns the entity's bounding box at its current position.
func (e *Entity) Bounds() (physics.AABB, error) {
	if e.Collider == nil {
		return physics.AABB{}, ErrNoCollider
	}
	pos, _ := e.Position()
	return e.Collider.Shape().Bounds(pos), nil
}

// Entry returns the entity as collision input. ok is false when the entity
// has no collider or no position.
func (e *Entity) Entry() (collision.Entry, bool) {
	pos, placed := e.Position()
	if e.Collider == nil || !placed {
		return collision.Entry{}, false
	}
	return collision.Entry{ID: e.ID(), Collider: e.Collider, Position: pos}, true
}
