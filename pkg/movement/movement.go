// Package movement advances entity positions each tick: plain velocity
// integration, scripted motion and target following.
package movement

import (
	"context"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-arena/pkg/entity"
	"github.com/opd-ai/go-arena/pkg/logging"
	"github.com/opd-ai/go-arena/pkg/physics"
)

// SystemPriority places movement ahead of collision in an ecs.World.
const SystemPriority = 100

// Mover computes a new placement for a transform. elapsed is the
// simulated time since the mover was registered.
type Mover interface {
	Move(t *entity.Transform, elapsed, dt float64) error
}

// MoverFunc adapts a function to Mover.
type MoverFunc func(t *entity.Transform, elapsed, dt float64) error

// Move implements Mover.
func (f MoverFunc) Move(t *entity.Transform, elapsed, dt float64) error {
	return f(t, elapsed, dt)
}

// Integrate moves t along its velocity.
func Integrate(t *entity.Transform, dt float64) {
	t.Position = t.Position.Add(t.Velocity.Scale(dt))
}

// WrapPosition wraps pos around a square world centred on the origin.
func WrapPosition(pos physics.Vector2D, worldSize float64) physics.Vector2D {
	if worldSize <= 0 {
		return pos
	}
	halfWorld := worldSize / 2

	if pos.X > halfWorld {
		pos.X -= worldSize
	} else if pos.X < -halfWorld {
		pos.X += worldSize
	}

	if pos.Y > halfWorld {
		pos.Y -= worldSize
	} else if pos.Y < -halfWorld {
		pos.Y += worldSize
	}
	return pos
}

type body struct {
	basic     *ecs.BasicEntity
	transform *entity.Transform
	mover     Mover
	elapsed   float64
	failed    bool
}

// System moves registered transforms every Update. Entities with a Mover
// are driven by it; the rest integrate their velocity. All positions wrap
// around the world edges.
type System struct {
	WorldSize float64

	bodies []*body
	index  map[uint64]int
	logger *logging.Logger
	ctx    context.Context
}

// NewSystem creates a movement system for a world of the given size.
func NewSystem(worldSize float64, logger *logging.Logger) *System {
	return &System{
		WorldSize: worldSize,
		index:     make(map[uint64]int),
		logger:    logger,
		ctx:       context.Background(),
	}
}

// Add registers a transform. mover may be nil.
func (s *System) Add(basic *ecs.BasicEntity, t *entity.Transform, mover Mover) {
	b := &body{basic: basic, transform: t, mover: mover}
	if i, ok := s.index[basic.ID()]; ok {
		s.bodies[i] = b
		return
	}
	s.index[basic.ID()] = len(s.bodies)
	s.bodies = append(s.bodies, b)
}

// Remove implements ecs.System.
func (s *System) Remove(basic ecs.BasicEntity) {
	i, ok := s.index[basic.ID()]
	if !ok {
		return
	}
	last := len(s.bodies) - 1
	s.bodies[i] = s.bodies[last]
	s.index[s.bodies[i].basic.ID()] = i
	s.bodies[last] = nil
	s.bodies = s.bodies[:last]
	delete(s.index, basic.ID())
}

// Len returns the number of registered transforms.
func (s *System) Len() int {
	return len(s.bodies)
}

// Update implements ecs.System.
func (s *System) Update(dt float32) {
	s.Step(float64(dt))
}

// Step advances every transform by dt seconds. A mover that fails is
// logged once and falls back to velocity integration.
func (s *System) Step(dt float64) {
	for _, b := range s.bodies {
		b.elapsed += dt
		if b.mover != nil && !b.failed {
			if err := b.mover.Move(b.transform, b.elapsed, dt); err != nil {
				b.failed = true
				s.logger.Warn(s.ctx, "mover failed, falling back to velocity",
					"entity", b.basic.ID(), "error", err.Error())
				Integrate(b.transform, dt)
			}
		} else {
			Integrate(b.transform, dt)
		}
		b.transform.Position = WrapPosition(b.transform.Position, s.WorldSize)
	}
}

// Priority implements ecs.Prioritizer.
func (s *System) Priority() int {
	return SystemPriority
}
