// pkg/combat/system.go
package combat

import (
	"context"
	"slices"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-arena/pkg/entity"
	"github.com/opd-ai/go-arena/pkg/event"
	"github.com/opd-ai/go-arena/pkg/logging"
)

// SystemPriority runs combat after collision in an ecs.World.
const SystemPriority = 0

// Combatant is the combat state of one entity. Health, Projectile and
// Transform are optional. Knockback is the speed a projectile adds to what
// it hits, along its own direction of travel.
type Combatant struct {
	Team          Team
	Health        *Health
	ContactDamage float64
	Projectile    *Projectile
	Knockback     float64
	Transform     *entity.Transform
}

// DespawnFunc removes an entity from the game.
type DespawnFunc func(id uint64)

// Option configures a System.
type Option func(*System)

// WithLogger sets the system's logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *System) {
		s.logger = logger
	}
}

// WithContext sets the context used for logging.
func WithContext(ctx context.Context) Option {
	return func(s *System) {
		s.ctx = ctx
	}
}

// WithDespawn sets the callback used to remove dead entities and spent
// projectiles.
func WithDespawn(fn DespawnFunc) Option {
	return func(s *System) {
		s.despawn = fn
	}
}

// System applies projectile hits on ongoing collisions and contact damage
// when a collision begins. Damage is applied as events arrive; removals are
// queued and carried out in Update so the collision pass that reported
// them finishes first.
type System struct {
	bus        *event.Bus
	subs       []*event.Subscription
	combatants map[uint64]*Combatant
	pending    []uint64
	queued     map[uint64]bool
	despawn    DespawnFunc
	logger     *logging.Logger
	ctx        context.Context
}

// NewSystem subscribes a combat system to bus.
func NewSystem(bus *event.Bus, opts ...Option) *System {
	s := &System{
		bus:        bus,
		combatants: make(map[uint64]*Combatant),
		queued:     make(map[uint64]bool),
		ctx:        context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.subs = append(s.subs,
		bus.Subscribe(event.CollisionOngoing, s.onOngoing),
		bus.Subscribe(event.CollisionBegan, s.onBegan),
	)
	return s
}

// Close cancels the system's subscriptions.
func (s *System) Close() {
	for _, sub := range s.subs {
		sub.Cancel()
	}
	s.subs = nil
}

// Add registers combat state for basic.
func (s *System) Add(basic *ecs.BasicEntity, c *Combatant) {
	s.combatants[basic.ID()] = c
}

// Remove implements ecs.System.
func (s *System) Remove(basic ecs.BasicEntity) {
	delete(s.combatants, basic.ID())
}

// Combatant returns the combat state registered for id.
func (s *System) Combatant(id uint64) (*Combatant, bool) {
	c, ok := s.combatants[id]
	return c, ok
}

// Pending returns the ids queued for removal.
func (s *System) Pending() []uint64 {
	return append([]uint64(nil), s.pending...)
}

func (s *System) onOngoing(e event.Event) {
	ce, ok := e.(*event.CollisionEvent)
	if !ok {
		return
	}
	s.projectileHit(ce.EntityA, ce.EntityB)
	s.projectileHit(ce.EntityB, ce.EntityA)
}

func (s *System) onBegan(e event.Event) {
	ce, ok := e.(*event.CollisionEvent)
	if !ok {
		return
	}
	s.contact(ce.EntityA, ce.EntityB)
	s.contact(ce.EntityB, ce.EntityA)
}

func (s *System) projectileHit(projectileID, targetID uint64) {
	src, ok := s.combatants[projectileID]
	if !ok || src.Projectile == nil || s.queued[projectileID] {
		return
	}
	dst, ok := s.combatants[targetID]
	if !ok || s.queued[targetID] {
		return
	}

	p := src.Projectile
	if !p.CanHit(targetID, dst.Team) {
		return
	}
	alive := p.RegisterHit(targetID)
	s.knockback(src, dst)
	s.damage(targetID, projectileID, p.Damage)
	if !alive {
		s.logger.Debug(s.ctx, "projectile spent", "entity", projectileID, "hits", p.Hits())
		s.queue(projectileID)
	}
}

// knockback only touches velocity; movement applies it on the next tick.
func (s *System) knockback(src, dst *Combatant) {
	if src.Knockback == 0 || src.Transform == nil || dst.Transform == nil {
		return
	}
	dir := src.Transform.Velocity.Normalize()
	if dir.X == 0 && dir.Y == 0 {
		return
	}
	dst.Transform.Velocity = dst.Transform.Velocity.Add(dir.Scale(src.Knockback))
}

func (s *System) contact(sourceID, targetID uint64) {
	src, ok := s.combatants[sourceID]
	if !ok || src.ContactDamage <= 0 || s.queued[sourceID] {
		return
	}
	dst, ok := s.combatants[targetID]
	if !ok || !Hostile(src.Team, dst.Team) {
		return
	}
	s.damage(targetID, sourceID, src.ContactDamage)
}

func (s *System) damage(targetID, sourceID uint64, amount float64) {
	c := s.combatants[targetID]
	if c.Health == nil || !c.Health.IsAlive() || s.queued[targetID] {
		return
	}

	applied := c.Health.TakeDamage(amount)
	if applied == 0 {
		return
	}
	s.bus.Publish(event.NewDamageEvent(s, targetID, sourceID, applied, c.Health.Value))

	if !c.Health.IsAlive() {
		s.logger.Info(s.ctx, "entity died", "entity", targetID, "killer", sourceID)
		s.bus.Publish(event.NewEntityEvent(event.EntityDied, s, targetID))
		s.queue(targetID)
	}
}

func (s *System) queue(id uint64) {
	if s.queued[id] {
		return
	}
	s.queued[id] = true
	s.pending = append(s.pending, id)
}

// Update implements ecs.System. It advances projectile range and removes
// everything queued since the last update, in the order it was queued.
func (s *System) Update(dt float32) {
	ids := make([]uint64, 0, len(s.combatants))
	for id, c := range s.combatants {
		if c.Projectile != nil && c.Transform != nil && !s.queued[id] {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	for _, id := range ids {
		c := s.combatants[id]
		if !c.Projectile.Travel(c.Transform.Velocity.Length() * float64(dt)) {
			s.logger.Debug(s.ctx, "projectile out of range", "entity", id)
			s.queue(id)
		}
	}
	s.Flush()
}

// Flush removes every queued entity now.
func (s *System) Flush() {
	pending := s.pending
	s.pending = nil
	for _, id := range pending {
		delete(s.queued, id)
		if s.despawn != nil {
			s.despawn(id)
		}
		delete(s.combatants, id)
	}
}

// Priority implements ecs.Prioritizer.
func (s *System) Priority() int {
	return SystemPriority
}
