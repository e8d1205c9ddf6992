// pkg/combat/system_test.go
package combat

import (
	"testing"

	"github.com/EngoEngine/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-arena/pkg/collision"
	"github.com/opd-ai/go-arena/pkg/entity"
	"github.com/opd-ai/go-arena/pkg/event"
	"github.com/opd-ai/go-arena/pkg/logging"
	"github.com/opd-ai/go-arena/pkg/movement"
	"github.com/opd-ai/go-arena/pkg/physics"
)

type harness struct {
	bus       *event.Bus
	sys       *System
	damage    []*event.DamageEvent
	deaths    []uint64
	despawned []uint64
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{bus: event.NewEventBus()}
	h.sys = NewSystem(h.bus,
		WithLogger(logging.NewNopLogger()),
		WithDespawn(func(id uint64) { h.despawned = append(h.despawned, id) }),
	)
	h.bus.Subscribe(event.DamageTaken, func(e event.Event) {
		h.damage = append(h.damage, e.(*event.DamageEvent))
	})
	h.bus.Subscribe(event.EntityDied, func(e event.Event) {
		h.deaths = append(h.deaths, e.(*event.EntityEvent).EntityID)
	})
	t.Cleanup(h.sys.Close)
	return h
}

func (h *harness) add(c *Combatant) uint64 {
	basic := ecs.NewBasic()
	h.sys.Add(&basic, c)
	return basic.ID()
}

func (h *harness) collide(kind event.Type, a, b uint64) {
	pair := collision.NewPair(a, b)
	h.bus.Publish(event.NewCollisionEvent(kind, nil, pair.A, pair.B))
}

func TestSystem_ProjectileHitsTargetTeam(t *testing.T) {
	h := newHarness(t)
	bolt := h.add(&Combatant{Team: TeamPlayer, Projectile: NewProjectile(15, TargetTeam(TeamEnemy), PiercingNone, 0)})
	enemy := h.add(&Combatant{Team: TeamEnemy, Health: NewHealth(30)})

	h.collide(event.CollisionOngoing, bolt, enemy)

	require.Len(t, h.damage, 1)
	assert.Equal(t, enemy, h.damage[0].TargetID)
	assert.Equal(t, bolt, h.damage[0].SourceID)
	assert.Equal(t, 15.0, h.damage[0].Amount)
	assert.Equal(t, 15.0, h.damage[0].Remaining)
	assert.Equal(t, []uint64{bolt}, h.sys.Pending())

	h.sys.Update(0)
	assert.Equal(t, []uint64{bolt}, h.despawned)
	_, ok := h.sys.Combatant(bolt)
	assert.False(t, ok)
}

func TestSystem_ProjectileIgnoresOwnTeam(t *testing.T) {
	h := newHarness(t)
	bolt := h.add(&Combatant{Team: TeamPlayer, Projectile: NewProjectile(15, TargetTeam(TeamEnemy), PiercingNone, 0)})
	friend := h.add(&Combatant{Team: TeamPlayer, Health: NewHealth(30)})

	h.collide(event.CollisionOngoing, bolt, friend)
	h.sys.Update(0)

	assert.Empty(t, h.damage)
	assert.Empty(t, h.despawned)
}

func TestSystem_ObstacleStopsProjectile(t *testing.T) {
	h := newHarness(t)
	bolt := h.add(&Combatant{Team: TeamPlayer, Projectile: NewProjectile(15, TargetTeam(TeamEnemy), PiercingNone, 0)})
	wall := h.add(&Combatant{Team: TeamNone})

	h.collide(event.CollisionOngoing, wall, bolt)
	h.sys.Update(0)

	assert.Empty(t, h.damage, "walls have no health")
	assert.Equal(t, []uint64{bolt}, h.despawned)
}

func TestSystem_PiercingProjectileHitsEachTargetOnce(t *testing.T) {
	h := newHarness(t)
	bolt := h.add(&Combatant{Team: TeamPlayer, Projectile: NewProjectile(5, TargetAll, 1, 0)})
	first := h.add(&Combatant{Team: TeamEnemy, Health: NewHealth(30)})
	second := h.add(&Combatant{Team: TeamEnemy, Health: NewHealth(30)})

	h.collide(event.CollisionOngoing, bolt, first)
	h.collide(event.CollisionOngoing, bolt, first)
	require.Len(t, h.damage, 1)
	assert.Empty(t, h.sys.Pending())

	h.collide(event.CollisionOngoing, bolt, second)
	require.Len(t, h.damage, 2)
	assert.Equal(t, []uint64{bolt}, h.sys.Pending())
}

func TestSystem_LethalDamage(t *testing.T) {
	h := newHarness(t)
	bolt := h.add(&Combatant{Team: TeamPlayer, Projectile: NewProjectile(50, TargetAll, PiercingAll, 0)})
	other := h.add(&Combatant{Team: TeamPlayer, Projectile: NewProjectile(50, TargetAll, PiercingAll, 0)})
	enemy := h.add(&Combatant{Team: TeamEnemy, Health: NewHealth(30)})

	h.collide(event.CollisionOngoing, bolt, enemy)
	h.collide(event.CollisionOngoing, other, enemy)

	require.Len(t, h.damage, 1, "dead entities take no further damage")
	assert.Equal(t, 30.0, h.damage[0].Amount)
	assert.Equal(t, 0.0, h.damage[0].Remaining)
	assert.Equal(t, []uint64{enemy}, h.deaths)

	h.sys.Update(0)
	assert.Equal(t, []uint64{enemy}, h.despawned)
}

func TestSystem_ContactDamage(t *testing.T) {
	h := newHarness(t)
	spiky := h.add(&Combatant{Team: TeamEnemy, ContactDamage: 10, Health: NewHealth(30)})
	player := h.add(&Combatant{Team: TeamPlayer, Health: NewHealth(25)})
	rock := h.add(&Combatant{Team: TeamNone, Health: NewHealth(5)})

	h.collide(event.CollisionBegan, spiky, player)
	require.Len(t, h.damage, 1)
	assert.Equal(t, player, h.damage[0].TargetID)
	assert.Equal(t, 15.0, h.damage[0].Remaining)

	h.collide(event.CollisionOngoing, spiky, player)
	assert.Len(t, h.damage, 1, "contact damage applies once per touch")

	h.collide(event.CollisionBegan, spiky, rock)
	assert.Len(t, h.damage, 1, "neutral entities are not damaged by contact")
}

func TestSystem_InvincibleTakesNoDamage(t *testing.T) {
	h := newHarness(t)
	spiky := h.add(&Combatant{Team: TeamEnemy, ContactDamage: 10})
	cursor := h.add(&Combatant{Team: TeamPlayer, Health: &Health{Value: 100, Max: 100, Invincible: true}})

	h.collide(event.CollisionBegan, spiky, cursor)
	assert.Empty(t, h.damage)
	assert.Empty(t, h.deaths)
}

func TestSystem_UnknownEntitiesIgnored(t *testing.T) {
	h := newHarness(t)
	bolt := h.add(&Combatant{Projectile: NewProjectile(1, TargetAll, PiercingNone, 0)})

	h.collide(event.CollisionOngoing, bolt, 9999)
	h.collide(event.CollisionBegan, 9998, 9999)
	assert.Empty(t, h.damage)
	assert.Empty(t, h.sys.Pending())
}

func TestSystem_ProjectileRange(t *testing.T) {
	h := newHarness(t)
	tr := &entity.Transform{Velocity: physics.Vec(60, 80)}
	bolt := h.add(&Combatant{Projectile: NewProjectile(1, TargetAll, PiercingNone, 250), Transform: tr})

	h.sys.Update(2)
	assert.Empty(t, h.despawned)

	h.sys.Update(1)
	assert.Equal(t, []uint64{bolt}, h.despawned)
}

func TestSystem_KnockbackPushesVictim(t *testing.T) {
	tests := []struct {
		name     string
		bolt     physics.Vector2D
		victim   *entity.Transform
		expected physics.Vector2D
	}{
		{"along heading", physics.Vec(0, 50), &entity.Transform{}, physics.Vec(0, 40)},
		{"adds to existing velocity", physics.Vec(-3, 4), &entity.Transform{Velocity: physics.Vec(10, 0)}, physics.Vec(-14, 32)},
		{"stationary projectile", physics.Vec(0, 0), &entity.Transform{Velocity: physics.Vec(1, 1)}, physics.Vec(1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			bolt := h.add(&Combatant{
				Projectile: NewProjectile(5, TargetAll, PiercingNone, 0),
				Knockback:  40,
				Transform:  &entity.Transform{Velocity: tt.bolt},
			})
			victim := h.add(&Combatant{Team: TeamEnemy, Health: NewHealth(100), Transform: tt.victim})

			h.collide(event.CollisionOngoing, bolt, victim)
			assert.InDelta(t, tt.expected.X, tt.victim.Velocity.X, 1e-9)
			assert.InDelta(t, tt.expected.Y, tt.victim.Velocity.Y, 1e-9)
			assert.Len(t, h.damage, 1)
		})
	}
}

func TestSystem_KnockbackWithoutTransformIsIgnored(t *testing.T) {
	h := newHarness(t)
	bolt := h.add(&Combatant{
		Projectile: NewProjectile(5, TargetAll, PiercingNone, 0),
		Knockback:  40,
		Transform:  &entity.Transform{Velocity: physics.Vec(1, 0)},
	})
	victim := h.add(&Combatant{Team: TeamEnemy, Health: NewHealth(100)})

	assert.NotPanics(t, func() { h.collide(event.CollisionOngoing, bolt, victim) })
	assert.Len(t, h.damage, 1)
}

// The hit only changes the victim's velocity; its position moves on the
// following tick, when movement runs ahead of the next collision pass.
func TestSystem_KnockbackAppliesNextTick(t *testing.T) {
	bus := event.NewEventBus()
	world := &ecs.World{}

	moves := movement.NewSystem(1000, logging.NewNopLogger())
	colliders := collision.NewSystem(bus, collision.WithLogger(logging.NewNopLogger()))
	// Half a second at 60 units/s puts the bolt at (5, 0), inside the enemy.
	bolt := entity.New("bolt", physics.Vec(-25, 0), collision.NewCircleCollider(4))
	bolt.Transform.Velocity = physics.Vec(60, 0)
	enemy := entity.New("enemy", physics.Vec(6, 0), collision.NewCircleCollider(5))
	byID := map[uint64]*entity.Entity{bolt.ID(): bolt, enemy.ID(): enemy}

	combat := NewSystem(bus, WithDespawn(func(id uint64) {
		if e, ok := byID[id]; ok {
			world.RemoveEntity(e.BasicEntity)
		}
	}))
	t.Cleanup(combat.Close)

	world.AddSystem(moves)
	world.AddSystem(colliders)
	world.AddSystem(combat)

	for _, e := range []*entity.Entity{bolt, enemy} {
		moves.Add(&e.BasicEntity, e.Transform, nil)
		colliders.Add(&e.BasicEntity, e.Collider, e)
	}
	combat.Add(&bolt.BasicEntity, &Combatant{
		Team:       TeamPlayer,
		Projectile: NewProjectile(10, TargetTeam(TeamEnemy), PiercingNone, 0),
		Knockback:  120,
		Transform:  bolt.Transform,
	})
	combat.Add(&enemy.BasicEntity, &Combatant{Team: TeamEnemy, Health: NewHealth(30), Transform: enemy.Transform})

	world.Update(0.5)
	require.Equal(t, 20.0, combat.combatants[enemy.ID()].Health.Value)
	assert.Equal(t, physics.Vec(120, 0), enemy.Transform.Velocity)
	assert.Equal(t, physics.Vec(6, 0), enemy.Transform.Position, "position waits for the next tick")

	world.Update(0.5)
	assert.InDelta(t, 66.0, enemy.Transform.Position.X, 1e-9)
	assert.InDelta(t, 0.0, enemy.Transform.Position.Y, 1e-9)
}

func TestSystem_CloseUnsubscribes(t *testing.T) {
	bus := event.NewEventBus()
	sys := NewSystem(bus)
	assert.Equal(t, 1, bus.HandlerCount(event.CollisionOngoing))
	assert.Equal(t, 1, bus.HandlerCount(event.CollisionBegan))

	sys.Close()
	assert.Zero(t, bus.HandlerCount(event.CollisionOngoing))
	assert.Zero(t, bus.HandlerCount(event.CollisionBegan))
	assert.Equal(t, SystemPriority, sys.Priority())
}

// Bolt flies through a collision world into an enemy and is removed; the
// next collision tick must not report an ended pair for it.
func TestSystem_WithCollisionWorld(t *testing.T) {
	bus := event.NewEventBus()
	world := &ecs.World{}

	var ended []event.Event
	bus.Subscribe(event.CollisionEnded, func(e event.Event) { ended = append(ended, e) })

	colliders := collision.NewSystem(bus, collision.WithLogger(logging.NewNopLogger()))
	bolt := entity.New("bolt", physics.Vec(0, 0), collision.NewCircleCollider(4))
	enemy := entity.New("enemy", physics.Vec(6, 0), collision.NewCircleCollider(5))
	byID := map[uint64]*entity.Entity{bolt.ID(): bolt, enemy.ID(): enemy}

	combat := NewSystem(bus, WithDespawn(func(id uint64) {
		if e, ok := byID[id]; ok {
			world.RemoveEntity(e.BasicEntity)
		}
	}))
	t.Cleanup(combat.Close)

	world.AddSystem(colliders)
	world.AddSystem(combat)

	colliders.Add(&bolt.BasicEntity, bolt.Collider, bolt)
	colliders.Add(&enemy.BasicEntity, enemy.Collider, enemy)
	combat.Add(&bolt.BasicEntity, &Combatant{Team: TeamPlayer, Projectile: NewProjectile(10, TargetTeam(TeamEnemy), PiercingNone, 0)})
	enemyHealth := NewHealth(30)
	combat.Add(&enemy.BasicEntity, &Combatant{Team: TeamEnemy, Health: enemyHealth})

	world.Update(1.0 / 60)
	assert.Equal(t, 20.0, enemyHealth.Value)
	assert.False(t, colliders.Registered(bolt.ID()), "spent projectile leaves the collision system")

	world.Update(1.0 / 60)
	assert.Empty(t, ended)
	assert.Equal(t, 20.0, enemyHealth.Value)
}
