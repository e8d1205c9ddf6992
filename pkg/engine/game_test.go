// Package engine provides unit tests for game.go
package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-arena/pkg/config"
	"github.com/opd-ai/go-arena/pkg/event"
	"github.com/opd-ai/go-arena/pkg/logging"
	"github.com/opd-ai/go-arena/pkg/physics"
)

func newTestGame(t *testing.T, cfg *config.SceneConfig, opts ...Option) *Game {
	t.Helper()
	opts = append([]Option{WithLogger(logging.NewNopLogger())}, opts...)
	game, err := NewGame(cfg, opts...)
	require.NoError(t, err)
	return game
}

func shootingRange(enemyHP float64) *config.SceneConfig {
	return &config.SceneConfig{
		Name:      "range",
		WorldSize: 1000,
		TickRate:  60,
		Entities: []config.EntityConfig{
			{
				Name:   "target",
				X:      100,
				Shape:  config.ShapeConfig{Kind: config.ShapeCircle, Radius: 10},
				Team:   config.TeamEnemy,
				Health: &config.HealthConfig{Max: enemyHP},
			},
			{
				Name:       "bolt",
				Shape:      config.ShapeConfig{Kind: config.ShapeCircle, Radius: 4},
				Team:       config.TeamPlayer,
				VelocityX:  600,
				Projectile: &config.ProjectileConfig{Damage: 15, Target: config.TeamEnemy},
			},
		},
	}
}

func TestNewGame_InitializesState(t *testing.T) {
	game := newTestGame(t, config.DefaultConfig())

	assert.Equal(t, len(config.DefaultConfig().Entities), game.Entities.Len())
	assert.InDelta(t, 1.0/60, game.TimeStep, 1e-12)
	assert.Equal(t, GameStatusWaiting, game.Status)
	assert.NotNil(t, game.World)
	assert.NotNil(t, game.Collision)
	assert.NotNil(t, game.Movement)
	assert.NotNil(t, game.Combat)
}

func TestNewGame_RejectsInvalidScene(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.SceneConfig
	}{
		{"nil", nil},
		{"bad_shape", &config.SceneConfig{
			WorldSize: 1000, TickRate: 60,
			Entities: []config.EntityConfig{{Name: "x", Shape: config.ShapeConfig{Kind: "blob"}}},
		}},
		{"bad_script", &config.SceneConfig{
			WorldSize: 1000, TickRate: 60,
			Entities: []config.EntityConfig{{
				Name:   "x",
				Shape:  config.ShapeConfig{Kind: config.ShapeCircle, Radius: 1},
				Script: "x = = 2",
			}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGame(tt.cfg, WithLogger(logging.NewNopLogger()))
			assert.Error(t, err)
		})
	}
}

func TestGame_StartStop_Transitions(t *testing.T) {
	game := newTestGame(t, config.DefaultConfig())
	game.Start()
	if !game.IsRunning() || game.Status != GameStatusActive {
		t.Error("Game did not start correctly")
	}
	game.Stop()
	if game.IsRunning() || game.Status != GameStatusEnded {
		t.Error("Game did not stop correctly")
	}
	assert.Equal(t, "ended", game.Status.String())
}

func TestGame_Update_AdvancesTick(t *testing.T) {
	game := newTestGame(t, config.DefaultConfig())
	game.RunTicks(5)
	assert.Equal(t, uint64(5), game.CurrentTick)
	assert.Equal(t, uint64(5), game.Collision.Tick())
}

func TestGame_DebugScene_CursorTouchesCircle(t *testing.T) {
	game := newTestGame(t, config.DefaultConfig())

	game.Update()
	state := game.GetGameState()
	cursor, ok := state.EntityByName("cursor")
	require.True(t, ok)
	assert.False(t, cursor.Colliding)

	game.SetCursor(physics.Vec(60, 0))
	game.Update()

	state = game.GetGameState()
	cursor, _ = state.EntityByName("cursor")
	circle, _ := state.EntityByName("big-circle")
	box, _ := state.EntityByName("box")
	assert.Equal(t, physics.Vec(60, 0), cursor.Position)
	assert.True(t, cursor.Colliding)
	assert.True(t, circle.Colliding)
	assert.False(t, box.Colliding)

	game.SetCursor(physics.Vec(-90, 0))
	game.Update()

	state = game.GetGameState()
	cursor, _ = state.EntityByName("cursor")
	circle, _ = state.EntityByName("big-circle")
	box, _ = state.EntityByName("box")
	assert.True(t, cursor.Colliding)
	assert.False(t, circle.Colliding)
	assert.True(t, box.Colliding)
}

func TestGame_ProjectileDamagesTarget(t *testing.T) {
	bus := event.NewEventBus()
	var damage []*event.DamageEvent
	var ended int
	bus.Subscribe(event.DamageTaken, func(e event.Event) { damage = append(damage, e.(*event.DamageEvent)) })
	bus.Subscribe(event.CollisionEnded, func(event.Event) { ended++ })

	game := newTestGame(t, shootingRange(30), WithEventBus(bus))
	target, err := game.Entities.ByName("target")
	require.NoError(t, err)

	game.RunTicks(20)

	require.Len(t, damage, 1)
	assert.Equal(t, target.ID(), damage[0].TargetID)
	assert.Equal(t, 15.0, damage[0].Remaining)

	_, err = game.Entities.ByName("bolt")
	assert.Error(t, err, "spent projectile is despawned")
	assert.Zero(t, ended, "despawned entities do not end their pairs")

	state := game.GetGameState()
	assert.Len(t, state.Entities, 1)
	assert.Empty(t, state.Pairs)
}

func TestGame_LethalHitRemovesTarget(t *testing.T) {
	bus := event.NewEventBus()
	var died []uint64
	bus.Subscribe(event.EntityDied, func(e event.Event) { died = append(died, e.(*event.EntityEvent).EntityID) })

	game := newTestGame(t, shootingRange(10), WithEventBus(bus))
	target, err := game.Entities.ByName("target")
	require.NoError(t, err)

	game.RunTicks(20)

	assert.Equal(t, []uint64{target.ID()}, died)
	assert.Zero(t, game.Entities.Len())
}

func TestGame_Despawn(t *testing.T) {
	game := newTestGame(t, config.DefaultConfig())
	box, err := game.Entities.ByName("box")
	require.NoError(t, err)

	assert.True(t, game.Despawn(box.ID()))
	assert.False(t, game.Despawn(box.ID()))
	assert.False(t, game.Collision.Registered(box.ID()))

	game.Update()
	_, ok := game.GetGameState().EntityByName("box")
	assert.False(t, ok)
}

func TestGame_Spawn(t *testing.T) {
	game := newTestGame(t, config.DefaultConfig())
	id, err := game.Spawn(config.EntityConfig{
		Name:  "extra",
		X:     100,
		Shape: config.ShapeConfig{Kind: config.ShapeCircle, Radius: 5},
	})
	require.NoError(t, err)

	game.Update()
	extra, ok := game.GetGameState().Entity(id)
	require.True(t, ok)
	assert.True(t, extra.Colliding, "spawned inside big-circle")

	_, err = game.Spawn(config.EntityConfig{Name: "extra", Shape: config.ShapeConfig{Kind: config.ShapeCircle, Radius: 5}})
	assert.Error(t, err)
}

func TestGame_RequestReload(t *testing.T) {
	bus := event.NewEventBus()
	var scenes []string
	bus.Subscribe(event.SceneLoaded, func(e event.Event) { scenes = append(scenes, e.(*event.SceneEvent).Name) })

	game := newTestGame(t, config.DefaultConfig(), WithEventBus(bus))
	game.RunTicks(2)

	next := shootingRange(30)
	next.TickRate = 30
	game.RequestReload(next)
	assert.Equal(t, "debug", game.Config.Name, "reload waits for the next tick")

	game.Update()
	assert.Equal(t, "range", game.Config.Name)
	assert.Equal(t, 2, game.Entities.Len())
	assert.InDelta(t, 1.0/30, game.TimeStep, 1e-12)
	assert.Equal(t, []string{"debug", "range"}, scenes)
}

func TestGame_FailedReloadKeepsScene(t *testing.T) {
	game := newTestGame(t, config.DefaultConfig())
	before := game.Entities.Len()

	game.RequestReload(&config.SceneConfig{WorldSize: -1, TickRate: 60})
	game.Update()

	assert.Equal(t, "debug", game.Config.Name)
	assert.Equal(t, before, game.Entities.Len())
	assert.Equal(t, uint64(1), game.CurrentTick)
}

func TestGame_Run_StopsOnContext(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.TickRate = 200
	game := newTestGame(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	ticks := 0
	err := game.Run(ctx, func() { ticks++ })
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	assert.Positive(t, ticks)
	assert.True(t, game.IsRunning())
}

func TestGame_Run_StopsWhenStopped(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.TickRate = 200
	game := newTestGame(t, cfg)

	err := game.Run(context.Background(), func() {
		if game.CurrentTick >= 3 {
			game.Stop()
		}
	})
	assert.True(t, errors.Is(err, ErrNotRunning), "got %v", err)
	assert.GreaterOrEqual(t, game.CurrentTick, uint64(3))
}
