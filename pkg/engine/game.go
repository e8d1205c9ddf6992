// pkg/engine/game.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-arena/pkg/collision"
	"github.com/opd-ai/go-arena/pkg/combat"
	"github.com/opd-ai/go-arena/pkg/config"
	"github.com/opd-ai/go-arena/pkg/entity"
	"github.com/opd-ai/go-arena/pkg/event"
	"github.com/opd-ai/go-arena/pkg/logging"
	"github.com/opd-ai/go-arena/pkg/movement"
	"github.com/opd-ai/go-arena/pkg/physics"
)

// GameStatus is the lifecycle state of a Game.
type GameStatus int

const (
	GameStatusWaiting GameStatus = iota
	GameStatusActive
	GameStatusEnded
)

// String returns a lower-case name for s.
func (s GameStatus) String() string {
	switch s {
	case GameStatusWaiting:
		return "waiting"
	case GameStatusActive:
		return "active"
	case GameStatusEnded:
		return "ended"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ErrNotRunning is returned by Run when the game was stopped.
var ErrNotRunning = errors.New("game is not running")

// Game owns a scene and steps it at a fixed rate. Each tick runs movement,
// then collision, then combat, under EntityLock.
type Game struct {
	Config      *config.SceneConfig
	World       *ecs.World
	Entities    *entity.Registry
	Movement    *movement.System
	Collision   *collision.System
	Combat      *combat.System
	EventBus    *event.Bus
	Cursor      *movement.Target
	EntityLock  sync.RWMutex
	Running     bool
	TimeStep    float64 // Seconds per game tick
	CurrentTick uint64
	Status      GameStatus
	StartTime   time.Time

	logger *logging.Logger
	ctx    context.Context

	reloadMu      sync.Mutex
	pendingReload *config.SceneConfig
}

// Option configures a Game.
type Option func(*Game)

// WithLogger sets the game's logger.
func WithLogger(logger *logging.Logger) Option {
	return func(g *Game) {
		g.logger = logger
	}
}

// WithContext sets the base context used for logging. It usually carries a
// run id.
func WithContext(ctx context.Context) Option {
	return func(g *Game) {
		g.ctx = ctx
	}
}

// WithEventBus makes the game publish to bus instead of a private one.
func WithEventBus(bus *event.Bus) Option {
	return func(g *Game) {
		g.EventBus = bus
	}
}

// NewGame creates a game and loads cfg into it.
func NewGame(cfg *config.SceneConfig, opts ...Option) (*Game, error) {
	g := &Game{
		Cursor: &movement.Target{},
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.EventBus == nil {
		g.EventBus = event.NewEventBus()
	}
	if g.logger == nil {
		g.logger = logging.NewLogger()
	}

	if err := g.LoadScene(cfg); err != nil {
		return nil, err
	}
	return g, nil
}

// Logger returns the game's logger.
func (g *Game) Logger() *logging.Logger {
	return g.logger
}

// LoadScene validates cfg and replaces the current scene with it. Pairs
// from the old scene end silently.
func (g *Game) LoadScene(cfg *config.SceneConfig) error {
	if cfg == nil {
		return errors.New("nil scene config")
	}
	if err := config.Validate(cfg); err != nil {
		return logging.WrapError(err, "invalid scene", "scene", cfg.Name)
	}

	g.EntityLock.Lock()
	err := g.loadSceneLocked(cfg)
	count := 0
	if g.Entities != nil {
		count = g.Entities.Len()
	}
	g.EntityLock.Unlock()
	if err != nil {
		return err
	}

	g.logger.Info(g.ctx, "Scene loaded",
		"scene", cfg.Name,
		"entities", count,
		"tick_rate", cfg.TickRate,
		"world_size", cfg.WorldSize,
	)
	g.EventBus.Publish(event.NewSceneEvent(g, cfg.Name, count))
	return nil
}

// scene is one loaded scene's world and systems.
type scene struct {
	world     *ecs.World
	registry  *entity.Registry
	moves     *movement.System
	colliders *collision.System
	fights    *combat.System
}

func (g *Game) loadSceneLocked(cfg *config.SceneConfig) error {
	registry := entity.NewRegistry()
	sc := &scene{
		world:    &ecs.World{},
		registry: registry,
		moves:    movement.NewSystem(cfg.WorldSize, g.logger),
		colliders: collision.NewSystem(g.EventBus,
			collision.WithLogger(g.logger),
			collision.WithContext(g.ctx),
			collision.WithAliveCheck(registry.Alive),
		),
		fights: combat.NewSystem(g.EventBus,
			combat.WithLogger(g.logger),
			combat.WithContext(g.ctx),
			combat.WithDespawn(g.despawnLocked),
		),
	}
	sc.world.AddSystem(sc.moves)
	sc.world.AddSystem(sc.colliders)
	sc.world.AddSystem(sc.fights)

	for _, ec := range cfg.Entities {
		if _, err := g.spawnInto(sc, ec); err != nil {
			sc.fights.Close()
			return err
		}
	}

	if g.Combat != nil {
		g.Combat.Close()
	}
	g.Config = cfg
	g.World = sc.world
	g.Entities = sc.registry
	g.Movement = sc.moves
	g.Collision = sc.colliders
	g.Combat = sc.fights
	g.TimeStep = 1.0 / float64(cfg.TickRate)
	return nil
}

func (g *Game) spawnInto(sc *scene, ec config.EntityConfig) (uint64, error) {
	var mover movement.Mover
	switch {
	case ec.FollowCursor:
		mover = movement.Follow{Target: g.Cursor}
	case ec.Script != "":
		sm, err := movement.NewScriptMover(ec.Script)
		if err != nil {
			return 0, fmt.Errorf("entity %q: %w", ec.Name, err)
		}
		mover = sm
	}

	e, err := sc.registry.Spawn(ec)
	if err != nil {
		return 0, err
	}
	c, err := combat.FromConfig(ec, e.Transform)
	if err != nil {
		sc.registry.Remove(e.ID())
		return 0, err
	}

	sc.moves.Add(&e.BasicEntity, e.Transform, mover)
	sc.colliders.Add(&e.BasicEntity, e.Collider, e)
	sc.fights.Add(&e.BasicEntity, c)
	return e.ID(), nil
}

// Spawn adds an entity to the running scene.
func (g *Game) Spawn(ec config.EntityConfig) (uint64, error) {
	g.EntityLock.Lock()
	defer g.EntityLock.Unlock()

	return g.spawnInto(&scene{
		world:     g.World,
		registry:  g.Entities,
		moves:     g.Movement,
		colliders: g.Collision,
		fights:    g.Combat,
	}, ec)
}

// Despawn removes id from the scene. Its collision pairs end without an
// ended event.
func (g *Game) Despawn(id uint64) bool {
	g.EntityLock.Lock()
	defer g.EntityLock.Unlock()

	if !g.Entities.Alive(id) {
		return false
	}
	g.despawnLocked(id)
	return true
}

func (g *Game) despawnLocked(id uint64) {
	e, ok := g.Entities.Remove(id)
	if !ok {
		return
	}
	g.World.RemoveEntity(e.BasicEntity)
	g.logger.Debug(g.ctx, "entity despawned", "entity", id, "name", e.Name)
}

// RequestReload queues cfg to replace the scene before the next tick. It
// is safe to call from any goroutine; the latest request wins.
func (g *Game) RequestReload(cfg *config.SceneConfig) {
	g.reloadMu.Lock()
	g.pendingReload = cfg
	g.reloadMu.Unlock()
}

func (g *Game) applyPendingReload() {
	g.reloadMu.Lock()
	cfg := g.pendingReload
	g.pendingReload = nil
	g.reloadMu.Unlock()

	if cfg == nil {
		return
	}
	if err := g.LoadScene(cfg); err != nil {
		g.logger.Error(g.ctx, "Scene reload failed, keeping current scene", err,
			"scene", cfg.Name,
		)
	}
}

// SetCursor moves the follow target, usually the mouse position in world
// coordinates.
func (g *Game) SetCursor(pos physics.Vector2D) {
	g.Cursor.Set(pos)
}

// Start marks the game active.
func (g *Game) Start() {
	g.EntityLock.Lock()
	g.Running = true
	g.Status = GameStatusActive
	g.StartTime = time.Now()
	g.EntityLock.Unlock()

	g.logger.Info(g.ctx, "Game started", "time_step", g.TimeStep)
}

// Stop marks the game ended. A running Run loop returns at its next tick.
func (g *Game) Stop() {
	g.EntityLock.Lock()
	g.Running = false
	g.Status = GameStatusEnded
	tick := g.CurrentTick
	g.EntityLock.Unlock()

	g.logger.Info(g.ctx, "Game stopped", "ticks", tick)
}

// IsRunning reports whether the game is active.
func (g *Game) IsRunning() bool {
	g.EntityLock.RLock()
	defer g.EntityLock.RUnlock()
	return g.Running
}

// Update advances the game state by one fixed tick. A queued reload is
// applied first.
func (g *Game) Update() {
	g.applyPendingReload()

	// Lock the entire update so consumers see a consistent tick
	g.EntityLock.Lock()
	defer g.EntityLock.Unlock()

	g.World.Update(float32(g.TimeStep))
	g.CurrentTick++
}

// RunTicks runs n ticks back to back.
func (g *Game) RunTicks(n int) {
	for i := 0; i < n; i++ {
		g.Update()
	}
}

// Run ticks at TimeStep until ctx is done or the game is stopped. onTick,
// if non-nil, is called after every tick outside the lock.
func (g *Game) Run(ctx context.Context, onTick func()) error {
	if !g.IsRunning() {
		g.Start()
	}

	g.EntityLock.RLock()
	step := time.Duration(g.TimeStep * float64(time.Second))
	g.EntityLock.RUnlock()

	ticker := time.NewTicker(step)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !g.IsRunning() {
				return ErrNotRunning
			}
			g.Update()
			if onTick != nil {
				onTick()
			}

			g.EntityLock.RLock()
			next := time.Duration(g.TimeStep * float64(time.Second))
			g.EntityLock.RUnlock()
			if next != step {
				step = next
				ticker.Reset(step)
			}
		}
	}
}

// GetGameState returns a snapshot of the current game state
func (g *Game) GetGameState() *GameState {
	g.EntityLock.RLock()
	defer g.EntityLock.RUnlock()

	return g.createGameStateSnapshot()
}

// createGameStateSnapshot builds and returns the complete game state.
func (g *Game) createGameStateSnapshot() *GameState {
	last := g.Collision.Last()
	state := &GameState{
		Tick:         g.CurrentTick,
		Scene:        g.Config.Name,
		WorldSize:    g.Config.WorldSize,
		TimeStep:     g.TimeStep,
		DebugOverlay: g.Config.DebugOverlay,
		Pairs:        append([]collision.Pair(nil), last.Ongoing...),
		Stats:        g.Collision.Stats(),
	}

	for _, e := range g.Entities.All() {
		pos, placed := e.Position()
		es := EntityState{
			ID:        e.ID(),
			Name:      e.Name,
			Position:  pos,
			Placed:    placed,
			Colliding: g.Collision.Colliding(e.ID()),
		}
		if e.Collider != nil {
			es.Shape = e.Collider.Shape()
			es.HasShape = true
		}
		if c, ok := g.Combat.Combatant(e.ID()); ok {
			es.Team = c.Team.String()
			if c.Health != nil {
				es.Health = c.Health.Value
				es.MaxHealth = c.Health.Max
			}
		}
		state.Entities = append(state.Entities, es)
	}
	return state
}

// GameState represents a snapshot of the game state
type GameState struct {
	Tick         uint64
	Scene        string
	WorldSize    float64
	TimeStep     float64
	DebugOverlay bool
	Entities     []EntityState
	Pairs        []collision.Pair
	Stats        collision.Stats
}

// EntityState represents a snapshot of an entity's state
type EntityState struct {
	ID        uint64
	Name      string
	Position  physics.Vector2D
	Placed    bool
	Shape     physics.Shape
	HasShape  bool
	Team      string
	Health    float64
	MaxHealth float64
	Colliding bool
}

// Entity returns the snapshot of id.
func (s *GameState) Entity(id uint64) (EntityState, bool) {
	for _, e := range s.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return EntityState{}, false
}

// EntityByName returns the snapshot of the entity called name.
func (s *GameState) EntityByName(name string) (EntityState, bool) {
	for _, e := range s.Entities {
		if e.Name == name {
			return e, true
		}
	}
	return EntityState{}, false
}
