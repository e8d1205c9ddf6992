// pkg/collision/system.go
package collision

import (
	"context"
	"slices"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-arena/pkg/event"
	"github.com/opd-ai/go-arena/pkg/logging"
	"github.com/opd-ai/go-arena/pkg/physics"
)

// SystemPriority orders the collision system in an ecs.World. Higher runs
// first, so movement systems should use a larger value.
const SystemPriority = 10

// PositionSource supplies an entity's world position for the current tick.
// ok is false when the entity has no position this tick.
type PositionSource interface {
	Position() (pos physics.Vector2D, ok bool)
}

// PositionFunc adapts a function to PositionSource.
type PositionFunc func() (physics.Vector2D, bool)

// Position implements PositionSource.
func (f PositionFunc) Position() (physics.Vector2D, bool) {
	return f()
}

// Stats describes the work done by one step.
type Stats struct {
	Entries     int
	Skipped     int
	Cells       int
	Candidates  int
	NarrowTests int
	Pairs       int
	Began       int
	Ended       int
}

type registration struct {
	basic    *ecs.BasicEntity
	collider *Collider
	source   PositionSource
}

// Option configures a System.
type Option func(*System)

// WithLogger sets the logger used for per-tick statistics.
func WithLogger(logger *logging.Logger) Option {
	return func(s *System) {
		s.logger = logger
	}
}

// WithContext sets the context used for logging from Update.
func WithContext(ctx context.Context) Option {
	return func(s *System) {
		s.ctx = ctx
	}
}

// WithAliveCheck installs a liveness check applied before diffing. Pairs
// that reference a dead id are dropped without an ended transition.
func WithAliveCheck(alive func(id uint64) bool) Option {
	return func(s *System) {
		s.alive = alive
	}
}

// System runs the per-tick collision pipeline: grid rebuild, candidate
// gathering, narrow phase, diff against the previous tick, and publication
// of began, ongoing and ended events in that order. It can be driven
// directly through Step or added to an ecs.World.
type System struct {
	bus     *event.Bus
	logger  *logging.Logger
	ctx     context.Context
	alive   func(id uint64) bool
	grid    *Grid
	tracker *Tracker

	registrations []registration
	index         map[uint64]int

	entries    []Entry
	candidates []Entry
	last       Transitions
	stats      Stats
	tick       uint64
}

// NewSystem creates a collision system publishing to bus. bus may be nil.
func NewSystem(bus *event.Bus, opts ...Option) *System {
	s := &System{
		bus:     bus,
		ctx:     context.Background(),
		grid:    NewGrid(),
		tracker: NewTracker(),
		index:   make(map[uint64]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Step runs one tick over entries and returns the transitions it published.
func (s *System) Step(entries []Entry) Transitions {
	return s.StepContext(s.ctx, entries)
}

// StepContext is Step with an explicit logging context.
func (s *System) StepContext(ctx context.Context, entries []Entry) Transitions {
	stats := Stats{}
	s.grid.Rebuild(entries)
	stats.Entries = s.grid.Len()
	stats.Cells = len(s.grid.order)

	current := NewSet()
	for _, e := range entries {
		if !e.valid() {
			stats.Skipped++
			continue
		}
		s.candidates = s.grid.AppendCandidates(s.candidates[:0], e)
		stats.Candidates += len(s.candidates)
		for _, other := range s.candidates {
			if current.Contains(e.ID, other.ID) {
				continue
			}
			stats.NarrowTests++
			if e.Collider.IsColliding(e.Position, other.Collider, other.Position) {
				current.Add(e.ID, other.ID)
			}
		}
	}
	stats.Pairs = current.Len()

	transitions := s.tracker.AdvanceFiltered(current, s.alive)
	stats.Began = len(transitions.Began)
	stats.Ended = len(transitions.Ended)
	s.last = transitions
	s.stats = stats

	if s.logger.DebugEnabled(ctx) {
		s.logger.Debug(logging.WithTick(ctx, s.tick), "collision step",
			"entries", stats.Entries,
			"skipped", stats.Skipped,
			"cells", stats.Cells,
			"candidates", stats.Candidates,
			"narrow_tests", stats.NarrowTests,
			"pairs", stats.Pairs,
			"began", stats.Began,
			"ended", stats.Ended,
		)
	}
	s.tick++

	s.publish(transitions)
	return transitions
}

func (s *System) publish(t Transitions) {
	if s.bus == nil {
		return
	}
	for _, p := range t.Began {
		s.bus.Publish(event.NewCollisionEvent(event.CollisionBegan, s, p.A, p.B))
	}
	for _, p := range t.Ongoing {
		s.bus.Publish(event.NewCollisionEvent(event.CollisionOngoing, s, p.A, p.B))
	}
	for _, p := range t.Ended {
		s.bus.Publish(event.NewCollisionEvent(event.CollisionEnded, s, p.A, p.B))
	}
}

// Last returns the transitions of the most recent step.
func (s *System) Last() Transitions {
	return s.last
}

// Stats returns the statistics of the most recent step.
func (s *System) Stats() Stats {
	return s.stats
}

// Grid exposes the broad phase as it was after the most recent step.
func (s *System) Grid() *Grid {
	return s.grid
}

// Tick returns the number of steps run so far.
func (s *System) Tick() uint64 {
	return s.tick
}

// Colliding reports whether id took part in any pair during the last step.
func (s *System) Colliding(id uint64) bool {
	return s.last.IsOngoing(id)
}

// Add registers an entity with the system. A nil source or a nil collider
// makes the entity invisible to collision checks until it is re-added.
func (s *System) Add(basic *ecs.BasicEntity, collider *Collider, source PositionSource) {
	id := basic.ID()
	r := registration{basic: basic, collider: collider, source: source}
	if i, ok := s.index[id]; ok {
		s.registrations[i] = r
		return
	}
	s.index[id] = len(s.registrations)
	s.registrations = append(s.registrations, r)
}

// Remove unregisters an entity. Its remembered pairs are dropped, so no
// ended event is published for it.
func (s *System) Remove(basic ecs.BasicEntity) {
	id := basic.ID()
	i, ok := s.index[id]
	if !ok {
		return
	}
	last := len(s.registrations) - 1
	s.registrations[i] = s.registrations[last]
	s.index[s.registrations[i].basic.ID()] = i
	s.registrations[last] = registration{}
	s.registrations = s.registrations[:last]
	delete(s.index, id)
	s.tracker.Forget(id)
}

// Registered reports whether id is registered.
func (s *System) Registered(id uint64) bool {
	_, ok := s.index[id]
	return ok
}

// Collider returns the collider registered for id.
func (s *System) Collider(id uint64) (*Collider, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.registrations[i].collider, s.registrations[i].collider != nil
}

// Entries returns the entries the next Update would submit, sorted by id.
func (s *System) Entries() []Entry {
	s.collect()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *System) collect() {
	s.entries = s.entries[:0]
	for _, r := range s.registrations {
		if r.collider == nil || r.source == nil {
			continue
		}
		pos, ok := r.source.Position()
		if !ok {
			continue
		}
		s.entries = append(s.entries, Entry{ID: r.basic.ID(), Collider: r.collider, Position: pos})
	}
	slices.SortFunc(s.entries, func(a, b Entry) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}

// Update runs one step over the registered entities. It implements
// ecs.System.
func (s *System) Update(dt float32) {
	s.collect()
	s.Step(s.entries)
}

// Priority implements ecs.Prioritizer.
func (s *System) Priority() int {
	return SystemPriority
}
