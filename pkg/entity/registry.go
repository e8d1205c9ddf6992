// pkg/entity/registry.go
package entity

import (
	"errors"
	"fmt"
	"slices"

	"github.com/opd-ai/go-arena/pkg/collision"
	"github.com/opd-ai/go-arena/pkg/config"
)

var (
	// ErrNotFound is returned for unknown ids or names.
	ErrNotFound = errors.New("entity not found")
	// ErrDuplicateName is returned when a name is already taken.
	ErrDuplicateName = errors.New("entity name already in use")
)

// Registry owns the live entities of a scene. It is not safe for
// concurrent use; the engine serialises access under its entity lock.
type Registry struct {
	entities map[uint64]*Entity
	byName   map[string]uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[uint64]*Entity),
		byName:   make(map[string]uint64),
	}
}

// Add registers e. Names must be unique; an empty name is allowed.
func (r *Registry) Add(e *Entity) error {
	if e.Name != "" {
		if _, taken := r.byName[e.Name]; taken {
			return fmt.Errorf("%w: %q", ErrDuplicateName, e.Name)
		}
		r.byName[e.Name] = e.ID()
	}
	r.entities[e.ID()] = e
	return nil
}

// Spawn builds an entity from its scene description and registers it.
func (r *Registry) Spawn(cfg config.EntityConfig) (*Entity, error) {
	shape, err := cfg.Shape.Build()
	if err != nil {
		return nil, fmt.Errorf("spawn %q: %w", cfg.Name, err)
	}

	e := New(cfg.Name, cfg.Position(), collision.NewCollider(shape))
	e.Transform.Velocity = cfg.Velocity()
	if err := r.Add(e); err != nil {
		return nil, fmt.Errorf("spawn %q: %w", cfg.Name, err)
	}
	return e, nil
}

// Remove unregisters id and returns the removed entity.
func (r *Registry) Remove(id uint64) (*Entity, bool) {
	e, ok := r.entities[id]
	if !ok {
		return nil, false
	}
	delete(r.entities, id)
	if e.Name != "" && r.byName[e.Name] == id {
		delete(r.byName, e.Name)
	}
	return e, true
}

// Get returns the entity with id.
func (r *Registry) Get(id uint64) (*Entity, bool) {
	e, ok := r.entities[id]
	return e, ok
}

// ByName returns the entity called name.
func (r *Registry) ByName(name string) (*Entity, error) {
	id, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return r.entities[id], nil
}

// Alive reports whether id is registered.
func (r *Registry) Alive(id uint64) bool {
	_, ok := r.entities[id]
	return ok
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	return len(r.entities)
}

// All returns the registered entities sorted by id.
func (r *Registry) All() []*Entity {
	out := make([]*Entity, 0, len(r.entities))
	for _, e := range r.entities {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *Entity) int {
		switch {
		case a.ID() < b.ID():
			return -1
		case a.ID() > b.ID():
			return 1
		}
		return 0
	})
	return out
}

// Entries returns collision input for every placed entity with a
// collider, sorted by id.
func (r *Registry) Entries() []collision.Entry {
	all := r.All()
	out := make([]collision.Entry, 0, len(all))
	for _, e := range all {
		if entry, ok := e.Entry(); ok {
			out = append(out, entry)
		}
	}
	return out
}

// Clear removes every entity.
func (r *Registry) Clear() {
	clear(r.entities)
	clear(r.byName)
}
