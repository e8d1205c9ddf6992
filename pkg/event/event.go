// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Event types published by the simulation.
const (
	CollisionBegan   Type = "collision_began"
	CollisionOngoing Type = "collision_ongoing"
	CollisionEnded   Type = "collision_ended"
	DamageTaken      Type = "damage_taken"
	EntityDied       Type = "entity_died"
	SceneLoaded      Type = "scene_loaded"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

type subscriber struct {
	id      uint64
	handler Handler
}

// Subscription identifies a registered handler. Cancel removes it.
type Subscription struct {
	ID     uint64
	Cancel func()
}

// Bus manages event subscriptions and dispatching. Handlers run
// synchronously on the publishing goroutine, in subscription order.
type Bus struct {
	handlers map[Type][]subscriber
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscriber),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscriber{id: id, handler: handler})

	var once sync.Once
	return &Subscription{
		ID: id,
		Cancel: func() {
			once.Do(func() { b.unsubscribe(eventType, id) })
		},
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.handlers[eventType]
	for i, s := range handlers {
		if s.id == id {
			// Copy so a Publish iterating the old slice is unaffected.
			remaining := make([]subscriber, 0, len(handlers)-1)
			remaining = append(remaining, handlers[:i]...)
			remaining = append(remaining, handlers[i+1:]...)
			if len(remaining) == 0 {
				delete(b.handlers, eventType)
			} else {
				b.handlers[eventType] = remaining
			}
			return
		}
	}
}

// Publish sends an event to all subscribed handlers. Handlers may
// subscribe, cancel or publish from inside the callback.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range handlers {
		s.handler(event)
	}
}

// HandlerCount returns the number of handlers subscribed to eventType.
func (b *Bus) HandlerCount(eventType Type) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}

// CollisionEvent reports a collision transition between two entities.
// EntityA is always the lower id.
type CollisionEvent struct {
	BaseEvent
	EntityA uint64
	EntityB uint64
}

// NewCollisionEvent creates a new collision event
func NewCollisionEvent(eventType Type, source interface{}, entityA, entityB uint64) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		EntityA: entityA,
		EntityB: entityB,
	}
}

// Other returns the id paired with id, and false when id is in neither slot.
func (e *CollisionEvent) Other(id uint64) (uint64, bool) {
	switch id {
	case e.EntityA:
		return e.EntityB, true
	case e.EntityB:
		return e.EntityA, true
	}
	return 0, false
}

// DamageEvent reports health lost by an entity.
type DamageEvent struct {
	BaseEvent
	TargetID  uint64
	SourceID  uint64
	Amount    float64
	Remaining float64
}

// NewDamageEvent creates a new damage event
func NewDamageEvent(source interface{}, targetID, sourceID uint64, amount, remaining float64) *DamageEvent {
	return &DamageEvent{
		BaseEvent: BaseEvent{
			EventType: DamageTaken,
			Source:    source,
		},
		TargetID:  targetID,
		SourceID:  sourceID,
		Amount:    amount,
		Remaining: remaining,
	}
}

// EntityEvent carries a single entity id, for example EntityDied.
type EntityEvent struct {
	BaseEvent
	EntityID uint64
}

// NewEntityEvent creates a new entity event
func NewEntityEvent(eventType Type, source interface{}, entityID uint64) *EntityEvent {
	return &EntityEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		EntityID: entityID,
	}
}

// SceneEvent reports that a scene was loaded or reloaded.
type SceneEvent struct {
	BaseEvent
	Name     string
	Entities int
}

// NewSceneEvent creates a new scene event
func NewSceneEvent(source interface{}, name string, entities int) *SceneEvent {
	return &SceneEvent{
		BaseEvent: BaseEvent{
			EventType: SceneLoaded,
			Source:    source,
		},
		Name:     name,
		Entities: entities,
	}
}
