// pkg/movement/follow.go
package movement

import (
	"sync"

	"github.com/opd-ai/go-arena/pkg/entity"
	"github.com/opd-ai/go-arena/pkg/physics"
)

// Target is a point that a follower tracks, such as the mouse cursor.
// It is safe to set from an input goroutine while the simulation reads it.
type Target struct {
	mu    sync.RWMutex
	pos   physics.Vector2D
	valid bool
}

// Set moves the target to pos.
func (t *Target) Set(pos physics.Vector2D) {
	t.mu.Lock()
	t.pos = pos
	t.valid = true
	t.mu.Unlock()
}

// Clear marks the target as absent, for example when the cursor leaves
// the window.
func (t *Target) Clear() {
	t.mu.Lock()
	t.valid = false
	t.mu.Unlock()
}

// Get returns the target position and whether it is set.
func (t *Target) Get() (physics.Vector2D, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pos, t.valid
}

// Follow snaps a transform onto a Target every tick. While the target is
// unset the transform keeps its last position.
type Follow struct {
	Target *Target
}

// Move implements Mover.
func (f Follow) Move(t *entity.Transform, _, _ float64) error {
	if f.Target == nil {
		return nil
	}
	if pos, ok := f.Target.Get(); ok {
		t.Position = pos
		t.Placed = true
	}
	return nil
}
