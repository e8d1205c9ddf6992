// pkg/collision/tracker.go
package collision

// Transitions is the result of comparing two consecutive collision sets.
// Ongoing holds every pair of the current set, including those that just
// began.
type Transitions struct {
	Began   []Pair
	Ongoing []Pair
	Ended   []Pair
}

// Empty reports whether there is nothing to publish.
func (t Transitions) Empty() bool {
	return len(t.Began) == 0 && len(t.Ongoing) == 0 && len(t.Ended) == 0
}

// IsOngoing reports whether id takes part in any current pair.
func (t Transitions) IsOngoing(id uint64) bool {
	for _, p := range t.Ongoing {
		if p.Has(id) {
			return true
		}
	}
	return false
}

// Diff compares previous with current. Both sets are left untouched.
func Diff(previous, current *Set) Transitions {
	var t Transitions
	for _, p := range current.Pairs() {
		if !previous.Contains(p.A, p.B) {
			t.Began = append(t.Began, p)
		}
		t.Ongoing = append(t.Ongoing, p)
	}
	for _, p := range previous.Pairs() {
		if !current.Contains(p.A, p.B) {
			t.Ended = append(t.Ended, p)
		}
	}
	return t
}

// Tracker turns per-tick collision sets into began/ongoing/ended
// transitions by remembering the previous tick's set.
type Tracker struct {
	previous *Set
}

// NewTracker creates a tracker with an empty history.
func NewTracker() *Tracker {
	return &Tracker{previous: NewSet()}
}

// Advance diffs current against the previous tick and makes current the
// new previous set. The tracker takes ownership of current.
func (t *Tracker) Advance(current *Set) Transitions {
	return t.AdvanceFiltered(current, nil)
}

// AdvanceFiltered is Advance with a liveness check. Pairs referencing an id
// for which alive returns false are dropped from both sets before diffing,
// so they end silently.
func (t *Tracker) AdvanceFiltered(current *Set, alive func(id uint64) bool) Transitions {
	if current == nil {
		current = NewSet()
	}
	if alive != nil {
		dropDead(t.previous, alive)
		dropDead(current, alive)
	}
	tr := Diff(t.previous, current)
	t.previous = current
	return tr
}

func dropDead(s *Set, alive func(id uint64) bool) {
	for p := range s.pairs {
		if !alive(p.A) || !alive(p.B) {
			delete(s.pairs, p)
		}
	}
}

// Forget drops every remembered pair involving id. Use it when an entity
// is destroyed so no ended transition is reported for it.
func (t *Tracker) Forget(id uint64) {
	t.previous.Remove(id)
}

// Previous returns a copy of the last tick's set.
func (t *Tracker) Previous() *Set {
	return t.previous.Clone()
}

// Reset forgets all history.
func (t *Tracker) Reset() {
	t.previous = NewSet()
}
