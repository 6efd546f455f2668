package query

import (
	"sync"

	"github.com/sword-ecs/sword/internal/core/world"
)

// View is a live, change-tracked result set for one filter. Results returns
// point-in-time snapshots; OnAdd and OnRemove are the live mechanism.
type View struct {
	engine *Engine
	filter Filter

	mu       sync.Mutex
	matches  map[*world.Entity]struct{}
	order    []*world.Entity
	onAdd    []func(*world.Entity)
	onRemove []func(*world.Entity)
}

// Results returns the current matches in storage order. The returned slice
// is a snapshot taken now; it does not track later changes.
func (v *View) Results() []*world.Entity {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]*world.Entity, len(v.order))
	copy(out, v.order)
	return out
}

// Len returns the current match count.
func (v *View) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.order)
}

// Contains reports whether the entity is currently in the match set.
func (v *View) Contains(e *world.Entity) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.matches[e]
	return ok
}

// OnAdd registers a callback invoked once for every entity that enters the
// match set: newly created matching entities and existing entities that
// start matching after a component change.
func (v *View) OnAdd(fn func(*world.Entity)) {
	v.mu.Lock()
	v.onAdd = append(v.onAdd, fn)
	v.mu.Unlock()
}

// OnRemove registers a callback invoked once for every entity that leaves
// the match set: destroyed entities and entities that stop matching.
func (v *View) OnRemove(fn func(*world.Entity)) {
	v.mu.Lock()
	v.onRemove = append(v.onRemove, fn)
	v.mu.Unlock()
}

// recompute re-evaluates the filter against the store and swaps in the new
// match set. It returns the change and whether any delta is non-empty.
func (v *View) recompute() (Change, bool) {
	nextOrder := v.engine.Evaluate(v.filter)
	next := v.engine.setPool.Acquire()
	for _, e := range nextOrder {
		next[e] = struct{}{}
	}

	v.mu.Lock()
	var added, removed []*world.Entity
	for _, e := range nextOrder {
		if _, ok := v.matches[e]; !ok {
			added = append(added, e)
		}
	}
	for _, e := range v.order {
		if _, ok := next[e]; !ok {
			removed = append(removed, e)
		}
	}
	prev := v.matches
	v.matches = next
	v.order = nextOrder
	v.mu.Unlock()

	v.engine.setPool.Release(prev)

	if len(added) == 0 && len(removed) == 0 {
		return Change{}, false
	}
	return Change{Matches: nextOrder, Added: added, Removed: removed}, true
}

// notify runs the add/remove callbacks for a change, in delta order.
func (v *View) notify(change Change) {
	v.mu.Lock()
	adds := make([]func(*world.Entity), len(v.onAdd))
	copy(adds, v.onAdd)
	removes := make([]func(*world.Entity), len(v.onRemove))
	copy(removes, v.onRemove)
	v.mu.Unlock()

	for _, e := range change.Added {
		for _, fn := range adds {
			fn(e)
		}
	}
	for _, e := range change.Removed {
		for _, fn := range removes {
			fn(e)
		}
	}
}
