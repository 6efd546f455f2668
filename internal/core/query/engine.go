package query

import (
	"errors"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/sword-ecs/sword/internal/core/events/bus"
	"github.com/sword-ecs/sword/internal/core/world"
	"github.com/sword-ecs/sword/pkg/generic"
)

var (
	// ErrNoMatch is returned by Single when no entity passes the filter.
	ErrNoMatch = errors.New("no entity matches")
	// ErrAmbiguousMatch is returned by Single when more than one entity
	// passes the filter.
	ErrAmbiguousMatch = errors.New("more than one entity matches")
)

// Change is the payload of world.EventQueryChanged: the full current match
// set of a watched filter plus the entities that entered and left it. It
// fires only when at least one delta is non-empty.
type Change struct {
	Matches []*world.Entity
	Added   []*world.Entity
	Removed []*world.Entity
}

type cacheEntry struct {
	revision uint64
	results  []*world.Entity
}

// Engine evaluates filters against one world and maintains watched views.
// Results returned by Evaluate and View.Results are snapshots taken at call
// time; OnAdd/OnRemove callbacks are the only live mechanism.
type Engine struct {
	w *world.World

	mu    sync.Mutex
	views []*View
	cache map[uint64]cacheEntry

	setPool *generic.Pool[map[*world.Entity]struct{}]
}

// NewEngine creates an engine bound to w and subscribes it to the store's
// lifecycle and change channels. Views stay synchronized from then on.
func NewEngine(w *world.World) *Engine {
	e := &Engine{
		w:     w,
		cache: make(map[uint64]cacheEntry),
		setPool: generic.NewResetPool(
			func() map[*world.Entity]struct{} {
				return make(map[*world.Entity]struct{})
			},
			func(m map[*world.Entity]struct{}) map[*world.Entity]struct{} {
				clear(m)
				return m
			},
		),
	}
	for _, channel := range []string{
		world.EventEntityAdded,
		world.EventEntityRemoved,
		world.EventEntityChanged,
	} {
		w.Bus().On(channel, e.onStoreEvent)
	}
	w.Bus().On(world.EventStoreReplaced, e.onStoreEvent)
	return e
}

// Evaluate applies the filter to the live store and returns the matches in
// storage order. The slice is a snapshot; it is never updated afterwards.
func (e *Engine) Evaluate(f Filter) []*world.Entity {
	var out []*world.Entity
	for _, entity := range e.w.Entities() {
		if f.Match(entity) {
			out = append(out, entity)
		}
	}
	return out
}

// EvaluateCached is Evaluate memoized under an explicit caller-supplied key.
// The cache is never keyed by the predicate itself (closures may capture
// mutable state); the caller owns key identity. Entries invalidate whenever
// the store revision moves.
func (e *Engine) EvaluateCached(key string, f Filter) []*world.Entity {
	h := xxhash.Sum64String(key)
	rev := e.w.Revision()

	e.mu.Lock()
	entry, ok := e.cache[h]
	e.mu.Unlock()
	if ok && entry.revision == rev {
		out := make([]*world.Entity, len(entry.results))
		copy(out, entry.results)
		return out
	}

	results := e.Evaluate(f)
	e.mu.Lock()
	e.cache[h] = cacheEntry{revision: rev, results: results}
	e.mu.Unlock()

	out := make([]*world.Entity, len(results))
	copy(out, results)
	return out
}

// Single returns the sole match of the filter. ErrNoMatch and
// ErrAmbiguousMatch distinguish the empty and many cases.
func (e *Engine) Single(f Filter) (*world.Entity, error) {
	matches := e.Evaluate(f)
	switch len(matches) {
	case 0:
		return nil, ErrNoMatch
	case 1:
		return matches[0], nil
	default:
		return nil, ErrAmbiguousMatch
	}
}

// Watch registers a live view of the filter. The view's match set is seeded
// from the current store without firing callbacks; from then on every store
// change re-evaluates the filter and notifies the view's callbacks and the
// world's EventQueryChanged channel.
func (e *Engine) Watch(f Filter) *View {
	v := &View{
		engine:  e,
		filter:  f,
		matches: e.setPool.Acquire(),
	}
	for _, entity := range e.Evaluate(f) {
		v.matches[entity] = struct{}{}
		v.order = append(v.order, entity)
	}
	e.mu.Lock()
	e.views = append(e.views, v)
	e.mu.Unlock()
	return v
}

// onStoreEvent re-evaluates every view after a store mutation and fans out
// deltas. A query.changed subscriber error propagates to the mutating
// caller, consistent with the store's fail-loud policy.
func (e *Engine) onStoreEvent(bus.Event) error {
	e.mu.Lock()
	views := make([]*View, len(e.views))
	copy(views, e.views)
	e.mu.Unlock()

	for _, v := range views {
		change, ok := v.recompute()
		if !ok {
			continue
		}
		v.notify(change)
		if err := e.w.Bus().Emit(world.EventQueryChanged, change); err != nil {
			return err
		}
	}
	return nil
}
