package world

import (
	"sync"
	"sync/atomic"

	"github.com/sword-ecs/sword/internal/core/events/bus"
	"github.com/sword-ecs/sword/internal/core/observability/log"
)

// World owns the authoritative list of live entities, the numeric-id side
// table and the per-instance event dispatcher. The engine is cooperative:
// one logical thread, one operation at a time. The internal mutex only
// protects embedding in a threaded host; it is not a concurrency feature.
//
// Mutators return an error only when a lifecycle subscriber or middleware
// raised one; the mutation itself has already been applied at that point.
// Fail-loud policy: subscriber errors are never swallowed.
type World struct {
	mu       sync.RWMutex
	entities []*Entity
	byID     map[uint64]*Entity
	nextID   uint64
	revision atomic.Uint64

	dispatcher *bus.Dispatcher
	logger     log.Log
}

// Option configures a World at construction time.
type Option func(*World)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l log.Log) Option {
	return func(w *World) {
		w.logger = l
	}
}

// New creates an empty world with its own dispatcher. Multiple worlds never
// share event or middleware state.
func New(opts ...Option) *World {
	w := &World{
		byID:       make(map[uint64]*Entity),
		dispatcher: bus.New(),
		logger:     log.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.dispatcher.Bind(w)
	return w
}

// Bus exposes the world's event dispatcher for subscriptions and middleware.
func (w *World) Bus() *bus.Dispatcher {
	return w.dispatcher
}

// Create appends a new entity holding a shallow copy of components and fires
// EventEntityAdded. Creation itself never fails; a non-nil error comes from
// a subscriber and the entity is live regardless.
func (w *World) Create(components Components) (*Entity, error) {
	e := &Entity{bag: components.Clone()}
	w.mu.Lock()
	w.entities = append(w.entities, e)
	w.mu.Unlock()
	w.revision.Add(1)

	w.logger.Debug("entity created", log.Int("components", e.Len()))
	return e, w.dispatcher.Emit(EventEntityAdded, e)
}

// Destroy removes an entity by identity and fires EventEntityRemoved.
// Destroying an entity that is not in the store is a no-op, not an error.
func (w *World) Destroy(e *Entity) error {
	if e == nil {
		return nil
	}
	w.mu.Lock()
	idx := -1
	for i, candidate := range w.entities {
		if candidate == e {
			idx = i
			break
		}
	}
	if idx < 0 {
		w.mu.Unlock()
		return nil
	}
	w.entities = append(w.entities[:idx], w.entities[idx+1:]...)
	if e.id != 0 {
		delete(w.byID, e.id)
	}
	w.mu.Unlock()
	w.revision.Add(1)

	w.logger.Debug("entity destroyed", log.Uint64("id", e.id))
	return w.dispatcher.Emit(EventEntityRemoved, e)
}

// AddComponent sets a component on the entity in place and fires
// EventEntityChanged.
func (w *World) AddComponent(e *Entity, key string, value any) error {
	w.mu.Lock()
	e.bag[key] = value
	w.mu.Unlock()
	w.revision.Add(1)
	return w.dispatcher.Emit(EventEntityChanged, e)
}

// RemoveComponent deletes a component key in place and fires
// EventEntityChanged. Removing an absent key still notifies; observers
// re-evaluate from current state.
func (w *World) RemoveComponent(e *Entity, key string) error {
	w.mu.Lock()
	delete(e.bag, key)
	w.mu.Unlock()
	w.revision.Add(1)
	return w.dispatcher.Emit(EventEntityChanged, e)
}

// Update merges a partial bag into the entity in place. Identity is
// preserved; only the listed keys change.
func (w *World) Update(e *Entity, patch Components) error {
	w.mu.Lock()
	for k, v := range patch {
		e.bag[k] = v
	}
	w.mu.Unlock()
	w.revision.Add(1)
	return w.dispatcher.Emit(EventEntityChanged, e)
}

// Apply runs a mutator against the entity's bag in place, then fires
// EventEntityChanged once.
func (w *World) Apply(e *Entity, fn func(Components)) error {
	w.mu.Lock()
	fn(e.bag)
	w.mu.Unlock()
	w.revision.Add(1)
	return w.dispatcher.Emit(EventEntityChanged, e)
}

// GenID assigns a monotonically increasing numeric id to the entity and
// records it in the side table. Assignment is idempotent: repeated calls
// return the id of the first. Ids are never reused while the side table
// still maps them. Calling GenID on an entity outside the store returns its
// existing id (0 when none) without touching the table.
func (w *World) GenID(e *Entity) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if e.id != 0 {
		return e.id
	}
	if !w.containsLocked(e) {
		return 0
	}
	w.nextID++
	e.id = w.nextID
	w.byID[e.id] = e
	return e.id
}

// ByID looks up an entity by its numeric id. Correct across any number of
// unrelated creations and destructions.
func (w *World) ByID(id uint64) (*Entity, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.byID[id]
	return e, ok
}

// Contains reports whether the entity is live in the store, by identity.
func (w *World) Contains(e *Entity) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.containsLocked(e)
}

func (w *World) containsLocked(e *Entity) bool {
	for _, candidate := range w.entities {
		if candidate == e {
			return true
		}
	}
	return false
}

// Entities returns the live entities in storage order. The slice is a
// snapshot; the entities themselves are the live references.
func (w *World) Entities() []*Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*Entity, len(w.entities))
	copy(out, w.entities)
	return out
}

// Len returns the number of live entities.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entities)
}

// Revision returns a counter bumped on every store mutation. Observers use
// it to invalidate derived state such as cached query results.
func (w *World) Revision() uint64 {
	return w.revision.Load()
}

// OnAdded subscribes to entity creations. The callback receives every
// created entity, in creation order.
func (w *World) OnAdded(fn func(*Entity) error) bus.Subscription {
	return w.dispatcher.On(EventEntityAdded, entityHandler(fn))
}

// OnRemoved subscribes to entity destructions.
func (w *World) OnRemoved(fn func(*Entity) error) bus.Subscription {
	return w.dispatcher.On(EventEntityRemoved, entityHandler(fn))
}

// OnChanged subscribes to in-place component mutations.
func (w *World) OnChanged(fn func(*Entity) error) bus.Subscription {
	return w.dispatcher.On(EventEntityChanged, entityHandler(fn))
}

func entityHandler(fn func(*Entity) error) bus.Handler {
	return func(evt bus.Event) error {
		e, ok := evt.Data().(*Entity)
		if !ok {
			return nil
		}
		return fn(e)
	}
}

// Record is the detached, serializable form of one entity.
type Record struct {
	ID         uint64     `yaml:"id,omitempty" json:"id,omitempty"`
	Components Components `yaml:"components" json:"components"`
}

// Export returns a detached copy of the store in storage order, suitable for
// snapshotting. Subscriber callbacks are not part of store state and are
// never exported.
func (w *World) Export() []Record {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Record, len(w.entities))
	for i, e := range w.entities {
		out[i] = Record{ID: e.id, Components: e.bag.Clone()}
	}
	return out
}

// Import atomically replaces the entity list from records. The id side table
// is rebuilt and the id counter resumes past the highest imported id.
// Lifecycle hooks do not fire per entity; a single EventStoreReplaced fires
// after the swap so live views can resynchronize.
func (w *World) Import(records []Record) error {
	entities := make([]*Entity, len(records))
	byID := make(map[uint64]*Entity, len(records))
	var maxID uint64
	for i, r := range records {
		e := &Entity{id: r.ID, bag: r.Components.Clone()}
		entities[i] = e
		if r.ID != 0 {
			byID[r.ID] = e
			if r.ID > maxID {
				maxID = r.ID
			}
		}
	}

	w.mu.Lock()
	w.entities = entities
	w.byID = byID
	w.nextID = maxID
	w.mu.Unlock()
	w.revision.Add(1)

	w.logger.Debug("store replaced", log.Int("entities", len(entities)))
	return w.dispatcher.Emit(EventStoreReplaced, nil)
}

// Clear destroys every entity, firing EventEntityRemoved for each in
// storage order. Subscriptions and middleware survive a clear.
func (w *World) Clear() error {
	for _, e := range w.Entities() {
		if err := w.Destroy(e); err != nil {
			return err
		}
	}
	return nil
}
