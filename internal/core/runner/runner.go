package runner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sword-ecs/sword/internal/core/events/bus"
	"github.com/sword-ecs/sword/internal/core/observability/log"
	"github.com/sword-ecs/sword/internal/core/world"
	"github.com/sword-ecs/sword/pkg/sequence"
)

type entry struct {
	system System
	order  int
}

// Runner holds the ordered system list and the deferred-creation queue for
// one world. Execution is strictly sequential: systems never interleave
// their mutations of the store, and a system error aborts the remainder of
// the tick, deferred drain included.
type Runner struct {
	w      *world.World
	logger log.Log

	mu       sync.Mutex
	entries  []entry
	deferred *sequence.Queue[world.Components]
}

// Option configures a Runner at construction time.
type Option func(*Runner)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l log.Log) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// New creates a runner bound to w.
func New(w *world.World, opts ...Option) *Runner {
	r := &Runner{
		w:        w,
		logger:   log.NewNop(),
		deferred: sequence.NewQueue[world.Components](),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add appends a system. When an Order with Auto set is supplied, the whole
// list is immediately re-sorted ascending by Number; the sort is stable so
// ties keep insertion order.
func (r *Runner) Add(system System, opts ...Order) {
	var order Order
	if len(opts) > 0 {
		order = opts[0]
	}
	r.mu.Lock()
	r.entries = append(r.entries, entry{system: system, order: order.Number})
	if order.Auto {
		sort.SliceStable(r.entries, func(i, j int) bool {
			return r.entries[i].order < r.entries[j].order
		})
	}
	r.mu.Unlock()
}

// Remove deletes the first entry matching the system by identity. Removing
// an absent system is a no-op.
func (r *Runner) Remove(system System) {
	r.mu.Lock()
	for i, en := range r.entries {
		if en.system == system {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
}

// Systems returns the current run order by name.
func (r *Runner) Systems() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.entries))
	for i, en := range r.entries {
		names[i] = en.system.Name()
	}
	return names
}

// OnUpdate registers an update hook: a callback receiving the delta time at
// the start of every tick, before any system runs.
func (r *Runner) OnUpdate(fn func(dt float64)) bus.Subscription {
	return r.w.Bus().On(world.EventTick, func(evt bus.Event) error {
		if dt, ok := evt.Data().(float64); ok {
			fn(dt)
		}
		return nil
	})
}

// Queue defers an entity creation until the end of the current tick. Queued
// specs materialize in FIFO order through the world's normal creation path,
// so they fire lifecycle hooks and match queries — visible to the next
// tick, not the current one.
func (r *Runner) Queue(spec world.Components) {
	r.mu.Lock()
	r.deferred.Enqueue(spec.Clone())
	r.mu.Unlock()
}

// Pending returns the number of queued deferred creations.
func (r *Runner) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deferred.Len()
}

// Tick runs one update cycle: the tick event (update hooks) first, then
// every system in list order, awaiting each in turn, then the deferred
// drain. dt is the caller-supplied elapsed time in seconds; the runner owns
// no clock. The first error — hook, system or deferred-creation subscriber —
// aborts the remainder of the tick and propagates to the caller.
func (r *Runner) Tick(ctx context.Context, dt float64) error {
	start := time.Now()

	if err := r.w.Bus().Emit(world.EventTick, dt); err != nil {
		return fmt.Errorf("tick hook: %w", err)
	}

	r.mu.Lock()
	systems := make([]System, len(r.entries))
	for i, en := range r.entries {
		systems[i] = en.system
	}
	r.mu.Unlock()

	for _, system := range systems {
		if err := system.Update(ctx, dt, r.w); err != nil {
			return fmt.Errorf("system %s: %w", system.Name(), err)
		}
	}

	if err := r.drainDeferred(); err != nil {
		return err
	}

	r.logger.Debug("tick complete",
		log.Float64("dt", dt),
		log.Int("systems", len(systems)),
		log.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// drainDeferred empties the queue in FIFO order. Specs queued while
// draining (by an entity-added subscriber) are created in the same pass,
// still in queue order.
func (r *Runner) drainDeferred() error {
	for {
		r.mu.Lock()
		spec, ok := r.deferred.Dequeue()
		r.mu.Unlock()
		if !ok {
			return nil
		}
		if _, err := r.w.Create(spec); err != nil {
			return fmt.Errorf("deferred create: %w", err)
		}
	}
}
