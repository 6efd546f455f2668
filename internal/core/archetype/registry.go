// Package archetype holds named, reusable partial-entity templates consumed
// by the world at creation time.
package archetype

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sword-ecs/sword/internal/core/world"
)

// ErrUnknownArchetype is returned when instantiating a name that was never
// registered. It is a caller failure, never silently defaulted.
var ErrUnknownArchetype = errors.New("unknown archetype")

// Registry maps archetype names to component templates. Templates are
// copied on registration and on instancing, so neither the caller nor a
// created entity can mutate a stored template. Re-registration under the
// same name overwrites.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]world.Components
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		templates: make(map[string]world.Components),
	}
}

// Register stores a template under name, overwriting any previous one.
func (r *Registry) Register(name string, template world.Components) {
	r.mu.Lock()
	r.templates[name] = template.Clone()
	r.mu.Unlock()
}

// Template returns a copy of the template registered under name.
func (r *Registry) Template(name string) (world.Components, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tpl, ok := r.templates[name]
	if !ok {
		return nil, false
	}
	return tpl.Clone(), true
}

// Names returns the registered archetype names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Instantiate merges the named template with overrides (overrides win on
// key collision) and creates the entity through the world's normal creation
// path, so lifecycle hooks fire and queries match.
func (r *Registry) Instantiate(w *world.World, name string, overrides world.Components) (*world.Entity, error) {
	r.mu.RLock()
	tpl, ok := r.templates[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownArchetype, name)
	}
	return w.Create(tpl.Merge(overrides))
}

// Export returns a detached copy of every template, for snapshotting.
func (r *Registry) Export() map[string]world.Components {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]world.Components, len(r.templates))
	for name, tpl := range r.templates {
		out[name] = tpl.Clone()
	}
	return out
}

// Replace atomically swaps the whole template table, e.g. on snapshot
// restore. A nil table empties the registry.
func (r *Registry) Replace(templates map[string]world.Components) {
	next := make(map[string]world.Components, len(templates))
	for name, tpl := range templates {
		next[name] = tpl.Clone()
	}
	r.mu.Lock()
	r.templates = next
	r.mu.Unlock()
}
