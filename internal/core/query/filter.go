// Package query evaluates declarative filters against the world and keeps
// live, change-tracked views of the matching entities.
package query

import (
	"github.com/sword-ecs/sword/internal/core/fields"
	"github.com/sword-ecs/sword/internal/core/world"
)

// Filter is a declarative match condition over components. Clauses combine
// with AND; a clause left empty is vacuously true and never excludes an
// entity.
type Filter struct {
	// Has lists component keys that must all be present.
	Has []string
	// None lists component keys that must all be absent.
	None []string
	// Tags lists keys that must be present with a truthy value
	// (nil, false, zero numbers and empty strings fail).
	Tags []string
	// Where is an arbitrary caller predicate, evaluated last.
	Where func(*world.Entity) bool
}

// Match reports whether the entity passes every specified clause. Clause
// order is fixed: Has, None, Tags, Where.
func (f Filter) Match(e *world.Entity) bool {
	if !e.HasAll(f.Has...) {
		return false
	}
	if !e.HasNone(f.None...) {
		return false
	}
	for _, tag := range f.Tags {
		v, ok := e.Get(tag)
		if !ok || !fields.Truthy(v) {
			return false
		}
	}
	if f.Where != nil && !f.Where(e) {
		return false
	}
	return true
}
