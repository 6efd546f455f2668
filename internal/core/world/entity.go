package world

import "sort"

// Components is an open attribute bag: component key to arbitrary value.
// There is no fixed schema; any entity may hold any subset of keys.
type Components map[string]any

// Clone returns a shallow copy of the bag.
func (c Components) Clone() Components {
	out := make(Components, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Merge returns a new bag holding the receiver's pairs overlaid with
// overrides; overrides win on key collision. Neither input is mutated.
func (c Components) Merge(overrides Components) Components {
	out := c.Clone()
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Entity is the unit of identity in the store. Identity is the *Entity
// pointer itself; the store never copies a live entity. An optional numeric
// id is assigned on demand via World.GenID.
//
// Reads go through the entity; all mutation goes through the World so change
// notifications fire.
type Entity struct {
	id  uint64
	bag Components
}

// ID returns the numeric identity, or 0 when none was assigned.
func (e *Entity) ID() uint64 {
	return e.id
}

// Get returns the component value stored under key.
func (e *Entity) Get(key string) (any, bool) {
	v, ok := e.bag[key]
	return v, ok
}

// Has reports whether the entity carries the component key.
func (e *Entity) Has(key string) bool {
	_, ok := e.bag[key]
	return ok
}

// HasAll reports whether the entity carries every given key.
func (e *Entity) HasAll(keys ...string) bool {
	for _, k := range keys {
		if _, ok := e.bag[k]; !ok {
			return false
		}
	}
	return true
}

// HasNone reports whether the entity carries none of the given keys.
func (e *Entity) HasNone(keys ...string) bool {
	for _, k := range keys {
		if _, ok := e.bag[k]; ok {
			return false
		}
	}
	return true
}

// Keys returns the component keys in sorted order.
func (e *Entity) Keys() []string {
	keys := make([]string, 0, len(e.bag))
	for k := range e.bag {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of components on the entity.
func (e *Entity) Len() int {
	return len(e.bag)
}

// Components returns a detached shallow copy of the bag. Mutating the copy
// does not affect the entity.
func (e *Entity) Components() Components {
	return e.bag.Clone()
}
