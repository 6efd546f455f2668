package generic

import "sync"

// Pool is a typed wrapper around sync.Pool with an optional reset hook
// applied to every value on release.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T) T
}

// NewPool creates a pool producing values via generate.
func NewPool[T any](generate func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
	}
}

// NewResetPool creates a pool whose values are passed through reset before
// being returned to the pool. Useful for maps and slices that must come back
// empty.
func NewResetPool[T any](generate func() T, reset func(T) T) *Pool[T] {
	p := NewPool[T](generate)
	p.reset = reset
	return p
}

// Acquire takes a value from the pool, producing a fresh one when empty.
func (p *Pool[T]) Acquire() T {
	return p.pool.Get().(T)
}

// Release returns a value to the pool, resetting it first when a reset hook
// is configured.
func (p *Pool[T]) Release(value T) {
	if p.reset != nil {
		value = p.reset(value)
	}
	p.pool.Put(value)
}
