// Package runner executes the registered systems once per external tick and
// materializes deferred entity creations at tick end.
package runner

import (
	"context"

	"github.com/sword-ecs/sword/internal/core/world"
)

// System is one update routine. Update may block internally (await an
// external resource); the runner waits for it to return before starting the
// next system, with no timeout of its own. A system that never returns
// stalls the tick — that is the caller's responsibility.
type System interface {
	Name() string
	Update(ctx context.Context, dt float64, w *world.World) error
}

// Order controls a system's position in the run list.
type Order struct {
	// Auto re-sorts the whole list ascending by Number on registration.
	// Systems registered without an order value sort as 0. The sort is
	// stable, so equal numbers preserve insertion order.
	Auto bool
	// Number is the sort key used when Auto is set.
	Number int
}

type funcSystem struct {
	name string
	fn   func(ctx context.Context, dt float64, w *world.World) error
}

func (s *funcSystem) Name() string {
	return s.name
}

func (s *funcSystem) Update(ctx context.Context, dt float64, w *world.World) error {
	return s.fn(ctx, dt, w)
}

// Func adapts a plain function into a System. Each call returns a distinct
// identity, so the result can be passed to Remove.
func Func(name string, fn func(ctx context.Context, dt float64, w *world.World) error) System {
	return &funcSystem{name: name, fn: fn}
}
