// Package concurrent provides parallel fan-out over sequence iterators.
// Intended for read-only passes over query result snapshots; the engine
// itself is single-threaded, so actions must not mutate the world.
package concurrent

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sword-ecs/sword/pkg/sequence"
)

// ForEach runs the action for each element of the iterator in a separate
// goroutine and waits for all of them. The first error encountered is
// returned.
func ForEach[T any](i *sequence.Iterator[T], action func(T) error) error {
	errGroup := errgroup.Group{}
	next, stop := i.Pull()
	defer stop()

	for {
		value, valid := next()
		if !valid {
			break
		}

		errGroup.Go(func() error {
			return action(value)
		})
	}

	return errGroup.Wait()
}

// ForEachLimit is ForEach with at most limit goroutines in flight.
func ForEachLimit[T any](i *sequence.Iterator[T], limit int, action func(T) error) error {
	errGroup := errgroup.Group{}
	errGroup.SetLimit(limit)
	next, stop := i.Pull()
	defer stop()

	for {
		value, valid := next()
		if !valid {
			break
		}

		errGroup.Go(func() error {
			return action(value)
		})
	}

	return errGroup.Wait()
}

// ForEachMute runs the action for each element in a separate goroutine,
// ignoring any errors.
func ForEachMute[T any](i *sequence.Iterator[T], action func(T) error) {
	wg := sync.WaitGroup{}
	next, stop := i.Pull()
	defer stop()

	for {
		value, valid := next()
		if !valid {
			break
		}

		wg.Add(1)
		go func(value T) {
			defer wg.Done()
			_ = action(value)
		}(value)
	}

	wg.Wait()
}
