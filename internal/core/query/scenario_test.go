package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sword-ecs/sword/internal/core/archetype"
	"github.com/sword-ecs/sword/internal/core/runner"
	"github.com/sword-ecs/sword/internal/core/snapshot"
	"github.com/sword-ecs/sword/internal/core/world"
)

// Exercises the whole engine surface the way a host would: direct creation,
// archetype instancing, destruction, queries and ticks together.
func TestScenario_ArchetypesQueriesAndDestruction(t *testing.T) {
	w := world.New()
	engine := NewEngine(w)
	reg := archetype.NewRegistry()

	a, err := w.Create(world.Components{"health": 100})
	require.NoError(t, err)

	reg.Register("basic", world.Components{"health": 50})
	b, err := reg.Instantiate(w, "basic", world.Components{"health": 80})
	require.NoError(t, err)
	v, _ := b.Get("health")
	require.Equal(t, 80, v)

	healthy := Filter{Has: []string{"health"}}
	require.Equal(t, []*world.Entity{a, b}, engine.Evaluate(healthy))

	require.NoError(t, w.Destroy(a))
	require.Equal(t, []*world.Entity{b}, engine.Evaluate(healthy))
}

func TestScenario_TickDrivenLifecycle(t *testing.T) {
	w := world.New()
	engine := NewEngine(w)
	run := runner.New(w)

	view := engine.Watch(Filter{Has: []string{"health"}})
	var joined, left int
	view.OnAdd(func(*world.Entity) { joined++ })
	view.OnRemove(func(*world.Entity) { left++ })

	run.Add(runner.Func("spawn-once", func(_ context.Context, _ float64, w *world.World) error {
		if w.Len() == 0 {
			run.Queue(world.Components{"health": 10})
		}
		return nil
	}), runner.Order{Auto: true, Number: 1})
	run.Add(runner.Func("drain", func(_ context.Context, dt float64, w *world.World) error {
		for _, e := range engine.Evaluate(Filter{Has: []string{"health"}}) {
			v, _ := e.Get("health")
			if err := w.Update(e, world.Components{"health": v.(int) - 10}); err != nil {
				return err
			}
		}
		return nil
	}), runner.Order{Auto: true, Number: 2})
	run.Add(runner.Func("cull", func(_ context.Context, _ float64, w *world.World) error {
		for _, e := range engine.Evaluate(Filter{Has: []string{"health"}}) {
			v, _ := e.Get("health")
			if v.(int) <= 0 {
				if err := w.Destroy(e); err != nil {
					return err
				}
			}
		}
		return nil
	}), runner.Order{Auto: true, Number: 3})

	ctx := context.Background()

	// Tick 1: the spawn is deferred; nothing matches yet during the tick,
	// the entity materializes at tick end.
	require.NoError(t, run.Tick(ctx, 0.1))
	require.Equal(t, 1, joined)
	require.Equal(t, 1, view.Len())

	// Tick 2: drain brings health to 0, cull destroys it.
	require.NoError(t, run.Tick(ctx, 0.1))
	require.Equal(t, 1, left)
	require.Equal(t, 0, view.Len())
	require.Equal(t, 0, w.Len())
}

func TestScenario_SnapshotRestoreKeepsQueriesWorking(t *testing.T) {
	w := world.New()
	engine := NewEngine(w)
	reg := archetype.NewRegistry()
	reg.Register("unit", world.Components{"health": 50, "alive": true})

	for i := 0; i < 3; i++ {
		_, err := reg.Instantiate(w, "unit", nil)
		require.NoError(t, err)
	}
	data, err := snapshot.Encode(w, reg)
	require.NoError(t, err)

	// Restore into a fresh engine-backed world.
	w2 := world.New()
	engine2 := NewEngine(w2)
	reg2 := archetype.NewRegistry()
	require.NoError(t, snapshot.Restore(w2, reg2, data))

	require.Len(t, engine2.Evaluate(Filter{Tags: []string{"alive"}}), 3)

	// Archetypes rode along and instancing still works.
	e, err := reg2.Instantiate(w2, "unit", world.Components{"health": 1})
	require.NoError(t, err)
	require.Len(t, engine2.Evaluate(Filter{Tags: []string{"alive"}}), 4)
	v, _ := e.Get("health")
	require.Equal(t, 1, v)

	// And the original engine is unaffected.
	require.Len(t, engine.Evaluate(Filter{Tags: []string{"alive"}}), 3)
}
