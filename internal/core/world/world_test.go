package world

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sword-ecs/sword/internal/core/events/bus"
)

func TestWorld_CreateAndDestroy(t *testing.T) {
	w := New()

	e, err := w.Create(Components{"health": 100})
	require.NoError(t, err)
	require.Equal(t, 1, w.Len())
	require.True(t, w.Contains(e))

	v, ok := e.Get("health")
	require.True(t, ok)
	require.Equal(t, 100, v)

	require.NoError(t, w.Destroy(e))
	require.Equal(t, 0, w.Len())
	require.False(t, w.Contains(e))

	// Destroy is idempotent.
	require.NoError(t, w.Destroy(e))
	require.NoError(t, w.Destroy(nil))
}

func TestWorld_CreateCopiesBag(t *testing.T) {
	w := New()
	src := Components{"x": 1}
	e, err := w.Create(src)
	require.NoError(t, err)

	src["x"] = 99
	v, _ := e.Get("x")
	require.Equal(t, 1, v, "caller mutation must not leak into the store")
}

func TestWorld_AddedHookFiresOncePerCreationInOrder(t *testing.T) {
	w := New()
	var seen []*Entity
	w.OnAdded(func(e *Entity) error {
		seen = append(seen, e)
		return nil
	})

	a, err := w.Create(Components{"n": 1})
	require.NoError(t, err)
	b, err := w.Create(Components{"n": 2})
	require.NoError(t, err)

	require.Equal(t, []*Entity{a, b}, seen)
}

func TestWorld_NumericIdentity(t *testing.T) {
	w := New()
	a, _ := w.Create(Components{})
	b, _ := w.Create(Components{})

	require.Zero(t, a.ID())
	idA := w.GenID(a)
	require.NotZero(t, idA)
	require.Equal(t, idA, w.GenID(a), "GenID is idempotent per entity")

	idB := w.GenID(b)
	require.Greater(t, idB, idA, "ids are monotonically increasing")

	got, ok := w.ByID(idA)
	require.True(t, ok)
	require.Same(t, a, got)

	// Lookup survives unrelated churn.
	for i := 0; i < 10; i++ {
		tmp, _ := w.Create(Components{"tmp": true})
		require.NoError(t, w.Destroy(tmp))
	}
	got, ok = w.ByID(idB)
	require.True(t, ok)
	require.Same(t, b, got)

	// Destroying removes the mapping.
	require.NoError(t, w.Destroy(a))
	_, ok = w.ByID(idA)
	require.False(t, ok)
}

func TestWorld_GenIDOutsideStore(t *testing.T) {
	w := New()
	e, _ := w.Create(Components{})
	require.NoError(t, w.Destroy(e))
	require.Zero(t, w.GenID(&Entity{bag: Components{}}))
}

func TestWorld_ComponentMutationFiresChanged(t *testing.T) {
	w := New()
	e, _ := w.Create(Components{})

	changed := 0
	w.OnChanged(func(got *Entity) error {
		require.Same(t, e, got)
		changed++
		return nil
	})

	require.NoError(t, w.AddComponent(e, "speed", 2.5))
	require.True(t, e.Has("speed"))

	require.NoError(t, w.RemoveComponent(e, "speed"))
	require.False(t, e.Has("speed"))

	require.Equal(t, 2, changed)
}

func TestWorld_UpdateAndApply(t *testing.T) {
	w := New()
	e, _ := w.Create(Components{"health": 100, "name": "knight"})

	require.NoError(t, w.Update(e, Components{"health": 80, "armor": 5}))
	v, _ := e.Get("health")
	require.Equal(t, 80, v)
	v, _ = e.Get("armor")
	require.Equal(t, 5, v)
	v, _ = e.Get("name")
	require.Equal(t, "knight", v, "untouched keys survive a patch")

	require.NoError(t, w.Apply(e, func(bag Components) {
		bag["health"] = bag["health"].(int) - 30
	}))
	v, _ = e.Get("health")
	require.Equal(t, 50, v)
}

func TestWorld_EntitiesSnapshotKeepsStorageOrder(t *testing.T) {
	w := New()
	a, _ := w.Create(Components{})
	b, _ := w.Create(Components{})
	c, _ := w.Create(Components{})
	require.Equal(t, []*Entity{a, b, c}, w.Entities())

	require.NoError(t, w.Destroy(b))
	require.Equal(t, []*Entity{a, c}, w.Entities())
}

func TestWorld_RevisionMovesOnMutation(t *testing.T) {
	w := New()
	r0 := w.Revision()
	e, _ := w.Create(Components{})
	require.Greater(t, w.Revision(), r0)
	r1 := w.Revision()
	_ = w.AddComponent(e, "k", 1)
	require.Greater(t, w.Revision(), r1)
}

func TestWorld_ExportImportRoundTrip(t *testing.T) {
	w := New()
	a, _ := w.Create(Components{"health": 100, "pos": Components{"x": 1, "y": 2}})
	w.GenID(a)
	_, _ = w.Create(Components{"tag": true})

	records := w.Export()
	require.Len(t, records, 2)

	// Export is detached from live state.
	records[0].Components["health"] = -1
	v, _ := a.Get("health")
	require.Equal(t, 100, v)

	restored := New()
	replaced := 0
	restored.Bus().On(EventStoreReplaced, func(bus.Event) error {
		replaced++
		return nil
	})
	require.NoError(t, restored.Import(w.Export()))
	require.Equal(t, 1, replaced)
	require.Equal(t, 2, restored.Len())

	got, ok := restored.ByID(a.ID())
	require.True(t, ok)
	hv, _ := got.Get("health")
	require.Equal(t, 100, hv)

	// Id counter resumes past the highest imported id.
	extra, _ := restored.Create(Components{})
	require.Greater(t, restored.GenID(extra), a.ID())
}

func TestWorld_ClearDestroysEverything(t *testing.T) {
	w := New()
	removed := 0
	w.OnRemoved(func(*Entity) error {
		removed++
		return nil
	})
	for i := 0; i < 3; i++ {
		_, _ = w.Create(Components{})
	}
	require.NoError(t, w.Clear())
	require.Equal(t, 0, w.Len())
	require.Equal(t, 3, removed)
}

func TestComponents_MergeOverridesWin(t *testing.T) {
	base := Components{"health": 50, "name": "basic"}
	merged := base.Merge(Components{"health": 80})
	require.Equal(t, 80, merged["health"])
	require.Equal(t, "basic", merged["name"])
	require.Equal(t, 50, base["health"], "merge does not mutate the template")
}
