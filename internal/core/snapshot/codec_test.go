package snapshot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sword-ecs/sword/internal/core/archetype"
	"github.com/sword-ecs/sword/internal/core/world"
)

func TestRoundTrip(t *testing.T) {
	w := world.New()
	reg := archetype.NewRegistry()
	reg.Register("basic", world.Components{"health": 50})

	hero, err := w.Create(world.Components{
		"name":   "hero",
		"health": 100,
		"alive":  true,
		"speed":  1.5,
		"pos":    map[string]any{"x": 3, "y": -4},
		"loot":   []any{"gold", 12, true},
	})
	require.NoError(t, err)
	heroID := w.GenID(hero)
	_, err = w.Create(world.Components{"inert": true})
	require.NoError(t, err)

	data, err := Encode(w, reg)
	require.NoError(t, err)

	restored := world.New()
	restoredReg := archetype.NewRegistry()
	require.NoError(t, Restore(restored, restoredReg, data))

	require.Equal(t, 2, restored.Len())
	got, ok := restored.ByID(heroID)
	require.True(t, ok)

	for key, want := range map[string]any{
		"name":   "hero",
		"health": 100,
		"alive":  true,
		"speed":  1.5,
	} {
		v, present := got.Get(key)
		require.True(t, present, key)
		require.Equal(t, want, v, key)
	}

	pos, _ := got.Get("pos")
	require.Equal(t, map[string]any{"x": 3, "y": -4}, pos)
	loot, _ := got.Get("loot")
	require.Equal(t, []any{"gold", 12, true}, loot)

	tpl, ok := restoredReg.Template("basic")
	require.True(t, ok)
	require.Equal(t, 50, tpl["health"])
}

func TestRestore_MalformedLeavesStoreUnchanged(t *testing.T) {
	w := world.New()
	reg := archetype.NewRegistry()
	_, err := w.Create(world.Components{"keep": true})
	require.NoError(t, err)

	for name, payload := range map[string]string{
		"not yaml":        "{[",
		"wrong version":   "version: 99\nentities: []\n",
		"missing bag":     "version: 1\nentities:\n  - id: 1\n",
		"duplicate ids":   "version: 1\nentities:\n  - id: 3\n    components: {a: 1}\n  - id: 3\n    components: {b: 2}\n",
		"scalar entities": "version: 1\nentities: 42\n",
	} {
		t.Run(name, func(t *testing.T) {
			err := Restore(w, reg, []byte(payload))
			require.ErrorIs(t, err, ErrMalformedSnapshot)
			require.Equal(t, 1, w.Len(), "failed restore must not touch the store")
		})
	}
}

func TestRestore_ReplacesAtomically(t *testing.T) {
	source := world.New()
	_, err := source.Create(world.Components{"from": "snapshot"})
	require.NoError(t, err)
	data, err := Encode(source, nil)
	require.NoError(t, err)

	w := world.New()
	stale, err := w.Create(world.Components{"stale": true})
	require.NoError(t, err)

	require.NoError(t, Restore(w, nil, data))
	require.Equal(t, 1, w.Len())
	require.False(t, w.Contains(stale))
	v, _ := w.Entities()[0].Get("from")
	require.Equal(t, "snapshot", v)
}

func TestEncode_RejectsFunctionComponents(t *testing.T) {
	w := world.New()
	_, err := w.Create(world.Components{
		"health": 1,
		"think":  func() {},
	})
	require.NoError(t, err)

	_, err = Encode(w, nil)
	require.ErrorIs(t, err, ErrUnserializableComponent)
}

func TestEncode_RejectsNestedFunctionComponents(t *testing.T) {
	w := world.New()
	_, err := w.Create(world.Components{
		"brain": map[string]any{"impl": map[string]any{"fn": func() {}}},
	})
	require.NoError(t, err)

	_, err = Encode(w, nil)
	require.ErrorIs(t, err, ErrUnserializableComponent)
}

func TestEncode_RejectsFunctionInArchetype(t *testing.T) {
	w := world.New()
	reg := archetype.NewRegistry()
	reg.Register("bad", world.Components{"fn": func() {}})

	_, err := Encode(w, reg)
	require.ErrorIs(t, err, ErrUnserializableComponent)
}
