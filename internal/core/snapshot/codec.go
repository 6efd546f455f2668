// Package snapshot serializes world and archetype state to a flat YAML
// document and restores it atomically.
//
// Only data round-trips: entity bags (numbers, booleans, strings, nested
// maps and slices, exactly) and archetype templates. Function values —
// subscriber callbacks, systems, predicates stored as components — are not
// meaningfully serializable; Encode rejects them up front instead of
// silently corrupting the snapshot. The host re-registers callbacks and
// systems after a restore.
package snapshot

import (
	"errors"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/sword-ecs/sword/internal/core/archetype"
	"github.com/sword-ecs/sword/internal/core/world"
)

var (
	// ErrMalformedSnapshot is returned when a payload cannot be parsed
	// into the expected shape. The store is left unchanged.
	ErrMalformedSnapshot = errors.New("malformed snapshot")
	// ErrUnserializableComponent is returned by Encode when a component
	// holds a function or channel value.
	ErrUnserializableComponent = errors.New("component value cannot be serialized")
)

// formatVersion guards against decoding documents written by an
// incompatible codec.
const formatVersion = 1

type document struct {
	Version    int                         `yaml:"version"`
	Entities   []world.Record              `yaml:"entities"`
	Archetypes map[string]world.Components `yaml:"archetypes,omitempty"`
}

// Encode serializes the world's entities and the registry's templates. The
// registry may be nil when only entity state matters.
func Encode(w *world.World, reg *archetype.Registry) ([]byte, error) {
	doc := document{
		Version:  formatVersion,
		Entities: w.Export(),
	}
	if reg != nil {
		doc.Archetypes = reg.Export()
	}

	for i, rec := range doc.Entities {
		if err := checkSerializable(rec.Components); err != nil {
			return nil, fmt.Errorf("entity %d: %w", i, err)
		}
	}
	for name, tpl := range doc.Archetypes {
		if err := checkSerializable(tpl); err != nil {
			return nil, fmt.Errorf("archetype %q: %w", name, err)
		}
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return out, nil
}

// Restore parses a snapshot and atomically replaces the world's entity list
// and, when a registry is supplied, its archetype table. On a parse or
// shape failure nothing is applied.
func Restore(w *world.World, reg *archetype.Registry, data []byte) error {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if doc.Version != formatVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrMalformedSnapshot, doc.Version)
	}
	seen := make(map[uint64]struct{}, len(doc.Entities))
	for i, rec := range doc.Entities {
		if rec.Components == nil {
			return fmt.Errorf("%w: entity %d has no component map", ErrMalformedSnapshot, i)
		}
		if rec.ID != 0 {
			if _, dup := seen[rec.ID]; dup {
				return fmt.Errorf("%w: duplicate entity id %d", ErrMalformedSnapshot, rec.ID)
			}
			seen[rec.ID] = struct{}{}
		}
	}

	if reg != nil {
		reg.Replace(doc.Archetypes)
	}
	return w.Import(doc.Entities)
}

// checkSerializable walks a bag and rejects function and channel values at
// any nesting depth.
func checkSerializable(value any) error {
	return walk(value, "")
}

func walk(value any, path string) error {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Func, reflect.Chan:
		return fmt.Errorf("%w: %s holds a %s", ErrUnserializableComponent, pathOrValue(path), rv.Kind())
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			key := fmt.Sprintf("%v", iter.Key().Interface())
			if err := walk(iter.Value().Interface(), joinPath(path, key)); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := walk(rv.Index(i).Interface(), fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case reflect.Pointer, reflect.Interface:
		if !rv.IsNil() {
			return walk(rv.Elem().Interface(), path)
		}
	}
	return nil
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func pathOrValue(path string) string {
	if path == "" {
		return "value"
	}
	return path
}
