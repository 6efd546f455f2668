// Package fields provides typed accessors over the dynamically-typed
// component bags of world entities. Components are stored as `any`; these
// helpers are the checked boundary between that open model and statically
// typed application code.
package fields

import (
	"reflect"

	"github.com/sword-ecs/sword/internal/core/world"
)

// Get returns the component under key asserted to type T. The second return
// is false when the key is absent or holds a different type.
func Get[T any](e *world.Entity, key string) (T, bool) {
	v, ok := e.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// GetOr returns the component under key, or fallback when absent or
// mistyped.
func GetOr[T any](e *world.Entity, key string, fallback T) T {
	if v, ok := Get[T](e, key); ok {
		return v
	}
	return fallback
}

// Number returns the component under key coerced to float64. It accepts any
// integer or float width, which matters after a snapshot restore where the
// codec may rehydrate numbers as a different concrete type than the one
// originally stored.
func Number(e *world.Entity, key string) (float64, bool) {
	v, ok := e.Get(key)
	if !ok {
		return 0, false
	}
	return coerceNumber(v)
}

func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// Truthy reports whether a component value counts as "set" for tag
// filtering: nil, false, zero numbers and empty strings are falsy, anything
// else is truthy.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if n, ok := coerceNumber(v); ok {
		return n != 0
	}
	return true
}
