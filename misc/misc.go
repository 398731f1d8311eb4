// Package misc holds the small cross-cutting helpers the spec calls out as
// their own component: a structural/identity equality helper, a descending
// comparator wrapper, and the reflection helper the property-path observer
// and property descriptor registry both lean on.
package misc

import "reflect"

// Equal is the "value-kinded" comparison discipline: plain structural
// equality.
func Equal(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// IdentityEqual is the "reference-only" comparison discipline: compare by
// identity for pointer-like kinds, falling back to structural equality for
// anything else (so a reference-only property on a value type still works).
func IdentityEqual(a, b any) bool {
	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	if !av.IsValid() || !bv.IsValid() {
		return !av.IsValid() && !bv.IsValid()
	}
	if av.Type() != bv.Type() {
		return false
	}
	switch av.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return av.Pointer() == bv.Pointer()
	default:
		return reflect.DeepEqual(a, b)
	}
}

// IsNil reports whether v is a nil interface, or an interface holding a
// typed nil (nil pointer, map, slice, chan, or func) — the distinction Go's
// bare `v == nil` gets wrong for typed nils stashed in an `any`.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}

// Descend reverses a less function, for building a descending-order
// comparator out of an ascending one without duplicating comparison logic.
func Descend[T any](less func(a, b T) bool) func(a, b T) bool {
	return func(a, b T) bool { return less(b, a) }
}

// GetField resolves a single property-style accessor by name on v using
// reflection: it first tries a zero-argument method named name (the
// idiomatic Go getter shape, e.g. Name()), then a struct field named name.
// Used by pathobserve to resolve one step of a dynamic property chain.
func GetField(v any, name string) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)

	if m := rv.MethodByName(name); m.IsValid() && m.Type().NumIn() == 0 && m.Type().NumOut() == 1 {
		return m.Call(nil)[0].Interface(), true
	}

	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	fv := rv.FieldByName(name)
	if !fv.IsValid() {
		return nil, false
	}
	if fv.CanAddr() {
		if pv, ok := fv.Addr().Interface().(interface{ PathValue() any }); ok {
			return pv.PathValue(), true
		}
	}
	return fv.Interface(), true
}
