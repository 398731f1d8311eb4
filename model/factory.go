package model

import "reflect"

var baseType = reflect.TypeOf(Base{})

// CreateObservable produces a *T with every Prop/TrackProp field bound to
// a fresh observable Base. Trackable properties behave as plain observable
// properties on an instance built this way — no original-value shadow, no
// accept/reject; those calls fail with ErrNotTracked. builder may be nil.
func CreateObservable[T any](builder func(*T)) *T {
	obj := new(T)
	bind(obj, false)
	if builder != nil {
		builder(obj)
	}
	return obj
}

// CreateTrackable produces a *T whose trackable properties fully
// participate in original/current shadow tracking and accept/reject.
// builder may be nil; it runs after binding but outside any init scope, so
// assignments inside it are ordinary changes — wrap it in
// BeginInit/EndInit if the intent is to establish a baseline.
func CreateTrackable[T any](builder func(*T)) *T {
	obj := new(T)
	bind(obj, true)
	if builder != nil {
		builder(obj)
	}
	return obj
}

// IsTracked reports whether x was produced by CreateTrackable.
func IsTracked(x any) bool {
	t, ok := x.(interface{ IsTracked() bool })
	return ok && t.IsTracked()
}

func bind(obj any, tracked bool) {
	rv := reflect.ValueOf(obj).Elem()
	baseField := findBaseField(rv)
	if !baseField.IsValid() {
		panic("reactor/model: type does not embed model.Base")
	}
	base := baseField.Addr().Interface().(*Base)
	base.init(obj, tracked)

	for _, d := range base.info.descriptorsInOrder() {
		fv := rv.FieldByName(d.Name)
		if !fv.IsValid() || !fv.CanAddr() {
			continue
		}
		slot, ok := fv.Addr().Interface().(boundSlot)
		if !ok {
			continue
		}
		slot.bindSlot(base, d)
	}
}

func findBaseField(rv reflect.Value) reflect.Value {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous || f.Type.Kind() != reflect.Struct {
			continue
		}
		if f.Type == baseType {
			return rv.Field(i)
		}
		if found := findBaseField(rv.Field(i)); found.IsValid() {
			return found
		}
	}
	return reflect.Value{}
}
