// Package trackable declares the narrow contract shared by every kind of
// change-tracked value in reactor: trackable domain objects (model package)
// and trackable collections (collection package). Keeping it separate from
// both lets a trackable object hold a trackable collection (or vice versa)
// as a nested property without an import cycle.
package trackable

import (
	"github.com/delaneyj/reactor/misc"
	"github.com/delaneyj/reactor/notify"
)

// Trackable is implemented by anything with original/current shadow
// storage and accept/reject semantics: trackable objects and trackable
// collections alike.
type Trackable interface {
	IsChanged() bool
	AcceptChanges() error
	RejectChanges() error
	OriginalEquals(other any) bool
	Notifier() *notify.Notifier
}

// Is reports whether v implements Trackable and is non-nil.
func Is(v any) (Trackable, bool) {
	if misc.IsNil(v) {
		return nil, false
	}
	t, ok := v.(Trackable)
	if !ok {
		return nil, false
	}
	return t, true
}
