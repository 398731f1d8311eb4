package collection

import (
	"sync"

	"github.com/delaneyj/reactor/misc"
	"github.com/delaneyj/reactor/notify"
	"github.com/delaneyj/reactor/reactorerr"
	"github.com/delaneyj/reactor/trackable"
)

// TrackableKeyedList overlays original-snapshot accounting on
// KeyedObservableList, per §4.8's keyed variant.
type TrackableKeyedList[K comparable, T any] struct {
	mu          sync.Mutex
	keyed       *KeyedObservableList[K, T]
	equal       func(a, b T) bool
	initDepth   int
	hasOriginal bool
	original    map[K]T
	changed     bool
}

// NewTrackableKeyedList builds an empty trackable keyed list. equal may be
// nil.
func NewTrackableKeyedList[K comparable, T any](keyOf func(T) K, equal func(a, b T) bool) *TrackableKeyedList[K, T] {
	if equal == nil {
		equal = func(a, b T) bool { return misc.Equal(a, b) }
	}
	tkl := &TrackableKeyedList[K, T]{
		keyed: NewKeyedObservableList[K, T](keyOf, equal),
		equal: equal,
	}
	tkl.hasOriginal = true
	tkl.original = tkl.snapshotMap()
	tkl.keyed.Changes().Subscribe(func(ChangeArgs[T]) { tkl.onStructuralChange() }, nil, nil)
	if ic, err := tkl.keyed.ItemsChanges(); err == nil {
		ic.Subscribe(func(a notify.Args) {
			if a.Name == "IsChanged" {
				tkl.notifyItemChanged()
			}
		}, nil, nil)
	}
	return tkl
}

// Keyed exposes the underlying KeyedObservableList.
func (tkl *TrackableKeyedList[K, T]) Keyed() *KeyedObservableList[K, T] { return tkl.keyed }

func (tkl *TrackableKeyedList[K, T]) Notifier() *notify.Notifier { return tkl.keyed.Notifier() }

func (tkl *TrackableKeyedList[K, T]) IsInitializing() bool {
	tkl.mu.Lock()
	defer tkl.mu.Unlock()
	return tkl.initDepth > 0
}

func (tkl *TrackableKeyedList[K, T]) BeginInit() error {
	tkl.mu.Lock()
	defer tkl.mu.Unlock()
	tkl.initDepth++
	return nil
}

func (tkl *TrackableKeyedList[K, T]) EndInit() error {
	tkl.mu.Lock()
	defer tkl.mu.Unlock()
	if tkl.initDepth == 0 {
		return reactorerr.ErrInvalidOperation
	}
	tkl.initDepth--
	return nil
}

func (tkl *TrackableKeyedList[K, T]) IsChanged() bool {
	tkl.mu.Lock()
	defer tkl.mu.Unlock()
	return tkl.changed
}

func (tkl *TrackableKeyedList[K, T]) snapshotMap() map[K]T {
	out := map[K]T{}
	for _, it := range tkl.keyed.List().Items() {
		out[tkl.keyed.GetKey(it)] = it
	}
	return out
}

// onStructuralChange recomputes is_changed against the already-captured
// original. The baseline itself is established eagerly, at construction
// and at every point the baseline is (re)established (AcceptChanges,
// NewTrackableKeyedList) — never reactively in here, since by the time
// this fires on the keyed list's post-mutation Changes() stream the
// mutation has already been applied and the true pre-mutation state is
// gone.
func (tkl *TrackableKeyedList[K, T]) onStructuralChange() {
	tkl.mu.Lock()
	initializing := tkl.initDepth > 0
	changed := !initializing && tkl.computeChangedLocked()
	raise := changed != tkl.changed
	tkl.changed = changed
	tkl.mu.Unlock()
	if raise {
		tkl.keyed.Notifier().Raise("IsChanged")
	}
}

func (tkl *TrackableKeyedList[K, T]) notifyItemChanged() {
	tkl.mu.Lock()
	changed := tkl.computeChangedLocked()
	raise := changed != tkl.changed
	tkl.changed = changed
	tkl.mu.Unlock()
	if raise {
		tkl.keyed.Notifier().Raise("IsChanged")
	}
}

func (tkl *TrackableKeyedList[K, T]) computeChangedLocked() bool {
	if !tkl.hasOriginal {
		return false
	}
	current := tkl.snapshotMap()
	if !mapOriginalEquals(tkl.original, current, tkl.equal) {
		return true
	}
	// An item kept by reference compares equal to itself, so its own
	// IsChanged decides whether the list differs from its baseline.
	for _, v := range current {
		if t, ok := trackable.Is(any(v)); ok && t.IsChanged() {
			return true
		}
	}
	return false
}

func mapOriginalEquals[K comparable, T any](a, b map[K]T, equal func(x, y T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		if ta, ok := trackable.Is(any(av)); ok {
			tb, ok2 := trackable.Is(any(bv))
			if !ok2 || !ta.OriginalEquals(tb) {
				return false
			}
			continue
		}
		if !equal(av, bv) {
			return false
		}
	}
	return true
}

// AcceptChanges accepts each trackable item, then recaptures the original.
func (tkl *TrackableKeyedList[K, T]) AcceptChanges() error {
	if tkl.IsInitializing() {
		return reactorerr.ErrInvalidOperation
	}
	for _, it := range tkl.keyed.List().Items() {
		if t, ok := trackable.Is(any(it)); ok {
			if err := t.AcceptChanges(); err != nil {
				return err
			}
		}
	}
	tkl.mu.Lock()
	tkl.original = tkl.snapshotMap()
	tkl.hasOriginal = true
	changed := tkl.computeChangedLocked()
	raise := changed != tkl.changed
	tkl.changed = changed
	tkl.mu.Unlock()
	if raise {
		tkl.keyed.Notifier().Raise("IsChanged")
	}
	return nil
}

// RejectChanges rejects each trackable item (from the captured original, if
// any), then resets to that original.
func (tkl *TrackableKeyedList[K, T]) RejectChanges() error {
	if tkl.IsInitializing() {
		return reactorerr.ErrInvalidOperation
	}
	tkl.mu.Lock()
	hasOriginal := tkl.hasOriginal
	original := make(map[K]T, len(tkl.original))
	for k, v := range tkl.original {
		original[k] = v
	}
	tkl.mu.Unlock()

	source := tkl.keyed.List().Items()
	if hasOriginal {
		source = make([]T, 0, len(original))
		for _, v := range original {
			source = append(source, v)
		}
	}
	for _, it := range source {
		if t, ok := trackable.Is(any(it)); ok {
			if err := t.RejectChanges(); err != nil {
				return err
			}
		}
	}
	if hasOriginal {
		items := make([]T, 0, len(original))
		for _, v := range original {
			items = append(items, v)
		}
		if err := tkl.keyed.Reset(items); err != nil {
			return err
		}
	}
	tkl.mu.Lock()
	tkl.changed = false
	tkl.mu.Unlock()
	tkl.keyed.Notifier().Raise("IsChanged")
	return nil
}

// KeyedChange is one keyed get_changed_items() entry.
type KeyedChange[K comparable, T any] struct {
	Kind     Action
	Key      K
	Current  T
	Original T
}

// GetChangedItems diffs current items against the captured original by
// key, per §4.8's keyed-variant algorithm.
func (tkl *TrackableKeyedList[K, T]) GetChangedItems() []KeyedChange[K, T] {
	tkl.mu.Lock()
	hasOriginal := tkl.hasOriginal
	original := make(map[K]T, len(tkl.original))
	for k, v := range tkl.original {
		original[k] = v
	}
	tkl.mu.Unlock()
	if !hasOriginal {
		return nil
	}
	current := tkl.snapshotMap()

	var out []KeyedChange[K, T]
	for k, cur := range current {
		orig, had := original[k]
		if !had {
			out = append(out, KeyedChange[K, T]{Kind: Add, Key: k, Current: cur})
			continue
		}
		if t, ok := trackable.Is(any(cur)); ok {
			if t.IsChanged() {
				out = append(out, KeyedChange[K, T]{Kind: Replace, Key: k, Current: cur, Original: orig})
			}
			continue
		}
		if !tkl.equal(cur, orig) {
			out = append(out, KeyedChange[K, T]{Kind: Replace, Key: k, Current: cur, Original: orig})
		}
	}
	for k, orig := range original {
		if _, stillThere := current[k]; !stillThere {
			out = append(out, KeyedChange[K, T]{Kind: Remove, Key: k, Original: orig})
		}
	}
	return out
}

// TryGetChange reports the single change for key, if any.
func (tkl *TrackableKeyedList[K, T]) TryGetChange(key K) (KeyedChange[K, T], bool) {
	for _, c := range tkl.GetChangedItems() {
		if c.Key == key {
			return c, true
		}
	}
	return KeyedChange[K, T]{}, false
}

// IsValueChanged reports whether key currently has a change.
func (tkl *TrackableKeyedList[K, T]) IsValueChanged(key K) bool {
	_, ok := tkl.TryGetChange(key)
	return ok
}

// AddOrUpdateOriginal edits the captured-original map in place and
// recomputes is_changed, raising IsChanged if it toggled.
func (tkl *TrackableKeyedList[K, T]) AddOrUpdateOriginal(key K, v T) {
	tkl.mu.Lock()
	if tkl.original == nil {
		tkl.original = map[K]T{}
		tkl.hasOriginal = true
	}
	tkl.original[key] = v
	changed := tkl.computeChangedLocked()
	raise := changed != tkl.changed
	tkl.changed = changed
	tkl.mu.Unlock()
	if raise {
		tkl.keyed.Notifier().Raise("IsChanged")
	}
}
