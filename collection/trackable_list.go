package collection

import (
	"sync"

	"github.com/delaneyj/reactor/misc"
	"github.com/delaneyj/reactor/notify"
	"github.com/delaneyj/reactor/reactorerr"
	"github.com/delaneyj/reactor/trackable"
)

// TrackableList overlays original-snapshot accounting on ObservableList,
// per §4.8's list variant.
type TrackableList[T any] struct {
	mu          sync.Mutex
	list        *ObservableList[T]
	equal       func(a, b T) bool
	initDepth   int
	hasOriginal bool
	original    []T
	changed     bool
}

// NewTrackableList builds an empty trackable list. equal may be nil.
func NewTrackableList[T any](equal func(a, b T) bool) *TrackableList[T] {
	if equal == nil {
		equal = func(a, b T) bool { return misc.Equal(a, b) }
	}
	tl := &TrackableList[T]{
		list:  NewObservableList[T](equal),
		equal: equal,
	}
	tl.hasOriginal = true
	tl.original = tl.list.Items()
	tl.list.Changes().Subscribe(func(ChangeArgs[T]) { tl.onStructuralChange() }, nil, nil)
	if ic, err := tl.list.ItemsChanges(); err == nil {
		ic.Subscribe(func(a notify.Args) {
			if a.Name == "IsChanged" {
				tl.NotifyItemChanged()
			}
		}, nil, nil)
	}
	return tl
}

// List exposes the underlying ObservableList for read/iteration.
func (tl *TrackableList[T]) List() *ObservableList[T] { return tl.list }

// Notifier exposes the list's property_changed hub, satisfying
// trackable.Trackable.
func (tl *TrackableList[T]) Notifier() *notify.Notifier { return tl.list.Notifier() }

// IsInitializing reports whether a begin_init/end_init scope is open.
func (tl *TrackableList[T]) IsInitializing() bool {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.initDepth > 0
}

// BeginInit opens a reentrant initialization scope.
func (tl *TrackableList[T]) BeginInit() error {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.initDepth++
	return nil
}

// EndInit closes one level of initialization scope.
func (tl *TrackableList[T]) EndInit() error {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	if tl.initDepth == 0 {
		return reactorerr.ErrInvalidOperation
	}
	tl.initDepth--
	return nil
}

// IsChanged reports whether the list currently differs from its captured
// original.
func (tl *TrackableList[T]) IsChanged() bool {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.changed
}

// onStructuralChange implements §4.8's capture-then-recompute discipline.
// The original baseline is captured eagerly, at construction and at every
// point the baseline is (re)established (NewTrackableList, AcceptChanges,
// Reset with initialize=true) — never reactively in here, since by the
// time this fires on the list's post-mutation Changes() stream the
// mutation has already been applied and the true pre-mutation state is
// gone. This only recomputes is_changed against the already-captured
// original.
func (tl *TrackableList[T]) onStructuralChange() {
	tl.mu.Lock()
	initializing := tl.initDepth > 0
	changed := !initializing && tl.computeChangedLocked()
	raiseChanged := changed != tl.changed
	tl.changed = changed
	tl.mu.Unlock()

	if raiseChanged {
		tl.list.Notifier().Raise("IsChanged")
	}
}

// NotifyItemChanged re-evaluates is_changed after a contained trackable
// item raised its own IsChanged toggle (§4.8's second trigger). Callers
// that attach items to this list's trackable children should call this
// from the item's IsChanged handler.
func (tl *TrackableList[T]) NotifyItemChanged() {
	tl.mu.Lock()
	changed := tl.computeChangedLocked()
	raise := changed != tl.changed
	tl.changed = changed
	tl.mu.Unlock()
	if raise {
		tl.list.Notifier().Raise("IsChanged")
	}
}

func (tl *TrackableList[T]) computeChangedLocked() bool {
	if !tl.hasOriginal {
		return false
	}
	current := tl.list.Items()
	if !sequenceOriginalEquals(tl.original, current, tl.equal) {
		return true
	}
	// An item kept by reference compares equal to itself, so its own
	// IsChanged decides whether the list differs from its baseline.
	for _, it := range current {
		if t, ok := trackable.Is(any(it)); ok && t.IsChanged() {
			return true
		}
	}
	return false
}

func sequenceOriginalEquals[T any](a, b []T, equal func(a, b T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if ta, ok := trackable.Is(any(a[i])); ok {
			tb, ok2 := trackable.Is(any(b[i]))
			if !ok2 || !ta.OriginalEquals(tb) {
				return false
			}
			continue
		}
		if !equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// AcceptChanges discards the captured original, accepts each trackable
// item's own changes, and recaptures.
func (tl *TrackableList[T]) AcceptChanges() error {
	if tl.IsInitializing() {
		return reactorerr.ErrInvalidOperation
	}
	for _, it := range tl.list.Items() {
		if t, ok := trackable.Is(any(it)); ok {
			if err := t.AcceptChanges(); err != nil {
				return err
			}
		}
	}
	tl.mu.Lock()
	tl.original = tl.list.Items()
	tl.hasOriginal = true
	changed := tl.computeChangedLocked()
	raise := changed != tl.changed
	tl.changed = changed
	tl.mu.Unlock()
	if raise {
		tl.list.Notifier().Raise("IsChanged")
	}
	return nil
}

// RejectChanges rejects each trackable item, then resets to the captured
// original if one exists.
func (tl *TrackableList[T]) RejectChanges() error {
	if tl.IsInitializing() {
		return reactorerr.ErrInvalidOperation
	}
	tl.mu.Lock()
	hasOriginal := tl.hasOriginal
	original := append([]T(nil), tl.original...)
	tl.mu.Unlock()

	source := tl.list.Items()
	if hasOriginal {
		source = original
	}
	for _, it := range source {
		if t, ok := trackable.Is(any(it)); ok {
			if err := t.RejectChanges(); err != nil {
				return err
			}
		}
	}
	if hasOriginal {
		tl.list.Reset(original)
	}
	tl.mu.Lock()
	tl.changed = false
	tl.mu.Unlock()
	tl.list.Notifier().Raise("IsChanged")
	return nil
}

// Reset replaces the contents. If initialize is true, the new items become
// the new unchanged baseline.
func (tl *TrackableList[T]) Reset(items []T, initialize bool) error {
	if !initialize {
		tl.list.Reset(items)
		return nil
	}
	if err := tl.BeginInit(); err != nil {
		return err
	}
	tl.mu.Lock()
	tl.hasOriginal = false
	tl.mu.Unlock()
	tl.list.Reset(items)
	if err := tl.EndInit(); err != nil {
		return err
	}
	tl.mu.Lock()
	tl.original = tl.list.Items()
	tl.hasOriginal = true
	tl.changed = false
	tl.mu.Unlock()
	return nil
}

// OriginalEquals reports whether other is a same-length indexable sequence
// whose elements compare equal position-by-position (§4.8).
func (tl *TrackableList[T]) OriginalEquals(other any) bool {
	o, ok := other.(*TrackableList[T])
	if !ok {
		return false
	}
	return sequenceOriginalEquals(tl.list.Items(), o.list.Items(), tl.equal)
}

// Change is one get_changed_items() entry; Kind is Add, Remove, or Replace
// (standing in for the spec's "Change" tag, to reuse the Action enum).
type Change[T any] struct {
	Kind     Action
	Index    int
	Current  T
	Original T
}

// identityOrEqual matches §4.8's "match by identity (or by structural
// equality, for non-trackable items)" rule.
func identityOrEqual[T any](a, b T, equal func(a, b T) bool) bool {
	if _, ok := trackable.Is(any(a)); ok {
		return misc.IdentityEqual(any(a), any(b))
	}
	return equal(a, b)
}

// GetChangedItems diffs the current items against the captured original,
// per §4.8's list-variant algorithm.
func (tl *TrackableList[T]) GetChangedItems() []Change[T] {
	tl.mu.Lock()
	hasOriginal := tl.hasOriginal
	original := append([]T(nil), tl.original...)
	tl.mu.Unlock()
	current := tl.list.Items()

	if !hasOriginal {
		var out []Change[T]
		for i, it := range current {
			if t, ok := trackable.Is(any(it)); ok && t.IsChanged() {
				out = append(out, Change[T]{Kind: Replace, Index: i, Current: it, Original: it})
			}
		}
		return out
	}

	usedOriginal := make([]bool, len(original))
	var out []Change[T]
	for i, cur := range current {
		if i < len(original) && identityOrEqual(cur, original[i], tl.equal) {
			usedOriginal[i] = true
			if t, ok := trackable.Is(any(cur)); ok && t.IsChanged() {
				out = append(out, Change[T]{Kind: Replace, Index: i, Current: cur, Original: original[i]})
			}
			continue
		}
		foundAt := -1
		for j, orig := range original {
			if !usedOriginal[j] && identityOrEqual(cur, orig, tl.equal) {
				foundAt = j
				break
			}
		}
		if foundAt >= 0 {
			usedOriginal[foundAt] = true
			out = append(out, Change[T]{Kind: Replace, Index: i, Current: cur, Original: original[foundAt]})
			continue
		}
		out = append(out, Change[T]{Kind: Add, Index: i, Current: cur})
	}
	for j, orig := range original {
		if !usedOriginal[j] {
			out = append(out, Change[T]{Kind: Remove, Index: j, Original: orig})
		}
	}
	return out
}
