// Package collection implements the observable and trackable collection
// protocols (§4.6-§4.9): ordered lists, keyed lists, their trackable
// (original/current shadow) variants, and derived read-only views (map,
// combine, new-items, aggregate).
package collection

import (
	"reflect"
	"sort"
	"sync"

	"github.com/delaneyj/reactor/misc"
	"github.com/delaneyj/reactor/notify"
	"github.com/delaneyj/reactor/reactorerr"
	"github.com/delaneyj/reactor/stream"
)

// Action tags a structural collection_changed event.
type Action int

const (
	Add Action = iota
	Remove
	Replace
	Move
	Reset
)

func (a Action) String() string {
	switch a {
	case Add:
		return "Add"
	case Remove:
		return "Remove"
	case Replace:
		return "Replace"
	case Move:
		return "Move"
	case Reset:
		return "Reset"
	default:
		return "Unknown"
	}
}

// ChangeArgs is the payload of collection_changed / collection_changes.
type ChangeArgs[T any] struct {
	Action   Action
	NewIndex int
	OldIndex int
	NewItems []T
	OldItems []T
}

// observable is satisfied by any item type participating in items_changes.
type observable interface {
	Notifier() *notify.Notifier
}

var observableType = reflect.TypeOf((*observable)(nil)).Elem()

func typeSupportsNotifier[T any]() bool {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t == nil {
		return false
	}
	return t.Implements(observableType) || reflect.PointerTo(t).Implements(observableType)
}

func itemNotifierOf[T any](v T) (*notify.Notifier, bool) {
	if misc.IsNil(any(v)) {
		return nil, false
	}
	o, ok := any(v).(observable)
	if !ok {
		return nil, false
	}
	return o.Notifier(), true
}

// BindTarget is the external mutable collection §4.6's bind(target,
// selector) mirrors structural changes onto.
type BindTarget[T any] interface {
	Add(item T)
	Remove(item T)
	Clear()
}

// ObservableList is an ordered, observable list per §4.6.
type ObservableList[T any] struct {
	mu    sync.Mutex
	items []T
	equal func(a, b T) bool

	persistSort bool
	less        func(a, b T) bool

	notifier     *notify.Notifier
	changes      *stream.Subject[ChangeArgs[T]]
	itemsChanges *stream.Subject[notify.Args]
	itemDetach   []func()

	binds []BindTarget[T]
}

// NewObservableList builds an empty list. equal may be nil, in which case
// reflect-based structural equality is used.
func NewObservableList[T any](equal func(a, b T) bool) *ObservableList[T] {
	if equal == nil {
		equal = func(a, b T) bool { return misc.Equal(a, b) }
	}
	return &ObservableList[T]{
		equal:    equal,
		notifier: notify.New(nil),
	}
}

// Notifier exposes the list's property_changed hub (Count, IsEmpty, First,
// Last, Indexer).
func (l *ObservableList[T]) Notifier() *notify.Notifier { return l.notifier }

// Changes returns the hot collection_changes stream, allocated on first use.
func (l *ObservableList[T]) Changes() *stream.Subject[ChangeArgs[T]] {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.changes == nil {
		l.changes = stream.NewSubject[ChangeArgs[T]]()
	}
	return l.changes
}

// ItemsChanges returns the lazily-allocated per-item property_changed
// stream, or ErrNotSupported if T does not implement the observable
// contract.
func (l *ObservableList[T]) ItemsChanges() (*stream.Subject[notify.Args], error) {
	if !typeSupportsNotifier[T]() {
		return nil, reactorerr.ErrNotSupported
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.itemsChanges == nil {
		l.itemsChanges = stream.NewSubject[notify.Args]()
		l.itemDetach = make([]func(), len(l.items))
		for i, it := range l.items {
			l.itemDetach[i] = l.subscribeItemLocked(it)
		}
	}
	return l.itemsChanges, nil
}

func (l *ObservableList[T]) subscribeItemLocked(item T) func() {
	n, ok := itemNotifierOf(item)
	if !ok {
		return func() {}
	}
	changes := l.itemsChanges
	return n.OnPropertyChanged(func(a notify.Args) { changes.Next(a) })
}

func (l *ObservableList[T]) resyncItemSubscriptionsLocked() {
	if l.itemsChanges == nil {
		return
	}
	for _, d := range l.itemDetach {
		if d != nil {
			d()
		}
	}
	l.itemDetach = make([]func(), len(l.items))
	for i, it := range l.items {
		l.itemDetach[i] = l.subscribeItemLocked(it)
	}
}

func (l *ObservableList[T]) emit(args ChangeArgs[T]) {
	if l.changes != nil {
		l.changes.Next(args)
	}
	l.notifier.Raise("Count")
	l.notifier.Raise("IsEmpty")
	l.notifier.Raise("Indexer")
	if args.OldIndex == 0 || args.NewIndex == 0 {
		l.notifier.Raise("First")
	}
	l.notifier.Raise("Last")

	for _, b := range l.binds {
		applyToBind(b, args)
	}
}

func applyToBind[T any](target BindTarget[T], args ChangeArgs[T]) {
	switch args.Action {
	case Add:
		for _, it := range args.NewItems {
			target.Add(it)
		}
	case Remove:
		for _, it := range args.OldItems {
			target.Remove(it)
		}
	case Replace:
		for _, it := range args.OldItems {
			target.Remove(it)
		}
		for _, it := range args.NewItems {
			target.Add(it)
		}
	case Move:
		// identity unchanged; nothing to mirror to a target with no ordering API.
	case Reset:
		target.Clear()
		for _, it := range args.NewItems {
			target.Add(it)
		}
	}
}

// Bind mirrors every future structural change onto target, and immediately
// replays the current snapshot as an initial Reset (§4.6).
func (l *ObservableList[T]) Bind(target BindTarget[T]) {
	l.mu.Lock()
	l.binds = append(l.binds, target)
	snapshot := append([]T(nil), l.items...)
	l.mu.Unlock()

	target.Clear()
	for _, it := range snapshot {
		target.Add(it)
	}
}

// Count returns the number of items.
func (l *ObservableList[T]) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// IsEmpty reports whether the list has no items.
func (l *ObservableList[T]) IsEmpty() bool { return l.Count() == 0 }

// First returns the zero value and false if the list is empty.
func (l *ObservableList[T]) First() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	if len(l.items) == 0 {
		return zero, false
	}
	return l.items[0], true
}

// Last returns the zero value and false if the list is empty.
func (l *ObservableList[T]) Last() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	if len(l.items) == 0 {
		return zero, false
	}
	return l.items[len(l.items)-1], true
}

// At returns the item at i, or ErrOutOfRange.
func (l *ObservableList[T]) At(i int) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	if i < 0 || i >= len(l.items) {
		return zero, reactorerr.ErrOutOfRange
	}
	return l.items[i], nil
}

// Items returns a snapshot copy of the current contents, in order.
func (l *ObservableList[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]T(nil), l.items...)
}

// Add appends x, or inserts it at its sorted position if persisted sort is
// enabled (ties appended after existing equals, per §4.6).
func (l *ObservableList[T]) Add(x T) {
	l.mu.Lock()
	idx := len(l.items)
	if l.persistSort {
		idx = l.sortedInsertPositionLocked(x)
	}
	l.insertLocked(idx, x)
	l.resyncItemSubscriptionsLocked()
	args := ChangeArgs[T]{Action: Add, NewIndex: idx, NewItems: []T{x}}
	l.mu.Unlock()
	l.emit(args)
}

// AddRange adds each item one at a time (so persisted sort places each in
// its own sorted position, per §4.6).
func (l *ObservableList[T]) AddRange(xs []T) {
	for _, x := range xs {
		l.Add(x)
	}
}

func (l *ObservableList[T]) sortedInsertPositionLocked(x T) int {
	return sort.Search(len(l.items), func(i int) bool {
		return l.less(x, l.items[i])
	})
}

func (l *ObservableList[T]) insertLocked(i int, x T) {
	l.items = append(l.items, x)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = x
}

// Insert places x at index i. Fails with ErrOutOfRange if i is not in
// [0, Count()].
func (l *ObservableList[T]) Insert(i int, x T) error {
	l.mu.Lock()
	if i < 0 || i > len(l.items) {
		l.mu.Unlock()
		return reactorerr.ErrOutOfRange
	}
	l.insertLocked(i, x)
	l.resyncItemSubscriptionsLocked()
	args := ChangeArgs[T]{Action: Add, NewIndex: i, NewItems: []T{x}}
	l.mu.Unlock()
	l.emit(args)
	return nil
}

// Remove removes the first occurrence of x (by the list's equality
// discipline), reporting whether anything was removed.
func (l *ObservableList[T]) Remove(x T) bool {
	l.mu.Lock()
	idx := l.indexOfLocked(x)
	if idx < 0 {
		l.mu.Unlock()
		return false
	}
	l.mu.Unlock()
	_ = l.RemoveAt(idx)
	return true
}

// RemoveAt removes the item at index i. Fails with ErrOutOfRange.
func (l *ObservableList[T]) RemoveAt(i int) error {
	l.mu.Lock()
	if i < 0 || i >= len(l.items) {
		l.mu.Unlock()
		return reactorerr.ErrOutOfRange
	}
	removed := l.items[i]
	l.items = append(l.items[:i], l.items[i+1:]...)
	l.resyncItemSubscriptionsLocked()
	args := ChangeArgs[T]{Action: Remove, OldIndex: i, OldItems: []T{removed}}
	l.mu.Unlock()
	l.emit(args)
	return nil
}

// Move relocates the item at oldIndex to newIndex.
func (l *ObservableList[T]) Move(oldIndex, newIndex int) error {
	l.mu.Lock()
	n := len(l.items)
	if oldIndex < 0 || oldIndex >= n || newIndex < 0 || newIndex >= n {
		l.mu.Unlock()
		return reactorerr.ErrOutOfRange
	}
	item := l.items[oldIndex]
	l.items = append(l.items[:oldIndex], l.items[oldIndex+1:]...)
	l.insertLocked(newIndex, item)
	args := ChangeArgs[T]{Action: Move, OldIndex: oldIndex, NewIndex: newIndex, NewItems: []T{item}, OldItems: []T{item}}
	l.mu.Unlock()
	l.emit(args)
	return nil
}

// Clear removes every item.
func (l *ObservableList[T]) Clear() {
	l.mu.Lock()
	old := l.items
	l.items = nil
	l.resyncItemSubscriptionsLocked()
	args := ChangeArgs[T]{Action: Reset, OldItems: old}
	l.mu.Unlock()
	l.emit(args)
}

// Reset replaces the contents wholesale with items, emitting a single
// Reset event.
func (l *ObservableList[T]) Reset(items []T) {
	l.mu.Lock()
	old := l.items
	l.items = append([]T(nil), items...)
	if l.persistSort {
		l.items = sortStableByIndex(l.items, l.less)
	}
	l.resyncItemSubscriptionsLocked()
	args := ChangeArgs[T]{Action: Reset, OldItems: old, NewItems: append([]T(nil), l.items...)}
	l.mu.Unlock()
	l.emit(args)
}

// Sort reorders the list once (persist=false) using less, via the
// index-array-plus-tie-break stability technique (§4.6).
func (l *ObservableList[T]) Sort(less func(a, b T) bool) {
	l.mu.Lock()
	old := l.items
	l.items = sortStableByIndex(l.items, less)
	args := ChangeArgs[T]{Action: Reset, OldItems: old, NewItems: append([]T(nil), l.items...)}
	l.mu.Unlock()
	l.emit(args)
}

// SortPersisted reorders the list and, if persist is true, keeps less as
// the comparator future Add calls use to maintain sorted position.
func (l *ObservableList[T]) SortPersisted(less func(a, b T) bool, persist bool) {
	l.mu.Lock()
	old := l.items
	l.items = sortStableByIndex(l.items, less)
	if persist {
		l.persistSort = true
		l.less = less
	}
	args := ChangeArgs[T]{Action: Reset, OldItems: old, NewItems: append([]T(nil), l.items...)}
	l.mu.Unlock()
	l.emit(args)
}

// UpdateSortPosition recomputes x's position under the persisted comparator
// and issues a Move if it changed. No-op if persisted sort is not enabled.
func (l *ObservableList[T]) UpdateSortPosition(x T) error {
	l.mu.Lock()
	if !l.persistSort {
		l.mu.Unlock()
		return nil
	}
	cur := l.indexOfLocked(x)
	if cur < 0 {
		l.mu.Unlock()
		return reactorerr.ErrKeyNotFound
	}
	without := append(append([]T(nil), l.items[:cur]...), l.items[cur+1:]...)
	target := sort.Search(len(without), func(i int) bool { return l.less(x, without[i]) })
	l.mu.Unlock()
	if target == cur {
		return nil
	}
	return l.Move(cur, target)
}

// RemoveAll removes every item satisfying predicate, high-to-low, emitting
// one Remove per element (never a single Reset), per DESIGN NOTES §9 open
// question 3.
func (l *ObservableList[T]) RemoveAll(predicate func(T) bool) int {
	l.mu.Lock()
	var matches []int
	for i, it := range l.items {
		if predicate(it) {
			matches = append(matches, i)
		}
	}
	l.mu.Unlock()

	for i := len(matches) - 1; i >= 0; i-- {
		_ = l.RemoveAt(matches[i])
	}
	return len(matches)
}

// Contains reports whether x is present.
func (l *ObservableList[T]) Contains(x T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.indexOfLocked(x) >= 0
}

// IndexOf returns x's index, or -1.
func (l *ObservableList[T]) IndexOf(x T) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.indexOfLocked(x)
}

func (l *ObservableList[T]) indexOfLocked(x T) int {
	for i, it := range l.items {
		if l.equal(it, x) {
			return i
		}
	}
	return -1
}

// Aggregate folds seed across the current items with f, left to right.
func (l *ObservableList[T]) Aggregate(seed any, f func(acc any, item T) any) any {
	l.mu.Lock()
	items := append([]T(nil), l.items...)
	l.mu.Unlock()
	acc := seed
	for _, it := range items {
		acc = f(acc, it)
	}
	return acc
}

// sortStableByIndex sorts a copy of items by less, tie-breaking on original
// index rather than relying on sort.Slice's own (unspecified) stability.
func sortStableByIndex[T any](items []T, less func(a, b T) bool) []T {
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool {
		a, b := items[idx[i]], items[idx[j]]
		switch {
		case less(a, b):
			return true
		case less(b, a):
			return false
		default:
			return idx[i] < idx[j]
		}
	})
	out := make([]T, len(items))
	for i, ix := range idx {
		out[i] = items[ix]
	}
	return out
}

// SortByKey sorts l persisted-or-not by an ordered projection of each item,
// a free function (not a method) so it can introduce its own type
// parameter K for the key.
func SortByKey[T any, K interface{ ~int | ~int64 | ~float64 | ~string }](l *ObservableList[T], key func(T) K, persist bool) {
	less := func(a, b T) bool { return key(a) < key(b) }
	l.SortPersisted(less, persist)
}
