package collection

import (
	"strings"
	"sync"

	"github.com/delaneyj/reactor/misc"
	"github.com/delaneyj/reactor/notify"
	"github.com/delaneyj/reactor/stream"
)

func insertAt[T any](items []T, i int, x T) []T {
	items = append(items, x)
	copy(items[i+1:], items[i:])
	items[i] = x
	return items
}

// MapView is the read-only derived list of §4.9: source_list.map(selector).
// It subscribes weakly to source, so a view the caller drops is collectible
// even though source lives on.
type MapView[T, R any] struct {
	mu       sync.Mutex
	selector func(T) R
	items    []R
	notifier *notify.Notifier
	changes  *stream.Subject[ChangeArgs[R]]
}

// NewMapView builds a view tracking source, translated through selector.
func NewMapView[T, R any](source *ObservableList[T], selector func(T) R) *MapView[T, R] {
	mv := &MapView[T, R]{selector: selector, notifier: notify.New(nil)}
	for _, it := range source.Items() {
		mv.items = append(mv.items, selector(it))
	}

	wl := notify.NewWeakList[MapView[T, R], ChangeArgs[T]]()
	wl.Add(mv, func(v *MapView[T, R], args ChangeArgs[T]) { v.onSourceChange(args) })
	source.Changes().Subscribe(func(args ChangeArgs[T]) { wl.Notify(args) }, nil, nil)

	return mv
}

func (mv *MapView[T, R]) Notifier() *notify.Notifier { return mv.notifier }

func (mv *MapView[T, R]) Changes() *stream.Subject[ChangeArgs[R]] {
	mv.mu.Lock()
	defer mv.mu.Unlock()
	if mv.changes == nil {
		mv.changes = stream.NewSubject[ChangeArgs[R]]()
	}
	return mv.changes
}

// Items returns a snapshot copy of the current mapped contents.
func (mv *MapView[T, R]) Items() []R {
	mv.mu.Lock()
	defer mv.mu.Unlock()
	return append([]R(nil), mv.items...)
}

func (mv *MapView[T, R]) Count() int { return len(mv.Items()) }

func (mv *MapView[T, R]) onSourceChange(args ChangeArgs[T]) {
	mv.mu.Lock()
	out := ChangeArgs[R]{Action: args.Action, NewIndex: args.NewIndex, OldIndex: args.OldIndex}
	switch args.Action {
	case Add:
		x := mv.selector(args.NewItems[0])
		mv.items = insertAt(mv.items, args.NewIndex, x)
		out.NewItems = []R{x}
	case Remove:
		removed := mv.items[args.OldIndex]
		mv.items = append(mv.items[:args.OldIndex], mv.items[args.OldIndex+1:]...)
		out.OldItems = []R{removed}
	case Replace:
		old := mv.items[args.NewIndex]
		x := mv.selector(args.NewItems[0])
		mv.items[args.NewIndex] = x
		out.OldItems = []R{old}
		out.NewItems = []R{x}
	case Move:
		item := mv.items[args.OldIndex]
		mv.items = append(mv.items[:args.OldIndex], mv.items[args.OldIndex+1:]...)
		mv.items = insertAt(mv.items, args.NewIndex, item)
		out.OldItems = []R{item}
		out.NewItems = []R{item}
	case Reset:
		old := mv.items
		fresh := make([]R, len(args.NewItems))
		for i, it := range args.NewItems {
			fresh[i] = mv.selector(it)
		}
		mv.items = fresh
		out.OldItems = old
		out.NewItems = append([]R(nil), fresh...)
	}
	changes := mv.changes
	mv.mu.Unlock()

	mv.notifier.Raise("Count")
	if changes != nil {
		changes.Next(out)
	}
}

// CombineView presents a followed by b (§4.9), with a moving boundary
// index translating each side's events into the concatenated index space.
type CombineView[T any] struct {
	mu       sync.Mutex
	a, b     *ObservableList[T]
	items    []T
	notifier *notify.Notifier
	changes  *stream.Subject[ChangeArgs[T]]
}

// NewCombineView builds a view presenting a's items followed by b's.
func NewCombineView[T any](a, b *ObservableList[T]) *CombineView[T] {
	cv := &CombineView[T]{a: a, b: b, notifier: notify.New(nil)}
	cv.items = append(append([]T{}, a.Items()...), b.Items()...)

	wlA := notify.NewWeakList[CombineView[T], ChangeArgs[T]]()
	wlA.Add(cv, func(v *CombineView[T], args ChangeArgs[T]) { v.onSideChange(false, args) })
	a.Changes().Subscribe(func(args ChangeArgs[T]) { wlA.Notify(args) }, nil, nil)

	wlB := notify.NewWeakList[CombineView[T], ChangeArgs[T]]()
	wlB.Add(cv, func(v *CombineView[T], args ChangeArgs[T]) { v.onSideChange(true, args) })
	b.Changes().Subscribe(func(args ChangeArgs[T]) { wlB.Notify(args) }, nil, nil)

	return cv
}

func (cv *CombineView[T]) Notifier() *notify.Notifier { return cv.notifier }

func (cv *CombineView[T]) Changes() *stream.Subject[ChangeArgs[T]] {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	if cv.changes == nil {
		cv.changes = stream.NewSubject[ChangeArgs[T]]()
	}
	return cv.changes
}

func (cv *CombineView[T]) Items() []T {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	return append([]T(nil), cv.items...)
}

func (cv *CombineView[T]) onSideChange(isB bool, args ChangeArgs[T]) {
	if args.Action == Reset {
		cv.rebuildAll()
		return
	}

	offset := 0
	if isB {
		offset = cv.a.Count()
	}
	shifted := ChangeArgs[T]{
		Action:   args.Action,
		NewIndex: args.NewIndex + offset,
		OldIndex: args.OldIndex + offset,
		NewItems: args.NewItems,
		OldItems: args.OldItems,
	}

	cv.mu.Lock()
	switch args.Action {
	case Add:
		cv.items = insertAt(cv.items, shifted.NewIndex, args.NewItems[0])
	case Remove:
		cv.items = append(cv.items[:shifted.OldIndex], cv.items[shifted.OldIndex+1:]...)
	case Replace:
		cv.items[shifted.NewIndex] = args.NewItems[0]
	case Move:
		item := cv.items[shifted.OldIndex]
		cv.items = append(cv.items[:shifted.OldIndex], cv.items[shifted.OldIndex+1:]...)
		cv.items = insertAt(cv.items, shifted.NewIndex, item)
	}
	changes := cv.changes
	cv.mu.Unlock()

	cv.notifier.Raise("Count")
	if changes != nil {
		changes.Next(shifted)
	}
}

func (cv *CombineView[T]) rebuildAll() {
	cv.mu.Lock()
	old := cv.items
	cv.items = append(append([]T{}, cv.a.Items()...), cv.b.Items()...)
	fresh := append([]T(nil), cv.items...)
	changes := cv.changes
	cv.mu.Unlock()

	cv.notifier.Raise("Count")
	if changes != nil {
		changes.Next(ChangeArgs[T]{Action: Reset, OldItems: old, NewItems: fresh})
	}
}

// NewItemsView yields, for each Add/Replace/Reset on source, the subset of
// items newly present relative to the prior snapshot (§4.9).
type NewItemsView[T any] struct {
	mu               sync.Mutex
	equal            func(a, b T) bool
	snapshot         []T
	notifier         *notify.Notifier
	changes          *stream.Subject[[]T]
	isInitializingFn func() bool
}

// NewNewItemsView builds a view over source. isInitializing may be nil; per
// DESIGN NOTES §9 open question 2, IsInitializing then defaults to true
// (the documented behavior when the source is not a trackable collection).
func NewNewItemsView[T any](source *ObservableList[T], equal func(a, b T) bool, isInitializing func() bool) *NewItemsView[T] {
	if equal == nil {
		equal = func(a, b T) bool { return misc.Equal(a, b) }
	}
	v := &NewItemsView[T]{
		equal:            equal,
		snapshot:         source.Items(),
		notifier:         notify.New(nil),
		isInitializingFn: isInitializing,
	}

	wl := notify.NewWeakList[NewItemsView[T], ChangeArgs[T]]()
	wl.Add(v, func(target *NewItemsView[T], args ChangeArgs[T]) { target.onSourceChange(source, args) })
	source.Changes().Subscribe(func(args ChangeArgs[T]) { wl.Notify(args) }, nil, nil)

	return v
}

func (v *NewItemsView[T]) Notifier() *notify.Notifier { return v.notifier }

func (v *NewItemsView[T]) Changes() *stream.Subject[[]T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.changes == nil {
		v.changes = stream.NewSubject[[]T]()
	}
	return v.changes
}

// IsInitializing reports whether the underlying source is a trackable
// collection currently initializing; true by default when it is not.
func (v *NewItemsView[T]) IsInitializing() bool {
	if v.isInitializingFn == nil {
		return true
	}
	return v.isInitializingFn()
}

func (v *NewItemsView[T]) onSourceChange(source *ObservableList[T], args ChangeArgs[T]) {
	if args.Action != Add && args.Action != Replace && args.Action != Reset {
		return
	}
	current := source.Items()

	v.mu.Lock()
	prev := v.snapshot
	v.snapshot = current
	changes := v.changes
	v.mu.Unlock()

	var fresh []T
	for _, it := range current {
		if !containsEqual(prev, it, v.equal) {
			fresh = append(fresh, it)
		}
	}

	v.notifier.Raise("NewItems")
	if len(fresh) > 0 && changes != nil {
		changes.Next(fresh)
	}
}

func containsEqual[T any](items []T, x T, equal func(a, b T) bool) bool {
	for _, it := range items {
		if equal(it, x) {
			return true
		}
	}
	return false
}

// Aggregate is the lazily-recomputed fold of §4.9: list.aggregate(seed, f).
type Aggregate[T any] struct {
	mu           sync.Mutex
	source       *ObservableList[T]
	seed         any
	f            func(acc any, item T) any
	exprText     string
	notifier     *notify.Notifier
	values       *stream.Subject[any]
	lastComputed any
	hasLast      bool
}

// NewAggregate builds an aggregate over source. exprText may be empty; if
// non-empty, per-item property_changed names not appearing in it are
// ignored as a cheap correctness-relies-on-caller filter (§4.9).
func NewAggregate[T any](source *ObservableList[T], seed any, f func(acc any, item T) any, exprText string) *Aggregate[T] {
	agg := &Aggregate[T]{source: source, seed: seed, f: f, exprText: exprText, notifier: notify.New(nil)}

	wl := notify.NewWeakList[Aggregate[T], ChangeArgs[T]]()
	wl.Add(agg, func(a *Aggregate[T], _ ChangeArgs[T]) { a.recompute() })
	source.Changes().Subscribe(func(args ChangeArgs[T]) { wl.Notify(args) }, nil, nil)

	if ic, err := source.ItemsChanges(); err == nil {
		wl2 := notify.NewWeakList[Aggregate[T], notify.Args]()
		wl2.Add(agg, func(a *Aggregate[T], args notify.Args) {
			if a.exprText != "" && !strings.Contains(a.exprText, args.Name) {
				return
			}
			a.recompute()
		})
		ic.Subscribe(func(args notify.Args) { wl2.Notify(args) }, nil, nil)
	}

	return agg
}

func (a *Aggregate[T]) Notifier() *notify.Notifier { return a.notifier }

func (a *Aggregate[T]) Values() *stream.Subject[any] {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.values == nil {
		a.values = stream.NewSubject[any]()
	}
	return a.values
}

// Value recomputes the fold over the source's current items on demand.
func (a *Aggregate[T]) Value() any {
	acc := a.seed
	for _, it := range a.source.Items() {
		acc = a.f(acc, it)
	}
	return acc
}

func (a *Aggregate[T]) recompute() {
	a.notifier.Raise("Value")
	v := a.Value()

	a.mu.Lock()
	changed := !a.hasLast || !misc.Equal(a.lastComputed, v)
	a.lastComputed = v
	a.hasLast = true
	values := a.values
	a.mu.Unlock()

	if changed && values != nil {
		values.Next(v)
	}
}
