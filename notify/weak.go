package notify

import (
	"sync"
	"weak"
)

// WeakList is the "weak subscription list" component: a set of subscribers
// that do not root their targets. The derived collection views use it to
// subscribe to a long-lived source without keeping a short-lived view
// alive. Subscribe/unsubscribe may be called from any goroutine;
// delivery sweeps dead entries as it goes, matching §5's "weak-subscription
// bookkeeping uses locks."
// WeakList is generic over the target type T it holds weakly and the
// payload type P delivered to each live entry — property_changed Args for
// notify's own subscribers, but also collection change events for derived
// views (collection.ChangeArgs[T]).
type WeakList[T any, P any] struct {
	mu      sync.Mutex
	entries []*weakEntry[T, P]
}

type weakEntry[T any, P any] struct {
	ptr  weak.Pointer[T]
	call func(*T, P)
	dead bool
}

func NewWeakList[T any, P any]() *WeakList[T, P] {
	return &WeakList[T, P]{}
}

// Add registers target weakly; call is invoked with the (still-live)
// target on every Notify. The returned func removes the entry eagerly.
func (l *WeakList[T, P]) Add(target *T, call func(*T, P)) (remove func()) {
	e := &weakEntry[T, P]{ptr: weak.Make(target), call: call}

	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		e.dead = true
		l.mu.Unlock()
	}
}

// Notify delivers args to every live entry and compacts reclaimed ones.
func (l *WeakList[T, P]) Notify(args P) {
	l.mu.Lock()
	live := l.entries[:0:0]
	var calls []func()
	for _, e := range l.entries {
		if e.dead {
			continue
		}
		target := e.ptr.Value()
		if target == nil {
			continue // reclaimed; self-removes by omission, not an error
		}
		live = append(live, e)
		call, t := e.call, target
		calls = append(calls, func() { call(t, args) })
	}
	l.entries = live
	l.mu.Unlock()

	for _, c := range calls {
		c()
	}
}

// Len reports the number of currently-live entries (best effort; a target
// may be reclaimed between Len and the next Notify).
func (l *WeakList[T, P]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if !e.dead && e.ptr.Value() != nil {
			n++
		}
	}
	return n
}
