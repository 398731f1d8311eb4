package stream

import "sync"

// BehaviorSubject remembers its most recent value. Every subscriber, live
// or late, receives the current value immediately, then subsequent values;
// after termination late subscribers receive the terminal notification
// instead of the stashed value.
type BehaviorSubject[T any] struct {
	mu      sync.Mutex
	current T
	inner   *Subject[T]
}

func NewBehaviorSubject[T any](initial T) *BehaviorSubject[T] {
	return &BehaviorSubject[T]{
		current: initial,
		inner:   NewSubject[T](),
	}
}

func (b *BehaviorSubject[T]) Value() T {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Subscribe delivers the current value synchronously before returning,
// unless the subject has already terminated, in which case the inner
// subject's own late-subscriber behavior takes over.
func (b *BehaviorSubject[T]) Subscribe(onNext func(T), onError func(error), onCompleted func()) *Subscription {
	b.mu.Lock()
	cur := b.current
	b.mu.Unlock()
	terminated := b.inner.Terminated()

	if !terminated && onNext != nil {
		onNext(cur)
	}
	return b.inner.Subscribe(onNext, onError, onCompleted)
}

func (b *BehaviorSubject[T]) Next(v T) {
	b.mu.Lock()
	b.current = v
	b.mu.Unlock()
	b.inner.Next(v)
}

func (b *BehaviorSubject[T]) Error(err error) {
	b.inner.Error(err)
}

func (b *BehaviorSubject[T]) Completed() {
	b.inner.Completed()
}

func (b *BehaviorSubject[T]) Dispose() {
	b.inner.Dispose()
}
