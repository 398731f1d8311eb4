// Package asyncseq implements the three intrinsically asynchronous
// facilities §5 carves out of an otherwise synchronous library:
// to_async_sequence, first_async, and interval. Each is built on the
// standard library's context and time packages — the teacher's
// cmd/codegen/main.go is the only place in the retrieved pack that threads
// a context.Context at all, and no reactive-extensions or async-iterator
// dependency appears anywhere in the corpus, so this stays on stdlib (see
// DESIGN.md).
package asyncseq

import (
	"context"
	"sync"
	"time"

	"github.com/delaneyj/reactor/reactorerr"
	"github.com/delaneyj/reactor/stream"
)

// AsyncSequence is the single-reader/single-writer FIFO §5 describes:
// on_next values are buffered unbounded; Next suspends on empty and
// resumes when a value is written or the source completes.
type AsyncSequence[T any] struct {
	mu        sync.Mutex
	buf       []T
	signal    chan struct{}
	err       error
	completed bool
	unsub     func()
}

// ToAsyncSequence adapts a hot Subject into a pull-based AsyncSequence.
func ToAsyncSequence[T any](source *stream.Subject[T]) *AsyncSequence[T] {
	seq := &AsyncSequence[T]{signal: make(chan struct{}, 1)}
	sub := source.Subscribe(
		func(v T) { seq.push(v) },
		func(err error) { seq.finish(err) },
		func() { seq.finish(nil) },
	)
	seq.unsub = sub.Unsubscribe
	return seq
}

func (s *AsyncSequence[T]) push(v T) {
	s.mu.Lock()
	if s.completed {
		s.mu.Unlock()
		return
	}
	s.buf = append(s.buf, v)
	s.mu.Unlock()
	s.wake()
}

func (s *AsyncSequence[T]) finish(err error) {
	s.mu.Lock()
	if s.completed {
		s.mu.Unlock()
		return
	}
	s.completed = true
	s.err = err
	s.mu.Unlock()
	s.wake()
}

func (s *AsyncSequence[T]) wake() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// Next blocks until a value is available, the source completes, or ctx is
// done. ok is false once the source has completed with no error and the
// buffer is drained.
func (s *AsyncSequence[T]) Next(ctx context.Context) (value T, ok bool, err error) {
	for {
		s.mu.Lock()
		if len(s.buf) > 0 {
			v := s.buf[0]
			s.buf = s.buf[1:]
			s.mu.Unlock()
			return v, true, nil
		}
		if s.completed {
			terminalErr := s.err
			s.mu.Unlock()
			var zero T
			return zero, false, terminalErr
		}
		s.mu.Unlock()

		select {
		case <-s.signal:
		case <-ctx.Done():
			var zero T
			return zero, false, ctx.Err()
		}
	}
}

// Close detaches from the source early.
func (s *AsyncSequence[T]) Close() {
	if s.unsub != nil {
		s.unsub()
	}
}

// FirstAsync completes with the first value source emits, fails with
// ErrEmptySequence if source completes without one, and is cancelable via
// ctx — cancellation disposes the subscription (§5's "registration
// disposes the subscription and transitions the task to canceled").
func FirstAsync[T any](ctx context.Context, source *stream.Subject[T]) (T, error) {
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)

	sub := source.Subscribe(
		func(v T) {
			select {
			case done <- result{v: v}:
			default:
			}
		},
		func(err error) {
			select {
			case done <- result{err: err}:
			default:
			}
		},
		func() {
			select {
			case done <- result{err: reactorerr.ErrEmptySequence}:
			default:
			}
		},
	)
	defer sub.Unsubscribe()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Interval fires on_next(i) with monotonically increasing i every period,
// until the returned stop func is called (disposing the subscription, per
// §5's "interval is canceled by disposing the subscription").
func Interval(period time.Duration) (ticks *stream.Subject[int64], stop func()) {
	subj := stream.NewSubject[int64]()
	ticker := time.NewTicker(period)
	stopCh := make(chan struct{})

	go func() {
		var i int64
		for {
			select {
			case <-ticker.C:
				subj.Next(i)
				i++
			case <-stopCh:
				ticker.Stop()
				subj.Completed()
				return
			}
		}
	}()

	var once sync.Once
	stop = func() {
		once.Do(func() { close(stopCh) })
	}
	return subj, stop
}
