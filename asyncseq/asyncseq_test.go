package asyncseq_test

import (
	"context"
	"testing"
	"time"

	"github.com/delaneyj/reactor/asyncseq"
	"github.com/delaneyj/reactor/reactorerr"
	"github.com/delaneyj/reactor/stream"
	"github.com/stretchr/testify/assert"
)

func TestToAsyncSequenceBuffersAndDrains(t *testing.T) {
	subj := stream.NewSubject[int]()
	seq := asyncseq.ToAsyncSequence[int](subj)

	subj.Next(1)
	subj.Next(2)

	ctx := context.Background()
	v, ok, err := seq.Next(ctx)
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, 1, v)

	v, ok, err = seq.Next(ctx)
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestToAsyncSequenceCompletesWhenSourceCompletes(t *testing.T) {
	subj := stream.NewSubject[int]()
	seq := asyncseq.ToAsyncSequence[int](subj)
	subj.Completed()

	_, ok, err := seq.Next(context.Background())
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestToAsyncSequenceNextUnblocksOnContextCancel(t *testing.T) {
	subj := stream.NewSubject[int]()
	seq := asyncseq.ToAsyncSequence[int](subj)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := seq.Next(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFirstAsyncReturnsFirstValue(t *testing.T) {
	subj := stream.NewSubject[string]()
	go func() {
		subj.Next("hello")
	}()

	v, err := asyncseq.FirstAsync[string](context.Background(), subj)
	assert.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestFirstAsyncFailsEmptySequenceOnCompletedNoValue(t *testing.T) {
	subj := stream.NewSubject[string]()
	subj.Completed()

	_, err := asyncseq.FirstAsync[string](context.Background(), subj)
	assert.ErrorIs(t, err, reactorerr.ErrEmptySequence)
}

func TestFirstAsyncCancelsBeforeAnyValueArrives(t *testing.T) {
	subj := stream.NewSubject[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := asyncseq.FirstAsync[int](ctx, subj)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIntervalFiresMonotonicallyIncreasingTicks(t *testing.T) {
	ticks, stop := asyncseq.Interval(5 * time.Millisecond)
	defer stop()

	got := make(chan int64, 16)
	sub := ticks.Subscribe(func(i int64) { got <- i }, nil, nil)
	defer sub.Unsubscribe()

	first := <-got
	second := <-got
	assert.Equal(t, first+1, second)
}

func TestIntervalStopCompletesTheStream(t *testing.T) {
	ticks, stop := asyncseq.Interval(5 * time.Millisecond)

	done := make(chan struct{})
	ticks.Subscribe(nil, nil, func() { close(done) })

	stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("interval did not complete after stop")
	}
}
