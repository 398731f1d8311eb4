package stream_test

import (
	"errors"
	"testing"

	"github.com/delaneyj/reactor/stream"
	"github.com/stretchr/testify/assert"
)

func TestSubjectLateSubscriberMissesPastValues(t *testing.T) {
	s := stream.NewSubject[int]()

	var early []int
	s.Subscribe(func(v int) { early = append(early, v) }, nil, nil)
	s.Next(1)

	var late []int
	s.Subscribe(func(v int) { late = append(late, v) }, nil, nil)
	s.Next(2)

	assert.Equal(t, []int{1, 2}, early)
	assert.Equal(t, []int{2}, late)
}

func TestSubjectTerminalIsSticky(t *testing.T) {
	s := stream.NewSubject[int]()

	completed := 0
	s.Subscribe(nil, nil, func() { completed++ })
	s.Completed()
	s.Next(99) // ignored, already terminal

	lateCompleted := 0
	s.Subscribe(nil, nil, func() { lateCompleted++ })

	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, lateCompleted)
}

func TestSubjectErrorTerminatesOnce(t *testing.T) {
	s := stream.NewSubject[int]()
	boom := errors.New("boom")

	var got error
	s.Subscribe(nil, func(err error) { got = err }, nil)
	s.Error(boom)
	s.Error(errors.New("second error is ignored"))

	assert.ErrorIs(t, got, boom)
}

func TestBehaviorSubjectReplaysCurrentValue(t *testing.T) {
	b := stream.NewBehaviorSubject(1)

	var first []int
	b.Subscribe(func(v int) { first = append(first, v) }, nil, nil)
	assert.Equal(t, []int{1}, first)

	b.Next(2)
	var second []int
	b.Subscribe(func(v int) { second = append(second, v) }, nil, nil)

	assert.Equal(t, []int{1, 2}, first)
	assert.Equal(t, []int{2}, second)
}
