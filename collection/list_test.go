package collection_test

import (
	"testing"

	"github.com/delaneyj/reactor/collection"
	"github.com/delaneyj/reactor/notify"
	"github.com/stretchr/testify/assert"
)

func TestObservableListAddEmitsAndRaisesCount(t *testing.T) {
	l := collection.NewObservableList[int](nil)
	var gotCount bool
	l.Notifier().OnPropertyChanged(func(a notify.Args) {
		if a.Name == "Count" {
			gotCount = true
		}
	})
	var evt collection.ChangeArgs[int]
	l.Changes().Subscribe(func(a collection.ChangeArgs[int]) { evt = a }, nil, nil)

	l.Add(7)

	assert.True(t, gotCount)
	assert.Equal(t, collection.Add, evt.Action)
	assert.Equal(t, 0, evt.NewIndex)
	assert.Equal(t, []int{7}, evt.NewItems)
	assert.Equal(t, 1, l.Count())
}

func TestObservableListRemoveAndMove(t *testing.T) {
	l := collection.NewObservableList[string](nil)
	l.Add("a")
	l.Add("b")
	l.Add("c")

	removed := l.Remove("b")
	assert.True(t, removed)
	assert.Equal(t, []string{"a", "c"}, l.Items())

	err := l.Move(0, 1)
	assert.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, l.Items())
}

func TestObservableListPersistedSortKeepsOrderOnAdd(t *testing.T) {
	l := collection.NewObservableList[int](nil)
	l.SortPersisted(func(a, b int) bool { return a < b }, true)

	l.Add(5)
	l.Add(1)
	l.Add(3)

	assert.Equal(t, []int{1, 3, 5}, l.Items())
}

func TestObservableListSortStableTieBreaksOnOriginalIndex(t *testing.T) {
	type pair struct {
		key int
		tag string
	}
	l := collection.NewObservableList[pair](func(a, b pair) bool { return a == b })
	l.Add(pair{1, "first"})
	l.Add(pair{1, "second"})
	l.Add(pair{0, "third"})

	l.Sort(func(a, b pair) bool { return a.key < b.key })

	got := l.Items()
	assert.Equal(t, "third", got[0].tag)
	assert.Equal(t, "first", got[1].tag)
	assert.Equal(t, "second", got[2].tag)
}

func TestObservableListRemoveAllEmitsOnePerElement(t *testing.T) {
	l := collection.NewObservableList[int](nil)
	l.AddRange([]int{1, 2, 3, 4, 5})

	var removes int
	l.Changes().Subscribe(func(a collection.ChangeArgs[int]) {
		if a.Action == collection.Remove {
			removes++
		}
	}, nil, nil)

	n := l.RemoveAll(func(x int) bool { return x%2 == 0 })

	assert.Equal(t, 2, n)
	assert.Equal(t, 2, removes)
	assert.Equal(t, []int{1, 3, 5}, l.Items())
}

func TestObservableListBindReplaysSnapshotThenMirrors(t *testing.T) {
	l := collection.NewObservableList[int](nil)
	l.Add(1)
	l.Add(2)

	tgt := &fakeBindTarget[int]{}
	l.Bind(tgt)
	assert.Equal(t, []int{1, 2}, tgt.items)

	l.Add(3)
	assert.Equal(t, []int{1, 2, 3}, tgt.items)

	l.Remove(1)
	assert.Equal(t, []int{2, 3}, tgt.items)
}

func TestObservableListUpdateSortPositionMovesOnKeyChange(t *testing.T) {
	type box struct{ v int }
	l := collection.NewObservableList[*box](func(a, b *box) bool { return a == b })
	a, b, c := &box{1}, &box{2}, &box{3}
	l.SortPersisted(func(x, y *box) bool { return x.v < y.v }, true)
	l.Add(a)
	l.Add(b)
	l.Add(c)

	b.v = 10
	err := l.UpdateSortPosition(b)
	assert.NoError(t, err)

	got := l.Items()
	assert.Equal(t, []*box{a, c, b}, got)
}

type fakeBindTarget[T any] struct {
	items []T
}

func (f *fakeBindTarget[T]) Add(item T) { f.items = append(f.items, item) }
func (f *fakeBindTarget[T]) Remove(item T) {
	for i, it := range f.items {
		if any(it) == any(item) {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return
		}
	}
}
func (f *fakeBindTarget[T]) Clear() { f.items = nil }
