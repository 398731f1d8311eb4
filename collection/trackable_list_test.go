package collection_test

import (
	"testing"

	"github.com/delaneyj/reactor/collection"
	"github.com/delaneyj/reactor/model"
	"github.com/stretchr/testify/assert"
)

type item struct {
	model.Base
	Name model.TrackProp[string]
}

func newItem(name string) *item {
	return model.CreateTrackable[item](func(it *item) {
		it.BeginInit()
		it.Name.Set(name)
		it.EndInit()
	})
}

func TestTrackableListCapturesOriginalOnFirstMutation(t *testing.T) {
	tl := collection.NewTrackableList[int](nil)
	assert.False(t, tl.IsChanged())

	tl.List().Add(1)
	assert.True(t, tl.IsChanged())

	tl.List().Add(2)
	assert.True(t, tl.IsChanged())
}

func TestTrackableListResetWithInitializeEstablishesNewBaseline(t *testing.T) {
	tl := collection.NewTrackableList[int](nil)
	err := tl.Reset([]int{1, 2, 3}, true)
	assert.NoError(t, err)
	assert.False(t, tl.IsChanged())

	tl.List().Add(4)
	assert.True(t, tl.IsChanged())

	err = tl.RejectChanges()
	assert.NoError(t, err)
	assert.False(t, tl.IsChanged())
	assert.Equal(t, []int{1, 2, 3}, tl.List().Items())
}

func TestTrackableListAcceptChangesRecapturesBaseline(t *testing.T) {
	tl := collection.NewTrackableList[int](nil)
	tl.List().Add(1)
	assert.True(t, tl.IsChanged())

	err := tl.AcceptChanges()
	assert.NoError(t, err)
	assert.False(t, tl.IsChanged())

	err = tl.RejectChanges()
	assert.NoError(t, err)
	assert.Equal(t, []int{1}, tl.List().Items())
}

func TestTrackableListPropagatesNestedItemIsChanged(t *testing.T) {
	tl := collection.NewTrackableList[*item](nil)
	a := newItem("A")
	err := tl.Reset([]*item{a}, true)
	assert.NoError(t, err)
	assert.False(t, tl.IsChanged())

	assert.NoError(t, a.Name.Set("A2"))
	assert.True(t, tl.IsChanged())

	err = tl.RejectChanges()
	assert.NoError(t, err)
	assert.False(t, tl.IsChanged())
	assert.Equal(t, "A", a.Name.Get())
}

func TestTrackableListGetChangedItemsTagsAddAndRemove(t *testing.T) {
	tl := collection.NewTrackableList[int](nil)
	err := tl.Reset([]int{1, 2, 3}, true)
	assert.NoError(t, err)

	tl.List().RemoveAt(0) // drop 1
	tl.List().Add(4)      // add 4

	changes := tl.GetChangedItems()
	var sawAdd, sawRemove bool
	for _, c := range changes {
		switch c.Kind {
		case collection.Add:
			if c.Current == 4 {
				sawAdd = true
			}
		case collection.Remove:
			if c.Original == 1 {
				sawRemove = true
			}
		}
	}
	assert.True(t, sawAdd)
	assert.True(t, sawRemove)
}

// Move shifts every element between the two indices, not just the moved
// one, so get_changed_items() tags all three displaced slots as Replace
// (DESIGN.md's Open Question resolution for spec.md DESIGN NOTES §9 Q1),
// rather than the two entries the spec's illustrative note describes.
func TestTrackableListGetChangedItemsTagsAllDisplacedSlotsOnMove(t *testing.T) {
	tl := collection.NewTrackableList[string](nil)
	err := tl.Reset([]string{"A", "B", "C"}, true)
	assert.NoError(t, err)

	err = tl.List().Move(0, 2) // A B C -> B C A
	assert.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "A"}, tl.List().Items())
	assert.True(t, tl.IsChanged())

	changes := tl.GetChangedItems()
	assert.Len(t, changes, 3)
	for _, c := range changes {
		assert.Equal(t, collection.Replace, c.Kind)
		assert.Equal(t, c.Original, c.Current)
	}
}
