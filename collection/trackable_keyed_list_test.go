package collection_test

import (
	"testing"

	"github.com/delaneyj/reactor/collection"
	"github.com/stretchr/testify/assert"
)

func keyOfWidget(w widget) string { return w.id }

func TestTrackableKeyedListAcceptRejectRoundTrip(t *testing.T) {
	tkl := collection.NewTrackableKeyedList[string, widget](keyOfWidget, nil)
	tkl.Keyed().List().Add(widget{"a", "Alpha"})
	assert.True(t, tkl.IsChanged())

	err := tkl.AcceptChanges()
	assert.NoError(t, err)
	assert.False(t, tkl.IsChanged())

	tkl.Keyed().AddOrUpdate(widget{"a", "Alpha2"})
	assert.True(t, tkl.IsChanged())

	err = tkl.RejectChanges()
	assert.NoError(t, err)
	assert.False(t, tkl.IsChanged())
	got, ok := tkl.Keyed().TryGet("a")
	assert.True(t, ok)
	assert.Equal(t, "Alpha", got.name)
}

func TestTrackableKeyedListGetChangedItemsTagsByKey(t *testing.T) {
	tkl := collection.NewTrackableKeyedList[string, widget](keyOfWidget, nil)
	tkl.Keyed().List().Add(widget{"a", "Alpha"})
	tkl.Keyed().List().Add(widget{"b", "Beta"})
	err := tkl.AcceptChanges()
	assert.NoError(t, err)

	tkl.Keyed().AddOrUpdate(widget{"a", "Alpha2"})
	tkl.Keyed().RemoveKey("b")
	tkl.Keyed().List().Add(widget{"c", "Gamma"})

	changes := tkl.GetChangedItems()
	var sawReplace, sawRemove, sawAdd bool
	for _, c := range changes {
		switch c.Kind {
		case collection.Replace:
			if c.Key == "a" {
				sawReplace = true
			}
		case collection.Remove:
			if c.Key == "b" {
				sawRemove = true
			}
		case collection.Add:
			if c.Key == "c" {
				sawAdd = true
			}
		}
	}
	assert.True(t, sawReplace)
	assert.True(t, sawRemove)
	assert.True(t, sawAdd)
}

func TestTrackableKeyedListAddOrUpdateOriginalTogglesIsChanged(t *testing.T) {
	tkl := collection.NewTrackableKeyedList[string, widget](keyOfWidget, nil)
	tkl.Keyed().List().Add(widget{"a", "Alpha"})
	err := tkl.AcceptChanges()
	assert.NoError(t, err)
	assert.False(t, tkl.IsChanged())

	tkl.AddOrUpdateOriginal("a", widget{"a", "WasAlpha"})
	assert.True(t, tkl.IsChanged())
	assert.True(t, tkl.IsValueChanged("a"))
}
