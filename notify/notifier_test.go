package notify_test

import (
	"testing"

	"github.com/delaneyj/reactor/notify"
	"github.com/delaneyj/reactor/reactorerr"
	"github.com/stretchr/testify/assert"
)

func TestRaiseDeliversDependentsBreadthFirst(t *testing.T) {
	n := notify.New("owner")
	n.SetDependencyResolver(func(name string) []string {
		if name == "Mother" {
			return []string{"MotherId"}
		}
		return nil
	})

	var order []string
	n.OnPropertyChanged(func(a notify.Args) { order = append(order, a.Name) })

	n.Raise("Mother")
	assert.Equal(t, []string{"Mother", "MotherId"}, order)
}

func TestDeferDedupsAndPreservesFirstSeenOrder(t *testing.T) {
	n := notify.New("owner")

	count := 0
	var order []string
	n.OnPropertyChanged(func(a notify.Args) {
		count++
		order = append(order, a.Name)
	})

	h, err := n.Defer()
	assert.NoError(t, err)

	n.Raise("A")
	n.Raise("B")
	n.Raise("A")
	n.Raise("C")
	assert.Equal(t, 0, count)

	assert.NoError(t, h.Close())
	assert.Equal(t, 3, count)
	assert.Equal(t, []string{"A", "B", "C"}, order)
}

func TestDeferTwiceFails(t *testing.T) {
	n := notify.New("owner")
	_, err := n.Defer()
	assert.NoError(t, err)

	_, err = n.Defer()
	assert.ErrorIs(t, err, reactorerr.ErrAlreadyDeferred)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	n := notify.New("owner")
	calls := 0
	unsub := n.OnPropertyChanged(func(a notify.Args) { calls++ })

	n.Raise("A")
	unsub()
	n.Raise("B")

	assert.Equal(t, 1, calls)
}
