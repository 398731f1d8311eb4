package pathobserve_test

import (
	"testing"

	"github.com/delaneyj/reactor/model"
	"github.com/delaneyj/reactor/pathobserve"
	"github.com/stretchr/testify/assert"
)

type node struct {
	model.Base
	Name   model.TrackProp[string]
	Mother model.TrackProp[*node] `reactor:"refonly"`
}

func newNode(name string) *node {
	return model.CreateTrackable[node](func(n *node) {
		n.BeginInit()
		n.Name.Set(name)
		n.EndInit()
	})
}

func TestChainObserverEmitsOnLeafChange(t *testing.T) {
	grandma := newNode("Eve")
	mom := newNode("Ada")
	assert.NoError(t, mom.Mother.Set(grandma))

	obs := pathobserve.New(mom, "Mother.Name")

	var got []any
	unsub := obs.Subscribe(func(v any) { got = append(got, v) }, nil)
	defer unsub()

	assert.Equal(t, []any{"Eve"}, got)

	assert.NoError(t, grandma.Name.Set("Evelyn"))
	assert.Equal(t, []any{"Eve", "Evelyn"}, got)
}

func TestChainObserverRewiresOnIntermediateChange(t *testing.T) {
	grandma1 := newNode("Eve")
	grandma2 := newNode("Lilith")
	mom := newNode("Ada")
	assert.NoError(t, mom.Mother.Set(grandma1))

	obs := pathobserve.New(mom, "Mother.Name")
	var got []any
	unsub := obs.Subscribe(func(v any) { got = append(got, v) }, nil)
	defer unsub()

	assert.Equal(t, []any{"Eve"}, got)

	assert.NoError(t, mom.Mother.Set(grandma2))
	assert.Equal(t, []any{"Eve", "Lilith"}, got)

	// grandma1 is detached now; mutating it must not emit.
	assert.NoError(t, grandma1.Name.Set("Eve2"))
	assert.Equal(t, []any{"Eve", "Lilith"}, got)

	assert.NoError(t, grandma2.Name.Set("Lila"))
	assert.Equal(t, []any{"Eve", "Lilith", "Lila"}, got)
}

func TestChainObserverDedupesEqualEmissions(t *testing.T) {
	mom := newNode("Ada")
	obs := pathobserve.New(mom, "Name")

	var got []any
	unsub := obs.Subscribe(func(v any) { got = append(got, v) }, nil)
	defer unsub()
	assert.Equal(t, []any{"Ada"}, got)

	assert.NoError(t, mom.Name.Set("Ada")) // TrackProp still raises Name; the observer drops the equal value
	assert.Equal(t, []any{"Ada"}, got)
}

func TestChainObserverDeactivatesOnLastUnsubscribe(t *testing.T) {
	grandma := newNode("Eve")
	mom := newNode("Ada")
	assert.NoError(t, mom.Mother.Set(grandma))

	obs := pathobserve.New(mom, "Mother.Name")
	var got []any
	unsub := obs.Subscribe(func(v any) { got = append(got, v) }, nil)
	unsub()

	assert.NoError(t, grandma.Name.Set("Evelyn"))
	assert.Equal(t, []any{"Eve"}, got) // no longer subscribed, no further emissions
}
