package model

import (
	"fmt"

	"github.com/delaneyj/reactor/misc"
	"github.com/delaneyj/reactor/reactorerr"
)

// Prop is a plain observable property: the synthesized-setter contract of
// §4.1 with no original-value shadow. Embed it as a zero-value struct
// field; CreateObservable/CreateTrackable bind it to its owner and
// descriptor at construction time.
type Prop[T any] struct {
	owner *Base
	name  string
	refer bool
	value T
}

func (p *Prop[T]) bindSlot(owner *Base, d *Descriptor) {
	p.owner = owner
	p.name = d.Name
	p.refer = d.ReferenceOnly
}

// Get returns the current value.
func (p *Prop[T]) Get() T { return p.value }

// PathValue type-erases Get for pathobserve, which resolves a chain step by
// name without knowing T.
func (p *Prop[T]) PathValue() any { return p.value }

// Set stores incoming if it differs from the stored value under the
// property's comparison discipline, then raises a property change (with
// dependency fan-out) for its name.
func (p *Prop[T]) Set(incoming T) {
	if p.equal(p.value, incoming) {
		return
	}
	p.value = incoming
	if p.owner != nil {
		p.owner.notifier.Raise(p.name)
	}
}

func (p *Prop[T]) equal(a, b T) bool {
	if p.refer {
		return misc.IdentityEqual(a, b)
	}
	return misc.Equal(a, b)
}

// InitialValue seeds the slot without raising a change, for use inside a
// constructor before the instance is observable by anyone.
func (p *Prop[T]) InitialValue(v T) { p.value = v }

var _ boundSlot = (*Prop[int])(nil)

func newSetterError(name string) error {
	return fmt.Errorf("set %s: %w", name, reactorerr.ErrNoSetter)
}
