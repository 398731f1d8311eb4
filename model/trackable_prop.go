package model

import (
	"fmt"

	"github.com/delaneyj/reactor/misc"
	"github.com/delaneyj/reactor/notify"
	"github.com/delaneyj/reactor/reactorerr"
	"github.com/delaneyj/reactor/trackable"
)

// trackedSlot is the type-erased view of a TrackProp[T] that Base's
// object-level accept/reject/get-changes machinery iterates over.
type trackedSlot interface {
	name() string
	currentValue() any
	originalValue() any
	acceptChanges() error
	rejectChanges() error
	setOriginalValue(v any) error
	resetValue(v any) error
	originalEqualsSlot(other trackedSlot) bool
}

// TrackProp is a trackable property: the setter contract of §4.5, with an
// original-value shadow, changed-set membership, and nested-child
// attach/detach for values that are themselves Trackable.
type TrackProp[T any] struct {
	owner       *Base
	propName    string
	refer       bool
	readOnly    bool
	current     T
	original    T
	detachChild func()
}

func (p *TrackProp[T]) bindSlot(owner *Base, d *Descriptor) {
	p.owner = owner
	p.propName = d.Name
	p.refer = d.ReferenceOnly
	p.readOnly = d.ReadOnly
	owner.registerSlot(d.Name, p)
}

func trackableOf[T any](v T) (trackable.Trackable, bool) {
	return trackable.Is(any(v))
}

func (p *TrackProp[T]) equal(a, b T) bool {
	if p.refer {
		return misc.IdentityEqual(a, b)
	}
	return misc.Equal(a, b)
}

// Get returns the current value.
func (p *TrackProp[T]) Get() T { return p.current }

// PathValue type-erases Get for pathobserve, which resolves a chain step by
// name without knowing T.
func (p *TrackProp[T]) PathValue() any { return p.current }

// Original returns the value captured at the last init/accept.
func (p *TrackProp[T]) Original() T { return p.original }

// Set writes incoming, following the trackable setter contract of §4.5.
// Fails with NoSetter if the property was declared `reactor:"readonly"`.
func (p *TrackProp[T]) Set(incoming T) error {
	if p.readOnly {
		return newSetterError(p.propName)
	}
	p.write(incoming)
	return nil
}

// InitialValue seeds both slots from a constructor, without diffing or
// raising a change, and is the only way to populate a read-only trackable
// property (e.g. a list field). It still wires up nested propagation so a
// later mutation of the child bubbles is_changed up to the owner.
func (p *TrackProp[T]) InitialValue(v T) {
	p.current = v
	p.original = v
	p.attachChild(v)
}

func (p *TrackProp[T]) write(incoming T) {
	owner := p.owner
	if !owner.tracked {
		// Instance built by CreateObservable: plain compare-then-raise setter.
		if p.equal(p.current, incoming) {
			return
		}
		p.current = incoming
		owner.notifier.Raise(p.propName)
		return
	}
	p.detachOldChild()

	if owner.IsInitializing() {
		p.original = incoming
	}

	different := !p.equal(p.original, incoming)
	if child, ok := trackableOf(incoming); ok && child.IsChanged() {
		different = true
	}

	p.current = incoming
	owner.notifier.Raise(p.propName)
	owner.setChanged(p.propName, different)

	p.attachChild(incoming)
}

func (p *TrackProp[T]) detachOldChild() {
	if p.detachChild != nil {
		p.detachChild()
		p.detachChild = nil
	}
}

func (p *TrackProp[T]) attachChild(v T) {
	child, ok := trackableOf(v)
	if !ok {
		return
	}
	owner := p.owner
	p.detachChild = child.Notifier().OnPropertyChanged(func(a notify.Args) {
		if a.Name == "IsChanged" {
			owner.setChanged(p.propName, child.IsChanged())
		}
	})
}

func (p *TrackProp[T]) name() string       { return p.propName }
func (p *TrackProp[T]) currentValue() any  { return p.current }
func (p *TrackProp[T]) originalValue() any { return p.original }

func (p *TrackProp[T]) acceptChanges() error {
	owner := p.owner
	if !owner.isPropChanged(p.propName) {
		return nil
	}
	p.original = p.current
	if child, ok := trackableOf(p.current); ok {
		if err := child.AcceptChanges(); err != nil {
			return err
		}
	}
	owner.setChanged(p.propName, false)
	return nil
}

func (p *TrackProp[T]) rejectChanges() error {
	owner := p.owner
	if !owner.isPropChanged(p.propName) {
		return nil
	}
	if child, ok := trackableOf(p.original); ok {
		if err := child.RejectChanges(); err != nil {
			return err
		}
	}
	if !p.readOnly {
		p.detachOldChild()
		p.current = p.original
		owner.notifier.Raise(p.propName)
		p.attachChild(p.current)
	}
	owner.setChanged(p.propName, false)
	return nil
}

func (p *TrackProp[T]) setOriginalValue(raw any) error {
	v, ok := raw.(T)
	if !ok {
		return fmt.Errorf("set_original_value(%s): %w", p.propName, reactorerr.ErrInvalidOperation)
	}
	owner := p.owner
	p.original = v
	if !owner.isPropChanged(p.propName) {
		p.current = v
		return nil
	}
	owner.setChanged(p.propName, !p.equal(p.original, p.current))
	return nil
}

func (p *TrackProp[T]) resetValue(raw any) error {
	v, ok := raw.(T)
	if !ok {
		return fmt.Errorf("reset_value(%s): %w", p.propName, reactorerr.ErrInvalidOperation)
	}
	p.detachOldChild()
	p.original = v
	p.current = v
	p.owner.notifier.Raise(p.propName)
	p.owner.setChanged(p.propName, false)
	p.attachChild(v)
	return nil
}

func (p *TrackProp[T]) originalEqualsSlot(other trackedSlot) bool {
	o, ok := other.(*TrackProp[T])
	if !ok {
		return false
	}
	childA, aIsTrackable := trackableOf(p.current)
	childB, bIsTrackable := trackableOf(o.current)
	if aIsTrackable != bIsTrackable {
		return false
	}
	if aIsTrackable {
		return childA.OriginalEquals(childB)
	}
	return p.equal(p.current, o.current)
}

var _ boundSlot = (*TrackProp[int])(nil)
var _ trackedSlot = (*TrackProp[int])(nil)
