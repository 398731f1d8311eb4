// Package model implements the observable-object and trackable-object
// contracts of the core (spec §3, §4.1, §4.5): a property descriptor
// registry keyed by concrete type, a Base every domain struct embeds, and
// two property wrapper types (Prop and TrackProp) that stand in for the
// setter-synthesis mechanism spec.md leaves to the implementer. This
// module picks the "proxy objects that delegate to a generic value bag"
// alternative from DESIGN NOTES §9: each field is its own typed slot,
// resolved once by reflection at construction time, not on every access.
package model

import (
	"fmt"
	"reflect"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/delaneyj/reactor/notify"
	"github.com/delaneyj/reactor/reactorerr"
)

// Change is one entry of GetChanges(): a property name plus its original
// and current value.
type Change struct {
	Name     string
	Original any
	Current  any
}

// Base is embedded by every observable or trackable domain struct. Do not
// copy a value containing Base; construct instances with CreateObservable
// or CreateTrackable.
type Base struct {
	mu        sync.Mutex
	notifier  *notify.Notifier
	selfType  reflect.Type
	info      *typeInfo
	tracked   bool
	changed   mapset.Set[string]
	initDepth int
	slots     []trackedSlot
	byName    map[string]trackedSlot
}

func (b *Base) init(self any, tracked bool) {
	b.selfType = reflect.TypeOf(self)
	b.info = registerType(b.selfType)
	b.tracked = tracked
	b.changed = mapset.NewThreadUnsafeSet[string]()
	b.notifier = notify.New(self)
	b.notifier.SetDependencyResolver(b.info.Dependents)
}

// Notifier exposes the per-object notification hub, satisfying
// trackable.Trackable and giving callers direct access to PropertyChanged
// subscriptions and the hot change stream.
func (b *Base) Notifier() *notify.Notifier { return b.notifier }

// IsTracked reports whether this instance was produced by CreateTrackable.
func (b *Base) IsTracked() bool { return b.tracked }

func (b *Base) registerSlot(name string, s trackedSlot) {
	if b.byName == nil {
		b.byName = map[string]trackedSlot{}
	}
	b.slots = append(b.slots, s)
	b.byName[name] = s
}

// RaisePropertyChanged is the manual raise the spec's contract exposes
// alongside the synthesized setters.
func (b *Base) RaisePropertyChanged(name string) {
	b.notifier.Raise(name)
}

// DeferPropertyChanges opens a batching scope; Close flushes it.
func (b *Base) DeferPropertyChanges() (*notify.DeferHandle, error) {
	return b.notifier.Defer()
}

// IsChanged reports whether any trackable property currently differs from
// its original value.
func (b *Base) IsChanged() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.changed.Cardinality() > 0
}

func (b *Base) requireTracked(op string) error {
	if !b.tracked {
		return fmt.Errorf("%s: %w", op, reactorerr.ErrNotTracked)
	}
	return nil
}

// IsInitializing reports whether a BeginInit/EndInit scope is currently
// open (reentrant).
func (b *Base) IsInitializing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.initDepth > 0
}

// BeginInit opens a reentrant initialization scope. Writes made while
// initializing land in both the original and current slot and never join
// the changed-set. Refuses to open while the object is already changed.
func (b *Base) BeginInit() error {
	if err := b.requireTracked("begin_init"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initDepth == 0 && b.changed.Cardinality() > 0 {
		return fmt.Errorf("begin_init: %w", reactorerr.ErrInvalidOperation)
	}
	b.initDepth++
	return nil
}

// EndInit closes one level of the initialization scope.
func (b *Base) EndInit() error {
	if err := b.requireTracked("end_init"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initDepth == 0 {
		return fmt.Errorf("end_init: %w", reactorerr.ErrInvalidOperation)
	}
	b.initDepth--
	return nil
}

// setChanged updates the changed-set membership for name and, if the
// set's emptiness toggled, raises IsChanged.
func (b *Base) setChanged(name string, isChanged bool) {
	b.mu.Lock()
	beforeEmpty := b.changed.Cardinality() == 0
	if isChanged {
		b.changed.Add(name)
	} else {
		b.changed.Remove(name)
	}
	afterEmpty := b.changed.Cardinality() == 0
	b.mu.Unlock()

	if beforeEmpty != afterEmpty {
		b.notifier.Raise("IsChanged")
	}
}

func (b *Base) isPropChanged(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.changed.Contains(name)
}

// AcceptChanges iterates every trackable property in declaration order,
// promoting current to original. Fails with InvalidOperation while
// initializing, and with NotTracked on a plain observable instance.
func (b *Base) AcceptChanges() error {
	if err := b.requireTracked("accept_changes"); err != nil {
		return err
	}
	if b.IsInitializing() {
		return fmt.Errorf("accept_changes: %w", reactorerr.ErrInvalidOperation)
	}
	for _, s := range b.slots {
		if err := s.acceptChanges(); err != nil {
			return err
		}
	}
	return nil
}

// RejectChanges iterates every trackable property in declaration order,
// restoring current from original.
func (b *Base) RejectChanges() error {
	if err := b.requireTracked("reject_changes"); err != nil {
		return err
	}
	if b.IsInitializing() {
		return fmt.Errorf("reject_changes: %w", reactorerr.ErrInvalidOperation)
	}
	for _, s := range b.slots {
		if err := s.rejectChanges(); err != nil {
			return err
		}
	}
	return nil
}

// GetChanges returns (name, original, current) for every property
// currently in the changed-set, in declaration order.
func (b *Base) GetChanges() ([]Change, error) {
	if err := b.requireTracked("get_changes"); err != nil {
		return nil, err
	}
	b.mu.Lock()
	changedNow := b.changed.Clone()
	b.mu.Unlock()

	out := make([]Change, 0, changedNow.Cardinality())
	for _, s := range b.slots {
		if changedNow.Contains(s.name()) {
			out = append(out, Change{Name: s.name(), Original: s.originalValue(), Current: s.currentValue()})
		}
	}
	return out, nil
}

// SetOriginalValue rewrites the original slot for name. If the property is
// not currently changed the current slot is rewritten too; if it is
// changed, membership in the changed-set is re-evaluated against the new
// original.
func (b *Base) SetOriginalValue(name string, v any) error {
	if err := b.requireTracked("set_original_value"); err != nil {
		return err
	}
	s, ok := b.byName[name]
	if !ok {
		return fmt.Errorf("set_original_value(%s): %w", name, reactorerr.ErrKeyNotFound)
	}
	return s.setOriginalValue(v)
}

// ResetValue writes both slots to v and raises a change for name.
func (b *Base) ResetValue(name string, v any) error {
	if err := b.requireTracked("reset_value"); err != nil {
		return err
	}
	s, ok := b.byName[name]
	if !ok {
		return fmt.Errorf("reset_value(%s): %w", name, reactorerr.ErrKeyNotFound)
	}
	return s.resetValue(v)
}

// trackableState is the unexported cross-package hook OriginalEquals uses
// to compare two instances' tracked slots without needing them to share a
// concrete type outside package model.
type trackableState interface {
	concreteType() reflect.Type
	trackedSlotsInOrder() []trackedSlot
}

func (b *Base) concreteType() reflect.Type         { return b.selfType }
func (b *Base) trackedSlotsInOrder() []trackedSlot { return b.slots }

// OriginalEquals reports whether other is the same concrete type and every
// trackable property's current value matches structurally (recursing
// through nested trackable values via their own OriginalEquals).
func (b *Base) OriginalEquals(other any) bool {
	os, ok := other.(trackableState)
	if !ok {
		return false
	}
	if os.concreteType() != b.concreteType() {
		return false
	}
	otherSlots := os.trackedSlotsInOrder()
	if len(otherSlots) != len(b.slots) {
		return false
	}
	for i, s := range b.slots {
		if !s.originalEqualsSlot(otherSlots[i]) {
			return false
		}
	}
	return true
}
