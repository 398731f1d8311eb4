// Package reactorerr collects the sentinel error kinds raised across the
// notify, model, collection and pathobserve packages, so callers can use a
// single errors.Is check regardless of which package produced the error.
package reactorerr

import "errors"

var (
	// ErrNotTracked is returned when an operation that requires the
	// original-value shadow is called on an instance produced without the
	// tracking factory.
	ErrNotTracked = errors.New("reactor: instance is not tracked")

	// ErrInvalidOperation covers begin_init while changed, end_init without
	// begin_init, accept/reject while initializing, and closing a deferral
	// scope that is not open. Deferring twice fails with ErrAlreadyDeferred.
	ErrInvalidOperation = errors.New("reactor: invalid operation")

	// ErrNonVirtualProperty names the failure of a property that cannot be
	// overridden. No code path in this module returns it.
	ErrNonVirtualProperty = errors.New("reactor: property cannot be overridden")

	// ErrNoSetter is raised when a mutation targets a read-only property.
	ErrNoSetter = errors.New("reactor: property has no setter")

	// ErrDuplicateKey is returned by a keyed collection reset that contains
	// repeated keys.
	ErrDuplicateKey = errors.New("reactor: duplicate key")

	// ErrKeyNotFound is returned by SetOriginalValue and ResetValue for an
	// unknown property name, and by UpdateSortPosition for an item that is
	// not in the list.
	ErrKeyNotFound = errors.New("reactor: key not found")

	// ErrMissingProperty is delivered to the path observer's error
	// subscribers when an intermediate value does not expose the requested
	// property.
	ErrMissingProperty = errors.New("reactor: missing property")

	// ErrOutOfRange is returned by list-index arguments to insert, move,
	// remove_at and similar operations.
	ErrOutOfRange = errors.New("reactor: index out of range")

	// ErrNotSupported is returned by items_changes when the item type is
	// not observable.
	ErrNotSupported = errors.New("reactor: not supported")

	// ErrEmptySequence is returned by FirstAsync on a stream that completes
	// without ever emitting a value.
	ErrEmptySequence = errors.New("reactor: sequence completed empty")

	// ErrAlreadyDeferred is returned by DeferPropertyChanges when a
	// deferral scope is already open on the same notifier.
	ErrAlreadyDeferred = errors.New("reactor: already deferred")
)
