// Package notify implements the property-notification graph described by
// the core: a per-object multicast event, a hot change stream, deferred
// batching with dedup, and dependency fan-out. It is deliberately
// independent of any particular property-storage scheme (model.Base builds
// on top of it) so it can also back plain observable collections.
package notify

import (
	"fmt"
	"sync"

	"github.com/delaneyj/reactor/reactorerr"
	"github.com/delaneyj/reactor/stream"
)

// Args mirrors the (sender, property name) pair the spec's property_changed
// event carries.
type Args struct {
	Sender any
	Name   string
}

// Handler is a property_changed subscriber.
type Handler func(Args)

// DependencyResolver returns, for a given property name on a given
// concrete type, the transitively-closed, self-edge-free list of dependent
// property names in breadth-first order. model.Base supplies its type's
// memoized dependency closure.
type DependencyResolver func(name string) []string

// Notifier is embedded (by value, via pointer field) in observable and
// trackable objects. The zero value is not usable; construct with New.
type Notifier struct {
	mu           sync.Mutex
	sender       any
	handlers     []Handler
	changes      *stream.Subject[Args]
	deferDepth   int
	pendingOrder []string
	pendingSeen  map[string]struct{}
	dependents   DependencyResolver
}

// New builds a Notifier that reports sender as the source of every Args it
// raises.
func New(sender any) *Notifier {
	return &Notifier{sender: sender}
}

// SetDependencyResolver wires the per-type dependency closure. model.Base
// calls it once per instance, when the instance is bound to its type's
// registration.
func (n *Notifier) SetDependencyResolver(r DependencyResolver) {
	n.mu.Lock()
	n.dependents = r
	n.mu.Unlock()
}

// OnPropertyChanged subscribes a handler to the multicast event. The
// returned func detaches it.
func (n *Notifier) OnPropertyChanged(h Handler) (unsubscribe func()) {
	n.mu.Lock()
	idx := len(n.handlers)
	n.handlers = append(n.handlers, h)
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if idx < len(n.handlers) {
			n.handlers[idx] = nil
		}
	}
}

// Changes returns the hot (source, property name) stream, allocating it on
// first use.
func (n *Notifier) Changes() *stream.Subject[Args] {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.changes == nil {
		n.changes = stream.NewSubject[Args]()
	}
	return n.changes
}

// DeferHandle is returned by Defer; Close flushes accumulated names.
type DeferHandle struct {
	n     *Notifier
	depth int
}

// Defer opens a deferred-notification scope. While the returned handle is
// open, raises accumulate (deduped by name, first seen order) instead of
// delivering immediately. Calling Defer again before Close fails with
// ErrAlreadyDeferred.
func (n *Notifier) Defer() (*DeferHandle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.deferDepth > 0 {
		return nil, fmt.Errorf("defer_property_changes: %w", reactorerr.ErrAlreadyDeferred)
	}
	n.deferDepth = 1
	n.pendingOrder = nil
	n.pendingSeen = map[string]struct{}{}
	return &DeferHandle{n: n, depth: n.deferDepth}, nil
}

// Close ends the deferral scope and flushes accumulated names in
// first-observed order, each exactly once.
func (h *DeferHandle) Close() error {
	n := h.n
	n.mu.Lock()
	if n.deferDepth == 0 {
		n.mu.Unlock()
		return fmt.Errorf("defer_property_changes close: %w", reactorerr.ErrInvalidOperation)
	}
	n.deferDepth = 0
	order := n.pendingOrder
	n.pendingOrder = nil
	n.pendingSeen = nil
	n.mu.Unlock()

	for _, name := range order {
		n.deliver(name)
	}
	return nil
}

// Raise fires a property change for name, then for every property that
// transitively depends on it (in breadth-first order, per the resolver),
// respecting an active deferral scope.
func (n *Notifier) Raise(name string) {
	n.mu.Lock()
	resolver := n.dependents
	n.mu.Unlock()

	n.deliver(name)
	if resolver == nil {
		return
	}
	for _, dep := range resolver(name) {
		n.deliver(dep)
	}
}

func (n *Notifier) deliver(name string) {
	n.mu.Lock()
	if n.deferDepth > 0 {
		if _, seen := n.pendingSeen[name]; !seen {
			n.pendingSeen[name] = struct{}{}
			n.pendingOrder = append(n.pendingOrder, name)
		}
		n.mu.Unlock()
		return
	}

	handlers := make([]Handler, 0, len(n.handlers))
	for _, h := range n.handlers {
		if h != nil {
			handlers = append(handlers, h)
		}
	}
	changes := n.changes
	sender := n.sender
	n.mu.Unlock()

	args := Args{Sender: sender, Name: name}
	for _, h := range handlers {
		h(args)
	}
	if changes != nil {
		changes.Next(args)
	}
}
