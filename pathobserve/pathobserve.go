// Package pathobserve implements the property-path observer (§4.4): given a
// root object and a dotted chain like "Mother.Mother.Name", it subscribes to
// property_changed along the chain, re-wiring intermediate nodes whenever an
// upstream link changes, and emits the terminal value deduplicated by
// structural equality.
package pathobserve

import (
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/delaneyj/reactor/misc"
	"github.com/delaneyj/reactor/notify"
	"github.com/delaneyj/reactor/reactorerr"
)

// observable is satisfied by any Base-embedding type (model.Base and, in
// principle, any other type exposing a property_changed hub).
type observable interface {
	Notifier() *notify.Notifier
}

var (
	stepCacheMu sync.Mutex
	stepCache   = map[uint64][]string{}
)

// compiledSteps splits path into its dotted components, keyed by an
// xxhash fingerprint of the path rather than the string itself so repeated
// observers built against the same path share one parsed slice — the
// fingerprint-cache technique in place of an expression-tree cache.
func compiledSteps(path string) []string {
	key := xxhash.Sum64String(path)

	stepCacheMu.Lock()
	if cached, ok := stepCache[key]; ok {
		stepCacheMu.Unlock()
		return cached
	}
	stepCacheMu.Unlock()

	steps := strings.Split(path, ".")

	stepCacheMu.Lock()
	stepCache[key] = steps
	stepCacheMu.Unlock()
	return steps
}

type chainNode struct {
	step   string
	value  any
	detach func()
}

// ChainObserver watches a single dotted property path rooted at a fixed
// object, per §4.4's numbered contract.
type ChainObserver struct {
	mu       sync.Mutex
	root     any
	steps    []string
	nodes    []*chainNode
	subs     map[int]func(any)
	errSubs  map[int]func(error)
	nextID   int
	active   bool
	emitting bool
	hasLast  bool
	last     any
}

// New builds an observer for path against root. The chain is not walked or
// subscribed until the first Subscribe call (step 5: "on first subscriber,
// the root binding activates").
func New(root any, path string) *ChainObserver {
	return &ChainObserver{
		root:    root,
		steps:   compiledSteps(path),
		subs:    map[int]func(any){},
		errSubs: map[int]func(error){},
	}
}

// Subscribe registers onNext (and optional onError, which may be nil) and
// returns an unsubscribe func. A subscriber joining while the root is
// already active receives the current value immediately, unless it
// subscribes from within an in-progress emission (step 6: re-entrant
// subscribers are appended without being replayed into the running batch).
func (c *ChainObserver) Subscribe(onNext func(any), onError func(error)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = onNext
	if onError != nil {
		c.errSubs[id] = onError
	}

	wasActive := c.active
	if !c.active {
		c.active = true
		c.mu.Unlock()
		c.activate()
		c.mu.Lock()
	}

	replay := !c.emitting && wasActive && c.hasLast
	val := c.last
	c.mu.Unlock()

	if replay {
		onNext(val)
	}

	return func() { c.unsubscribe(id) }
}

func (c *ChainObserver) unsubscribe(id int) {
	c.mu.Lock()
	delete(c.subs, id)
	delete(c.errSubs, id)
	empty := len(c.subs) == 0
	c.mu.Unlock()

	if empty {
		c.deactivate()
	}
}

func (c *ChainObserver) activate() {
	c.mu.Lock()
	c.nodes = make([]*chainNode, len(c.steps))
	c.mu.Unlock()

	c.rebuildFrom(0, c.root)
	c.recompute()
}

func (c *ChainObserver) deactivate() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.hasLast = false
	nodes := c.nodes
	c.nodes = nil
	c.mu.Unlock()

	for _, n := range nodes {
		if n != nil && n.detach != nil {
			n.detach()
		}
	}
}

// rebuildFrom walks steps[i:] starting from current, (re)subscribing each
// node along the way. Called with c.mu unlocked; it acquires it only for
// the brief node-slice writes.
func (c *ChainObserver) rebuildFrom(i int, current any) {
	if i >= len(c.steps) {
		return
	}
	name := c.steps[i]

	v, ok := misc.GetField(current, name)
	if !ok && !misc.IsNil(current) {
		c.reportError(reactorerr.ErrMissingProperty)
	}

	node := &chainNode{step: name, value: v}
	if obs, ok := current.(observable); ok && !misc.IsNil(current) {
		node.detach = obs.Notifier().OnPropertyChanged(c.onLinkChanged(i, current, name))
	}

	c.mu.Lock()
	if i < len(c.nodes) {
		c.nodes[i] = node
	}
	c.mu.Unlock()

	c.rebuildFrom(i+1, v)
}

// onLinkChanged builds the handler for node i, closed over the (current,
// name) pair it was bound against so a later re-assignment of an earlier
// node doesn't leave a stale handler racing a fresh one.
func (c *ChainObserver) onLinkChanged(i int, current any, name string) notify.Handler {
	return func(a notify.Args) {
		if a.Name != name {
			return
		}
		newVal, _ := misc.GetField(current, name)

		c.mu.Lock()
		if i >= len(c.nodes) || c.nodes[i] == nil {
			c.mu.Unlock()
			return
		}
		if misc.Equal(newVal, c.nodes[i].value) {
			c.mu.Unlock()
			return // a handler re-assigning a node to itself must not loop
		}
		c.nodes[i].value = newVal
		stale := c.nodes[i+1:]
		c.mu.Unlock()

		for _, n := range stale {
			if n != nil && n.detach != nil {
				n.detach()
			}
		}
		c.rebuildFrom(i+1, newVal)
		c.recompute()
	}
}

func (c *ChainObserver) reportError(err error) {
	c.mu.Lock()
	handlers := make([]func(error), 0, len(c.errSubs))
	for _, h := range c.errSubs {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()
	for _, h := range handlers {
		h(err)
	}
}

// recompute evaluates the terminal value and emits to every subscriber only
// if it differs from the last emitted value (step 4).
func (c *ChainObserver) recompute() {
	terminal := c.root
	if len(c.nodes) > 0 {
		last := c.nodes[len(c.nodes)-1]
		if last != nil {
			terminal = last.value
		}
	}

	c.mu.Lock()
	if c.hasLast && misc.Equal(c.last, terminal) {
		c.mu.Unlock()
		return
	}
	c.last = terminal
	c.hasLast = true
	c.emitting = true
	handlers := make([]func(any), 0, len(c.subs))
	for _, h := range c.subs {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(terminal)
	}

	c.mu.Lock()
	c.emitting = false
	c.mu.Unlock()
}
