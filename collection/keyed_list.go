package collection

import (
	"sync"

	"github.com/delaneyj/reactor/notify"
	"github.com/delaneyj/reactor/reactorerr"
	"github.com/delaneyj/reactor/stream"
)

// KeyedObservableList extends ObservableList with a key→index mapping kept
// in sync with every structural change (§4.7).
type KeyedObservableList[K comparable, T any] struct {
	mu      sync.Mutex
	list    *ObservableList[T]
	keyOf   func(T) K
	keyIdx  map[K]int
	unbindC func()
}

// NewKeyedObservableList builds an empty keyed list. equal may be nil.
func NewKeyedObservableList[K comparable, T any](keyOf func(T) K, equal func(a, b T) bool) *KeyedObservableList[K, T] {
	kl := &KeyedObservableList[K, T]{
		list:   NewObservableList[T](equal),
		keyOf:  keyOf,
		keyIdx: map[K]int{},
	}
	kl.unbindC = kl.list.Changes().Subscribe(kl.onChange, nil, nil).Unsubscribe
	kl.rebuildIndexLocked()
	return kl
}

// List exposes the underlying ObservableList for the shared list protocol
// (Count, At, Bind, Sort, ...).
func (kl *KeyedObservableList[K, T]) List() *ObservableList[T] { return kl.list }

// Close detaches the internal key-index maintenance subscription.
func (kl *KeyedObservableList[K, T]) Close() { kl.unbindC() }

func (kl *KeyedObservableList[K, T]) onChange(ChangeArgs[T]) {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	kl.rebuildIndexLocked()
}

func (kl *KeyedObservableList[K, T]) rebuildIndexLocked() {
	items := kl.list.Items()
	kl.keyIdx = make(map[K]int, len(items))
	for i, it := range items {
		kl.keyIdx[kl.keyOf(it)] = i
	}
}

// ContainsKey reports whether key is present.
func (kl *KeyedObservableList[K, T]) ContainsKey(key K) bool {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	_, ok := kl.keyIdx[key]
	return ok
}

// IndexOfKey returns key's index, or -1.
func (kl *KeyedObservableList[K, T]) IndexOfKey(key K) int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	if i, ok := kl.keyIdx[key]; ok {
		return i
	}
	return -1
}

// TryGet returns the item stored under key.
func (kl *KeyedObservableList[K, T]) TryGet(key K) (T, bool) {
	kl.mu.Lock()
	i, ok := kl.keyIdx[key]
	kl.mu.Unlock()
	var zero T
	if !ok {
		return zero, false
	}
	v, err := kl.list.At(i)
	if err != nil {
		return zero, false
	}
	return v, true
}

// GetKey returns the key under which value would be stored.
func (kl *KeyedObservableList[K, T]) GetKey(value T) K { return kl.keyOf(value) }

// RemoveKey removes the item under key, if present.
func (kl *KeyedObservableList[K, T]) RemoveKey(key K) bool {
	kl.mu.Lock()
	i, ok := kl.keyIdx[key]
	kl.mu.Unlock()
	if !ok {
		return false
	}
	_ = kl.list.RemoveAt(i)
	return true
}

// AddOrUpdate replaces the existing item stored under value's key, or
// appends it if the key is new.
func (kl *KeyedObservableList[K, T]) AddOrUpdate(value T) {
	key := kl.keyOf(value)
	kl.mu.Lock()
	i, ok := kl.keyIdx[key]
	kl.mu.Unlock()
	if !ok {
		kl.list.Add(value)
		return
	}
	kl.list.mu.Lock()
	old := kl.list.items[i]
	kl.list.items[i] = value
	kl.list.resyncItemSubscriptionsLocked()
	args := ChangeArgs[T]{Action: Replace, NewIndex: i, OldIndex: i, NewItems: []T{value}, OldItems: []T{old}}
	kl.list.mu.Unlock()
	kl.list.emit(args)
}

// Reset replaces the contents wholesale, failing with ErrDuplicateKey if
// items collide on key.
func (kl *KeyedObservableList[K, T]) Reset(items []T) error {
	seen := make(map[K]struct{}, len(items))
	for _, it := range items {
		k := kl.keyOf(it)
		if _, dup := seen[k]; dup {
			return reactorerr.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}
	kl.list.Reset(items)
	return nil
}

// Notifier, Changes, ItemsChanges delegate to the wrapped list.
func (kl *KeyedObservableList[K, T]) Notifier() *notify.Notifier           { return kl.list.Notifier() }
func (kl *KeyedObservableList[K, T]) Changes() *stream.Subject[ChangeArgs[T]] { return kl.list.Changes() }
func (kl *KeyedObservableList[K, T]) ItemsChanges() (*stream.Subject[notify.Args], error) {
	return kl.list.ItemsChanges()
}
