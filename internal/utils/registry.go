package utils

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// Registry provides a generic, thread-safe registry keyed by an ordered key,
// so listings are deterministic.
type Registry[K cmp.Ordered, V any] struct {
	mu    sync.RWMutex
	name  string
	items map[K]V
}

// NewRegistry creates a new generic registry. The name is used in error messages.
func NewRegistry[K cmp.Ordered, V any](name string) *Registry[K, V] {
	return &Registry[K, V]{
		name:  name,
		items: make(map[K]V),
	}
}

// Register adds or replaces an item in the registry
func (r *Registry[K, V]) Register(key K, value V) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[key] = value
}

// RegisterUnique adds an item and fails if the key is already taken
func (r *Registry[K, V]) RegisterUnique(key K, value V) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[key]; exists {
		return fmt.Errorf("%s: %v is already registered", r.name, key)
	}
	r.items[key] = value
	return nil
}

// Get retrieves an item from the registry
func (r *Registry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, exists := r.items[key]
	return value, exists
}

// Has checks if a key exists in the registry
func (r *Registry[K, V]) Has(key K) bool {
	_, exists := r.Get(key)
	return exists
}

// List returns all keys in ascending order
func (r *Registry[K, V]) List() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]K, 0, len(r.items))
	for key := range r.items {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Size returns the number of items in the registry
func (r *Registry[K, V]) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// Clone returns an independent copy of the registry
func (r *Registry[K, V]) Clone() *Registry[K, V] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clone := NewRegistry[K, V](r.name)
	for k, v := range r.items {
		clone.items[k] = v
	}
	return clone
}
