package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotRegistered is returned when an identifier has no registered factory.
var ErrNotRegistered = errors.New("not registered")

// Factory builds a fresh instance for each resolution.
type Factory[T any] func() T

// Registry maps identifiers to factories. It is populated at startup and
// read by the engine at transition time.
type Registry[T any] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

// New creates a new empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{
		factories: make(map[string]Factory[T]),
	}
}

// Register adds a factory to the registry.
// If a factory with the same name exists, it is overwritten.
func (r *Registry[T]) Register(name string, fn Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = fn
}

// RegisterInstance registers a shared instance under name.
func (r *Registry[T]) RegisterInstance(name string, v T) {
	r.Register(name, func() T { return v })
}

// Resolve looks up a factory by name and builds an instance.
// Returns an error wrapping ErrNotRegistered if the name is unknown.
func (r *Registry[T]) Resolve(name string) (T, error) {
	r.mu.RLock()
	fn, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}

	return fn(), nil
}

// Has reports whether name is registered.
func (r *Registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered identifiers in lexical order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a registry holding the same factories.
func (r *Registry[T]) Clone() *Registry[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := New[T]()
	for name, fn := range r.factories {
		out.factories[name] = fn
	}
	return out
}
