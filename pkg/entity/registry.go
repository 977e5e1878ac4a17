package entity

import (
	"fmt"
	"sort"
	"sync"
)

// Registry stores entity descriptors by name so the store layer and form
// constructors can resolve them without holding references to every Meta.
type Registry struct {
	mu    sync.RWMutex
	metas map[string]*Meta
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		metas: make(map[string]*Meta),
	}
}

// Register adds a descriptor under its Name. Duplicate names return an error.
func (r *Registry) Register(meta *Meta) error {
	if meta == nil {
		return fmt.Errorf("entity: meta is required")
	}
	if meta.Name == "" {
		return fmt.Errorf("entity: meta name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.metas[meta.Name]; exists {
		return fmt.Errorf("entity: %q already registered", meta.Name)
	}

	r.metas[meta.Name] = meta
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(meta *Meta) {
	if err := r.Register(meta); err != nil {
		panic(err)
	}
}

// Get retrieves a descriptor by name.
func (r *Registry) Get(name string) (*Meta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.metas[name]
	if !ok {
		return nil, fmt.Errorf("entity: %q not found", name)
	}
	return meta, nil
}

// List returns the registered entity names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.metas))
	for name := range r.metas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a descriptor is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.metas[name]
	return ok
}
