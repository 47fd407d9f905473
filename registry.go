package hostui

import (
	"fmt"
	"slices"
	"sync"
)

// Factory builds a widget against a host.
type Factory func(h *Host) (Widget, error)

// Registry maps widget names to factories. Hosts such as the inject
// command build widgets by name from it.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Add registers a factory under name.
// Panics on an empty name, a nil factory or a name collision.
func (reg *Registry) Add(name string, f Factory) {
	if name == "" {
		panic("hostui: widget name must not be empty")
	}
	if f == nil {
		panic(fmt.Sprintf("hostui: nil factory for %q", name))
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.factories[name]; exists {
		panic(fmt.Sprintf("hostui: widget name collision for %q", name))
	}
	reg.factories[name] = f
}

// Build constructs the widget registered under name.
func (reg *Registry) Build(name string, h *Host) (Widget, error) {
	reg.mu.RLock()
	f, ok := reg.factories[name]
	reg.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWidget, name)
	}
	w, err := f(h)
	if err != nil {
		return nil, fmt.Errorf("hostui: build %q: %w", name, err)
	}
	return w, nil
}

// Names returns the registered names, sorted.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	names := make([]string, 0, len(reg.factories))
	for name := range reg.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
