package registry

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/sabberworm/wok/internal/plugin"
)

// Module is implemented by every package that contributes plugin factories.
type Module interface {
	Register(r *Registry)
}

// Registry maps plugin names to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]plugin.Factory
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{factories: make(map[string]plugin.Factory)}
}

// Register makes factory available under name. A later registration under
// the same name replaces the earlier one. A nil factory is ignored.
func (r *Registry) Register(name string, factory plugin.Factory) {
	if factory == nil {
		slog.Warn("Ignoring shared plugin registration without a factory.", "name", name)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		slog.Debug("Replacing shared plugin factory.", "name", name)
	} else {
		slog.Debug("Registering shared plugin factory.", "name", name)
	}
	r.factories[name] = factory
}

// RegisterModules lets each module register its factories.
func (r *Registry) RegisterModules(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (plugin.Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[name]
	return f, ok
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset forgets every registered factory.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories = make(map[string]plugin.Factory)
}
