package effect

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry manages effect registration and lookup.
type Registry struct {
	mu      sync.RWMutex
	effects map[string]Func
}

// NewRegistry creates an empty effect registry.
func NewRegistry() *Registry {
	return &Registry{effects: make(map[string]Func)}
}

// Register adds an effect under a name, replacing any previous one.
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effects[name] = fn
}

// Get retrieves an effect by name.
func (r *Registry) Get(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.effects[name]
	return fn, ok
}

// Names returns all registered effect names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.effects))
	for name := range r.effects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes the named effect.
func (r *Registry) Run(ctx context.Context, inv Invocation, opts Options) error {
	fn, ok := r.Get(inv.Name)
	if !ok {
		return fmt.Errorf("%w: unknown effect `%s`", ErrEffect, inv.Name)
	}
	return fn(ctx, inv.Args, inv.Kwargs, opts)
}

// DefaultRegistry creates a registry with all built-in effects.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("print", Print)
	r.Register("notify", Notify)
	r.Register("exec", Exec)
	return r
}
