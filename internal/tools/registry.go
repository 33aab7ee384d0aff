package tools

import (
	"context"
	"sync"

	"github.com/ShayCichocki/hive/pkg/models"
)

// Capability is one external tool function. Implementations may have
// arbitrary real-world effects; they return a textual result or an error.
type Capability func(ctx context.Context, args map[string]any) (string, error)

// entry binds a spec to its resolved capability.
type entry struct {
	spec models.ToolSpec
	fn   Capability
}

// Registry maps tool names to their specs and capabilities. Capabilities
// are resolved once at startup; lookups at call time never dispatch by
// reflection. The registry is read-only after loading and safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	order   []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a tool spec with its capability. Registering a name twice
// or an invalid spec is an error.
func (r *Registry) Register(spec models.ToolSpec, fn Capability) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if fn == nil {
		return models.Errorf(models.ErrCodeValidation, "tool %q has no capability function", spec.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[spec.Name]; exists {
		return models.Errorf(models.ErrCodeValidation, "tool %q is already registered", spec.Name)
	}
	r.entries[spec.Name] = entry{spec: spec, fn: fn}
	r.order = append(r.order, spec.Name)
	return nil
}

// Lookup returns the spec and capability for a tool name.
func (r *Registry) Lookup(name string) (models.ToolSpec, Capability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return models.ToolSpec{}, nil, models.Errorf(models.ErrCodeNotFound, "no tool named %q", name)
	}
	return e.spec, e.fn, nil
}

// Spec returns the spec for a tool name.
func (r *Registry) Spec(name string) (models.ToolSpec, error) {
	spec, _, err := r.Lookup(name)
	return spec, err
}

// Specs returns all registered specs in registration order.
func (r *Registry) Specs() []models.ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]models.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.entries[name].spec)
	}
	return specs
}

// SpecsFor returns the specs for the named tools, in the given order.
// Unknown names are skipped; workers advertise only tools that exist.
func (r *Registry) SpecsFor(names []string) []models.ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]models.ToolSpec, 0, len(names))
	for _, name := range names {
		if e, ok := r.entries[name]; ok {
			specs = append(specs, e.spec)
		}
	}
	return specs
}

// Names returns all registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
