// Package registry holds the worker roster: named agent profiles loaded
// at startup and read-only afterwards.
package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ShayCichocki/hive/pkg/models"
)

// Registry maps worker names to their profiles. Registration happens at
// startup; during a run the registry only serves reads, so an RWMutex is
// enough for concurrent subtask execution.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]models.AgentProfile
	order    []string
}

// New creates an empty worker registry.
func New() *Registry {
	return &Registry{profiles: make(map[string]models.AgentProfile)}
}

// Register adds a worker profile. The profile is validated first;
// registering the same name twice is an error.
func (r *Registry) Register(profile models.AgentProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[profile.Name]; exists {
		return models.Errorf(models.ErrCodeDuplicateWorker, "worker %q is already registered", profile.Name)
	}
	r.profiles[profile.Name] = profile
	r.order = append(r.order, profile.Name)
	return nil
}

// Load registers a batch of profiles, typically the parsed catalog. It
// stops at the first failure so a bad catalog never half-loads.
func (r *Registry) Load(profiles []models.AgentProfile) error {
	for _, p := range profiles {
		if err := r.Register(p); err != nil {
			return fmt.Errorf("load worker %q: %w", p.Name, err)
		}
	}
	return nil
}

// Find returns the profile registered under name.
func (r *Registry) Find(name string) (models.AgentProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[name]
	if !ok {
		return models.AgentProfile{}, models.Errorf(models.ErrCodeNotFound, "no worker named %q", name)
	}
	return p, nil
}

// All returns every registered profile in registration order. The slice
// is a copy; callers cannot mutate the roster through it.
func (r *Registry) All() []models.AgentProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.AgentProfile, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.profiles[name])
	}
	return out
}

// Names returns registered worker names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered workers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Vocabulary returns the union of all registered specialization tags,
// lowercased and deduplicated in first-seen order. The planner uses it
// as the controlled vocabulary for decomposition.
func (r *Registry) Vocabulary() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var tags []string
	for _, name := range r.order {
		for _, tag := range r.profiles[name].Specializations {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

// String renders a one-line-per-worker roster for CLI listing.
func (r *Registry) String() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder
	for _, name := range r.order {
		p := r.profiles[name]
		fmt.Fprintf(&b, "%s [%s]", name, strings.Join(p.Specializations, ", "))
		if len(p.Tools) > 0 {
			fmt.Fprintf(&b, " tools: %s", strings.Join(p.Tools, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
