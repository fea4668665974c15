package job

import (
	"fmt"
	"sync"
)

// Factory rebuilds a job from its persisted record.
type Factory func(rec Record) (Job, error)

// Registry maps job types to the factories that rebuild them.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register sets the factory for jobType, replacing any earlier one.
func (r *Registry) Register(jobType string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[jobType] = factory
}

// Rebuild creates the job described by rec.
// Returns ErrUnknownJobType if no factory is registered for rec.Type.
func (r *Registry) Rebuild(rec Record) (Job, error) {
	r.mu.RLock()
	factory, ok := r.factories[rec.Type]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownJobType, rec.Type)
	}
	return factory(rec)
}
