package particles

import (
	"sort"
	"sync"

	"github.com/KirkDiggler/endguard/internal/errors"
)

// ConditionFactory builds a condition from its declarative form
type ConditionFactory func(spec ConditionSpec) (Condition, error)

// ConditionRegistry maps condition type names to factories
type ConditionRegistry struct {
	mu        sync.RWMutex
	factories map[string]ConditionFactory
}

// NewConditionRegistry returns a registry with the always, number and
// string condition types.
func NewConditionRegistry() *ConditionRegistry {
	return &ConditionRegistry{
		factories: map[string]ConditionFactory{
			"always": parseAlways,
			"number": parseNumber,
			"string": parseString,
		},
	}
}

// Register adds a factory. Existing names are rejected.
func (r *ConditionRegistry) Register(name string, factory ConditionFactory) error {
	if name == "" {
		return errors.InvalidArgument("condition type is required")
	}
	if factory == nil {
		return errors.InvalidArgumentf("factory for %s is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return errors.AlreadyExistsf("condition type %s is already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Build resolves spec through its registered factory. Unknown types fail.
func (r *ConditionRegistry) Build(spec ConditionSpec) (Condition, error) {
	r.mu.RLock()
	factory, ok := r.factories[spec.Type]
	r.mu.RUnlock()

	if !ok {
		return Condition{}, errors.InvalidArgumentf("unknown condition type %q", spec.Type)
	}
	return factory(spec)
}

// Types lists the registered condition type names
func (r *ConditionRegistry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
