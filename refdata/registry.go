package refdata

import (
	"sort"
	"sync"

	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
)

// Registry maps dataset keys to their definitions. It is an explicitly
// constructed instance so hosts and tests control its lifecycle; there is no
// package-wide registry.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]Definition),
	}
}

// Register adds a definition, replacing any existing definition with the
// same key. The definition is validated first.
func (r *Registry) Register(def Definition) error {
	if err := validateDefinition(def); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[def.Key] = def
	return nil
}

// Unregister removes the definition for key. Unknown keys are ignored.
func (r *Registry) Unregister(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.defs, key)
}

// Get returns the definition for key.
func (r *Registry) Get(key string) (Definition, error) {
	r.mu.RLock()
	def, ok := r.defs[key]
	r.mu.RUnlock()

	if !ok {
		return Definition{}, failure.New(ErrDefinitionNotFound,
			failure.Message("No dataset is registered under this key"),
			failure.Context{"key": key},
		)
	}
	return def, nil
}

// List returns every registered definition, ordered by key so bulk
// operations iterate deterministically.
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := lo.Values(r.defs)
	sort.Slice(defs, func(i, j int) bool { return defs[i].Key < defs[j].Key })
	return defs
}

// Keys returns every registered key in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := lo.Keys(r.defs)
	sort.Strings(keys)
	return keys
}
