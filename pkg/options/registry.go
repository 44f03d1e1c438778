package options

import (
	"slices"
	"sync"

	"github.com/matzehuels/qmetal/pkg/errors"
)

// Type describes one component type: its key, the key of its parent type and
// the defaults it declares itself. Defaults are local to the type; inherited
// values come from walking Parent links, never from copying them here.
type Type struct {
	Key      string  // Fully qualified type key, e.g. "qmetal.library.Rectangle"
	Parent   string  // Parent type key; empty for a chain's first type
	Root     bool    // Base marker type; its Defaults are never merged
	Doc      string  // One-line description shown by the CLI
	Defaults Options // Options declared by this type only
}

// Registry stores component types by key. It is safe for concurrent use so a
// single catalog can back many designs.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Type
}

// NewRegistry creates an empty type registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Type)}
}

// Register adds t to the registry. The key must be a valid dotted type key and
// must not already be registered. The parent does not need to exist yet;
// dangling parents are reported by Ancestry and Resolve.
func (r *Registry) Register(t Type) error {
	if err := errors.ValidateTypeKey(t.Key); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[t.Key]; exists {
		return errors.New(errors.ErrCodeInvalidType, "type %q already registered", t.Key)
	}
	t.Defaults = DeepCopy(t.Defaults)
	r.types[t.Key] = t
	return nil
}

// MustRegister is Register for static catalogs; it panics on error.
func (r *Registry) MustRegister(types ...Type) {
	for _, t := range types {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the type registered under key.
func (r *Registry) Lookup(key string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[key]
	return t, ok
}

// Keys returns all registered type keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.types))
	for k := range r.types {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Ancestry returns the chain of type keys for key, most-base first and key
// itself last. It fails with UNKNOWN_TYPE when key or any parent is missing
// and with INVALID_TYPE when the parent links form a cycle.
func (r *Registry) Ancestry(key string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ancestry(key)
}

func (r *Registry) ancestry(key string) ([]string, error) {
	var chain []string
	seen := make(map[string]bool)
	for cur := key; cur != ""; {
		if seen[cur] {
			return nil, errors.New(errors.ErrCodeInvalidType, "type %q has a cyclic parent chain", key)
		}
		seen[cur] = true
		t, ok := r.types[cur]
		if !ok {
			if cur == key {
				return nil, errors.New(errors.ErrCodeUnknownType, "type %q is not registered", key)
			}
			return nil, errors.New(errors.ErrCodeUnknownType, "type %q: parent %q is not registered", key, cur)
		}
		chain = append(chain, cur)
		cur = t.Parent
	}
	slices.Reverse(chain)
	return chain, nil
}

// Resolve computes the template options for key by folding each ancestor's own
// defaults, base first, over an empty mapping. Root types and types without
// defaults contribute nothing. The result is a deep copy.
func (r *Registry) Resolve(key string) (Options, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chain, err := r.ancestry(key)
	if err != nil {
		return nil, err
	}
	layers := make([]Options, 0, len(chain))
	for _, k := range chain {
		t := r.types[k]
		if t.Root || t.Defaults == nil {
			continue
		}
		layers = append(layers, t.Defaults)
	}
	return Merge(layers...), nil
}
