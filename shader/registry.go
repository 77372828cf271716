package shader

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// Registry maps canonical keys to definitions. The first definition stored
// under a key wins; later additions under the same key are ignored.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Add stores d under d.Key unless the key is already present.
// It reports whether d was stored.
func (r *Registry) Add(d Definition) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[d.Key]; ok {
		return false
	}
	r.defs[d.Key] = d
	return true
}

// Lookup returns the definition stored under key.
func (r *Registry) Lookup(key string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[key]
	return d, ok
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	_, ok := r.Lookup(key)
	return ok
}

// Len returns the number of definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Keys returns all keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.defs))
}

// Match maps a user-facing engine and variant onto a registered key. It tries,
// in order: the canonical key, a case-insensitive match, the variant alone,
// the shortest key under the engine prefix containing the variant, and any
// key containing the variant. Spaces become underscores, and so do hyphens
// in the variant. It returns DefaultKey and false when nothing matches.
func (r *Registry) Match(engine, variant string) (string, bool) {
	e := strings.ReplaceAll(lower(strings.TrimSpace(engine)), " ", "_")
	v := lower(strings.TrimSpace(variant))
	v = strings.NewReplacer(" ", "_", "-", "_").Replace(v)
	primary := e + "_" + v

	keys := r.Keys()
	if r.Has(primary) {
		return primary, true
	}
	for _, k := range keys {
		if strings.EqualFold(k, primary) {
			return k, true
		}
	}
	if v == "" {
		return DefaultKey, false
	}
	if r.Has(v) {
		return v, true
	}

	best := ""
	for _, k := range keys {
		lk := lower(k)
		if strings.HasPrefix(lk, e+"_") && strings.Contains(lk, v) {
			if best == "" || len(k) < len(best) {
				best = k
			}
		}
	}
	if best != "" {
		return best, true
	}
	for _, k := range keys {
		if strings.Contains(lower(k), v) {
			return k, true
		}
	}
	return DefaultKey, false
}
