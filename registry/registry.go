// Package registry maps model names to agent constructors. A Registry is an
// explicit value owned by the process startup routine and passed by reference
// into the request handling path, so multiple independent gateway instances
// can coexist (e.g. in tests). It is populated once before the server accepts
// traffic and read-mostly thereafter.
package registry

import (
	"fmt"
	"sync"

	"github.com/hupe1980/agentgate/core"
)

// Constructor builds a per-request agent bound to the pending user message and
// the conversation context assembled from the request history. Constructors
// must not retain the context beyond the request lifetime.
type Constructor func(userMessage string, history *core.ConversationContext) (core.Agent, error)

// Plugin registers one or more agents on the given registry. Agent packages
// expose a Plugin instead of relying on import-time side effects; the host
// links the known set of plugins and loads them during a single startup phase.
type Plugin func(r *Registry) error

// Registry is an ordered mapping from model name to agent constructor. Safe
// for concurrent use.
//
// Contract:
//   - Names returns registration order
//   - Re-registration overwrites the constructor but keeps the original position
//   - Lookup never fails hard; a missing name is reported via the ok flag
type Registry struct {
	mu           sync.RWMutex
	order        []string
	constructors map[string]Constructor
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register inserts or overwrites the constructor for name. The last
// registration for a given name wins; the name keeps its first-seen position
// in the listing order.
func (r *Registry) Register(name string, constructor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.constructors[name]; !exists {
		r.order = append(r.order, name)
	}
	r.constructors[name] = constructor
}

// Lookup returns the constructor registered under name. A false ok flag
// signals an unsupported model, which callers translate into a client-visible
// error rather than a failure.
func (r *Registry) Lookup(name string) (Constructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.constructors[name]
	return c, ok
}

// Names returns all registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Load runs every plugin's registration against the registry, failing fast on
// the first error. A broken agent plugin must not silently vanish from the
// served model list, so a single failure aborts the whole startup.
func (r *Registry) Load(plugins ...Plugin) error {
	for i, plugin := range plugins {
		if plugin == nil {
			return fmt.Errorf("plugin %d is nil", i)
		}
		if err := plugin(r); err != nil {
			return fmt.Errorf("failed to load plugin %d: %w", i, err)
		}
	}
	return nil
}
