package providers

import (
	"fmt"
	"sync"
)

// Registry holds the provider instances available to the gateway. It replaces
// the implicit singleton factory pattern: construct one Registry at startup,
// register adapters, and pass it by reference to the policy engine and
// gateway. Registration happens during wiring; lookups are concurrent-safe.
type Registry struct {
	mu        sync.RWMutex
	providers map[ID]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[ID]Provider),
	}
}

// Register adds a provider to the registry. Registering a second provider
// under the same identity is a wiring bug and returns an error.
func (r *Registry) Register(p Provider) error {
	if p == nil {
		return fmt.Errorf("cannot register nil provider")
	}
	if !p.ID().Valid() {
		return fmt.Errorf("unknown provider identity %q", p.ID())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[p.ID()]; exists {
		return fmt.Errorf("provider %q already registered", p.ID())
	}
	r.providers[p.ID()] = p
	return nil
}

// Get returns the provider registered under id.
func (r *Registry) Get(id ID) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("provider %q not registered", id)
	}
	return p, nil
}

// IDs returns the registered identities in the stable KnownIDs order.
func (r *Registry) IDs() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]ID, 0, len(r.providers))
	for _, id := range KnownIDs() {
		if _, ok := r.providers[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
