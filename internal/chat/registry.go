package chat

import (
	"sync"

	"github.com/harshitjain593/workree-chat/internal/domain"
)

// Registry hosts one Store per authenticated user. Stores are created
// lazily on first use and live until Drop; each store's state is scoped to
// that user's session, never shared.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]*Store
	deps   Deps
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{stores: make(map[string]*Store), deps: deps}
}

// StoreFor returns the session store for the user, creating it if needed.
// The participant snapshot from the first call wins; later calls with a
// different profile do not replace it.
func (r *Registry) StoreFor(self domain.Participant) *Store {
	r.mu.RLock()
	store, ok := r.stores[self.ID]
	r.mu.RUnlock()
	if ok {
		return store
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if store, ok := r.stores[self.ID]; ok {
		return store
	}
	store = NewStore(self, r.deps)
	r.stores[self.ID] = store
	return store
}

// Lookup returns the store for userID without creating one.
func (r *Registry) Lookup(userID string) (*Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	store, ok := r.stores[userID]
	return store, ok
}

// Drop discards a user's session store.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, userID)
}

// Each visits every live store. The callback must not call back into the
// registry.
func (r *Registry) Each(fn func(userID string, store *Store)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, store := range r.stores {
		fn(id, store)
	}
}
