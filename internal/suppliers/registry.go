package suppliers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// Registry manages supplier profile registration and retrieval
type Registry struct {
	mu       sync.RWMutex
	profiles map[SupplierID]Profile
}

// DefaultRegistry holds the built-in supplier profiles
var DefaultRegistry = NewBuiltinRegistry()

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		profiles: make(map[SupplierID]Profile),
	}
}

// NewBuiltinRegistry creates a registry holding every built-in profile
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	for _, id := range SupplierIDs {
		r.Register(Profiles[id])
	}
	return r
}

// Register registers a profile under its ID, replacing any previous one
func (r *Registry) Register(p Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID] = p
}

// Get retrieves a profile by supplier ID
func (r *Registry) Get(id SupplierID) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", types.ErrUnknownSupplier, id)
	}
	return p, nil
}

// List returns all registered supplier IDs in sorted order
func (r *Registry) List() []SupplierID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]SupplierID, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// IsRegistered checks if a supplier is registered
func (r *Registry) IsRegistered(id SupplierID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.profiles[id]
	return ok
}

// Unregister removes a supplier profile from the registry
func (r *Registry) Unregister(id SupplierID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, id)
}
