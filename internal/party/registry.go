package party

import (
	"sync"

	"github.com/psds-microservice/watch-party-service/internal/errs"
)

// Registry maps party id -> actor handle. It is the only cross-party shared
// structure; parties themselves share no mutable state.
type Registry struct {
	mu      sync.RWMutex
	parties map[string]*Party
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{parties: make(map[string]*Party)}
}

// Add registers a party actor.
func (r *Registry) Add(p *Party) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parties[p.ID()] = p
}

// Get returns the actor handle for a party id.
func (r *Registry) Get(id string) (*Party, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parties[id]
	if !ok {
		return nil, errs.ErrPartyNotFound
	}
	return p, nil
}

// Remove drops a party from the registry (called from the actor's OnClosed hook).
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.parties, id)
}

// CloseAll asks every live party to close and waits for each actor to stop.
// Used on graceful shutdown.
func (r *Registry) CloseAll() {
	r.mu.RLock()
	live := make([]*Party, 0, len(r.parties))
	for _, p := range r.parties {
		live = append(live, p)
	}
	r.mu.RUnlock()

	for _, p := range live {
		p.Close()
		<-p.Done()
	}
}

// Len returns the number of live parties.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.parties)
}
