package presence

import (
	"fmt"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/trattoria/internal/domain/errors"
	"github.com/polkiloo/trattoria/internal/domain/model"
)

// Hooks observe registry changes. They run outside the registry lock.
type Hooks struct {
	OnRegister   func(model.Presence)
	OnUnregister func(model.Presence)
}

// Registry tracks live connections in memory. It starts empty on every boot.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]model.Presence
	hooks   Hooks
	now     func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry(hooks Hooks) *Registry {
	return &Registry{
		entries: make(map[string]model.Presence),
		hooks:   hooks,
		now:     time.Now,
	}
}

// Register records a new connection.
func (r *Registry) Register(p model.Presence) error {
	if p.ConnectionID == "" {
		return fmt.Errorf("%w: connection id is required", domainErrors.ErrInvalidInput)
	}
	if p.ConnectedAt.IsZero() {
		p.ConnectedAt = r.now()
	}

	r.mu.Lock()
	if _, exists := r.entries[p.ConnectionID]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: connection %s", domainErrors.ErrAlreadyExists, p.ConnectionID)
	}
	r.entries[p.ConnectionID] = p
	r.mu.Unlock()

	if r.hooks.OnRegister != nil {
		r.hooks.OnRegister(p)
	}
	return nil
}

// Unregister forgets a connection. It reports whether the connection was known.
func (r *Registry) Unregister(connectionID string) (model.Presence, bool) {
	r.mu.Lock()
	p, ok := r.entries[connectionID]
	delete(r.entries, connectionID)
	r.mu.Unlock()

	if ok && r.hooks.OnUnregister != nil {
		r.hooks.OnUnregister(p)
	}
	return p, ok
}

// CountsByModule returns how many connections each module currently has.
func (r *Registry) CountsByModule() map[model.Module]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[model.Module]int)
	for _, p := range r.entries {
		counts[p.Module]++
	}
	return counts
}

// List returns connections ordered by connect time.
func (r *Registry) List() []model.Presence {
	r.mu.RLock()
	result := make([]model.Presence, 0, len(r.entries))
	for _, p := range r.entries {
		result = append(result, p)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].ConnectedAt.Equal(result[j].ConnectedAt) {
			return result[i].ConnectionID < result[j].ConnectionID
		}
		return result[i].ConnectedAt.Before(result[j].ConnectedAt)
	})
	return result
}
