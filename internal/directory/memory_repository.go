package directory

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu         sync.RWMutex
	identities map[string]Identity // keyed by email
}

// NewMemoryRepository builds an in-memory identity store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{identities: make(map[string]Identity)}
}

func (r *memoryRepository) Create(_ context.Context, identity Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.identities[identity.Email]; exists {
		return ErrDuplicateEmail
	}
	r.identities[identity.Email] = identity
	return nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.identities[email]
	if !ok {
		return Identity{}, ErrNotFound
	}
	return identity, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, identity := range r.identities {
		if identity.ID == id {
			return identity, nil
		}
	}
	return Identity{}, ErrNotFound
}

func (r *memoryRepository) List(_ context.Context) ([]Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identities := make([]Identity, 0, len(r.identities))
	for _, identity := range r.identities {
		identities = append(identities, identity)
	}
	sort.Slice(identities, func(i, j int) bool {
		return identities[i].CreatedAt.Before(identities[j].CreatedAt)
	})
	return identities, nil
}

func (r *memoryRepository) SetRole(_ context.Context, id string, role Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for email, identity := range r.identities {
		if identity.ID == id {
			identity.Role = role
			r.identities[email] = identity
			return nil
		}
	}
	return ErrNotFound
}
