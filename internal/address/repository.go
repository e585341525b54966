package address

import (
	"context"
	"sync"
	"time"
)

type Repository interface {
	List(ctx context.Context, userID int) ([]Address, error)
	Get(ctx context.Context, userID, addressID int) (Address, error)
	Add(ctx context.Context, userID int, s Shipping) (Address, error)
	Update(ctx context.Context, userID, addressID int, s Shipping) (Address, error)
	Delete(ctx context.Context, userID, addressID int) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu        sync.RWMutex
	addresses []Address
	nextID    int
}

func NewInMemoryRepository(seed []Address) *InMemoryRepository {
	r := &InMemoryRepository{addresses: append([]Address(nil), seed...), nextID: 1}
	for _, a := range seed {
		if a.ID >= r.nextID {
			r.nextID = a.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) List(_ context.Context, userID int) ([]Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Address, 0)
	for _, a := range r.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Get(_ context.Context, userID, addressID int) (Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.addresses {
		if a.ID == addressID && a.UserID == userID {
			return a, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) Add(_ context.Context, userID int, s Shipping) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := Address{ID: r.nextID, UserID: userID, Shipping: s, CreatedAt: time.Now().UTC()}
	r.nextID++
	r.addresses = append(r.addresses, a)
	return a, nil
}

func (r *InMemoryRepository) Update(_ context.Context, userID, addressID int, s Shipping) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, a := range r.addresses {
		if a.ID == addressID && a.UserID == userID {
			r.addresses[i].Shipping = s
			return r.addresses[i], nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, userID, addressID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, a := range r.addresses {
		if a.ID == addressID && a.UserID == userID {
			r.addresses = append(r.addresses[:i], r.addresses[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
