package cart

import (
	"context"
	"sync"
	"time"
)

// Repository stores one cart per user. Save is a compare-and-set on Version.
type Repository interface {
	Get(ctx context.Context, userID int) (Cart, error)
	Save(ctx context.Context, c Cart) (Cart, error)
	ResetIfVersion(ctx context.Context, userID, version int) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.Mutex
	carts map[int]Cart
}

func NewInMemoryRepository(seed []Cart) *InMemoryRepository {
	r := &InMemoryRepository{carts: make(map[int]Cart, len(seed))}
	for _, c := range seed {
		if c.Version == 0 {
			c.Version = 1
		}
		r.carts[c.UserID] = c.clone()
	}
	return r
}

func (r *InMemoryRepository) Get(_ context.Context, userID int) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[userID]
	if !ok {
		return Cart{}, ErrNotFound
	}
	return c.clone(), nil
}

func (r *InMemoryRepository) Save(_ context.Context, c Cart) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.carts[c.UserID]
	switch {
	case c.Version == 0 && ok:
		return Cart{}, ErrConflict
	case c.Version != 0 && (!ok || existing.Version != c.Version):
		return Cart{}, ErrConflict
	}

	saved := c.clone()
	saved.Version = c.Version + 1
	saved.UpdatedAt = time.Now().UTC()
	r.carts[c.UserID] = saved
	return saved.clone(), nil
}

// ResetIfVersion empties the cart when it still has the given version.
func (r *InMemoryRepository) ResetIfVersion(_ context.Context, userID, version int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[userID]
	if !ok {
		return ErrNotFound
	}
	if c.Version != version {
		return ErrConflict
	}
	c.Items = []Item{}
	c.Version++
	c.UpdatedAt = time.Now().UTC()
	r.carts[userID] = c
	return nil
}
