package review

import (
	"context"
	"sort"
	"sync"
	"time"
)

type Repository interface {
	// Create fails with ErrDuplicate when the user already reviewed the product.
	Create(ctx context.Context, r Review) (Review, error)
	Get(ctx context.Context, id int) (Review, error)
	Update(ctx context.Context, r Review) (Review, error)
	Delete(ctx context.Context, id int) error
	ListByProduct(ctx context.Context, productID int) ([]Review, error)
	ListAll(ctx context.Context) ([]Review, error)
}

type InMemoryRepository struct {
	mu      sync.Mutex
	reviews map[int]Review
	nextID  int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{reviews: make(map[int]Review), nextID: 1}
}

func (m *InMemoryRepository) Create(_ context.Context, r Review) (Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.reviews {
		if existing.UserID == r.UserID && existing.ProductID == r.ProductID {
			return Review{}, ErrDuplicate
		}
	}
	now := time.Now().UTC()
	r.ID = m.nextID
	r.CreatedAt, r.UpdatedAt = now, now
	m.nextID++
	m.reviews[r.ID] = r
	return r, nil
}

func (m *InMemoryRepository) Get(_ context.Context, id int) (Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reviews[id]
	if !ok {
		return Review{}, ErrNotFound
	}
	return r, nil
}

func (m *InMemoryRepository) Update(_ context.Context, r Review) (Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.reviews[r.ID]
	if !ok {
		return Review{}, ErrNotFound
	}
	existing.Rating = r.Rating
	existing.Comment = r.Comment
	existing.UpdatedAt = time.Now().UTC()
	m.reviews[r.ID] = existing
	return existing, nil
}

func (m *InMemoryRepository) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reviews[id]; !ok {
		return ErrNotFound
	}
	delete(m.reviews, id)
	return nil
}

func (m *InMemoryRepository) ListByProduct(_ context.Context, productID int) ([]Review, error) {
	return m.list(func(r Review) bool { return r.ProductID == productID }), nil
}

func (m *InMemoryRepository) ListAll(_ context.Context) ([]Review, error) {
	return m.list(func(Review) bool { return true }), nil
}

func (m *InMemoryRepository) list(keep func(Review) bool) []Review {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Review, 0)
	for _, r := range m.reviews {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}
