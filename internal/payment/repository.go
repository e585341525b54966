package payment

import (
	"context"
	"sort"
	"sync"
	"time"
)

type Repository interface {
	// Create fails with ErrActivePayment when the order already has a pending
	// or paid payment.
	Create(ctx context.Context, p Payment) (Payment, error)
	Get(ctx context.Context, id int) (Payment, error)
	ListAll(ctx context.Context) ([]Payment, error)
	ListByOrder(ctx context.Context, orderID int) ([]Payment, error)
	Update(ctx context.Context, p Payment) (Payment, error)
}

type InMemoryRepository struct {
	mu       sync.Mutex
	payments map[int]Payment
	nextID   int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{payments: make(map[int]Payment), nextID: 1}
}

func (r *InMemoryRepository) Create(_ context.Context, p Payment) (Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.payments {
		if existing.OrderID == p.OrderID && existing.PaymentStatus.Active() {
			return Payment{}, ErrActivePayment
		}
	}
	now := time.Now().UTC()
	p = p.clone()
	p.ID = r.nextID
	p.Version = 1
	p.CreatedAt, p.UpdatedAt = now, now
	r.nextID++
	r.payments[p.ID] = p
	return p.clone(), nil
}

func (r *InMemoryRepository) Get(_ context.Context, id int) (Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[id]
	if !ok {
		return Payment{}, ErrNotFound
	}
	return p.clone(), nil
}

func (r *InMemoryRepository) ListAll(_ context.Context) ([]Payment, error) {
	return r.list(func(Payment) bool { return true }), nil
}

func (r *InMemoryRepository) ListByOrder(_ context.Context, orderID int) ([]Payment, error) {
	return r.list(func(p Payment) bool { return p.OrderID == orderID }), nil
}

func (r *InMemoryRepository) list(keep func(Payment) bool) []Payment {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Payment, 0)
	for _, p := range r.payments {
		if keep(p) {
			out = append(out, p.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *InMemoryRepository) Update(_ context.Context, p Payment) (Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.payments[p.ID]
	if !ok {
		return Payment{}, ErrNotFound
	}
	if existing.Version != p.Version {
		return Payment{}, ErrConflict
	}
	existing.PaymentStatus = p.PaymentStatus
	existing.PaymentDate = p.PaymentDate
	existing.Version++
	existing.UpdatedAt = time.Now().UTC()
	r.payments[p.ID] = existing.clone()
	return existing.clone(), nil
}
