package order

import (
	"context"
	"sort"
	"sync"
	"time"
)

type Repository interface {
	Create(ctx context.Context, o Order) (Order, error)
	// CreateFromCart stores o and empties the user's cart in one step. It fails
	// with a conflict when the cart no longer has cartVersion.
	CreateFromCart(ctx context.Context, o Order, cartVersion int) (Order, error)
	Get(ctx context.Context, id int) (Order, error)
	ListByUser(ctx context.Context, userID int) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	// Update writes status fields when o.Version is still current.
	Update(ctx context.Context, o Order) (Order, error)
	HasDeliveredWithProduct(ctx context.Context, userID, productID int) (bool, error)
}

// CartResetter is the slice of the cart store that checkout needs.
type CartResetter interface {
	ResetIfVersion(ctx context.Context, userID, version int) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu     sync.Mutex
	orders map[int]Order
	nextID int
	carts  CartResetter
}

func NewInMemoryRepository(carts CartResetter) *InMemoryRepository {
	return &InMemoryRepository{orders: make(map[int]Order), nextID: 1, carts: carts}
}

func (r *InMemoryRepository) Create(_ context.Context, o Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(o), nil
}

func (r *InMemoryRepository) CreateFromCart(ctx context.Context, o Order, cartVersion int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.carts.ResetIfVersion(ctx, o.UserID, cartVersion); err != nil {
		return Order{}, err
	}
	return r.insert(o), nil
}

func (r *InMemoryRepository) insert(o Order) Order {
	now := time.Now().UTC()
	o = o.clone()
	o.ID = r.nextID
	o.Version = 1
	o.CreatedAt, o.UpdatedAt = now, now
	r.nextID++
	r.orders[o.ID] = o
	return o.clone()
}

func (r *InMemoryRepository) Get(_ context.Context, id int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o.clone(), nil
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID int) ([]Order, error) {
	return r.list(func(o Order) bool { return o.UserID == userID }), nil
}

func (r *InMemoryRepository) ListAll(_ context.Context) ([]Order, error) {
	return r.list(func(Order) bool { return true }), nil
}

func (r *InMemoryRepository) list(keep func(Order) bool) []Order {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Order, 0)
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, o.clone())
		}
	}
	// newest first; ids break ties within one clock tick
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *InMemoryRepository) Update(_ context.Context, o Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.orders[o.ID]
	if !ok {
		return Order{}, ErrNotFound
	}
	if existing.Version != o.Version {
		return Order{}, ErrConflict
	}
	existing.OrderStatus = o.OrderStatus
	existing.PaymentStatus = o.PaymentStatus
	existing.DeliveredAt = o.DeliveredAt
	existing.Version++
	existing.UpdatedAt = time.Now().UTC()
	r.orders[o.ID] = existing.clone()
	return existing.clone(), nil
}

func (r *InMemoryRepository) HasDeliveredWithProduct(_ context.Context, userID, productID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.orders {
		if o.UserID == userID && o.OrderStatus == StatusDelivered && o.Contains(productID) {
			return true, nil
		}
	}
	return false, nil
}
