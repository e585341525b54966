package payment

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/shop-backend/internal/address"
	"github.com/wichananm65/shop-backend/internal/auth"
	"github.com/wichananm65/shop-backend/internal/order"
	"github.com/wichananm65/shop-backend/internal/platform/apperr"
	"github.com/wichananm65/shop-backend/internal/platform/metrics"
	"github.com/wichananm65/shop-backend/internal/product"
	"github.com/wichananm65/shop-backend/internal/user"
)

type fixture struct {
	svc     *Service
	orders  *order.Service
	repo    *InMemoryRepository
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	catalog := product.NewCatalogProvider(product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Bowl", Price: decimal.NewFromInt(100), Stock: 5},
	}))
	users := user.NewService(user.NewInMemoryRepository([]user.User{
		{ID: 7, Name: "Ann", Email: "ann@example.com"},
		{ID: 8, Name: "Bo", Email: "bo@example.com"},
	}))
	orders := order.NewService(order.NewInMemoryRepository(nil), order.Deps{Catalog: catalog, Users: users})
	m := metrics.New(prometheus.NewRegistry())

	repo := NewInMemoryRepository()
	svc := NewService(repo, Deps{
		Orders:  orders,
		Users:   users,
		Metrics: m,
		Clock:   func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) },
	})
	return fixture{svc: svc, orders: orders, repo: repo, metrics: m}
}

func placeOrder(t *testing.T, f fixture, userID, qty int) order.Order {
	t.Helper()
	o, err := f.orders.PlaceOrder(context.Background(), userID, order.PlaceInput{
		Items:           []order.LineInput{{ProductID: 1, Quantity: qty}},
		ShippingAddress: address.Shipping{AddressLine: "1 Main St", City: "Bangkok", Country: "TH"},
		PaymentMethod:   "Card",
	})
	require.NoError(t, err)
	return o
}

func TestCreatePaymentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := placeOrder(t, f, 7, 2)
	ann := auth.Principal{UserID: 7}
	valid := CreateInput{OrderID: o.ID, UserID: 7, PaymentMethod: "UPI", Amount: decimal.NewFromInt(200)}

	cases := []struct {
		name   string
		caller auth.Principal
		mutate func(*CreateInput)
		kind   error
	}{
		{"missing order", ann, func(in *CreateInput) { in.OrderID = 0 }, ErrMissingFields},
		{"zero amount", ann, func(in *CreateInput) { in.Amount = decimal.Zero }, ErrMissingFields},
		{"bad method", ann, func(in *CreateInput) { in.PaymentMethod = "Cheque" }, ErrInvalidMethod},
		{"unknown order", ann, func(in *CreateInput) { in.OrderID = 99 }, order.ErrNotFound},
		{"wrong amount", ann, func(in *CreateInput) { in.Amount = decimal.NewFromInt(150) }, ErrAmountMismatch},
		{"paying for someone else", auth.Principal{UserID: 8}, func(*CreateInput) {}, ErrForeignUser},
		{"admin names a non-owner", auth.Principal{UserID: 1, Role: auth.RoleAdmin}, func(in *CreateInput) { in.UserID = 8 }, ErrOwnerMismatch},
		{"unknown user", auth.Principal{UserID: 1, Role: auth.RoleAdmin}, func(in *CreateInput) { in.UserID = 55 }, user.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := f.svc.CreatePayment(ctx, tc.caller, in)
			assert.ErrorIs(t, err, tc.kind)
		})
	}

	p, err := f.svc.CreatePayment(ctx, ann, valid)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.PaymentStatus)

	_, err = f.svc.CreatePayment(ctx, ann, valid)
	assert.ErrorIs(t, err, apperr.ErrConflict, "second active payment")
}

func TestCreatePaymentRejectsCancelledOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := placeOrder(t, f, 7, 1)
	_, err := f.orders.AdvanceStatus(ctx, o.ID, "cancelled")
	require.NoError(t, err)

	_, err = f.svc.CreatePayment(ctx, auth.Principal{UserID: 7},
		CreateInput{OrderID: o.ID, UserID: 7, PaymentMethod: "COD", Amount: decimal.NewFromInt(100)})
	assert.ErrorIs(t, err, ErrOrderCancelled)
}

func TestUpdateStatusCapturesOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := placeOrder(t, f, 7, 1)
	p, err := f.svc.CreatePayment(ctx, auth.Principal{UserID: 7},
		CreateInput{OrderID: o.ID, UserID: 7, PaymentMethod: "Card", Amount: decimal.NewFromInt(100), TransactionID: "tx-1"})
	require.NoError(t, err)

	paid, err := f.svc.UpdateStatus(ctx, p.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.PaymentStatus)
	require.NotNil(t, paid.PaymentDate)

	got, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.PaymentStatuses.WithLabelValues("paid")))

	refunded, err := f.svc.UpdateStatus(ctx, p.ID, "refunded")
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, refunded.PaymentStatus)

	_, err = f.svc.UpdateStatus(ctx, p.ID, "paid")
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

// contendedRepository lets another writer bump the payment version right
// before the next Update lands.
type contendedRepository struct {
	*InMemoryRepository
	beforeUpdate func()
}

func (r *contendedRepository) Update(ctx context.Context, p Payment) (Payment, error) {
	if hook := r.beforeUpdate; hook != nil {
		r.beforeUpdate = nil
		hook()
	}
	return r.InMemoryRepository.Update(ctx, p)
}

func TestCaptureRetryConvergesAfterConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := placeOrder(t, f, 7, 1)
	p, err := f.svc.CreatePayment(ctx, auth.Principal{UserID: 7},
		CreateInput{OrderID: o.ID, UserID: 7, PaymentMethod: "Card", Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)

	repo := &contendedRepository{InMemoryRepository: f.repo}
	repo.beforeUpdate = func() {
		current, err := f.repo.Get(ctx, p.ID)
		require.NoError(t, err)
		_, err = f.repo.Update(ctx, current)
		require.NoError(t, err)
	}
	svc := NewService(repo, f.svc.deps)

	_, err = svc.UpdateStatus(ctx, p.ID, "paid")
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	markedOrder, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentPaid, markedOrder.PaymentStatus, "order is captured before the payment write")
	pending, err := f.repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, pending.PaymentStatus)
	assert.Nil(t, pending.PaymentDate)

	paid, err := svc.UpdateStatus(ctx, p.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.PaymentStatus)
	require.NotNil(t, paid.PaymentDate)

	after, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentPaid, after.PaymentStatus)
	assert.Equal(t, markedOrder.Version, after.Version, "marking an already paid order is a no-op")
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.PaymentStatuses.WithLabelValues("paid")))
}

func TestBogusStatusLeavesPaymentUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := placeOrder(t, f, 7, 1)
	p, err := f.svc.CreatePayment(ctx, auth.Principal{UserID: 7},
		CreateInput{OrderID: o.ID, UserID: 7, PaymentMethod: "Wallet", Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, p.ID, "bogus")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = f.svc.UpdateStatus(ctx, p.ID, "refunded")
	assert.ErrorIs(t, err, ErrIllegalTransition)
	_, err = f.svc.UpdateStatus(ctx, 404, "paid")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := f.repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestFailedPaymentFreesTheOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := placeOrder(t, f, 7, 1)
	in := CreateInput{OrderID: o.ID, UserID: 7, PaymentMethod: "NetBanking", Amount: decimal.NewFromInt(100)}
	ann := auth.Principal{UserID: 7}

	first, err := f.svc.CreatePayment(ctx, ann, in)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, first.ID, "failed")
	require.NoError(t, err)
	_, err = f.svc.CreatePayment(ctx, ann, in)
	require.NoError(t, err)

	list, err := f.svc.ListForOrder(ctx, o.ID, ann)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = f.svc.ListForOrder(ctx, o.ID, auth.Principal{UserID: 8})
	assert.ErrorIs(t, err, order.ErrNotFound)
	_, err = f.svc.Get(ctx, first.ID, auth.Principal{UserID: 8})
	assert.ErrorIs(t, err, ErrNotFound)
}
