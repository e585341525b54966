package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wichananm65/shop-backend/internal/auth"
	"github.com/wichananm65/shop-backend/internal/order"
	"github.com/wichananm65/shop-backend/internal/platform/logging"
	"github.com/wichananm65/shop-backend/internal/platform/metrics"
	"github.com/wichananm65/shop-backend/internal/user"
)

// Orders is the part of the order service the ledger depends on.
type Orders interface {
	Get(ctx context.Context, id int) (order.Order, error)
	MarkPaid(ctx context.Context, id int) (order.Order, error)
}

type Users interface {
	GetByID(ctx context.Context, id int) (user.User, error)
}

type Deps struct {
	Orders  Orders
	Users   Users
	Metrics *metrics.Metrics
	Logger  *zap.Logger
	Clock   func() time.Time
}

type Service struct {
	repo Repository
	deps Deps
}

func NewService(repo Repository, deps Deps) *Service {
	deps.Logger = logging.OrNop(deps.Logger)
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Service{repo: repo, deps: deps}
}

type CreateInput struct {
	OrderID       int
	UserID        int
	PaymentMethod string
	Amount        decimal.Decimal
	TransactionID string
}

// CreatePayment records a pending payment for an order. The payer must own
// the order and the amount must equal the order total.
func (s *Service) CreatePayment(ctx context.Context, caller auth.Principal, in CreateInput) (Payment, error) {
	if in.OrderID <= 0 || in.UserID <= 0 || in.PaymentMethod == "" || !in.Amount.IsPositive() {
		return Payment{}, ErrMissingFields
	}
	method, err := ParseMethod(in.PaymentMethod)
	if err != nil {
		return Payment{}, err
	}
	if !caller.IsAdmin() && caller.UserID != in.UserID {
		return Payment{}, ErrForeignUser
	}

	o, err := s.deps.Orders.Get(ctx, in.OrderID)
	if err != nil {
		return Payment{}, err
	}
	if _, err := s.deps.Users.GetByID(ctx, in.UserID); err != nil {
		return Payment{}, err
	}
	if o.UserID != in.UserID {
		return Payment{}, ErrOwnerMismatch
	}
	if o.OrderStatus == order.StatusCancelled {
		return Payment{}, ErrOrderCancelled
	}
	if !in.Amount.Equal(o.TotalPrice) {
		return Payment{}, ErrAmountMismatch
	}

	created, err := s.repo.Create(ctx, Payment{
		OrderID:       in.OrderID,
		UserID:        in.UserID,
		PaymentMethod: method,
		PaymentStatus: StatusPending,
		TransactionID: in.TransactionID,
		Amount:        in.Amount,
	})
	if err != nil {
		return Payment{}, err
	}
	s.deps.Metrics.PaymentStatus(string(StatusPending))
	return created, nil
}

// UpdateStatus applies one legal transition. Capturing a payment marks the
// order paid before the payment itself is written, so a retry after a lost
// race converges.
func (s *Service) UpdateStatus(ctx context.Context, id int, status string) (Payment, error) {
	next, err := ParseStatus(status)
	if err != nil {
		return Payment{}, err
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	if !CanTransition(p.PaymentStatus, next) {
		return Payment{}, ErrIllegalTransition
	}

	if next == StatusPaid {
		if _, err := s.deps.Orders.MarkPaid(ctx, p.OrderID); err != nil {
			return Payment{}, err
		}
		now := s.deps.Clock().UTC()
		p.PaymentDate = &now
	}
	from := p.PaymentStatus
	p.PaymentStatus = next
	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return Payment{}, err
	}
	s.deps.Metrics.PaymentStatus(string(next))
	s.deps.Logger.Info("payment status changed",
		zap.Int("payment_id", id), zap.Int("order_id", p.OrderID),
		zap.String("from", string(from)), zap.String("to", string(next)))
	return updated, nil
}

// Get hides payments of other users behind ErrNotFound unless caller is an
// admin.
func (s *Service) Get(ctx context.Context, id int, caller auth.Principal) (Payment, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	if !caller.CanAccess(p.UserID) {
		return Payment{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListAll(ctx context.Context) ([]Payment, error) {
	return s.repo.ListAll(ctx)
}

// ListForOrder returns every payment attempt for an order the caller can see.
func (s *Service) ListForOrder(ctx context.Context, orderID int, caller auth.Principal) ([]Payment, error) {
	o, err := s.deps.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(o.UserID) {
		return nil, order.ErrNotFound
	}
	return s.repo.ListByOrder(ctx, orderID)
}
