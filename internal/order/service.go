package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wichananm65/shop-backend/internal/address"
	"github.com/wichananm65/shop-backend/internal/auth"
	"github.com/wichananm65/shop-backend/internal/cart"
	"github.com/wichananm65/shop-backend/internal/platform/logging"
	"github.com/wichananm65/shop-backend/internal/platform/metrics"
	"github.com/wichananm65/shop-backend/internal/product"
	"github.com/wichananm65/shop-backend/internal/user"
)

// CartSource is what checkout reads from the cart service.
type CartSource interface {
	Load(ctx context.Context, userID int) (cart.Cart, error)
	Refresh(ctx context.Context, userID int)
}

type AddressBook interface {
	Get(ctx context.Context, userID, addressID int) (address.Address, error)
}

type UserDirectory interface {
	Summaries(ctx context.Context, ids []int) (map[int]user.Summary, error)
}

// Deps are the collaborators of the order service. Carts, Addresses and Users
// may be nil; the operations that need them then fail or skip enrichment.
type Deps struct {
	Catalog   product.Provider
	Carts     CartSource
	Addresses AddressBook
	Users     UserDirectory
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Clock     func() time.Time
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

type LineInput struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// PlaceInput describes a new order. ShippingAddress is used when AddressID is
// zero.
type PlaceInput struct {
	Items           []LineInput      `json:"items"`
	ShippingAddress address.Shipping `json:"shippingAddress"`
	AddressID       int              `json:"addressId"`
	PaymentMethod   string           `json:"paymentMethod"`
}

// PlaceOrder freezes catalog prices for the given lines and stores a pending
// order. The caller's cart is not touched.
func (s *Service) PlaceOrder(ctx context.Context, userID int, in PlaceInput) (Order, error) {
	lines, err := mergeLines(in.Items)
	if err != nil {
		return Order{}, err
	}
	shipping, err := s.shipping(ctx, userID, in.AddressID, in.ShippingAddress)
	if err != nil {
		return Order{}, err
	}
	if in.PaymentMethod == "" {
		return Order{}, ErrMissingPaymentMethod
	}

	items, err := s.freeze(ctx, lines)
	if err != nil {
		return Order{}, err
	}
	created, err := s.repo.Create(ctx, newOrder(userID, items, shipping, in.PaymentMethod))
	if err != nil {
		return Order{}, err
	}
	s.placed(created)
	return created, nil
}

// Checkout turns the stored cart into an order and empties the cart in one
// step. Prices come from the catalog at checkout time.
func (s *Service) Checkout(ctx context.Context, userID int, in PlaceInput) (Order, error) {
	if s.deps.Carts == nil {
		return Order{}, errors.New("order: checkout requires a cart source")
	}
	c, err := s.deps.Carts.Load(ctx, userID)
	if err != nil {
		return Order{}, err
	}
	if len(c.Items) == 0 {
		return Order{}, ErrEmptyCart
	}
	shipping, err := s.shipping(ctx, userID, in.AddressID, in.ShippingAddress)
	if err != nil {
		return Order{}, err
	}
	if in.PaymentMethod == "" {
		return Order{}, ErrMissingPaymentMethod
	}

	lines := make([]LineInput, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, LineInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	items, err := s.freeze(ctx, lines)
	if err != nil {
		return Order{}, err
	}

	created, err := s.repo.CreateFromCart(ctx, newOrder(userID, items, shipping, in.PaymentMethod), c.Version)
	if err != nil {
		return Order{}, err
	}
	s.deps.Carts.Refresh(ctx, userID)
	s.placed(created)
	return created, nil
}

// AdvanceStatus moves an order along the status graph. Entering delivered
// stamps DeliveredAt and marks the order paid.
func (s *Service) AdvanceStatus(ctx context.Context, id int, status string) (Order, error) {
	next, err := ParseStatus(status)
	if err != nil {
		return Order{}, err
	}
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(o.OrderStatus, next) {
		return Order{}, fmt.Errorf("%w: %s to %s", ErrIllegalTransition, o.OrderStatus, next)
	}

	from := o.OrderStatus
	o.OrderStatus = next
	if next == StatusDelivered {
		now := s.deps.Clock().UTC()
		o.DeliveredAt = &now
		o.PaymentStatus = PaymentPaid
	}
	updated, err := s.repo.Update(ctx, o)
	if err != nil {
		return Order{}, err
	}
	s.deps.Metrics.OrderTransition(string(from), string(next))
	s.deps.Logger.Info("order status changed",
		zap.Int("order_id", id), zap.String("from", string(from)), zap.String("to", string(next)))
	return updated, nil
}

// MarkPaid records a captured payment. Already paid orders are returned as is.
func (s *Service) MarkPaid(ctx context.Context, id int) (Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o.OrderStatus == StatusCancelled {
		return Order{}, ErrCancelled
	}
	if o.PaymentStatus == PaymentPaid {
		return o, nil
	}
	o.PaymentStatus = PaymentPaid
	return s.repo.Update(ctx, o)
}

// Get returns the stored order without enrichment or ownership checks.
func (s *Service) Get(ctx context.Context, id int) (Order, error) {
	return s.repo.Get(ctx, id)
}

// GetOrder returns the order with display fields. Callers other than the
// owner or an admin see ErrNotFound.
func (s *Service) GetOrder(ctx context.Context, id int, p auth.Principal) (Detail, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	if !p.CanAccess(o.UserID) {
		return Detail{}, ErrNotFound
	}
	details, err := s.enrich(ctx, []Order{o})
	if err != nil {
		return Detail{}, err
	}
	return details[0], nil
}

func (s *Service) ListForUser(ctx context.Context, userID int) ([]Detail, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, orders)
}

func (s *Service) ListAll(ctx context.Context) ([]Detail, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, orders)
}

// HasDeliveredPurchase reports whether userID has a delivered order that
// contains productID.
func (s *Service) HasDeliveredPurchase(ctx context.Context, userID, productID int) (bool, error) {
	return s.repo.HasDeliveredWithProduct(ctx, userID, productID)
}

func (s *Service) shipping(ctx context.Context, userID, addressID int, inline address.Shipping) (address.Shipping, error) {
	if addressID > 0 {
		if s.deps.Addresses == nil {
			return address.Shipping{}, ErrMissingAddress
		}
		a, err := s.deps.Addresses.Get(ctx, userID, addressID)
		if err != nil {
			return address.Shipping{}, err
		}
		return a.Shipping, nil
	}
	if inline.IsZero() {
		return address.Shipping{}, ErrMissingAddress
	}
	inline = inline.Normalize()
	if err := inline.Validate(); err != nil {
		return address.Shipping{}, err
	}
	return inline, nil
}

// freeze resolves every line through the catalog and pins its unit price.
func (s *Service) freeze(ctx context.Context, lines []LineInput) ([]Item, error) {
	ids := make([]int, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	snaps, err := s.deps.Catalog.Snapshots(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		snap, ok := snaps[l.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %d", product.ErrNotFound, l.ProductID)
		}
		items = append(items, Item{ProductID: l.ProductID, Quantity: l.Quantity, Price: snap.Price})
	}
	return items, nil
}

func (s *Service) placed(o Order) {
	s.deps.Metrics.OrderPlaced()
	s.deps.Logger.Info("order placed",
		zap.Int("order_id", o.ID), zap.Int("user_id", o.UserID), zap.String("total", o.TotalPrice.String()))
}

func (s *Service) enrich(ctx context.Context, orders []Order) ([]Detail, error) {
	userIDs := make([]int, 0, len(orders))
	productIDs := make([]int, 0)
	for _, o := range orders {
		userIDs = append(userIDs, o.UserID)
		for _, it := range o.Items {
			productIDs = append(productIDs, it.ProductID)
		}
	}

	users := map[int]user.Summary{}
	if s.deps.Users != nil && len(userIDs) > 0 {
		var err error
		if users, err = s.deps.Users.Summaries(ctx, userIDs); err != nil {
			return nil, err
		}
	}
	snaps := map[int]product.Snapshot{}
	if len(productIDs) > 0 {
		var err error
		if snaps, err = s.deps.Catalog.Snapshots(ctx, productIDs); err != nil {
			return nil, err
		}
	}

	out := make([]Detail, 0, len(orders))
	for _, o := range orders {
		out = append(out, detail(o, users, snaps))
	}
	return out, nil
}

func newOrder(userID int, items []Item, shipping address.Shipping, method string) Order {
	return Order{
		UserID:          userID,
		Items:           items,
		ShippingAddress: shipping,
		PaymentMethod:   method,
		TotalPrice:      total(items),
		OrderStatus:     StatusPending,
		PaymentStatus:   PaymentPending,
	}
}

// mergeLines validates quantities and folds repeated products into one line,
// keeping first-seen order.
func mergeLines(in []LineInput) ([]LineInput, error) {
	if len(in) == 0 {
		return nil, ErrNoItems
	}
	out := make([]LineInput, 0, len(in))
	index := make(map[int]int, len(in))
	for _, l := range in {
		if l.ProductID <= 0 {
			return nil, fmt.Errorf("%w: %d", product.ErrNotFound, l.ProductID)
		}
		if l.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if i, ok := index[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out, nil
}
