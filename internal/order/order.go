package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/shop-backend/internal/address"
	"github.com/wichananm65/shop-backend/internal/platform/apperr"
	"github.com/wichananm65/shop-backend/internal/product"
	"github.com/wichananm65/shop-backend/internal/user"
)

var (
	ErrNotFound             = fmt.Errorf("%w: order not found", apperr.ErrNotFound)
	ErrNoItems              = fmt.Errorf("%w: no order items", apperr.ErrInvalidRequest)
	ErrInvalidQuantity      = fmt.Errorf("%w: quantity must be at least 1", apperr.ErrInvalidRequest)
	ErrInvalidStatus        = fmt.Errorf("%w: invalid order status", apperr.ErrInvalidRequest)
	ErrIllegalTransition    = fmt.Errorf("%w: illegal order status transition", apperr.ErrInvalidRequest)
	ErrMissingAddress       = fmt.Errorf("%w: shipping address is required", apperr.ErrInvalidRequest)
	ErrMissingPaymentMethod = fmt.Errorf("%w: payment method is required", apperr.ErrInvalidRequest)
	ErrEmptyCart            = fmt.Errorf("%w: cart is empty", apperr.ErrInvalidRequest)
	ErrCancelled            = fmt.Errorf("%w: order is cancelled", apperr.ErrInvalidRequest)
	ErrConflict             = fmt.Errorf("%w: order was modified concurrently, retry", apperr.ErrConflict)
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// transitions lists every legal move. Anything absent, including staying in
// the same status, is rejected. delivered and cancelled are terminal.
var transitions = map[Status]map[Status]bool{
	StatusPending: {StatusShipped: true, StatusDelivered: true, StatusCancelled: true},
	StatusShipped: {StatusDelivered: true, StatusCancelled: true},
}

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusShipped, StatusDelivered, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func CanTransition(from, to Status) bool {
	return transitions[from][to]
}

// Item is a frozen order line. Price never changes after placement.
type Item struct {
	ProductID int             `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type Order struct {
	ID              int              `json:"orderId"`
	UserID          int              `json:"userId"`
	Items           []Item           `json:"items"`
	ShippingAddress address.Shipping `json:"shippingAddress"`
	PaymentMethod   string           `json:"paymentMethod"`
	TotalPrice      decimal.Decimal  `json:"totalPrice"`
	OrderStatus     Status           `json:"orderStatus"`
	PaymentStatus   PaymentStatus    `json:"paymentStatus"`
	DeliveredAt     *time.Time       `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	Version         int              `json:"version"`
}

// Contains reports whether any line is for productID.
func (o Order) Contains(productID int) bool {
	for _, it := range o.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

func (o Order) clone() Order {
	out := o
	out.Items = make([]Item, len(o.Items))
	copy(out.Items, o.Items)
	if o.DeliveredAt != nil {
		t := *o.DeliveredAt
		out.DeliveredAt = &t
	}
	return out
}

func total(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// ItemView adds display fields from the catalog. LivePrice is informational;
// Price is what the customer pays.
type ItemView struct {
	Item
	Name      string          `json:"name,omitempty"`
	LivePrice decimal.Decimal `json:"livePrice"`
}

// Detail is an order with user and product display fields.
type Detail struct {
	Order
	Items []ItemView    `json:"items"`
	User  *user.Summary `json:"user,omitempty"`
}

func detail(o Order, users map[int]user.Summary, snaps map[int]product.Snapshot) Detail {
	d := Detail{Order: o, Items: make([]ItemView, 0, len(o.Items))}
	if u, ok := users[o.UserID]; ok {
		d.User = &u
	}
	for _, it := range o.Items {
		v := ItemView{Item: it}
		if s, ok := snaps[it.ProductID]; ok {
			v.Name = s.Name
			v.LivePrice = s.Price
		}
		d.Items = append(d.Items, v)
	}
	return d
}
