package payment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/shop-backend/internal/platform/apperr"
)

var (
	ErrNotFound          = fmt.Errorf("%w: payment not found", apperr.ErrNotFound)
	ErrMissingFields     = fmt.Errorf("%w: order, user, paymentMethod and a positive amount are required", apperr.ErrInvalidRequest)
	ErrInvalidMethod     = fmt.Errorf("%w: unsupported payment method", apperr.ErrInvalidRequest)
	ErrInvalidStatus     = fmt.Errorf("%w: invalid payment status", apperr.ErrInvalidRequest)
	ErrIllegalTransition = fmt.Errorf("%w: illegal payment status transition", apperr.ErrInvalidRequest)
	ErrAmountMismatch    = fmt.Errorf("%w: amount does not match order total", apperr.ErrInvalidRequest)
	ErrOwnerMismatch     = fmt.Errorf("%w: user does not own the order", apperr.ErrInvalidRequest)
	ErrOrderCancelled    = fmt.Errorf("%w: order is cancelled", apperr.ErrInvalidRequest)
	ErrForeignUser       = fmt.Errorf("%w: cannot pay on behalf of another user", apperr.ErrForbidden)
	ErrActivePayment     = fmt.Errorf("%w: order already has an active payment", apperr.ErrConflict)
	ErrConflict          = fmt.Errorf("%w: payment was modified concurrently, retry", apperr.ErrConflict)
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

var transitions = map[Status]map[Status]bool{
	StatusPending: {StatusPaid: true, StatusFailed: true},
	StatusPaid:    {StatusRefunded: true},
}

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusPaid, StatusFailed, StatusRefunded:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func CanTransition(from, to Status) bool {
	return transitions[from][to]
}

// Active payments block a second payment for the same order.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusPaid
}

type Method string

const (
	MethodUPI        Method = "UPI"
	MethodCard       Method = "Card"
	MethodCOD        Method = "COD"
	MethodWallet     Method = "Wallet"
	MethodNetBanking Method = "NetBanking"
)

func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodUPI, MethodCard, MethodCOD, MethodWallet, MethodNetBanking:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMethod, s)
}

type Payment struct {
	ID            int             `json:"paymentId"`
	OrderID       int             `json:"orderId"`
	UserID        int             `json:"userId"`
	PaymentMethod Method          `json:"paymentMethod"`
	PaymentStatus Status          `json:"paymentStatus"`
	TransactionID string          `json:"transactionId,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   *time.Time      `json:"paymentDate,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	Version       int             `json:"version"`
}

func (p Payment) clone() Payment {
	out := p
	if p.PaymentDate != nil {
		t := *p.PaymentDate
		out.PaymentDate = &t
	}
	return out
}
