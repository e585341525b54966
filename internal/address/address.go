package address

import (
	"fmt"
	"strings"
	"time"

	"github.com/wichananm65/shop-backend/internal/platform/apperr"
)

var (
	ErrNotFound       = fmt.Errorf("%w: address not found", apperr.ErrNotFound)
	ErrInvalidAddress = fmt.Errorf("%w: addressLine, city and country are required", apperr.ErrInvalidRequest)
)

// Shipping is the value an order copies at placement time. Later edits to a
// saved address never reach existing orders.
type Shipping struct {
	AddressLine string `json:"addressLine"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
}

func (s Shipping) Normalize() Shipping {
	return Shipping{
		AddressLine: strings.TrimSpace(s.AddressLine),
		City:        strings.TrimSpace(s.City),
		State:       strings.TrimSpace(s.State),
		PostalCode:  strings.TrimSpace(s.PostalCode),
		Country:     strings.TrimSpace(s.Country),
	}
}

func (s Shipping) Validate() error {
	if s.AddressLine == "" || s.City == "" || s.Country == "" {
		return ErrInvalidAddress
	}
	return nil
}

func (s Shipping) IsZero() bool {
	return s == Shipping{}
}

type Address struct {
	ID     int `json:"addressId"`
	UserID int `json:"userId"`
	Shipping
	CreatedAt time.Time `json:"createdAt"`
}
