package product

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/shop-backend/internal/platform/apperr"
)

var (
	ErrNotFound       = fmt.Errorf("%w: product not found", apperr.ErrNotFound)
	ErrInvalidProduct = fmt.Errorf("%w: invalid product", apperr.ErrInvalidRequest)
)

// Product is a catalog row.
type Product struct {
	ID          int             `json:"productId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Tags        []string        `json:"tags"`
	Colors      []string        `json:"colors"`
	Sizes       []string        `json:"sizes"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Snapshot is the catalog's answer for one product at one instant. Cart
// lines and order lines copy Price out of it.
type Snapshot struct {
	ID        int             `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
}

func (p Product) Snapshot() Snapshot {
	return Snapshot{ID: p.ID, Name: p.Name, Price: p.Price, Available: p.Stock > 0}
}

func (p Product) validate() error {
	if len(p.Name) < 2 {
		return fmt.Errorf("%w: name must be at least 2 characters", ErrInvalidProduct)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}
	return nil
}
