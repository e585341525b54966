package cart

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/shop-backend/internal/platform/apperr"
)

var (
	ErrNotFound        = fmt.Errorf("%w: cart not found", apperr.ErrNotFound)
	ErrItemNotFound    = fmt.Errorf("%w: item not found in cart", apperr.ErrNotFound)
	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be at least 1", apperr.ErrInvalidRequest)
	ErrInvalidProduct  = fmt.Errorf("%w: productId is required", apperr.ErrInvalidRequest)
	ErrConflict        = fmt.Errorf("%w: cart was modified concurrently, retry", apperr.ErrConflict)
)

// Item is one cart line. Price is the unit price when the product was first
// added; merging more of the same product keeps it.
type Item struct {
	ProductID int             `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type Cart struct {
	UserID    int       `json:"userId"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
	// Version is 0 for a cart that has never been stored.
	Version int `json:"version"`
}

func (c Cart) clone() Cart {
	out := c
	out.Items = make([]Item, len(c.Items))
	copy(out.Items, c.Items)
	return out
}

func (c Cart) indexOf(productID int) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// ProductIDs lists the products in line order.
func (c Cart) ProductIDs() []int {
	ids := make([]int, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.ProductID
	}
	return ids
}

// LineView is a cart line with live catalog fields next to the stored
// snapshot price. LivePrice may differ from Price.
type LineView struct {
	Item
	Name      string          `json:"name"`
	LivePrice decimal.Decimal `json:"livePrice"`
	Available bool            `json:"available"`
}

type View struct {
	UserID    int        `json:"userId"`
	Items     []LineView `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Version   int        `json:"version"`
}
