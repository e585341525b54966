package review

import (
	"fmt"
	"time"

	"github.com/wichananm65/shop-backend/internal/platform/apperr"
)

var (
	ErrNotFound      = fmt.Errorf("%w: review not found", apperr.ErrNotFound)
	ErrInvalidRating = fmt.Errorf("%w: rating must be between 1 and 5", apperr.ErrInvalidRequest)
	ErrNotPurchased  = fmt.Errorf("%w: product has not been delivered to this user", apperr.ErrInvalidRequest)
	// ErrDuplicate is a conflict, but the review routes answer it with 400.
	ErrDuplicate = fmt.Errorf("%w: product already reviewed by this user", apperr.ErrConflict)
	ErrNotOwner  = fmt.Errorf("%w: review belongs to another user", apperr.ErrForbidden)
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID        int       `json:"reviewId"`
	ProductID int       `json:"productId"`
	UserID    int       `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// View carries only display names of the author and product.
type View struct {
	Review
	UserName    string `json:"userName,omitempty"`
	ProductName string `json:"productName,omitempty"`
}

func validRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
