package user

import (
	"fmt"
	"time"

	"github.com/wichananm65/shop-backend/internal/auth"
	"github.com/wichananm65/shop-backend/internal/platform/apperr"
)

var (
	ErrNotFound           = fmt.Errorf("%w: user not found", apperr.ErrNotFound)
	ErrEmailExists        = fmt.Errorf("%w: email already exists", apperr.ErrConflict)
	ErrMissingFields      = fmt.Errorf("%w: missing required fields", apperr.ErrInvalidRequest)
	ErrInvalidCredentials = fmt.Errorf("invalid email or password")
)

type User struct {
	ID        int       `json:"userId"`
	Email     string    `json:"email"`
	Password  string    `json:"password,omitempty"`
	Name      string    `json:"name"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary is the limited view embedded in orders and reviews.
type Summary struct {
	ID    int    `json:"userId"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email}
}

func sanitizeUser(u User) User {
	u.Password = ""
	return u
}
