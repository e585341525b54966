// Package auth turns verified JWT claims into an explicit Principal that
// handlers pass to services. Fetched entities are never mutated with claim data.
package auth

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole falls back to RoleUser for anything unrecognised.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Principal is the authenticated caller.
type Principal struct {
	UserID int
	Role   Role
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// CanAccess reports whether p may read a resource owned by ownerID.
func (p Principal) CanAccess(ownerID int) bool {
	return p.IsAdmin() || p.UserID == ownerID
}

// IssueToken signs an HS256 token carrying user_id and role.
func IssueToken(secret string, userID int, role Role, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// FromCtx reads the token stored by jwtware under Locals("user").
func FromCtx(c *fiber.Ctx) (Principal, error) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok || tok == nil {
		return Principal{}, fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, fiber.ErrUnauthorized
	}
	id, ok := intClaim(claims["user_id"])
	if !ok || id <= 0 {
		return Principal{}, fiber.ErrUnauthorized
	}
	role, _ := claims["role"].(string)
	return Principal{UserID: id, Role: ParseRole(role)}, nil
}

func intClaim(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		id, err := strconv.Atoi(v)
		return id, err == nil
	default:
		return 0, false
	}
}

// RequireAdmin rejects non-admin callers with 403.
func RequireAdmin(c *fiber.Ctx) error {
	p, err := FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if !p.IsAdmin() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin access required"})
	}
	return c.Next()
}

// Identity keys per-user state such as idempotency records.
func Identity(c *fiber.Ctx) string {
	p, err := FromCtx(c)
	if err != nil {
		return "anonymous"
	}
	return strconv.Itoa(p.UserID)
}
