package address

import (
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

func makeAppWithAddressHandler(aHandler *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": id}})
			}
		}
		return c.Next()
	})
	aHandler.RegisterProtectedRoutes(app)
	return app
}

func TestAddressRoutes(t *testing.T) {
	repo := NewInMemoryRepository([]Address{{ID: 5, UserID: 2, Shipping: Shipping{AddressLine: "9 Elm", City: "Oslo", Country: "NO"}}})
	app := makeAppWithAddressHandler(NewHandler(NewService(repo)))

	req := httptest.NewRequest("GET", "/api/v1/address", nil)
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/v1/address", strings.NewReader(`{"addressLine":" 1 Main St ","city":"Bangkok","country":"TH"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"addressLine":"1 Main St"`) {
		t.Fatalf("expected trimmed address line, got %s", b)
	}

	req = httptest.NewRequest("POST", "/api/v1/address", strings.NewReader(`{"city":"Bangkok"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for incomplete address, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("GET", "/api/v1/address", nil)
	req.Header.Set("X-User-ID", "1")
	res, _ = app.Test(req)
	b, _ = io.ReadAll(res.Body)
	if strings.Contains(string(b), "Oslo") {
		t.Fatalf("listed another user's address: %s", b)
	}

	// someone else's address looks absent
	req = httptest.NewRequest("DELETE", "/api/v1/address/5", nil)
	req.Header.Set("X-User-ID", "1")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 deleting foreign address, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("DELETE", "/api/v1/address/5", nil)
	req.Header.Set("X-User-ID", "2")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204 for owner delete, got %d", res.StatusCode)
	}
}
