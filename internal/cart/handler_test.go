package cart

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/shop-backend/internal/product"
)

func makeAppWithCartHandler(cHandler *Handler) *fiber.App {
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
	cHandler.RegisterProtectedRoutes(app)
	return app
}

func cartRequestFor(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	return req
}

func TestCartRoutes_Basic(t *testing.T) {
	catalog := product.NewInMemoryRepository([]product.Product{{ID: 3, Name: "Bowl", Price: decimal.NewFromInt(100), Stock: 1}})
	service := NewService(NewInMemoryRepository(nil), product.NewCatalogProvider(catalog), nil, nil)
	app := makeAppWithCartHandler(NewHandler(service))

	// unauthorized access should be blocked
	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/cart", nil))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated GET, got %d", res.StatusCode)
	}

	// no cart yet
	res, _ = app.Test(cartRequestFor("GET", "/api/v1/cart", ""))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 before first add, got %d", res.StatusCode)
	}

	res, _ = app.Test(cartRequestFor("POST", "/api/v1/cart/add", `{"productId":3,"quantity":2}`))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for add, got %d", res.StatusCode)
	}
	res, _ = app.Test(cartRequestFor("POST", "/api/v1/cart/add", `{"productId":3,"quantity":1}`))
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"quantity":3`) {
		t.Fatalf("expected merged quantity 3, got %s", b)
	}

	res, _ = app.Test(cartRequestFor("POST", "/api/v1/cart/add", `{"productId":3,"quantity":0}`))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for zero quantity, got %d", res.StatusCode)
	}
	res, _ = app.Test(cartRequestFor("POST", "/api/v1/cart/add", `{"productId":8,"quantity":1}`))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", res.StatusCode)
	}

	res, _ = app.Test(cartRequestFor("PUT", "/api/v1/cart/update", `{"productId":3,"quantity":7}`))
	b, _ = io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusOK || !strings.Contains(string(b), `"quantity":7`) {
		t.Fatalf("expected absolute update to 7, got %d %s", res.StatusCode, b)
	}

	for i := 0; i < 2; i++ {
		res, _ = app.Test(cartRequestFor("DELETE", "/api/v1/cart/delete", `{"productId":3}`))
		if res.StatusCode != fiber.StatusOK {
			t.Fatalf("expected 200 for remove #%d, got %d", i+1, res.StatusCode)
		}
	}

	res, _ = app.Test(cartRequestFor("GET", "/api/v1/cart", ""))
	b, _ = io.ReadAll(res.Body)
	if strings.Contains(string(b), `"productId":3`) {
		t.Fatalf("expected product removed, got %s", b)
	}

	res, _ = app.Test(cartRequestFor("DELETE", "/api/v1/cart", ""))
	if res.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204 for clear, got %d", res.StatusCode)
	}
}
