package review

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

func makeAppWithReviewHandler(h *Handler) *fiber.App {
	app := fiber.New()
	h.RegisterPublicRoutes(app)
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": id}})
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func reviewRequest(method, path, body, userID string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	return req
}

func TestReviewRoutes(t *testing.T) {
	app := makeAppWithReviewHandler(NewHandler(newTestService(t, purchaseSet{{7, 1}: true})))

	res, _ := app.Test(reviewRequest("POST", "/api/v1/reviews", `{"productId":1,"rating":5}`, ""))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", res.StatusCode)
	}
	res, _ = app.Test(reviewRequest("POST", "/api/v1/reviews", `{"productId":2,"rating":5}`, "7"))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for a product not received, got %d", res.StatusCode)
	}
	res, _ = app.Test(reviewRequest("POST", "/api/v1/reviews", `{"productId":1,"rating":5,"comment":"good"}`, "7"))
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}
	res, _ = app.Test(reviewRequest("POST", "/api/v1/reviews", `{"productId":1,"rating":4}`, "7"))
	b, _ := io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusBadRequest || !strings.Contains(string(b), "already reviewed") {
		t.Fatalf("expected 400 for a repeat review, got %d %s", res.StatusCode, b)
	}

	res, _ = app.Test(reviewRequest("PUT", "/api/v1/reviews/1", `{"rating":3}`, "8"))
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for another user's review, got %d", res.StatusCode)
	}
	res, _ = app.Test(reviewRequest("PUT", "/api/v1/reviews/1", `{"rating":3}`, "7"))
	b, _ = io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusOK || !strings.Contains(string(b), `"rating":3`) {
		t.Fatalf("expected updated rating, got %d %s", res.StatusCode, b)
	}
	res, _ = app.Test(reviewRequest("POST", "/api/v1/reviews/1", `{"comment":"still good"}`, "7"))
	b, _ = io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusOK || !strings.Contains(string(b), `"comment":"still good"`) {
		t.Fatalf("expected POST alias to update, got %d %s", res.StatusCode, b)
	}

	res, _ = app.Test(reviewRequest("GET", "/api/v1/reviews/product/1", "", ""))
	b, _ = io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusOK || !strings.Contains(string(b), `"userName":"Ann"`) {
		t.Fatalf("expected public list with names, got %d %s", res.StatusCode, b)
	}

	res, _ = app.Test(reviewRequest("DELETE", "/api/v1/reviews/1", "", "7"))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", res.StatusCode)
	}
	res, _ = app.Test(reviewRequest("DELETE", "/api/v1/reviews/1", "", "7"))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", res.StatusCode)
	}
}
