package payment

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

func makeAppWithPaymentHandler(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": id, "role": c.Get("X-Role")}})
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func paymentRequestFor(method, path, body, userID, role string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID)
	if role != "" {
		req.Header.Set("X-Role", role)
	}
	return req
}

func TestPaymentRoutes(t *testing.T) {
	f := newFixture(t)
	o := placeOrder(t, f, 7, 2)
	app := makeAppWithPaymentHandler(NewHandler(f.svc))
	body := `{"order":` + strconv.Itoa(o.ID) + `,"user":7,"paymentMethod":"UPI","amount":200,"transactionId":"tx-1"}`

	res, _ := app.Test(paymentRequestFor("POST", "/api/v1/payments", `{"order":1,"user":7,"paymentMethod":"UPI"}`, "7", ""))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 without amount, got %d", res.StatusCode)
	}

	res, _ = app.Test(paymentRequestFor("POST", "/api/v1/payments", body, "7", ""))
	b, _ := io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusCreated || !strings.Contains(string(b), `"paymentStatus":"pending"`) {
		t.Fatalf("expected 201 pending, got %d %s", res.StatusCode, b)
	}
	res, _ = app.Test(paymentRequestFor("POST", "/api/v1/payments", body, "7", ""))
	if res.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for a second active payment, got %d", res.StatusCode)
	}

	res, _ = app.Test(paymentRequestFor("GET", "/api/v1/payments/1", "", "8", ""))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for another user's payment, got %d", res.StatusCode)
	}
	res, _ = app.Test(paymentRequestFor("GET", "/api/v1/payments", "", "7", ""))
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for non-admin list, got %d", res.StatusCode)
	}

	res, _ = app.Test(paymentRequestFor("PUT", "/api/v1/payments/1/status", `{"paymentStatus":"bogus"}`, "1", "admin"))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for bogus status, got %d", res.StatusCode)
	}
	res, _ = app.Test(paymentRequestFor("PUT", "/api/v1/payments/1/status", `{"paymentStatus":"paid"}`, "1", "admin"))
	b, _ = io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusOK || !strings.Contains(string(b), `"paymentStatus":"paid"`) {
		t.Fatalf("expected 200 paid, got %d %s", res.StatusCode, b)
	}

	res, _ = app.Test(paymentRequestFor("GET", "/api/v1/payments/order/"+strconv.Itoa(o.ID), "", "7", ""))
	b, _ = io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusOK || !strings.Contains(string(b), `"transactionId":"tx-1"`) {
		t.Fatalf("expected order payments, got %d %s", res.StatusCode, b)
	}
}
