package user

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// makeAppWithUserHandler plants a jwt.Token in locals when X-User-ID is set,
// standing in for jwtware.
func makeAppWithUserHandler(uHandler *Handler) *fiber.App {
	app := fiber.New()
	uHandler.RegisterPublicRoutes(app)
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				claims := jwt.MapClaims{"user_id": id, "role": c.Get("X-Role")}
				c.Locals("user", &jwt.Token{Claims: claims})
			}
		}
		return c.Next()
	})
	uHandler.RegisterProtectedRoutes(app)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s failed: %v", path, err)
	}
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, string(b)
}

func TestSignUpSignInAndProfile(t *testing.T) {
	service := NewService(NewInMemoryRepository(nil), "boss@shop.test")
	app := makeAppWithUserHandler(NewHandler(service, "secret", time.Hour))

	status, body := postJSON(t, app, "/api/v1/sign-up", `{"email":"Jenny@Example.com","password":"pw","name":"Jenny"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201 on sign-up, got %d: %s", status, body)
	}
	if strings.Contains(body, `"password":"`) {
		t.Fatalf("password leaked in response: %s", body)
	}
	if !strings.Contains(body, "jenny@example.com") {
		t.Fatalf("expected lowercased email, got %s", body)
	}

	status, _ = postJSON(t, app, "/api/v1/sign-up", `{"email":"jenny@example.com","password":"pw","name":"Jenny"}`)
	if status != fiber.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", status)
	}

	status, _ = postJSON(t, app, "/api/v1/sign-up", `{"email":"x@example.com"}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", status)
	}

	status, _ = postJSON(t, app, "/api/v1/sign-in", `{"email":"jenny@example.com","password":"wrong"}`)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", status)
	}

	status, body = postJSON(t, app, "/api/v1/sign-in", `{"email":"JENNY@example.com","password":"pw"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 on sign-in, got %d: %s", status, body)
	}
	var login struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	if err := json.Unmarshal([]byte(body), &login); err != nil {
		t.Fatalf("decode sign-in: %v", err)
	}
	if login.Token == "" {
		t.Fatalf("expected a token")
	}

	req := httptest.NewRequest("GET", "/api/v1/profile", nil)
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("GET", "/api/v1/profile", nil)
	req.Header.Set("X-User-ID", strconv.Itoa(login.User.ID))
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for profile, got %d", res.StatusCode)
	}
}
