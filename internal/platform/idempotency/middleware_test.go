package idempotency

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCountingApp(store Store) (*fiber.App, *int) {
	calls := 0
	app := fiber.New()
	app.Use(New(store))
	app.Post("/things", func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"call": calls})
	})
	app.Post("/contended", func(c *fiber.Ctx) error {
		calls++
		if calls == 1 {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "cart was modified concurrently, retry"})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"call": calls})
	})
	app.Post("/broken", func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
	})
	return app, &calls
}

func post(t *testing.T, app *fiber.App, path, key, body string) (int, string, string) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(HeaderKey, key)
	}
	res, err := app.Test(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, string(b), res.Header.Get(HeaderReplay)
}

func TestMiddleware_ReplaysCompletedResponse(t *testing.T) {
	app, calls := newCountingApp(NewMemoryStore())

	status, body, replay := post(t, app, "/things", "k1", `{"a":1}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `{"call":1}`, body)
	assert.Empty(t, replay)

	status, body, replay = post(t, app, "/things", "k1", `{"a":1}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `{"call":1}`, body)
	assert.Equal(t, "true", replay)
	assert.Equal(t, 1, *calls)
}

func TestMiddleware_DifferentBodyIsRejected(t *testing.T) {
	app, calls := newCountingApp(NewMemoryStore())

	status, _, _ := post(t, app, "/things", "k1", `{"a":1}`)
	require.Equal(t, fiber.StatusCreated, status)

	status, _, _ = post(t, app, "/things", "k1", `{"a":2}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, 1, *calls)
}

func TestMiddleware_WithoutKeyPassesThrough(t *testing.T) {
	app, calls := newCountingApp(NewMemoryStore())

	post(t, app, "/things", "", `{}`)
	post(t, app, "/things", "", `{}`)
	assert.Equal(t, 2, *calls)
}

func TestMiddleware_InFlightDuplicateConflicts(t *testing.T) {
	store := NewMemoryStore()
	app, calls := newCountingApp(store)

	body := `{"a":1}`
	scoped := "anonymous|POST|/things|k1"
	fingerprint := sha256Hex([]byte("POST /things\n" + body))
	_, err := store.Reserve(context.Background(), scoped, fingerprint, time.Now().UTC(), time.Minute)
	require.NoError(t, err)

	status, _, _ := post(t, app, "/things", "k1", body)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, 0, *calls)
}

func TestMiddleware_ServerErrorsStayRetryable(t *testing.T) {
	app, calls := newCountingApp(NewMemoryStore())

	status, _, _ := post(t, app, "/broken", "k1", `{}`)
	require.Equal(t, fiber.StatusInternalServerError, status)
	status, _, replay := post(t, app, "/broken", "k1", `{}`)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Empty(t, replay)
	assert.Equal(t, 2, *calls)
}

func TestMiddleware_KeysAreScopedByIdentity(t *testing.T) {
	calls := 0
	app := fiber.New()
	app.Use(New(NewMemoryStore(), WithIdentity(func(c *fiber.Ctx) string { return c.Get("X-User-ID") })))
	app.Post("/things", func(c *fiber.Ctx) error {
		calls++
		return c.SendStatus(fiber.StatusCreated)
	})

	for _, user := range []string{"1", "2"} {
		req := httptest.NewRequest("POST", "/things", strings.NewReader(`{}`))
		req.Header.Set(HeaderKey, "same")
		req.Header.Set("X-User-ID", user)
		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, res.StatusCode)
	}
	assert.Equal(t, 2, calls)
}

func TestMiddleware_ConflictsStayRetryable(t *testing.T) {
	app, calls := newCountingApp(NewMemoryStore())

	status, _, _ := post(t, app, "/contended", "k-409", `{"a":1}`)
	assert.Equal(t, fiber.StatusConflict, status)

	status, body, replay := post(t, app, "/contended", "k-409", `{"a":1}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `{"call":2}`, body)
	assert.Empty(t, replay)
	assert.Equal(t, 2, *calls)

	status, _, replay = post(t, app, "/contended", "k-409", `{"a":1}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "true", replay)
	assert.Equal(t, 2, *calls)
}
