package idempotency

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	HeaderKey    = "Idempotency-Key"
	HeaderReplay = "X-Idempotent-Replay"
)

type config struct {
	ttl      time.Duration
	methods  map[string]struct{}
	identity func(*fiber.Ctx) string
	clock    func() time.Time
	logger   *zap.Logger
}

type Option func(*config)

func WithTTL(ttl time.Duration) Option {
	return func(cfg *config) {
		if ttl > 0 {
			cfg.ttl = ttl
		}
	}
}

// WithMethods restricts the guarded methods. POST only by default.
func WithMethods(methods ...string) Option {
	return func(cfg *config) {
		if len(methods) == 0 {
			return
		}
		cfg.methods = make(map[string]struct{}, len(methods))
		for _, m := range methods {
			cfg.methods[strings.ToUpper(strings.TrimSpace(m))] = struct{}{}
		}
	}
}

// WithIdentity scopes keys to the caller so two users cannot collide.
func WithIdentity(fn func(*fiber.Ctx) string) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.identity = fn
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(cfg *config) {
		if clock != nil {
			cfg.clock = clock
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// New returns a fiber middleware. Requests without the header pass through
// untouched; the key is optional for clients.
func New(store Store, opts ...Option) fiber.Handler {
	cfg := config{
		ttl:      DefaultTTL,
		methods:  map[string]struct{}{fiber.MethodPost: {}},
		identity: func(*fiber.Ctx) string { return "anonymous" },
		clock:    time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return func(c *fiber.Ctx) error {
		if store == nil {
			return c.Next()
		}
		if _, ok := cfg.methods[c.Method()]; !ok {
			return c.Next()
		}
		key := strings.TrimSpace(c.Get(HeaderKey))
		if key == "" {
			return c.Next()
		}

		scoped := strings.Join([]string{cfg.identity(c), c.Method(), c.Path(), key}, "|")
		fingerprint := sha256Hex(append([]byte(c.Method()+" "+c.Path()+"\n"), c.Body()...))
		ctx := c.UserContext()

		reservation, err := store.Reserve(ctx, scoped, fingerprint, cfg.clock().UTC(), cfg.ttl)
		if errors.Is(err, ErrFingerprintMismatch) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "idempotency key reused with a different request"})
		}
		if err != nil {
			cfg.logger.Error("idempotency reserve failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
		}

		switch reservation.State {
		case ReservationStateCompleted:
			rec := reservation.Record
			if rec.ContentType != "" {
				c.Set(fiber.HeaderContentType, rec.ContentType)
			}
			c.Set(HeaderReplay, "true")
			return c.Status(rec.ResponseStatus).Send(rec.ResponseBody)
		case ReservationStatePending:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "a request with this idempotency key is in progress"})
		}

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError || status == fiber.StatusConflict {
			// server failures and version conflicts stay retryable under the same key
			if err := store.Release(ctx, scoped, fingerprint); err != nil {
				cfg.logger.Warn("idempotency release failed", zap.Error(err))
			}
			return nil
		}

		resp := Response{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        c.Response().Body(),
		}
		if err := store.SaveResponse(ctx, scoped, fingerprint, resp, cfg.clock().UTC(), cfg.ttl); err != nil {
			cfg.logger.Error("idempotency save failed", zap.String("key", key), zap.Error(err))
			if rerr := store.Release(ctx, scoped, fingerprint); rerr != nil {
				cfg.logger.Warn("idempotency release failed", zap.Error(rerr))
			}
		}
		return nil
	}
}
