package main

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wichananm65/shop-backend/internal/address"
	"github.com/wichananm65/shop-backend/internal/auth"
	"github.com/wichananm65/shop-backend/internal/cart"
	"github.com/wichananm65/shop-backend/internal/config"
	"github.com/wichananm65/shop-backend/internal/order"
	"github.com/wichananm65/shop-backend/internal/payment"
	"github.com/wichananm65/shop-backend/internal/platform/httpx"
	"github.com/wichananm65/shop-backend/internal/platform/idempotency"
	"github.com/wichananm65/shop-backend/internal/platform/metrics"
	"github.com/wichananm65/shop-backend/internal/product"
	"github.com/wichananm65/shop-backend/internal/review"
	"github.com/wichananm65/shop-backend/internal/user"
)

// backends are the stores behind the HTTP surface. main fills them with
// Postgres and Redis; tests use the in-memory implementations.
type backends struct {
	users       user.Repository
	products    product.Repository
	addresses   address.Repository
	carts       cart.Repository
	orders      order.Repository
	payments    payment.Repository
	reviews     review.Repository
	cartCache   cart.Cache
	idempotency idempotency.Store
	ping        func(ctx context.Context) error
}

func newApp(cfg config.Config, b backends, logger *zap.Logger, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "shop-backend",
		ErrorHandler: httpx.ErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + idempotency.HeaderKey,
	}))
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(httpx.RequestLogger(logger))
	app.Use(m.Middleware())
	app.Use(httpx.Timeout(cfg.RequestTimeout))

	catalog := product.NewCatalogProvider(b.products)
	userService := user.NewService(b.users, cfg.AdminEmails...)
	productService := product.NewService(b.products)
	addressService := address.NewService(b.addresses)
	cartService := cart.NewService(b.carts, catalog, b.cartCache, logger.Named("cart"))
	orderService := order.NewService(b.orders, order.Deps{
		Catalog:   catalog,
		Carts:     cartService,
		Addresses: addressService,
		Users:     userService,
		Metrics:   m,
		Logger:    logger.Named("order"),
	})
	paymentService := payment.NewService(b.payments, payment.Deps{
		Orders:  orderService,
		Users:   userService,
		Metrics: m,
		Logger:  logger.Named("payment"),
	})
	reviewService := review.NewService(b.reviews, catalog, orderService, userService, logger.Named("review"))

	userHandler := user.NewHandler(userService, cfg.JWTSecret, cfg.TokenTTL)
	productHandler := product.NewHandler(productService)
	reviewHandler := review.NewHandler(reviewService)

	app.Get("/health", func(c *fiber.Ctx) error {
		if b.ping != nil {
			if err := b.ping(c.UserContext()); err != nil {
				httpx.Logger(c).Error("health check failed", zap.Error(err))
				return httpx.Message(c, fiber.StatusServiceUnavailable, "unavailable")
			}
		}
		return httpx.Message(c, fiber.StatusOK, "ok")
	})
	app.Get("/metrics", m.Handler())

	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	reviewHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{SigningKey: []byte(cfg.JWTSecret)}))
	app.Use(idempotency.New(b.idempotency,
		idempotency.WithIdentity(auth.Identity),
		idempotency.WithLogger(logger.Named("idempotency")),
	))

	userHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterProtectedRoutes(app)
	address.NewHandler(addressService).RegisterProtectedRoutes(app)
	cart.NewHandler(cartService).RegisterProtectedRoutes(app)
	order.NewHandler(orderService).RegisterProtectedRoutes(app)
	payment.NewHandler(paymentService).RegisterProtectedRoutes(app)
	reviewHandler.RegisterProtectedRoutes(app)

	return app
}
