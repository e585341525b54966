package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wichananm65/shop-backend/internal/address"
	"github.com/wichananm65/shop-backend/internal/cart"
	"github.com/wichananm65/shop-backend/internal/config"
	"github.com/wichananm65/shop-backend/internal/order"
	"github.com/wichananm65/shop-backend/internal/payment"
	"github.com/wichananm65/shop-backend/internal/platform/database"
	"github.com/wichananm65/shop-backend/internal/platform/idempotency"
	"github.com/wichananm65/shop-backend/internal/platform/logging"
	"github.com/wichananm65/shop-backend/internal/platform/metrics"
	"github.com/wichananm65/shop-backend/internal/product"
	"github.com/wichananm65/shop-backend/internal/review"
	"github.com/wichananm65/shop-backend/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := database.Migrate(db); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	carts := cart.NewPostgresRepository(db)
	b := backends{
		users:       user.NewPostgresRepository(db),
		products:    product.NewPostgresRepository(db),
		addresses:   address.NewPostgresRepository(db),
		carts:       carts,
		orders:      order.NewPostgresRepository(db),
		payments:    payment.NewPostgresRepository(db),
		reviews:     review.NewPostgresRepository(db),
		cartCache:   cart.NopCache{},
		idempotency: idempotency.NewMemoryStore(),
		ping:        db.PingContext,
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		b.cartCache = cart.NewRedisCache(rdb)
		b.idempotency = idempotency.NewRedisStore(rdb)
		logger.Info("redis connected", zap.String("addr", cfg.RedisAddr))
	} else {
		logger.Warn("REDIS_ADDR not set, using in-process idempotency store and no cart cache")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewDBStatsCollector(db, "shop"))
	app := newApp(cfg, b, logger, metrics.New(reg))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}
