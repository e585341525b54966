package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SHOP_ADDR", "")
	t.Setenv("PORT", "")
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("RUN_MIGRATIONS", "")

	cfg := Load()
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.Addr)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", cfg.RequestTimeout)
	}
	if !cfg.RunMigrations {
		t.Fatalf("migrations should run by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SHOP_ADDR", "")
	t.Setenv("PORT", "9090")
	t.Setenv("REQUEST_TIMEOUT", "2")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("APP_ENV", "production")
	t.Setenv("ADMIN_EMAILS", " Ops@Shop.test, ,root@shop.test")

	cfg := Load()
	if cfg.Addr != ":9090" {
		t.Fatalf("expected :9090, got %q", cfg.Addr)
	}
	if cfg.RequestTimeout != 2*time.Second {
		t.Fatalf("expected bare seconds to parse, got %s", cfg.RequestTimeout)
	}
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("expected 1h token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.RunMigrations {
		t.Fatalf("expected migrations disabled")
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production env")
	}
	if len(cfg.AdminEmails) != 2 || cfg.AdminEmails[0] != "ops@shop.test" {
		t.Fatalf("unexpected admin emails %v", cfg.AdminEmails)
	}
}
