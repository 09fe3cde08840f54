package config

import (
	"testing"
	"time"
)

func TestLoadServerDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/kasibet?sslmode=disable")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.AdminAPIKey != "" || cfg.GatewayAPIKey != "" {
		t.Fatalf("expected empty api keys, got %+v", cfg)
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Fatalf("ShutdownTimeout = %s, want 15s", cfg.ShutdownTimeout)
	}
}

func TestLoadServerRequiresPostgresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")

	_, err := LoadServer()
	if err == nil {
		t.Fatal("LoadServer() expected error, got nil")
	}
}

func TestLoadServerParseKeys(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/kasibet?sslmode=disable")
	t.Setenv("ADMIN_API_KEY", "admin-secret")
	t.Setenv("GATEWAY_API_KEY", "gw-secret")
	t.Setenv("HTTP_ADDR", ":9090")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.AdminAPIKey != "admin-secret" || cfg.GatewayAPIKey != "gw-secret" {
		t.Fatalf("unexpected keys: %+v", cfg)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("HTTPAddr = %q, want :9090", cfg.HTTPAddr)
	}
}
