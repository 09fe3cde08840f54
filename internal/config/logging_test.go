package config

import "testing"

func TestLoadLogDefaults(t *testing.T) {
	cfg, err := LoadLog()
	if err != nil {
		t.Fatalf("LoadLog() error = %v", err)
	}
	if cfg.Level != "info" {
		t.Fatalf("Level = %q, want info", cfg.Level)
	}
	if cfg.Service != "betting-server" {
		t.Fatalf("Service = %q, want betting-server", cfg.Service)
	}
}

func TestLoadLogParse(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FILE", "/tmp/kasibet.log")
	t.Setenv("LOG_MAX_MB", "3")

	cfg, err := LoadLog()
	if err != nil {
		t.Fatalf("LoadLog() error = %v", err)
	}
	if cfg.Level != "debug" || cfg.File != "/tmp/kasibet.log" || cfg.MaxMB != 3 {
		t.Fatalf("unexpected log config: %+v", cfg)
	}
}
