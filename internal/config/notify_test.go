package config

import (
	"testing"
	"time"
)

func TestLoadNotifyDefaults(t *testing.T) {
	cfg, err := LoadNotify()
	if err != nil {
		t.Fatalf("LoadNotify() error = %v", err)
	}
	if cfg.Enabled {
		t.Fatal("expected notifications disabled by default")
	}
	if cfg.RetryBase != 500*time.Millisecond {
		t.Fatalf("RetryBase = %v, want 500ms", cfg.RetryBase)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("expected no kafka brokers, got %v", cfg.KafkaBrokers)
	}
}

func TestLoadNotifyBrokers(t *testing.T) {
	t.Setenv("NOTIFY_ENABLED", "true")
	t.Setenv("NOTIFY_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("NOTIFY_CIRCUIT_OPEN_DURATION", "1m")

	cfg, err := LoadNotify()
	if err != nil {
		t.Fatalf("LoadNotify() error = %v", err)
	}
	if !cfg.Enabled {
		t.Fatal("expected enabled")
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
	if cfg.CircuitOpenDuration != time.Minute {
		t.Fatalf("CircuitOpenDuration = %v, want 1m", cfg.CircuitOpenDuration)
	}
}

func TestLoadJobsDefaults(t *testing.T) {
	cfg, err := LoadJobs()
	if err != nil {
		t.Fatalf("LoadJobs() error = %v", err)
	}
	if cfg.DepositExpiryEnabled {
		t.Fatal("expected deposit expiry sweep off by default")
	}
	if cfg.IntegrityAuditSchedule != "@every 1h" {
		t.Fatalf("IntegrityAuditSchedule = %q", cfg.IntegrityAuditSchedule)
	}
	if cfg.StaleBetSweepSchedule != "@every 5m" || cfg.StaleBetAge != 10*time.Minute {
		t.Fatalf("stale bet sweep = %q every, age %v", cfg.StaleBetSweepSchedule, cfg.StaleBetAge)
	}
}
