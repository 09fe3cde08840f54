package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type JobsConfig struct {
	IntegrityAuditSchedule string `env:"INTEGRITY_AUDIT_SCHEDULE" envDefault:"@every 1h"`
	IntegrityAuditBatch    int    `env:"INTEGRITY_AUDIT_BATCH" envDefault:"500"`
	DepositExpiryEnabled   bool   `env:"DEPOSIT_EXPIRY_ENABLED" envDefault:"false"`
	DepositExpirySchedule  string `env:"DEPOSIT_EXPIRY_SCHEDULE" envDefault:"@every 10m"`

	// Instant bets pending longer than StaleBetAge are refunded.
	StaleBetSweepSchedule string        `env:"STALE_BET_SWEEP_SCHEDULE" envDefault:"@every 5m"`
	StaleBetAge           time.Duration `env:"STALE_BET_AGE" envDefault:"10m"`
}

func LoadJobs() (JobsConfig, error) {
	var cfg JobsConfig
	err := env.ParseWithOptions(&cfg, env.Options{Prefix: "JOBS_"})
	return cfg, err
}
