package config

import "github.com/caarlos0/env/v11"

// LimitsConfig holds the money bounds. Amounts are decimal strings so they
// parse exactly; callers convert with decimal.RequireFromString.
type LimitsConfig struct {
	NumberPickMin  string `env:"NUMBER_PICK_MIN" envDefault:"5.00"`
	NumberPickMax  string `env:"NUMBER_PICK_MAX" envDefault:"500.00"`
	ColorPickMin   string `env:"COLOR_PICK_MIN" envDefault:"5.00"`
	ColorPickMax   string `env:"COLOR_PICK_MAX" envDefault:"500.00"`
	TriplePickMin  string `env:"TRIPLE_PICK_MIN" envDefault:"2.00"`
	TriplePickMax  string `env:"TRIPLE_PICK_MAX" envDefault:"100.00"`
	PropositionMin string `env:"PROPOSITION_MIN" envDefault:"10.00"`
	PropositionMax string `env:"PROPOSITION_MAX" envDefault:"1000.00"`

	DepositMin         string `env:"DEPOSIT_MIN" envDefault:"10.00"`
	DepositMax         string `env:"DEPOSIT_MAX" envDefault:"50000.00"`
	DepositExpiryHours int    `env:"DEPOSIT_EXPIRY_HOURS" envDefault:"24"`

	WithdrawalMin      string `env:"WITHDRAWAL_MIN" envDefault:"50.00"`
	WithdrawalMax      string `env:"WITHDRAWAL_MAX" envDefault:"10000.00"`
	WithdrawalDailyCap string `env:"WITHDRAWAL_DAILY_CAP" envDefault:"20000.00"`
}

func LoadLimits() (LimitsConfig, error) {
	var cfg LimitsConfig
	err := env.ParseWithOptions(&cfg, env.Options{Prefix: "LIMITS_"})
	return cfg, err
}
