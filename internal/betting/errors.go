package betting

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidStakeAmount = errors.New("invalid_stake_amount")
	ErrBetNotFound        = errors.New("bet_not_found")
	ErrInvalidBetState    = errors.New("invalid_bet_state")
)

// StakeLimitError carries the bounds the stake violated.
type StakeLimitError struct {
	Game string
	Min  decimal.Decimal
	Max  decimal.Decimal
}

func (e *StakeLimitError) Error() string {
	return ErrInvalidStakeAmount.Error() + ": " + e.Game + " stake must be between " + e.Min.StringFixed(2) + " and " + e.Max.StringFixed(2)
}

func (e *StakeLimitError) Unwrap() error {
	return ErrInvalidStakeAmount
}
