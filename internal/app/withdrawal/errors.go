package withdrawal

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidRequest         = errors.New("invalid_request")
	ErrInvalidAmount          = errors.New("invalid_withdrawal_amount")
	ErrWithdrawalNotFound     = errors.New("withdrawal_not_found")
	ErrInvalidWithdrawalState = errors.New("invalid_withdrawal_state")
	ErrDailyLimitExceeded     = errors.New("daily_limit_exceeded")
)

// DailyLimitError reports how much the user may still withdraw today.
type DailyLimitError struct {
	Limit     decimal.Decimal
	Remaining decimal.Decimal
}

func (e *DailyLimitError) Error() string {
	return ErrDailyLimitExceeded.Error() + ": remaining " + e.Remaining.StringFixed(2) + " of " + e.Limit.StringFixed(2)
}

func (e *DailyLimitError) Unwrap() error {
	return ErrDailyLimitExceeded
}
