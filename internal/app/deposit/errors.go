package deposit

import "errors"

var (
	ErrInvalidRequest      = errors.New("invalid_request")
	ErrInvalidAmount       = errors.New("invalid_deposit_amount")
	ErrDepositNotFound     = errors.New("deposit_not_found")
	ErrInvalidDepositState = errors.New("invalid_deposit_state")
)
