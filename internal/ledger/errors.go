package ledger

import "errors"

var (
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrAccountNotFound     = errors.New("account_not_found")
	ErrInvalidKind         = errors.New("invalid_transaction_kind")
)
