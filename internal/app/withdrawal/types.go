package withdrawal

import (
	"github.com/kumbirai/my-kasi-bet/internal/config"
	"github.com/kumbirai/my-kasi-bet/internal/store"

	"github.com/shopspring/decimal"
)

// Withdrawal statuses. Everything but StatusPending is terminal.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

const (
	MethodBankTransfer = "bank_transfer"
	MethodCashPickup   = "cash_pickup"
	MethodEWallet      = "ewallet"
)

type Policy struct {
	Min      decimal.Decimal
	Max      decimal.Decimal
	DailyCap decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		Min:      decimal.RequireFromString("50.00"),
		Max:      decimal.RequireFromString("10000.00"),
		DailyCap: decimal.RequireFromString("20000.00"),
	}
}

func PolicyFromConfig(cfg config.LimitsConfig) (Policy, error) {
	var p Policy
	var err error
	if p.Min, err = decimal.NewFromString(cfg.WithdrawalMin); err != nil {
		return Policy{}, err
	}
	if p.Max, err = decimal.NewFromString(cfg.WithdrawalMax); err != nil {
		return Policy{}, err
	}
	if p.DailyCap, err = decimal.NewFromString(cfg.WithdrawalDailyCap); err != nil {
		return Policy{}, err
	}
	return p, nil
}

type CreateRequest struct {
	UserID        string
	Amount        decimal.Decimal
	Method        string
	BankName      string
	AccountNumber string
	AccountHolder string
	Notes         string
}

type ListResponse struct {
	Items  []store.Withdrawal `json:"items"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}
