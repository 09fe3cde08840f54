package account

import (
	"time"

	"github.com/kumbirai/my-kasi-bet/internal/ledger"
	"github.com/kumbirai/my-kasi-bet/internal/store"

	"github.com/shopspring/decimal"
)

type RegisterResponse struct {
	User    store.User      `json:"user"`
	Created bool            `json:"created"`
	Balance decimal.Decimal `json:"balance"`
}

type BalanceResponse struct {
	UserID  string          `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}

// HistoryFilter narrows a transaction listing. Zero values match everything.
type HistoryFilter struct {
	Kind string
	From time.Time
	To   time.Time
}

type TransactionsResponse struct {
	Items  []store.Transaction `json:"items"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

type BetsResponse struct {
	Items  []store.Bet `json:"items"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

type IntegrityResponse = ledger.IntegrityReport
