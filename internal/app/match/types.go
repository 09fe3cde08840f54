package match

import (
	"time"

	"github.com/kumbirai/my-kasi-bet/internal/store"

	"github.com/shopspring/decimal"
)

// Match statuses. Settled and cancelled are terminal.
const (
	StatusActive    = "active"
	StatusSettled   = "settled"
	StatusCancelled = "cancelled"
)

type CreateRequest struct {
	HomeTeam    string
	AwayTeam    string
	Question    string
	YesOdds     decimal.Decimal
	NoOdds      decimal.Decimal
	ScheduledAt *time.Time
}

type PlaceBetRequest struct {
	UserID    string
	Stake     decimal.Decimal
	Selection map[string]any
}

// SettlementSummary reports one pass over a match's pending bets.
type SettlementSummary struct {
	Match       store.Match     `json:"match"`
	Processed   int             `json:"processed"`
	Won         int             `json:"won"`
	Lost        int             `json:"lost"`
	Refunded    int             `json:"refunded"`
	Skipped     int             `json:"skipped"`
	Failed      int             `json:"failed"`
	TotalPayout decimal.Decimal `json:"total_payout"`
}

type ListResponse struct {
	Items  []store.Match `json:"items"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}
