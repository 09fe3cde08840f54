// Package notify delivers user-facing notifications after money movements
// commit. Delivery is asynchronous and best-effort: a failed send is retried,
// then dropped and counted, and never affects the committed change.
package notify

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Event kinds.
const (
	KindDepositApproved    = "deposit_approved"
	KindDepositRejected    = "deposit_rejected"
	KindDepositExpired     = "deposit_expired"
	KindWithdrawalApproved = "withdrawal_approved"
	KindWithdrawalRejected = "withdrawal_rejected"
	KindBetWon             = "bet_won"
	KindBetLost            = "bet_lost"
	KindBetRefunded        = "bet_refunded"
)

// Event is one outcome a user should hear about.
type Event struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Phone      string          `json:"phone,omitempty"`
	Kind       string          `json:"kind"`
	Summary    string          `json:"summary"`
	Balance    decimal.Decimal `json:"balance"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Notifier accepts events for delivery. Notify must not block on delivery.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

// PhoneLookup resolves a user's phone number for channels that address users
// by phone.
type PhoneLookup func(ctx context.Context, userID string) (string, error)

type job struct {
	Platform string
	Event    Event
	Attempt  int
}

func (j job) key() string {
	return j.Platform
}
