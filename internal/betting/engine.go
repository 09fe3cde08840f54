// Package betting owns the bet lifecycle: pending bets are created with their
// stake debited, then settled once (won, lost or refunded).
package betting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kumbirai/my-kasi-bet/internal/ledger"
	"github.com/kumbirai/my-kasi-bet/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Bet statuses. Everything but StatusPending is terminal.
const (
	StatusPending   = "pending"
	StatusWon       = "won"
	StatusLost      = "lost"
	StatusRefunded  = "refunded"
	StatusCancelled = "cancelled"
)

const referenceKind = "bet"

type PlaceInput struct {
	UserID    string
	GameType  string
	Stake     decimal.Decimal
	Selection map[string]any
	MatchID   string
}

type SettleInput struct {
	BetID      string
	Outcome    map[string]any
	Won        bool
	Multiplier decimal.Decimal
}

// Settlement is a settled bet plus the ledger transaction it produced, if any.
type Settlement struct {
	Bet         store.Bet          `json:"bet"`
	Transaction *store.Transaction `json:"transaction,omitempty"`
}

type Engine struct {
	store  *store.Store
	limits Limits
	now    func() time.Time
}

func NewEngine(st *store.Store, limits Limits) *Engine {
	if limits == nil {
		limits = DefaultLimits()
	}
	return &Engine{store: st, limits: limits, now: time.Now}
}

func (e *Engine) Limits() Limits {
	return e.limits
}

// PlaceBet creates a pending bet and debits the stake in one transaction.
func (e *Engine) PlaceBet(ctx context.Context, in PlaceInput) (store.Bet, error) {
	var bet store.Bet
	err := e.store.InTx(ctx, func(q *store.Queries) error {
		var err error
		bet, err = e.PlaceBetTx(ctx, q, in)
		return err
	})
	return bet, err
}

// PlaceBetTx is PlaceBet inside the caller's transaction.
func (e *Engine) PlaceBetTx(ctx context.Context, q *store.Queries, in PlaceInput) (store.Bet, error) {
	if err := e.limits.Check(in.GameType, in.Stake); err != nil {
		return store.Bet{}, err
	}
	bet, err := q.InsertBet(ctx, store.Bet{
		UserID:      in.UserID,
		GameType:    in.GameType,
		StakeAmount: in.Stake,
		Selection:   in.Selection,
		MatchID:     in.MatchID,
	})
	if err != nil {
		return store.Bet{}, fmt.Errorf("insert bet: %w", err)
	}
	if _, err := ledger.Debit(ctx, q, ledger.Entry{
		UserID:        in.UserID,
		Amount:        in.Stake,
		Kind:          ledger.KindBet,
		Description:   "Stake on " + in.GameType,
		ReferenceKind: referenceKind,
		ReferenceID:   bet.ID,
		Metadata:      map[string]any{"game_type": in.GameType},
	}); err != nil {
		return store.Bet{}, err
	}
	log.Info().
		Str("bet_id", bet.ID).
		Str("user_id", in.UserID).
		Str("game_type", in.GameType).
		Str("stake", in.Stake.StringFixed(2)).
		Msg("bet_placed")
	return bet, nil
}

// SettleBet resolves a pending bet. A win credits stake*multiplier in the
// same transaction as the status change.
func (e *Engine) SettleBet(ctx context.Context, in SettleInput) (Settlement, error) {
	var out Settlement
	err := e.store.InTx(ctx, func(q *store.Queries) error {
		var err error
		out, err = e.SettleBetTx(ctx, q, in)
		return err
	})
	return out, err
}

func (e *Engine) SettleBetTx(ctx context.Context, q *store.Queries, in SettleInput) (Settlement, error) {
	bet, err := lockPending(ctx, q, in.BetID)
	if err != nil {
		return Settlement{}, err
	}

	status := StatusLost
	payout := decimal.Zero
	if in.Won {
		payout = Payout(bet.StakeAmount, in.Multiplier)
		if payout.Sign() > 0 {
			status = StatusWon
		}
	}
	settled, err := q.SettleBet(ctx, store.SettleBetParams{
		ID:           bet.ID,
		Status:       status,
		Outcome:      in.Outcome,
		Multiplier:   decimal.NewNullDecimal(in.Multiplier),
		PayoutAmount: payout,
		SettledAt:    e.now(),
	})
	if err != nil {
		return Settlement{}, fmt.Errorf("settle bet: %w", err)
	}

	out := Settlement{Bet: settled}
	if status == StatusWon {
		tx, err := ledger.Credit(ctx, q, ledger.Entry{
			UserID:        bet.UserID,
			Amount:        payout,
			Kind:          ledger.KindWin,
			Description:   "Win on " + bet.GameType,
			ReferenceKind: referenceKind,
			ReferenceID:   bet.ID,
			Metadata:      map[string]any{"multiplier": in.Multiplier.String()},
		})
		if err != nil {
			return Settlement{}, err
		}
		out.Transaction = &tx
	}
	log.Info().
		Str("bet_id", bet.ID).
		Str("user_id", bet.UserID).
		Str("status", status).
		Str("payout", payout.StringFixed(2)).
		Msg("bet_settled")
	return out, nil
}

// RefundBet returns the full stake of a pending bet.
func (e *Engine) RefundBet(ctx context.Context, betID, reason string) (Settlement, error) {
	var out Settlement
	err := e.store.InTx(ctx, func(q *store.Queries) error {
		var err error
		out, err = e.RefundBetTx(ctx, q, betID, reason)
		return err
	})
	return out, err
}

func (e *Engine) RefundBetTx(ctx context.Context, q *store.Queries, betID, reason string) (Settlement, error) {
	bet, err := lockPending(ctx, q, betID)
	if err != nil {
		return Settlement{}, err
	}
	settled, err := q.SettleBet(ctx, store.SettleBetParams{
		ID:           bet.ID,
		Status:       StatusRefunded,
		Outcome:      map[string]any{"refund_reason": reason},
		PayoutAmount: decimal.Zero,
		SettledAt:    e.now(),
	})
	if err != nil {
		return Settlement{}, fmt.Errorf("refund bet: %w", err)
	}
	tx, err := ledger.Credit(ctx, q, ledger.Entry{
		UserID:        bet.UserID,
		Amount:        bet.StakeAmount,
		Kind:          ledger.KindRefund,
		Description:   "Refund: " + reason,
		ReferenceKind: referenceKind,
		ReferenceID:   bet.ID,
	})
	if err != nil {
		return Settlement{}, err
	}
	log.Info().Str("bet_id", bet.ID).Str("user_id", bet.UserID).Str("reason", reason).Msg("bet_refunded")
	return Settlement{Bet: settled, Transaction: &tx}, nil
}

// Payout is stake*multiplier rounded half away from zero to cents.
func Payout(stake, multiplier decimal.Decimal) decimal.Decimal {
	return stake.Mul(multiplier).Round(2)
}

func lockPending(ctx context.Context, q *store.Queries, betID string) (store.Bet, error) {
	bet, err := q.GetBetForUpdate(ctx, betID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Bet{}, ErrBetNotFound
		}
		return store.Bet{}, err
	}
	if bet.Status != StatusPending {
		return store.Bet{}, ErrInvalidBetState
	}
	return bet, nil
}
