package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/kumbirai/my-kasi-bet/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Transaction kinds.
const (
	KindDeposit    = "deposit"
	KindWithdrawal = "withdrawal"
	KindBet        = "bet"
	KindWin        = "win"
	KindRefund     = "refund"
)

// Entry describes one balance movement.
type Entry struct {
	UserID        string
	Amount        decimal.Decimal
	Kind          string
	Description   string
	ReferenceKind string
	ReferenceID   string
	Metadata      map[string]any
	// AllowNegative lets a debit take the balance below zero. Only Debit
	// reads it.
	AllowNegative bool
}

// MaxAmount is the largest value a NUMERIC(14,2) money column holds.
var MaxAmount = decimal.RequireFromString("999999999999.99")

// ValidAmount reports whether d is a positive amount with at most two
// fraction digits that fits a money column.
func ValidAmount(d decimal.Decimal) bool {
	return d.Sign() > 0 && d.Equal(d.Round(2)) && d.LessThanOrEqual(MaxAmount)
}

// Credit adds e.Amount to the user's balance and appends the transaction.
// q must be bound to a transaction: the account row stays locked until the
// caller commits.
func Credit(ctx context.Context, q *store.Queries, e Entry) (store.Transaction, error) {
	return apply(ctx, q, e, false)
}

// Debit subtracts e.Amount from the user's balance and appends the
// transaction. Fails with ErrInsufficientBalance unless e.AllowNegative.
func Debit(ctx context.Context, q *store.Queries, e Entry) (store.Transaction, error) {
	return apply(ctx, q, e, true)
}

func apply(ctx context.Context, q *store.Queries, e Entry, debit bool) (store.Transaction, error) {
	if !ValidAmount(e.Amount) {
		return store.Transaction{}, ErrInvalidAmount
	}
	if !knownKind(e.Kind) || isDebitKind(e.Kind) != debit {
		return store.Transaction{}, ErrInvalidKind
	}
	acc, err := q.GetAccountForUpdate(ctx, e.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Transaction{}, ErrAccountNotFound
		}
		return store.Transaction{}, err
	}

	before := acc.Balance
	after := before.Add(e.Amount)
	if !debit && after.GreaterThan(MaxAmount) {
		return store.Transaction{}, ErrInvalidAmount
	}
	if debit {
		after = before.Sub(e.Amount)
		if after.Sign() < 0 && !e.AllowNegative {
			return store.Transaction{}, ErrInsufficientBalance
		}
	}

	if err := q.UpdateAccountBalance(ctx, e.UserID, after); err != nil {
		return store.Transaction{}, fmt.Errorf("update balance: %w", err)
	}
	tx, err := q.InsertTransaction(ctx, store.Transaction{
		UserID:        e.UserID,
		Kind:          e.Kind,
		Amount:        e.Amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		ReferenceKind: e.ReferenceKind,
		ReferenceID:   e.ReferenceID,
		Description:   e.Description,
		Metadata:      e.Metadata,
	})
	if err != nil {
		return store.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	op := "ledger_credit"
	if debit {
		op = "ledger_debit"
	}
	log.Info().
		Str("user_id", e.UserID).
		Str("kind", e.Kind).
		Str("amount", e.Amount.StringFixed(2)).
		Str("balance_before", before.StringFixed(2)).
		Str("balance_after", after.StringFixed(2)).
		Str("transaction_id", tx.ID).
		Str("reference_kind", e.ReferenceKind).
		Str("reference_id", e.ReferenceID).
		Msg(op)
	return tx, nil
}

// Ledger runs single credits and debits in their own unit of work.
// Workflows that must move money together with other state changes call the
// package-level Credit and Debit inside store.InTx instead.
type Ledger struct {
	Store *store.Store
}

func New(s *store.Store) *Ledger {
	return &Ledger{Store: s}
}

func (l *Ledger) Credit(ctx context.Context, e Entry) (store.Transaction, error) {
	var out store.Transaction
	err := l.Store.InTx(ctx, func(q *store.Queries) error {
		var err error
		out, err = Credit(ctx, q, e)
		return err
	})
	return out, err
}

func (l *Ledger) Debit(ctx context.Context, e Entry) (store.Transaction, error) {
	var out store.Transaction
	err := l.Store.InTx(ctx, func(q *store.Queries) error {
		var err error
		out, err = Debit(ctx, q, e)
		return err
	})
	return out, err
}

func (l *Ledger) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	acc, err := l.Store.GetAccount(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return decimal.Zero, ErrAccountNotFound
		}
		return decimal.Zero, err
	}
	return acc.Balance, nil
}

func (l *Ledger) History(ctx context.Context, f store.TransactionFilter, limit, offset int) ([]store.Transaction, error) {
	return l.Store.ListTransactions(ctx, f, limit, offset)
}
