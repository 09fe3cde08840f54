package ledger

import (
	"context"
	"errors"

	"github.com/kumbirai/my-kasi-bet/internal/store"

	"github.com/shopspring/decimal"
)

// IntegrityReport is the result of walking one user's transaction chain.
type IntegrityReport struct {
	UserID           string          `json:"user_id"`
	OK               bool            `json:"ok"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int             `json:"transaction_count"`
	// BrokenAt is the first transaction whose balance_before does not match
	// the previous balance_after, or whose snapshots disagree with its kind.
	BrokenAt string `json:"broken_at,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// VerifyIntegrity checks that the user's transactions form an unbroken chain
// ending at the current account balance. The chain must start at zero.
func (l *Ledger) VerifyIntegrity(ctx context.Context, userID string) (IntegrityReport, error) {
	rep := IntegrityReport{UserID: userID}
	err := l.Store.InTx(ctx, func(q *store.Queries) error {
		// Holding the account lock keeps the chain from growing mid-walk.
		acc, err := q.GetAccountForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		chain, err := q.ListUserTransactionChain(ctx, userID)
		if err != nil {
			return err
		}
		rep.Balance = acc.Balance
		rep.TransactionCount = len(chain)
		checkChain(&rep, chain, acc.Balance)
		return nil
	})
	return rep, err
}

func checkChain(rep *IntegrityReport, chain []store.Transaction, balance decimal.Decimal) {
	prev := decimal.Zero
	for _, tx := range chain {
		if !tx.BalanceBefore.Equal(prev) {
			rep.BrokenAt, rep.Reason = tx.ID, "chain_gap"
			return
		}
		want := tx.BalanceBefore.Add(tx.Amount)
		if isDebitKind(tx.Kind) {
			want = tx.BalanceBefore.Sub(tx.Amount)
		}
		if !tx.BalanceAfter.Equal(want) {
			rep.BrokenAt, rep.Reason = tx.ID, "snapshot_mismatch"
			return
		}
		prev = tx.BalanceAfter
	}
	if !prev.Equal(balance) {
		rep.Reason = "balance_mismatch"
		return
	}
	rep.OK = true
}

func isDebitKind(kind string) bool {
	return kind == KindBet || kind == KindWithdrawal
}

func knownKind(kind string) bool {
	switch kind {
	case KindDeposit, KindWithdrawal, KindBet, KindWin, KindRefund:
		return true
	}
	return false
}
