package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type WithdrawalFilter struct {
	UserID string
	Status string
}

type WithdrawalReviewParams struct {
	ID                  string
	Status              string
	ReviewedBy          string
	ReviewedAt          time.Time
	RejectionReason     string
	RefundTransactionID string
	PaymentReference    string
	PaidAt              *time.Time
}

const withdrawalColumns = `id, user_id, amount, method, bank_name, account_number, account_holder, notes, status, reviewed_by, reviewed_at, rejection_reason, debit_transaction_id, refund_transaction_id, payment_reference, paid_at, created_at`

func scanWithdrawal(row pgx.Row) (Withdrawal, error) {
	var w Withdrawal
	var reviewedAt, paidAt pgtype.Timestamptz
	var refundID pgtype.Text
	if err := row.Scan(&w.ID, &w.UserID, &w.Amount, &w.Method, &w.BankName, &w.AccountNumber, &w.AccountHolder, &w.Notes,
		&w.Status, &w.ReviewedBy, &reviewedAt, &w.RejectionReason, &w.DebitTransactionID, &refundID,
		&w.PaymentReference, &paidAt, &w.CreatedAt); err != nil {
		return Withdrawal{}, err
	}
	w.ReviewedAt = timePtrVal(reviewedAt)
	w.PaidAt = timePtrVal(paidAt)
	w.RefundTransactionID = textVal(refundID)
	return w, nil
}

func (q *Queries) InsertWithdrawal(ctx context.Context, w Withdrawal) (Withdrawal, error) {
	if w.ID == "" {
		w.ID = NewID()
	}
	return scanWithdrawal(q.db.QueryRow(ctx, `
INSERT INTO withdrawals (id, user_id, amount, method, bank_name, account_number, account_holder, notes, status, debit_transaction_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', $9)
RETURNING `+withdrawalColumns,
		w.ID, w.UserID, w.Amount, w.Method, w.BankName, w.AccountNumber, w.AccountHolder, w.Notes, w.DebitTransactionID))
}

func (q *Queries) GetWithdrawal(ctx context.Context, id string) (Withdrawal, error) {
	w, err := scanWithdrawal(q.db.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1`, id))
	if err != nil {
		return Withdrawal{}, mapNotFound(err)
	}
	return w, nil
}

func (q *Queries) GetWithdrawalForUpdate(ctx context.Context, id string) (Withdrawal, error) {
	w, err := scanWithdrawal(q.db.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return Withdrawal{}, mapNotFound(err)
	}
	return w, nil
}

func (q *Queries) UpdateWithdrawalReview(ctx context.Context, p WithdrawalReviewParams) (Withdrawal, error) {
	w, err := scanWithdrawal(q.db.QueryRow(ctx, `
UPDATE withdrawals
SET status = $2, reviewed_by = $3, reviewed_at = $4, rejection_reason = $5,
    refund_transaction_id = $6, payment_reference = $7, paid_at = $8
WHERE id = $1
RETURNING `+withdrawalColumns,
		p.ID, p.Status, p.ReviewedBy, p.ReviewedAt, p.RejectionReason,
		textParam(p.RefundTransactionID), p.PaymentReference, timeParam(p.PaidAt)))
	if err != nil {
		return Withdrawal{}, mapNotFound(err)
	}
	return w, nil
}

// SumActiveWithdrawalsSince totals pending and approved withdrawals created
// at or after since.
func (q *Queries) SumActiveWithdrawalsSince(ctx context.Context, userID string, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.db.QueryRow(ctx, `
SELECT COALESCE(SUM(amount), 0) FROM withdrawals
WHERE user_id = $1 AND status IN ('pending', 'approved') AND created_at >= $2`, userID, since).Scan(&total)
	return total, err
}

// ListWithdrawals returns oldest first.
func (q *Queries) ListWithdrawals(ctx context.Context, f WithdrawalFilter, limit, offset int) ([]Withdrawal, error) {
	rows, err := q.db.Query(ctx, `
SELECT `+withdrawalColumns+` FROM withdrawals
WHERE ($1::text = '' OR user_id = $1)
  AND ($2::text = '' OR status = $2)
ORDER BY created_at ASC, id ASC
LIMIT $3 OFFSET $4`,
		f.UserID, f.Status, clampLimit(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Withdrawal{}
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
