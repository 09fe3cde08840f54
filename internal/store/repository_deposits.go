package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type DepositFilter struct {
	UserID string
	Status string
}

type DepositReviewParams struct {
	ID              string
	Status          string
	ReviewedBy      string
	ReviewedAt      time.Time
	RejectionReason string
	TransactionID   string
}

const depositColumns = `id, user_id, amount, payment_method, proof_type, proof_value, notes, status, reviewed_by, reviewed_at, rejection_reason, transaction_id, expires_at, created_at`

func scanDeposit(row pgx.Row) (Deposit, error) {
	var d Deposit
	var reviewedAt, expiresAt pgtype.Timestamptz
	var txID pgtype.Text
	if err := row.Scan(&d.ID, &d.UserID, &d.Amount, &d.PaymentMethod, &d.ProofType, &d.ProofValue, &d.Notes,
		&d.Status, &d.ReviewedBy, &reviewedAt, &d.RejectionReason, &txID, &expiresAt, &d.CreatedAt); err != nil {
		return Deposit{}, err
	}
	d.ReviewedAt = timePtrVal(reviewedAt)
	d.ExpiresAt = timePtrVal(expiresAt)
	d.TransactionID = textVal(txID)
	return d, nil
}

func (q *Queries) InsertDeposit(ctx context.Context, d Deposit) (Deposit, error) {
	if d.ID == "" {
		d.ID = NewID()
	}
	return scanDeposit(q.db.QueryRow(ctx, `
INSERT INTO deposits (id, user_id, amount, payment_method, proof_type, proof_value, notes, status, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', $8)
RETURNING `+depositColumns,
		d.ID, d.UserID, d.Amount, d.PaymentMethod, d.ProofType, d.ProofValue, d.Notes, timeParam(d.ExpiresAt)))
}

func (q *Queries) GetDeposit(ctx context.Context, id string) (Deposit, error) {
	d, err := scanDeposit(q.db.QueryRow(ctx, `SELECT `+depositColumns+` FROM deposits WHERE id = $1`, id))
	if err != nil {
		return Deposit{}, mapNotFound(err)
	}
	return d, nil
}

func (q *Queries) GetDepositForUpdate(ctx context.Context, id string) (Deposit, error) {
	d, err := scanDeposit(q.db.QueryRow(ctx, `SELECT `+depositColumns+` FROM deposits WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return Deposit{}, mapNotFound(err)
	}
	return d, nil
}

func (q *Queries) UpdateDepositReview(ctx context.Context, p DepositReviewParams) (Deposit, error) {
	d, err := scanDeposit(q.db.QueryRow(ctx, `
UPDATE deposits
SET status = $2, reviewed_by = $3, reviewed_at = $4, rejection_reason = $5, transaction_id = $6
WHERE id = $1
RETURNING `+depositColumns,
		p.ID, p.Status, p.ReviewedBy, p.ReviewedAt, p.RejectionReason, textParam(p.TransactionID)))
	if err != nil {
		return Deposit{}, mapNotFound(err)
	}
	return d, nil
}

func (q *Queries) UpdateDepositProof(ctx context.Context, id, proofType, proofValue string) (Deposit, error) {
	d, err := scanDeposit(q.db.QueryRow(ctx, `
UPDATE deposits SET proof_type = $2, proof_value = $3
WHERE id = $1
RETURNING `+depositColumns, id, proofType, proofValue))
	if err != nil {
		return Deposit{}, mapNotFound(err)
	}
	return d, nil
}

// ExpirePendingDeposits flips pending deposits whose expiry has passed.
// Rows locked by a concurrent review are re-checked after the lock is
// released, so a deposit approved in the meantime is left alone.
func (q *Queries) ExpirePendingDeposits(ctx context.Context, now time.Time) ([]Deposit, error) {
	rows, err := q.db.Query(ctx, `
UPDATE deposits SET status = 'expired'
WHERE status = 'pending' AND expires_at IS NOT NULL AND expires_at <= $1
RETURNING `+depositColumns, now)
	if err != nil {
		return nil, err
	}
	return collectDeposits(rows)
}

// ListDeposits returns oldest first so reviewers work the queue in order.
func (q *Queries) ListDeposits(ctx context.Context, f DepositFilter, limit, offset int) ([]Deposit, error) {
	rows, err := q.db.Query(ctx, `
SELECT `+depositColumns+` FROM deposits
WHERE ($1::text = '' OR user_id = $1)
  AND ($2::text = '' OR status = $2)
ORDER BY created_at ASC, id ASC
LIMIT $3 OFFSET $4`,
		f.UserID, f.Status, clampLimit(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	return collectDeposits(rows)
}

func collectDeposits(rows pgx.Rows) ([]Deposit, error) {
	defer rows.Close()
	out := []Deposit{}
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
