package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

type TransactionFilter struct {
	UserID        string
	Kind          string
	ReferenceKind string
	ReferenceID   string
	From          *time.Time
	To            *time.Time
}

const transactionColumns = `id, user_id, kind, amount, balance_before, balance_after, reference_kind, reference_id, description, metadata, created_at`

func scanTransaction(row pgx.Row) (Transaction, error) {
	var t Transaction
	var meta []byte
	if err := row.Scan(&t.ID, &t.UserID, &t.Kind, &t.Amount, &t.BalanceBefore, &t.BalanceAfter,
		&t.ReferenceKind, &t.ReferenceID, &t.Description, &meta, &t.CreatedAt); err != nil {
		return Transaction{}, err
	}
	m, err := jsonVal(meta)
	if err != nil {
		return Transaction{}, err
	}
	t.Metadata = m
	return t, nil
}

// InsertTransaction appends t and returns the stored row. ID is assigned
// when empty.
func (q *Queries) InsertTransaction(ctx context.Context, t Transaction) (Transaction, error) {
	if t.ID == "" {
		t.ID = NewID()
	}
	meta, err := jsonParam(t.Metadata)
	if err != nil {
		return Transaction{}, err
	}
	return scanTransaction(q.db.QueryRow(ctx, `
INSERT INTO transactions (id, user_id, kind, amount, balance_before, balance_after, reference_kind, reference_id, description, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING `+transactionColumns,
		t.ID, t.UserID, t.Kind, t.Amount, t.BalanceBefore, t.BalanceAfter, t.ReferenceKind, t.ReferenceID, t.Description, meta))
}

func (q *Queries) GetTransaction(ctx context.Context, id string) (Transaction, error) {
	t, err := scanTransaction(q.db.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if err != nil {
		return Transaction{}, mapNotFound(err)
	}
	return t, nil
}

// ListTransactions returns newest first.
func (q *Queries) ListTransactions(ctx context.Context, f TransactionFilter, limit, offset int) ([]Transaction, error) {
	return q.queryTransactions(ctx, `
SELECT `+transactionColumns+` FROM transactions
WHERE ($1::text = '' OR user_id = $1)
  AND ($2::text = '' OR kind = $2)
  AND ($3::text = '' OR reference_kind = $3)
  AND ($4::text = '' OR reference_id = $4)
  AND ($5::timestamptz IS NULL OR created_at >= $5)
  AND ($6::timestamptz IS NULL OR created_at < $6)
ORDER BY created_at DESC, id DESC
LIMIT $7 OFFSET $8`,
		f.UserID, f.Kind, f.ReferenceKind, f.ReferenceID, timeParam(f.From), timeParam(f.To), clampLimit(limit), int32(offset))
}

// ListUserTransactionChain returns every transaction of one user in chain
// order, oldest first.
func (q *Queries) ListUserTransactionChain(ctx context.Context, userID string) ([]Transaction, error) {
	return q.queryTransactions(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE user_id = $1 ORDER BY created_at ASC, id ASC`, userID)
}

func (q *Queries) queryTransactions(ctx context.Context, sql string, args ...any) ([]Transaction, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
