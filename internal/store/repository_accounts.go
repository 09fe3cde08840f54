package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.UserID, &a.Balance, &a.UpdatedAt)
	return a, err
}

func (q *Queries) EnsureAccount(ctx context.Context, userID string) error {
	_, err := q.db.Exec(ctx, `INSERT INTO accounts (user_id, balance) VALUES ($1, 0) ON CONFLICT (user_id) DO NOTHING`, userID)
	return err
}

func (q *Queries) GetAccount(ctx context.Context, userID string) (Account, error) {
	a, err := scanAccount(q.db.QueryRow(ctx, `SELECT user_id, balance, updated_at FROM accounts WHERE user_id = $1`, userID))
	if err != nil {
		return Account{}, mapNotFound(err)
	}
	return a, nil
}

// GetAccountForUpdate takes the row lock every balance mutation serializes on.
// Only meaningful on a transaction-bound Queries.
func (q *Queries) GetAccountForUpdate(ctx context.Context, userID string) (Account, error) {
	a, err := scanAccount(q.db.QueryRow(ctx, `SELECT user_id, balance, updated_at FROM accounts WHERE user_id = $1 FOR UPDATE`, userID))
	if err != nil {
		return Account{}, mapNotFound(err)
	}
	return a, nil
}

func (q *Queries) UpdateAccountBalance(ctx context.Context, userID string, balance decimal.Decimal) error {
	_, err := q.db.Exec(ctx, `UPDATE accounts SET balance = $2, updated_at = now() WHERE user_id = $1`, userID, balance)
	return err
}

func (q *Queries) ListAccountUserIDs(ctx context.Context, limit, offset int) ([]string, error) {
	rows, err := q.db.Query(ctx, `SELECT user_id FROM accounts ORDER BY user_id LIMIT $1 OFFSET $2`, clampLimit(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
