package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, phone_number, username, is_blocked, created_at, last_active_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.PhoneNumber, &u.Username, &u.IsBlocked, &u.CreatedAt, &u.LastActiveAt)
	return u, err
}

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return User{}, mapNotFound(err)
	}
	return u, nil
}

func (q *Queries) GetUserByPhone(ctx context.Context, phone string) (User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone_number = $1`, phone))
	if err != nil {
		return User{}, mapNotFound(err)
	}
	return u, nil
}

// InsertUserIfAbsent inserts a user keyed by phone number. created is false
// when the phone was already registered; the existing row is returned.
func (q *Queries) InsertUserIfAbsent(ctx context.Context, phone, username string) (User, bool, error) {
	u, err := scanUser(q.db.QueryRow(ctx, `
INSERT INTO users (id, phone_number, username)
VALUES ($1, $2, $3)
ON CONFLICT (phone_number) DO NOTHING
RETURNING `+userColumns, NewID(), phone, username))
	if err == nil {
		return u, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return User{}, false, err
	}
	u, err = q.GetUserByPhone(ctx, phone)
	return u, false, err
}

func (q *Queries) TouchUser(ctx context.Context, id string, at time.Time) error {
	_, err := q.db.Exec(ctx, `UPDATE users SET last_active_at = $2 WHERE id = $1`, id, at)
	return err
}

func (q *Queries) SetUserBlocked(ctx context.Context, id string, blocked bool) error {
	tag, err := q.db.Exec(ctx, `UPDATE users SET is_blocked = $2 WHERE id = $1`, id, blocked)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
