package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type BetFilter struct {
	UserID   string
	GameType string
	Status   string
	MatchID  string
}

type SettleBetParams struct {
	ID           string
	Status       string
	Outcome      map[string]any
	Multiplier   decimal.NullDecimal
	PayoutAmount decimal.Decimal
	SettledAt    time.Time
}

const betColumns = `id, user_id, game_type, stake_amount, selection, outcome, status, multiplier, payout_amount, match_id, created_at, settled_at`

func scanBet(row pgx.Row) (Bet, error) {
	var b Bet
	var selection, outcome []byte
	var matchID pgtype.Text
	var settledAt pgtype.Timestamptz
	if err := row.Scan(&b.ID, &b.UserID, &b.GameType, &b.StakeAmount, &selection, &outcome, &b.Status,
		&b.Multiplier, &b.PayoutAmount, &matchID, &b.CreatedAt, &settledAt); err != nil {
		return Bet{}, err
	}
	var err error
	if b.Selection, err = jsonVal(selection); err != nil {
		return Bet{}, err
	}
	if b.Outcome, err = jsonVal(outcome); err != nil {
		return Bet{}, err
	}
	b.MatchID = textVal(matchID)
	b.SettledAt = timePtrVal(settledAt)
	return b, nil
}

// InsertBet stores a new pending bet. ID is assigned when empty.
func (q *Queries) InsertBet(ctx context.Context, b Bet) (Bet, error) {
	if b.ID == "" {
		b.ID = NewID()
	}
	selection, err := jsonParam(b.Selection)
	if err != nil {
		return Bet{}, err
	}
	return scanBet(q.db.QueryRow(ctx, `
INSERT INTO bets (id, user_id, game_type, stake_amount, selection, status, match_id)
VALUES ($1, $2, $3, $4, $5, 'pending', $6)
RETURNING `+betColumns,
		b.ID, b.UserID, b.GameType, b.StakeAmount, selection, textParam(b.MatchID)))
}

func (q *Queries) GetBet(ctx context.Context, id string) (Bet, error) {
	b, err := scanBet(q.db.QueryRow(ctx, `SELECT `+betColumns+` FROM bets WHERE id = $1`, id))
	if err != nil {
		return Bet{}, mapNotFound(err)
	}
	return b, nil
}

func (q *Queries) GetBetForUpdate(ctx context.Context, id string) (Bet, error) {
	b, err := scanBet(q.db.QueryRow(ctx, `SELECT `+betColumns+` FROM bets WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return Bet{}, mapNotFound(err)
	}
	return b, nil
}

func (q *Queries) SettleBet(ctx context.Context, p SettleBetParams) (Bet, error) {
	outcome, err := nullableJSONParam(p.Outcome)
	if err != nil {
		return Bet{}, err
	}
	b, err := scanBet(q.db.QueryRow(ctx, `
UPDATE bets
SET status = $2, outcome = $3, multiplier = $4, payout_amount = $5, settled_at = $6
WHERE id = $1
RETURNING `+betColumns,
		p.ID, p.Status, outcome, p.Multiplier, p.PayoutAmount, p.SettledAt))
	if err != nil {
		return Bet{}, mapNotFound(err)
	}
	return b, nil
}

// ListBets returns newest first.
func (q *Queries) ListBets(ctx context.Context, f BetFilter, limit, offset int) ([]Bet, error) {
	rows, err := q.db.Query(ctx, `
SELECT `+betColumns+` FROM bets
WHERE ($1::text = '' OR user_id = $1)
  AND ($2::text = '' OR game_type = $2)
  AND ($3::text = '' OR status = $3)
  AND ($4::text = '' OR match_id = $4)
ORDER BY created_at DESC, id DESC
LIMIT $5 OFFSET $6`,
		f.UserID, f.GameType, f.Status, f.MatchID, clampLimit(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Bet{}
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (q *Queries) ListPendingBetIDsByMatch(ctx context.Context, matchID string) ([]string, error) {
	rows, err := q.db.Query(ctx, `SELECT id FROM bets WHERE match_id = $1 AND status = 'pending' ORDER BY id`, matchID)
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

// ListStaleInstantBets returns pending non-proposition bets created before
// before, oldest first.
func (q *Queries) ListStaleInstantBets(ctx context.Context, before time.Time, limit int) ([]Bet, error) {
	rows, err := q.db.Query(ctx, `
SELECT `+betColumns+` FROM bets
WHERE status = 'pending' AND game_type <> 'proposition' AND created_at < $1
ORDER BY created_at, id
LIMIT $2`, before, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Bet{}
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
