package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type MatchStatusParams struct {
	ID        string
	Status    string
	Result    string
	SettledAt *time.Time
}

const matchColumns = `id, home_team, away_team, question, yes_odds, no_odds, status, result, created_at, scheduled_at, settled_at`

func scanMatch(row pgx.Row) (Match, error) {
	var m Match
	var result pgtype.Text
	var scheduledAt, settledAt pgtype.Timestamptz
	if err := row.Scan(&m.ID, &m.HomeTeam, &m.AwayTeam, &m.Question, &m.YesOdds, &m.NoOdds, &m.Status,
		&result, &m.CreatedAt, &scheduledAt, &settledAt); err != nil {
		return Match{}, err
	}
	m.Result = textVal(result)
	m.ScheduledAt = timePtrVal(scheduledAt)
	m.SettledAt = timePtrVal(settledAt)
	return m, nil
}

func (q *Queries) InsertMatch(ctx context.Context, m Match) (Match, error) {
	if m.ID == "" {
		m.ID = NewID()
	}
	return scanMatch(q.db.QueryRow(ctx, `
INSERT INTO matches (id, home_team, away_team, question, yes_odds, no_odds, status, scheduled_at)
VALUES ($1, $2, $3, $4, $5, $6, 'active', $7)
RETURNING `+matchColumns,
		m.ID, m.HomeTeam, m.AwayTeam, m.Question, m.YesOdds, m.NoOdds, timeParam(m.ScheduledAt)))
}

func (q *Queries) GetMatch(ctx context.Context, id string) (Match, error) {
	m, err := scanMatch(q.db.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if err != nil {
		return Match{}, mapNotFound(err)
	}
	return m, nil
}

func (q *Queries) GetMatchForUpdate(ctx context.Context, id string) (Match, error) {
	m, err := scanMatch(q.db.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return Match{}, mapNotFound(err)
	}
	return m, nil
}

// GetMatchForShare blocks settlement of the match until the caller commits,
// without serializing concurrent bets against each other.
func (q *Queries) GetMatchForShare(ctx context.Context, id string) (Match, error) {
	m, err := scanMatch(q.db.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1 FOR SHARE`, id))
	if err != nil {
		return Match{}, mapNotFound(err)
	}
	return m, nil
}

func (q *Queries) UpdateMatchStatus(ctx context.Context, p MatchStatusParams) (Match, error) {
	m, err := scanMatch(q.db.QueryRow(ctx, `
UPDATE matches SET status = $2, result = $3, settled_at = $4
WHERE id = $1
RETURNING `+matchColumns,
		p.ID, p.Status, textParam(p.Result), timeParam(p.SettledAt)))
	if err != nil {
		return Match{}, mapNotFound(err)
	}
	return m, nil
}

// ListMatches returns newest first; an empty status lists all.
func (q *Queries) ListMatches(ctx context.Context, status string, limit, offset int) ([]Match, error) {
	rows, err := q.db.Query(ctx, `
SELECT `+matchColumns+` FROM matches
WHERE ($1::text = '' OR status = $1)
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`, status, clampLimit(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
