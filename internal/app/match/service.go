// Package match runs proposition betting: administrators publish a yes/no
// question on a match, users bet on a side, and the result settles every
// pending bet at the odds captured when it was placed.
package match

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kumbirai/my-kasi-bet/internal/app/account"
	"github.com/kumbirai/my-kasi-bet/internal/betting"
	"github.com/kumbirai/my-kasi-bet/internal/game"
	"github.com/kumbirai/my-kasi-bet/internal/notify"
	"github.com/kumbirai/my-kasi-bet/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	cancelRefundReason = "match cancelled"
	maxOdds            = 999999
)

type Service struct {
	store    *store.Store
	engine   *betting.Engine
	notifier notify.Notifier
	now      func() time.Time
}

func NewService(st *store.Store, engine *betting.Engine, n notify.Notifier) *Service {
	if n == nil {
		n = notify.Nop{}
	}
	return &Service{store: st, engine: engine, notifier: n, now: time.Now}
}

func validOdds(d decimal.Decimal) bool {
	return d.Sign() > 0 && d.Equal(d.Round(2)) && d.LessThanOrEqual(decimal.NewFromInt(maxOdds))
}

func (s *Service) CreateMatch(ctx context.Context, req CreateRequest, adminID string) (store.Match, error) {
	req.HomeTeam = strings.TrimSpace(req.HomeTeam)
	req.AwayTeam = strings.TrimSpace(req.AwayTeam)
	req.Question = strings.TrimSpace(req.Question)
	if req.HomeTeam == "" || req.AwayTeam == "" || req.Question == "" {
		return store.Match{}, ErrInvalidRequest
	}
	if !validOdds(req.YesOdds) || !validOdds(req.NoOdds) {
		return store.Match{}, ErrInvalidRequest
	}

	var m store.Match
	err := s.store.InTx(ctx, func(q *store.Queries) error {
		var err error
		m, err = q.InsertMatch(ctx, store.Match{
			HomeTeam:    req.HomeTeam,
			AwayTeam:    req.AwayTeam,
			Question:    req.Question,
			YesOdds:     req.YesOdds,
			NoOdds:      req.NoOdds,
			ScheduledAt: req.ScheduledAt,
		})
		if err != nil {
			return fmt.Errorf("insert match: %w", err)
		}
		return q.InsertAdminAction(ctx, store.AdminAction{
			AdminID:    adminID,
			Action:     "create_match",
			EntityKind: "match",
			EntityID:   m.ID,
			Details: map[string]any{
				"yes_odds": req.YesOdds.StringFixed(2),
				"no_odds":  req.NoOdds.StringFixed(2),
			},
		})
	})
	if err != nil {
		return store.Match{}, err
	}
	log.Info().Str("match_id", m.ID).Str("home", m.HomeTeam).Str("away", m.AwayTeam).Str("admin_id", adminID).Msg("match_created")
	return m, nil
}

// PlaceBet takes a proposition bet on an active match. The match row is held
// FOR SHARE until commit, so settlement waits for in-flight placements.
func (s *Service) PlaceBet(ctx context.Context, req PlaceBetRequest) (store.Bet, error) {
	pick, err := game.ParseProposition(req.Selection)
	if err != nil {
		return store.Bet{}, err
	}
	var bet store.Bet
	err = s.store.InTx(ctx, func(q *store.Queries) error {
		if _, err := account.RequireActive(ctx, q, req.UserID); err != nil {
			return err
		}
		m, err := q.GetMatchForShare(ctx, pick.MatchID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return &game.SelectionError{Game: game.Proposition, Reason: "match not found"}
			}
			return err
		}
		if m.Status != StatusActive {
			return &game.SelectionError{Game: game.Proposition, Reason: "betting closed"}
		}
		odds := m.YesOdds
		if pick.Side == game.SideNo {
			odds = m.NoOdds
		}
		bet, err = s.engine.PlaceBetTx(ctx, q, betting.PlaceInput{
			UserID:    req.UserID,
			GameType:  game.Proposition,
			Stake:     req.Stake,
			Selection: game.PropositionSelection(pick, odds),
			MatchID:   m.ID,
		})
		return err
	})
	return bet, err
}

// SettleMatch records the result and then settles every pending bet on the
// match. Each bet settles in its own transaction; a failure on one does not
// stop the others and ResumeSettlement picks up what is left.
func (s *Service) SettleMatch(ctx context.Context, matchID, result, adminID string) (*SettlementSummary, error) {
	result = strings.ToLower(strings.TrimSpace(result))
	if !game.ValidSide(result) {
		return nil, ErrInvalidRequest
	}
	m, err := s.closeMatch(ctx, matchID, StatusSettled, result, adminID)
	if err != nil {
		return nil, err
	}
	log.Info().Str("match_id", m.ID).Str("result", result).Str("admin_id", adminID).Msg("match_settled")
	return s.fanOut(ctx, m)
}

// CancelMatch closes an active match and refunds every pending bet on it.
func (s *Service) CancelMatch(ctx context.Context, matchID, adminID string) (*SettlementSummary, error) {
	m, err := s.closeMatch(ctx, matchID, StatusCancelled, "", adminID)
	if err != nil {
		return nil, err
	}
	log.Info().Str("match_id", m.ID).Str("admin_id", adminID).Msg("match_cancelled")
	return s.fanOut(ctx, m)
}

// ResumeSettlement re-runs the fan-out for a closed match. Bets that were
// already settled are skipped, so it is safe to call repeatedly.
func (s *Service) ResumeSettlement(ctx context.Context, matchID string) (*SettlementSummary, error) {
	m, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status == StatusActive {
		return nil, ErrInvalidMatchState
	}
	return s.fanOut(ctx, m)
}

func (s *Service) closeMatch(ctx context.Context, matchID, status, result, adminID string) (store.Match, error) {
	var m store.Match
	err := s.store.InTx(ctx, func(q *store.Queries) error {
		cur, err := q.GetMatchForUpdate(ctx, matchID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrMatchNotFound
			}
			return err
		}
		if cur.Status != StatusActive {
			return ErrInvalidMatchState
		}
		p := store.MatchStatusParams{ID: matchID, Status: status, Result: result}
		action := "cancel_match"
		if status == StatusSettled {
			now := s.now()
			p.SettledAt = &now
			action = "settle_match"
		}
		m, err = q.UpdateMatchStatus(ctx, p)
		if err != nil {
			return err
		}
		return q.InsertAdminAction(ctx, store.AdminAction{
			AdminID:    adminID,
			Action:     action,
			EntityKind: "match",
			EntityID:   matchID,
			Details:    map[string]any{"result": result},
		})
	})
	return m, err
}

func (s *Service) fanOut(ctx context.Context, m store.Match) (*SettlementSummary, error) {
	ids, err := s.store.ListPendingBetIDsByMatch(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	sum := &SettlementSummary{Match: m, TotalPayout: decimal.Zero}
	for _, id := range ids {
		sum.Processed++
		res, err := s.settleOne(ctx, m, id)
		if err != nil {
			if errors.Is(err, betting.ErrInvalidBetState) {
				sum.Skipped++
				continue
			}
			sum.Failed++
			log.Error().Err(err).Str("match_id", m.ID).Str("bet_id", id).Msg("match_bet_settle_failed")
			continue
		}
		switch res.Bet.Status {
		case betting.StatusWon:
			sum.Won++
			sum.TotalPayout = sum.TotalPayout.Add(res.Bet.PayoutAmount)
		case betting.StatusLost:
			sum.Lost++
		case betting.StatusRefunded:
			sum.Refunded++
		}
		s.notifyBet(ctx, m, res.Bet)
	}
	log.Info().
		Str("match_id", m.ID).
		Int("processed", sum.Processed).
		Int("won", sum.Won).
		Int("lost", sum.Lost).
		Int("refunded", sum.Refunded).
		Int("skipped", sum.Skipped).
		Int("failed", sum.Failed).
		Str("total_payout", sum.TotalPayout.StringFixed(2)).
		Msg("match_fanout_done")
	return sum, nil
}

func (s *Service) settleOne(ctx context.Context, m store.Match, betID string) (betting.Settlement, error) {
	if m.Status == StatusCancelled {
		return s.engine.RefundBet(ctx, betID, cancelRefundReason)
	}
	bet, err := s.store.GetBet(ctx, betID)
	if err != nil {
		return betting.Settlement{}, err
	}
	res, err := game.ResolveProposition(bet.Selection, m.Result)
	if err != nil {
		return betting.Settlement{}, err
	}
	return s.engine.SettleBet(ctx, betting.SettleInput{
		BetID:      betID,
		Outcome:    res.Outcome,
		Won:        res.Won,
		Multiplier: res.Multiplier,
	})
}

func (s *Service) notifyBet(ctx context.Context, m store.Match, bet store.Bet) {
	ev := notify.Event{UserID: bet.UserID, Balance: account.CurrentBalance(ctx, s.store, bet.UserID)}
	title := m.HomeTeam + " vs " + m.AwayTeam
	switch bet.Status {
	case betting.StatusWon:
		ev.Kind = notify.KindBetWon
		ev.Summary = fmt.Sprintf("%s: %s. You won R%s.", title, m.Question, bet.PayoutAmount.StringFixed(2))
	case betting.StatusLost:
		ev.Kind = notify.KindBetLost
		ev.Summary = fmt.Sprintf("%s: %s. Result was %s.", title, m.Question, strings.ToUpper(m.Result))
	case betting.StatusRefunded:
		ev.Kind = notify.KindBetRefunded
		ev.Summary = fmt.Sprintf("%s was cancelled. R%s returned.", title, bet.StakeAmount.StringFixed(2))
	default:
		return
	}
	s.notifier.Notify(ctx, ev)
}

func (s *Service) GetMatch(ctx context.Context, matchID string) (store.Match, error) {
	m, err := s.store.GetMatch(ctx, matchID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Match{}, ErrMatchNotFound
	}
	return m, err
}

func (s *Service) ActiveMatches(ctx context.Context, limit, offset int) (*ListResponse, error) {
	return s.ListMatches(ctx, StatusActive, limit, offset)
}

func (s *Service) ListMatches(ctx context.Context, status string, limit, offset int) (*ListResponse, error) {
	switch status {
	case "", StatusActive, StatusSettled, StatusCancelled:
	default:
		return nil, ErrInvalidRequest
	}
	items, err := s.store.ListMatches(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}
	return &ListResponse{Items: items, Limit: limit, Offset: offset}, nil
}
