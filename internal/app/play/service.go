// Package play runs the instant games: the stake is taken, the outcome drawn
// and the bet settled in one call.
package play

import (
	"context"
	"errors"
	"time"

	"github.com/kumbirai/my-kasi-bet/internal/app/account"
	"github.com/kumbirai/my-kasi-bet/internal/betting"
	"github.com/kumbirai/my-kasi-bet/internal/game"
	"github.com/kumbirai/my-kasi-bet/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Service struct {
	store  *store.Store
	engine *betting.Engine
	src    game.Source
}

func NewService(st *store.Store, engine *betting.Engine, src game.Source) *Service {
	if src == nil {
		src = game.CryptoSource{}
	}
	return &Service{store: st, engine: engine, src: src}
}

// Play validates the selection, places the bet, draws and settles.
// Validation and placement failures leave no trace. Once the stake is taken
// the draw and settlement ignore ctx cancellation. A failure after placement
// returns *SettleError and leaves the bet pending for RefundStaleBets.
func (s *Service) Play(ctx context.Context, req Request) (*Response, error) {
	g, err := game.Lookup(req.Game)
	if err != nil {
		return nil, err
	}
	selection, err := g.Validate(req.Selection)
	if err != nil {
		return nil, err
	}

	var (
		bet     store.Bet
		balance decimal.Decimal
	)
	err = s.store.InTx(ctx, func(q *store.Queries) error {
		if _, err := account.RequireActive(ctx, q, req.UserID); err != nil {
			return err
		}
		var err error
		bet, err = s.engine.PlaceBetTx(ctx, q, betting.PlaceInput{
			UserID:    req.UserID,
			GameType:  g.Name(),
			Stake:     req.Stake,
			Selection: selection,
		})
		if err != nil {
			return err
		}
		acc, err := q.GetAccount(ctx, req.UserID)
		if err != nil {
			return err
		}
		balance = acc.Balance
		return nil
	})
	if err != nil {
		return nil, err
	}

	settleCtx := context.WithoutCancel(ctx)
	res, err := g.Play(selection, s.src)
	if err != nil {
		return nil, s.settleFailed(bet, err)
	}
	settled, err := s.engine.SettleBet(settleCtx, betting.SettleInput{
		BetID:      bet.ID,
		Outcome:    res.Outcome,
		Won:        res.Won,
		Multiplier: res.Multiplier,
	})
	if err != nil {
		return nil, s.settleFailed(bet, err)
	}
	if settled.Transaction != nil {
		balance = settled.Transaction.BalanceAfter
	}

	return &Response{
		Bet:        settled.Bet,
		Won:        settled.Bet.Status == betting.StatusWon,
		Outcome:    res.Outcome,
		Multiplier: res.Multiplier,
		Payout:     settled.Bet.PayoutAmount,
		Balance:    balance,
	}, nil
}

func (s *Service) settleFailed(bet store.Bet, err error) error {
	log.Error().Err(err).
		Str("bet_id", bet.ID).
		Str("user_id", bet.UserID).
		Str("game_type", bet.GameType).
		Str("stake", bet.StakeAmount.StringFixed(2)).
		Msg("bet_settle_failed")
	return &SettleError{BetID: bet.ID, Err: err}
}

// Refund returns the stake of a pending bet on an administrator's behalf.
// Instant bets only stay pending after a failed draw; proposition bets are
// normally refunded by cancelling their match.
func (s *Service) Refund(ctx context.Context, betID, reason, adminID string) (betting.Settlement, error) {
	if reason == "" {
		reason = "admin_refund"
	}
	var out betting.Settlement
	err := s.store.InTx(ctx, func(q *store.Queries) error {
		var err error
		out, err = s.engine.RefundBetTx(ctx, q, betID, reason)
		if err != nil {
			return err
		}
		return q.InsertAdminAction(ctx, store.AdminAction{
			AdminID:    adminID,
			Action:     "refund_bet",
			EntityKind: "bet",
			EntityID:   betID,
			Details:    map[string]any{"reason": reason, "amount": out.Bet.StakeAmount.StringFixed(2)},
		})
	})
	if err != nil {
		return betting.Settlement{}, err
	}
	log.Info().Str("bet_id", betID).Str("admin_id", adminID).Str("reason", reason).Msg("bet_refunded")
	return out, nil
}

// StaleRefundReason marks bets returned by RefundStaleBets.
const StaleRefundReason = "stale_pending"

const staleBatch = 100

// RefundStaleBets refunds instant bets still pending from before olderThan.
// A bet settled meanwhile is skipped. It returns how many were refunded.
func (s *Service) RefundStaleBets(ctx context.Context, olderThan time.Time) (int, error) {
	refunded := 0
	for {
		bets, err := s.store.ListStaleInstantBets(ctx, olderThan, staleBatch)
		if err != nil {
			return refunded, err
		}
		progressed := false
		for _, b := range bets {
			if err := ctx.Err(); err != nil {
				return refunded, err
			}
			if _, err := s.engine.RefundBet(ctx, b.ID, StaleRefundReason); err != nil {
				if errors.Is(err, betting.ErrInvalidBetState) {
					progressed = true
					continue
				}
				log.Error().Err(err).Str("bet_id", b.ID).Msg("stale_bet_refund_failed")
				continue
			}
			progressed = true
			refunded++
			log.Warn().
				Str("bet_id", b.ID).
				Str("user_id", b.UserID).
				Str("game_type", b.GameType).
				Str("stake", b.StakeAmount.StringFixed(2)).
				Msg("stale_bet_refunded")
		}
		if len(bets) < staleBatch || !progressed {
			return refunded, nil
		}
	}
}
