// Package account handles registration and read access to a user's money:
// balance, transaction history and bets.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kumbirai/my-kasi-bet/internal/ledger"
	"github.com/kumbirai/my-kasi-bet/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const defaultCountryCode = "27"

type Service struct {
	store  *store.Store
	ledger *ledger.Ledger
	now    func() time.Time
}

func NewService(st *store.Store) *Service {
	return &Service{store: st, ledger: ledger.New(st), now: time.Now}
}

// NormalizePhone reduces a phone number to digits with a country code.
// Local numbers with a leading zero get the South African code.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return "", ErrInvalidPhone
	}
	if strings.HasPrefix(digits, "0") {
		digits = defaultCountryCode + digits[1:]
	}
	if !strings.HasPrefix(digits, defaultCountryCode) {
		digits = defaultCountryCode + digits
	}
	if len(digits) < 9 || len(digits) > 15 {
		return "", ErrInvalidPhone
	}
	return digits, nil
}

// Register returns the user for phone, creating the user and an empty
// account on first contact.
func (s *Service) Register(ctx context.Context, phone, username string) (*RegisterResponse, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	var out RegisterResponse
	err = s.store.InTx(ctx, func(q *store.Queries) error {
		u, created, err := q.InsertUserIfAbsent(ctx, normalized, strings.TrimSpace(username))
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		if err := q.EnsureAccount(ctx, u.ID); err != nil {
			return fmt.Errorf("ensure account: %w", err)
		}
		if !created {
			if err := q.TouchUser(ctx, u.ID, s.now()); err != nil {
				return err
			}
		}
		acc, err := q.GetAccount(ctx, u.ID)
		if err != nil {
			return err
		}
		out = RegisterResponse{User: u, Created: created, Balance: acc.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Created {
		log.Info().Str("user_id", out.User.ID).Str("phone", out.User.PhoneNumber).Msg("user_registered")
	}
	return &out, nil
}

func (s *Service) GetUser(ctx context.Context, userID string) (store.User, error) {
	u, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return store.User{}, ErrUserNotFound
	}
	return u, err
}

func (s *Service) GetBalance(ctx context.Context, userID string) (*BalanceResponse, error) {
	bal, err := s.ledger.Balance(ctx, userID)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &BalanceResponse{UserID: userID, Balance: bal}, nil
}

// TransactionHistory lists a user's transactions newest first.
func (s *Service) TransactionHistory(ctx context.Context, userID string, f HistoryFilter, limit, offset int) (*TransactionsResponse, error) {
	if f.Kind != "" && !validKind(f.Kind) {
		return nil, ErrInvalidRequest
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return nil, ErrInvalidRequest
	}
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	items, err := s.ledger.History(ctx, toStoreFilter(userID, f), limit, offset)
	if err != nil {
		return nil, err
	}
	return &TransactionsResponse{Items: items, Limit: limit, Offset: offset}, nil
}

// Ledger lists transactions across all users for administrators.
func (s *Service) Ledger(ctx context.Context, userID string, f HistoryFilter, limit, offset int) (*TransactionsResponse, error) {
	if f.Kind != "" && !validKind(f.Kind) {
		return nil, ErrInvalidRequest
	}
	items, err := s.ledger.History(ctx, toStoreFilter(userID, f), limit, offset)
	if err != nil {
		return nil, err
	}
	return &TransactionsResponse{Items: items, Limit: limit, Offset: offset}, nil
}

func (s *Service) BetHistory(ctx context.Context, userID, status string, limit, offset int) (*BetsResponse, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	items, err := s.store.ListBets(ctx, store.BetFilter{UserID: userID, Status: status}, limit, offset)
	if err != nil {
		return nil, err
	}
	return &BetsResponse{Items: items, Limit: limit, Offset: offset}, nil
}

// SetBlocked blocks or unblocks a user and records the admin action.
func (s *Service) SetBlocked(ctx context.Context, userID string, blocked bool, adminID string) (store.User, error) {
	var out store.User
	err := s.store.InTx(ctx, func(q *store.Queries) error {
		if err := q.SetUserBlocked(ctx, userID, blocked); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		action := "unblock_user"
		if blocked {
			action = "block_user"
		}
		if err := q.InsertAdminAction(ctx, store.AdminAction{
			AdminID:    adminID,
			Action:     action,
			EntityKind: "user",
			EntityID:   userID,
		}); err != nil {
			return err
		}
		var err error
		out, err = q.GetUserByID(ctx, userID)
		return err
	})
	if err != nil {
		return store.User{}, err
	}
	log.Info().Str("user_id", userID).Bool("blocked", blocked).Str("admin_id", adminID).Msg("user_block_changed")
	return out, nil
}

func (s *Service) VerifyIntegrity(ctx context.Context, userID string) (*IntegrityResponse, error) {
	rep, err := s.ledger.VerifyIntegrity(ctx, userID)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !rep.OK {
		log.Error().
			Str("user_id", userID).
			Str("reason", rep.Reason).
			Str("broken_at", rep.BrokenAt).
			Msg("ledger_integrity_broken")
	}
	return &rep, nil
}

// RequireActive fails unless the user exists and is not blocked. Callers run
// it inside the unit of work that moves the user's money.
func RequireActive(ctx context.Context, q *store.Queries, userID string) (store.User, error) {
	u, err := q.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.User{}, ErrUserNotFound
		}
		return store.User{}, err
	}
	if u.IsBlocked {
		return store.User{}, ErrUserBlocked
	}
	return u, nil
}

// CurrentBalance reads the balance for a notification after commit. Errors
// are logged and yield zero.
func CurrentBalance(ctx context.Context, st *store.Store, userID string) decimal.Decimal {
	acc, err := st.GetAccount(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("balance_read_failed")
		return decimal.Zero
	}
	return acc.Balance
}

func toStoreFilter(userID string, f HistoryFilter) store.TransactionFilter {
	out := store.TransactionFilter{UserID: userID, Kind: f.Kind}
	if !f.From.IsZero() {
		from := f.From
		out.From = &from
	}
	if !f.To.IsZero() {
		to := f.To
		out.To = &to
	}
	return out
}

func validKind(kind string) bool {
	switch kind {
	case ledger.KindDeposit, ledger.KindWithdrawal, ledger.KindBet, ledger.KindWin, ledger.KindRefund:
		return true
	}
	return false
}
