// Package withdrawal runs payouts. The amount is debited when the request is
// made and held until an administrator pays it out (approve) or returns it
// (reject, or cancel by the owner).
package withdrawal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kumbirai/my-kasi-bet/internal/app/account"
	"github.com/kumbirai/my-kasi-bet/internal/ledger"
	"github.com/kumbirai/my-kasi-bet/internal/notify"
	"github.com/kumbirai/my-kasi-bet/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const referenceKind = "withdrawal"

type Service struct {
	store    *store.Store
	policy   Policy
	notifier notify.Notifier
	now      func() time.Time
}

func NewService(st *store.Store, policy Policy, n notify.Notifier) *Service {
	if n == nil {
		n = notify.Nop{}
	}
	return &Service{store: st, policy: policy, notifier: n, now: time.Now}
}

func (s *Service) validate(req *CreateRequest) error {
	if !ledger.ValidAmount(req.Amount) || req.Amount.LessThan(s.policy.Min) || req.Amount.GreaterThan(s.policy.Max) {
		return ErrInvalidAmount
	}
	req.Method = strings.ToLower(strings.TrimSpace(req.Method))
	req.BankName = strings.TrimSpace(req.BankName)
	req.AccountNumber = strings.TrimSpace(req.AccountNumber)
	req.AccountHolder = strings.TrimSpace(req.AccountHolder)
	switch req.Method {
	case MethodBankTransfer:
		if req.BankName == "" || req.AccountNumber == "" || req.AccountHolder == "" {
			return ErrInvalidRequest
		}
	case MethodEWallet:
		if req.AccountNumber == "" {
			return ErrInvalidRequest
		}
	case MethodCashPickup:
	default:
		return ErrInvalidRequest
	}
	return nil
}

// startOfDay is the UTC midnight that opens the daily-cap window.
func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CreateRequest debits the amount and records a pending withdrawal. The
// account row is locked before today's total is read, so concurrent requests
// by one user cannot both pass the daily cap.
func (s *Service) CreateRequest(ctx context.Context, req CreateRequest) (store.Withdrawal, error) {
	if err := s.validate(&req); err != nil {
		return store.Withdrawal{}, err
	}
	var out store.Withdrawal
	err := s.store.InTx(ctx, func(q *store.Queries) error {
		if _, err := account.RequireActive(ctx, q, req.UserID); err != nil {
			return err
		}
		if _, err := q.GetAccountForUpdate(ctx, req.UserID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ledger.ErrAccountNotFound
			}
			return err
		}
		used, err := q.SumActiveWithdrawalsSince(ctx, req.UserID, startOfDay(s.now()))
		if err != nil {
			return err
		}
		if used.Add(req.Amount).GreaterThan(s.policy.DailyCap) {
			remaining := s.policy.DailyCap.Sub(used)
			if remaining.Sign() < 0 {
				remaining = decimal.Zero
			}
			return &DailyLimitError{Limit: s.policy.DailyCap, Remaining: remaining}
		}

		id := store.NewID()
		tx, err := ledger.Debit(ctx, q, ledger.Entry{
			UserID:        req.UserID,
			Amount:        req.Amount,
			Kind:          ledger.KindWithdrawal,
			Description:   "Withdrawal request " + id,
			ReferenceKind: referenceKind,
			ReferenceID:   id,
			Metadata:      map[string]any{"method": req.Method},
		})
		if err != nil {
			return err
		}
		out, err = q.InsertWithdrawal(ctx, store.Withdrawal{
			ID:                 id,
			UserID:             req.UserID,
			Amount:             req.Amount,
			Method:             req.Method,
			BankName:           req.BankName,
			AccountNumber:      req.AccountNumber,
			AccountHolder:      req.AccountHolder,
			Notes:              strings.TrimSpace(req.Notes),
			DebitTransactionID: tx.ID,
		})
		if err != nil {
			return fmt.Errorf("insert withdrawal: %w", err)
		}
		return nil
	})
	if err != nil {
		return store.Withdrawal{}, err
	}
	log.Info().
		Str("withdrawal_id", out.ID).
		Str("user_id", out.UserID).
		Str("amount", out.Amount.StringFixed(2)).
		Str("method", out.Method).
		Str("debit_transaction_id", out.DebitTransactionID).
		Msg("withdrawal_requested")
	return out, nil
}

// Approve marks the held funds as paid out. No money moves.
func (s *Service) Approve(ctx context.Context, withdrawalID, adminID, paymentRef string) (store.Withdrawal, error) {
	var out store.Withdrawal
	err := s.store.InTx(ctx, func(q *store.Queries) error {
		w, err := lockPending(ctx, q, withdrawalID)
		if err != nil {
			return err
		}
		now := s.now()
		out, err = q.UpdateWithdrawalReview(ctx, store.WithdrawalReviewParams{
			ID:               w.ID,
			Status:           StatusApproved,
			ReviewedBy:       adminID,
			ReviewedAt:       now,
			PaymentReference: strings.TrimSpace(paymentRef),
			PaidAt:           &now,
		})
		if err != nil {
			return err
		}
		return q.InsertAdminAction(ctx, store.AdminAction{
			AdminID:    adminID,
			Action:     "approve_withdrawal",
			EntityKind: referenceKind,
			EntityID:   w.ID,
			Details:    map[string]any{"amount": w.Amount.StringFixed(2), "payment_reference": out.PaymentReference},
		})
	})
	if err != nil {
		return store.Withdrawal{}, err
	}
	log.Info().Str("withdrawal_id", out.ID).Str("user_id", out.UserID).Str("amount", out.Amount.StringFixed(2)).Str("admin_id", adminID).Msg("withdrawal_approved")
	s.notifier.Notify(ctx, notify.Event{
		UserID:  out.UserID,
		Kind:    notify.KindWithdrawalApproved,
		Summary: fmt.Sprintf("Your R%s withdrawal has been paid.", out.Amount.StringFixed(2)),
		Balance: account.CurrentBalance(ctx, s.store, out.UserID),
	})
	return out, nil
}

// Reject returns the held amount with a refund credit.
func (s *Service) Reject(ctx context.Context, withdrawalID, adminID, reason string) (store.Withdrawal, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return store.Withdrawal{}, ErrInvalidRequest
	}
	out, refund, err := s.release(ctx, withdrawalID, StatusRejected, adminID, reason, func(w store.Withdrawal) error { return nil })
	if err != nil {
		return store.Withdrawal{}, err
	}
	log.Info().Str("withdrawal_id", out.ID).Str("user_id", out.UserID).Str("admin_id", adminID).Str("reason", reason).Msg("withdrawal_rejected")
	s.notifier.Notify(ctx, notify.Event{
		UserID:  out.UserID,
		Kind:    notify.KindWithdrawalRejected,
		Summary: fmt.Sprintf("Your R%s withdrawal was rejected and returned to your account: %s", out.Amount.StringFixed(2), reason),
		Balance: refund.BalanceAfter,
	})
	return out, nil
}

// Cancel lets the owner withdraw a pending request. The held amount is
// refunded the same way as a rejection.
func (s *Service) Cancel(ctx context.Context, withdrawalID, userID string) (store.Withdrawal, error) {
	out, _, err := s.release(ctx, withdrawalID, StatusCancelled, "", "cancelled by user", func(w store.Withdrawal) error {
		if w.UserID != userID {
			return ErrWithdrawalNotFound
		}
		return nil
	})
	if err != nil {
		return store.Withdrawal{}, err
	}
	log.Info().Str("withdrawal_id", out.ID).Str("user_id", out.UserID).Msg("withdrawal_cancelled")
	return out, nil
}

func (s *Service) release(ctx context.Context, withdrawalID, status, adminID, reason string, check func(store.Withdrawal) error) (store.Withdrawal, store.Transaction, error) {
	var out store.Withdrawal
	var refund store.Transaction
	err := s.store.InTx(ctx, func(q *store.Queries) error {
		w, err := lockPending(ctx, q, withdrawalID)
		if err != nil {
			return err
		}
		if err := check(w); err != nil {
			return err
		}
		refund, err = ledger.Credit(ctx, q, ledger.Entry{
			UserID:        w.UserID,
			Amount:        w.Amount,
			Kind:          ledger.KindRefund,
			Description:   "Withdrawal " + status + ": " + reason,
			ReferenceKind: referenceKind,
			ReferenceID:   w.ID,
		})
		if err != nil {
			return err
		}
		out, err = q.UpdateWithdrawalReview(ctx, store.WithdrawalReviewParams{
			ID:                  w.ID,
			Status:              status,
			ReviewedBy:          adminID,
			ReviewedAt:          s.now(),
			RejectionReason:     reason,
			RefundTransactionID: refund.ID,
		})
		if err != nil {
			return err
		}
		if adminID == "" {
			return nil
		}
		return q.InsertAdminAction(ctx, store.AdminAction{
			AdminID:    adminID,
			Action:     "reject_withdrawal",
			EntityKind: referenceKind,
			EntityID:   w.ID,
			Details:    map[string]any{"reason": reason, "refund_transaction_id": refund.ID},
		})
	})
	return out, refund, err
}

func (s *Service) Get(ctx context.Context, withdrawalID string) (store.Withdrawal, error) {
	w, err := s.store.GetWithdrawal(ctx, withdrawalID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Withdrawal{}, ErrWithdrawalNotFound
	}
	return w, err
}

func (s *Service) List(ctx context.Context, userID, status string, limit, offset int) (*ListResponse, error) {
	switch status {
	case "", StatusPending, StatusApproved, StatusRejected, StatusCancelled:
	default:
		return nil, ErrInvalidRequest
	}
	items, err := s.store.ListWithdrawals(ctx, store.WithdrawalFilter{UserID: userID, Status: status}, limit, offset)
	if err != nil {
		return nil, err
	}
	return &ListResponse{Items: items, Limit: limit, Offset: offset}, nil
}

func lockPending(ctx context.Context, q *store.Queries, withdrawalID string) (store.Withdrawal, error) {
	w, err := q.GetWithdrawalForUpdate(ctx, withdrawalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Withdrawal{}, ErrWithdrawalNotFound
		}
		return store.Withdrawal{}, err
	}
	if w.Status != StatusPending {
		return store.Withdrawal{}, ErrInvalidWithdrawalState
	}
	return w, nil
}
