// Package deposit runs the manual deposit workflow: a user reports a payment,
// an administrator checks the proof and approves (crediting the account) or
// rejects it. Unreviewed requests expire.
package deposit

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
)

const (
	referenceKind  = "deposit"
	maxProofLength = 256
)

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

func (s *Service) CreateRequest(ctx context.Context, req CreateRequest) (store.Deposit, error) {
	if !ledger.ValidAmount(req.Amount) || req.Amount.LessThan(s.policy.Min) || req.Amount.GreaterThan(s.policy.Max) {
		return store.Deposit{}, ErrInvalidAmount
	}
	req.PaymentMethod = strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if !ValidPaymentMethod(req.PaymentMethod) {
		return store.Deposit{}, ErrInvalidRequest
	}
	if len(req.ProofType) > maxProofLength || len(req.ProofValue) > maxProofLength {
		return store.Deposit{}, ErrInvalidRequest
	}

	var dep store.Deposit
	err := s.store.InTx(ctx, func(q *store.Queries) error {
		if _, err := account.RequireActive(ctx, q, req.UserID); err != nil {
			return err
		}
		expires := s.now().Add(s.policy.Expiry)
		var err error
		dep, err = q.InsertDeposit(ctx, store.Deposit{
			UserID:        req.UserID,
			Amount:        req.Amount,
			PaymentMethod: req.PaymentMethod,
			ProofType:     strings.TrimSpace(req.ProofType),
			ProofValue:    strings.TrimSpace(req.ProofValue),
			Notes:         strings.TrimSpace(req.Notes),
			ExpiresAt:     &expires,
		})
		return err
	})
	if err != nil {
		return store.Deposit{}, err
	}
	log.Info().
		Str("deposit_id", dep.ID).
		Str("user_id", dep.UserID).
		Str("amount", dep.Amount.StringFixed(2)).
		Str("method", dep.PaymentMethod).
		Msg("deposit_requested")
	return dep, nil
}

// SubmitProof attaches payment proof to the owner's pending deposit.
func (s *Service) SubmitProof(ctx context.Context, depositID, userID, proofType, proofValue string) (store.Deposit, error) {
	proofType = strings.TrimSpace(proofType)
	proofValue = strings.TrimSpace(proofValue)
	if proofType == "" || proofValue == "" || len(proofType) > maxProofLength || len(proofValue) > maxProofLength {
		return store.Deposit{}, ErrInvalidRequest
	}
	var out store.Deposit
	err := s.store.InTx(ctx, func(q *store.Queries) error {
		dep, err := lockPending(ctx, q, depositID)
		if err != nil {
			return err
		}
		if dep.UserID != userID {
			return ErrDepositNotFound
		}
		out, err = q.UpdateDepositProof(ctx, depositID, proofType, proofValue)
		return err
	})
	return out, err
}

// Approve credits the deposit amount and links the ledger transaction.
func (s *Service) Approve(ctx context.Context, depositID, adminID string) (store.Deposit, error) {
	var out store.Deposit
	var credit store.Transaction
	err := s.store.InTx(ctx, func(q *store.Queries) error {
		dep, err := lockPending(ctx, q, depositID)
		if err != nil {
			return err
		}
		tx, err := ledger.Credit(ctx, q, ledger.Entry{
			UserID:        dep.UserID,
			Amount:        dep.Amount,
			Kind:          ledger.KindDeposit,
			Description:   "Deposit via " + dep.PaymentMethod,
			ReferenceKind: referenceKind,
			ReferenceID:   dep.ID,
			Metadata:      map[string]any{"approved_by": adminID},
		})
		if err != nil {
			return err
		}
		credit = tx
		out, err = q.UpdateDepositReview(ctx, store.DepositReviewParams{
			ID:            dep.ID,
			Status:        StatusApproved,
			ReviewedBy:    adminID,
			ReviewedAt:    s.now(),
			TransactionID: tx.ID,
		})
		if err != nil {
			return err
		}
		return q.InsertAdminAction(ctx, store.AdminAction{
			AdminID:    adminID,
			Action:     "approve_deposit",
			EntityKind: referenceKind,
			EntityID:   dep.ID,
			Details:    map[string]any{"amount": dep.Amount.StringFixed(2), "transaction_id": tx.ID},
		})
	})
	if err != nil {
		return store.Deposit{}, err
	}
	log.Info().
		Str("deposit_id", out.ID).
		Str("user_id", out.UserID).
		Str("amount", out.Amount.StringFixed(2)).
		Str("admin_id", adminID).
		Msg("deposit_approved")
	s.notifier.Notify(ctx, notify.Event{
		UserID:  out.UserID,
		Kind:    notify.KindDepositApproved,
		Summary: fmt.Sprintf("R%s has been added to your account.", out.Amount.StringFixed(2)),
		Balance: credit.BalanceAfter,
	})
	return out, nil
}

// Reject closes the deposit without moving money.
func (s *Service) Reject(ctx context.Context, depositID, adminID, reason string) (store.Deposit, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return store.Deposit{}, ErrInvalidRequest
	}
	var out store.Deposit
	err := s.store.InTx(ctx, func(q *store.Queries) error {
		dep, err := lockPending(ctx, q, depositID)
		if err != nil {
			return err
		}
		out, err = q.UpdateDepositReview(ctx, store.DepositReviewParams{
			ID:              dep.ID,
			Status:          StatusRejected,
			ReviewedBy:      adminID,
			ReviewedAt:      s.now(),
			RejectionReason: reason,
		})
		if err != nil {
			return err
		}
		return q.InsertAdminAction(ctx, store.AdminAction{
			AdminID:    adminID,
			Action:     "reject_deposit",
			EntityKind: referenceKind,
			EntityID:   dep.ID,
			Details:    map[string]any{"reason": reason},
		})
	})
	if err != nil {
		return store.Deposit{}, err
	}
	log.Info().Str("deposit_id", out.ID).Str("user_id", out.UserID).Str("admin_id", adminID).Str("reason", reason).Msg("deposit_rejected")
	s.notifier.Notify(ctx, notify.Event{
		UserID:  out.UserID,
		Kind:    notify.KindDepositRejected,
		Summary: fmt.Sprintf("Your R%s deposit was rejected: %s", out.Amount.StringFixed(2), reason),
		Balance: account.CurrentBalance(ctx, s.store, out.UserID),
	})
	return out, nil
}

// ExpireStale marks pending deposits past their expiry as expired. No money
// moves.
func (s *Service) ExpireStale(ctx context.Context, now time.Time) ([]store.Deposit, error) {
	expired, err := s.store.ExpirePendingDeposits(ctx, now)
	if err != nil {
		return nil, err
	}
	for _, dep := range expired {
		log.Info().Str("deposit_id", dep.ID).Str("user_id", dep.UserID).Msg("deposit_expired")
		s.notifier.Notify(ctx, notify.Event{
			UserID:  dep.UserID,
			Kind:    notify.KindDepositExpired,
			Summary: fmt.Sprintf("Your R%s deposit request expired before it was reviewed.", dep.Amount.StringFixed(2)),
			Balance: account.CurrentBalance(ctx, s.store, dep.UserID),
		})
	}
	return expired, nil
}

func (s *Service) Get(ctx context.Context, depositID string) (store.Deposit, error) {
	dep, err := s.store.GetDeposit(ctx, depositID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Deposit{}, ErrDepositNotFound
	}
	return dep, err
}

func (s *Service) List(ctx context.Context, userID, status string, limit, offset int) (*ListResponse, error) {
	switch status {
	case "", StatusPending, StatusApproved, StatusRejected, StatusExpired:
	default:
		return nil, ErrInvalidRequest
	}
	items, err := s.store.ListDeposits(ctx, store.DepositFilter{UserID: userID, Status: status}, limit, offset)
	if err != nil {
		return nil, err
	}
	return &ListResponse{Items: items, Limit: limit, Offset: offset}, nil
}

func lockPending(ctx context.Context, q *store.Queries, depositID string) (store.Deposit, error) {
	dep, err := q.GetDepositForUpdate(ctx, depositID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Deposit{}, ErrDepositNotFound
		}
		return store.Deposit{}, err
	}
	if dep.Status != StatusPending {
		return store.Deposit{}, ErrInvalidDepositState
	}
	return dep, nil
}
