package deposit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kumbirai/my-kasi-bet/internal/app/account"
	"github.com/kumbirai/my-kasi-bet/internal/config"
	"github.com/kumbirai/my-kasi-bet/internal/ledger"
	"github.com/kumbirai/my-kasi-bet/internal/notify"
	"github.com/kumbirai/my-kasi-bet/internal/store"
	"github.com/kumbirai/my-kasi-bet/internal/testutil"

	"github.com/shopspring/decimal"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingNotifier) Notify(_ context.Context, ev notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingNotifier) Events() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event(nil), r.events...)
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestService(t *testing.T) (*Service, *store.Store, *recordingNotifier) {
	t.Helper()
	st := testutil.OpenTestStore(t)
	n := &recordingNotifier{}
	return NewService(st, DefaultPolicy(), n), st, n
}

func TestPolicyFromConfig(t *testing.T) {
	p, err := PolicyFromConfig(config.LimitsConfig{DepositMin: "25.50", DepositExpiryHours: 0})
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	if !p.Min.Equal(d("25.50")) || !p.Max.Equal(d("50000.00")) || p.Expiry != 24*time.Hour {
		t.Fatalf("unexpected policy: %+v", p)
	}
	if _, err := PolicyFromConfig(config.LimitsConfig{DepositMin: "ten"}); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := PolicyFromConfig(config.LimitsConfig{DepositMin: "100.00", DepositMax: "50.00"}); err == nil {
		t.Fatal("expected max below min to be rejected")
	}
}

func TestCreateRequestValidation(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, st, "27850000001", "")

	cases := []struct {
		req  CreateRequest
		want error
	}{
		{CreateRequest{UserID: u.ID, Amount: d("0"), PaymentMethod: "snapscan"}, ErrInvalidAmount},
		{CreateRequest{UserID: u.ID, Amount: d("9.99"), PaymentMethod: "snapscan"}, ErrInvalidAmount},
		{CreateRequest{UserID: u.ID, Amount: d("10.001"), PaymentMethod: "snapscan"}, ErrInvalidAmount},
		{CreateRequest{UserID: u.ID, Amount: d("50000.01"), PaymentMethod: "snapscan"}, ErrInvalidAmount},
		{CreateRequest{UserID: u.ID, Amount: d("10000000000000"), PaymentMethod: "snapscan"}, ErrInvalidAmount},
		{CreateRequest{UserID: u.ID, Amount: d("50"), PaymentMethod: "bitcoin"}, ErrInvalidRequest},
		{CreateRequest{UserID: "missing", Amount: d("50"), PaymentMethod: "capitec"}, account.ErrUserNotFound},
	}
	for i, tc := range cases {
		if _, err := svc.CreateRequest(ctx, tc.req); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, err)
		}
	}

	dep, err := svc.CreateRequest(ctx, CreateRequest{UserID: u.ID, Amount: d("10.00"), PaymentMethod: "One_Voucher"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dep.Status != StatusPending || dep.PaymentMethod != "one_voucher" || dep.ExpiresAt == nil || dep.TransactionID != "" {
		t.Fatalf("unexpected deposit: %+v", dep)
	}
	testutil.RequireBalance(t, st, u.ID, "0")
}

func TestApproveCreditsAndLinksTransaction(t *testing.T) {
	svc, st, n := newTestService(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, st, "27850000002", "")

	dep, err := svc.CreateRequest(ctx, CreateRequest{UserID: u.ID, Amount: d("200.00"), PaymentMethod: "bank_transfer", ProofType: "reference", ProofValue: "ABC123"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	approved, err := svc.Approve(ctx, dep.ID, "admin-7")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != StatusApproved || approved.TransactionID == "" || approved.ReviewedBy != "admin-7" || approved.ReviewedAt == nil {
		t.Fatalf("unexpected approved deposit: %+v", approved)
	}
	testutil.RequireBalance(t, st, u.ID, "200.00")

	tx, err := st.GetTransaction(ctx, approved.TransactionID)
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if tx.Kind != ledger.KindDeposit || !tx.Amount.Equal(d("200")) || tx.ReferenceID != dep.ID || !tx.BalanceBefore.IsZero() {
		t.Fatalf("unexpected transaction: %+v", tx)
	}

	if _, err := svc.Approve(ctx, dep.ID, "admin-7"); !errors.Is(err, ErrInvalidDepositState) {
		t.Fatalf("second approve: expected ErrInvalidDepositState, got %v", err)
	}
	if _, err := svc.Reject(ctx, dep.ID, "admin-7", "late"); !errors.Is(err, ErrInvalidDepositState) {
		t.Fatalf("reject after approve: expected ErrInvalidDepositState, got %v", err)
	}
	testutil.RequireBalance(t, st, u.ID, "200.00")

	events := n.Events()
	if len(events) != 1 || events[0].Kind != notify.KindDepositApproved || !events[0].Balance.Equal(d("200")) {
		t.Fatalf("unexpected notifications: %+v", events)
	}
	actions, err := st.ListAdminActions(ctx, "deposit", dep.ID, 10, 0)
	if err != nil || len(actions) != 1 || actions[0].Action != "approve_deposit" {
		t.Fatalf("unexpected admin log: %+v, %v", actions, err)
	}
}

func TestRejectMovesNoMoney(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, st, "27850000003", "")
	dep, err := svc.CreateRequest(ctx, CreateRequest{UserID: u.ID, Amount: d("50.00"), PaymentMethod: "capitec"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Reject(ctx, dep.ID, "admin", " "); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for empty reason, got %v", err)
	}
	rejected, err := svc.Reject(ctx, dep.ID, "admin", "proof not found")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != StatusRejected || rejected.RejectionReason != "proof not found" || rejected.TransactionID != "" {
		t.Fatalf("unexpected rejected deposit: %+v", rejected)
	}
	testutil.RequireBalance(t, st, u.ID, "0")
	if _, err := svc.Approve(ctx, "missing", "admin"); !errors.Is(err, ErrDepositNotFound) {
		t.Fatalf("expected ErrDepositNotFound, got %v", err)
	}
}

func TestSubmitProofOwnerOnly(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, st, "27850000004", "")
	other := testutil.SeedUser(t, st, "27850000005", "")
	dep, err := svc.CreateRequest(ctx, CreateRequest{UserID: owner.ID, Amount: d("30.00"), PaymentMethod: "one_voucher"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SubmitProof(ctx, dep.ID, other.ID, "voucher", "1234"); !errors.Is(err, ErrDepositNotFound) {
		t.Fatalf("expected ErrDepositNotFound for other user, got %v", err)
	}
	updated, err := svc.SubmitProof(ctx, dep.ID, owner.ID, "voucher", "1234-5678")
	if err != nil {
		t.Fatalf("submit proof: %v", err)
	}
	if updated.ProofType != "voucher" || updated.ProofValue != "1234-5678" || updated.Status != StatusPending {
		t.Fatalf("unexpected deposit: %+v", updated)
	}
}

func TestExpireStale(t *testing.T) {
	svc, st, n := newTestService(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, st, "27850000006", "")
	base := time.Now()
	svc.now = func() time.Time { return base }

	stale, err := svc.CreateRequest(ctx, CreateRequest{UserID: u.ID, Amount: d("20.00"), PaymentMethod: "other"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	approved, err := svc.CreateRequest(ctx, CreateRequest{UserID: u.ID, Amount: d("20.00"), PaymentMethod: "other"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Approve(ctx, approved.ID, "admin"); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if got, err := svc.ExpireStale(ctx, base.Add(time.Hour)); err != nil || len(got) != 0 {
		t.Fatalf("nothing should expire yet: %v, %v", got, err)
	}
	got, err := svc.ExpireStale(ctx, base.Add(25*time.Hour))
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if len(got) != 1 || got[0].ID != stale.ID || got[0].Status != StatusExpired {
		t.Fatalf("unexpected expired set: %+v", got)
	}
	if _, err := svc.Approve(ctx, stale.ID, "admin"); !errors.Is(err, ErrInvalidDepositState) {
		t.Fatalf("approve expired: expected ErrInvalidDepositState, got %v", err)
	}
	testutil.RequireBalance(t, st, u.ID, "20.00")

	var expiredEvents int
	for _, ev := range n.Events() {
		if ev.Kind == notify.KindDepositExpired {
			expiredEvents++
		}
	}
	if expiredEvents != 1 {
		t.Fatalf("expected 1 expiry notification, got %d", expiredEvents)
	}
}
