package account

import (
	"context"
	"errors"
	"testing"

	"github.com/kumbirai/my-kasi-bet/internal/ledger"
	"github.com/kumbirai/my-kasi-bet/internal/testutil"

	"github.com/shopspring/decimal"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  error
	}{
		{in: "+27 82 123 4567", want: "27821234567"},
		{in: "0821234567", want: "27821234567"},
		{in: "27821234567", want: "27821234567"},
		{in: "821234567", want: "27821234567"},
		{in: "   ", err: ErrInvalidPhone},
		{in: "+", err: ErrInvalidPhone},
		{in: "12", err: ErrInvalidPhone},
	}
	for _, tc := range cases {
		got, err := NormalizePhone(tc.in)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("NormalizePhone(%q) err = %v, want %v", tc.in, err, tc.err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("NormalizePhone(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestRegisterIsGetOrCreate(t *testing.T) {
	st := testutil.OpenTestStore(t)
	svc := NewService(st)
	ctx := context.Background()

	first, err := svc.Register(ctx, "+27 82 555 0001", "thabo")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !first.Created || first.User.PhoneNumber != "27825550001" || !first.Balance.IsZero() {
		t.Fatalf("unexpected first registration: %+v", first)
	}
	second, err := svc.Register(ctx, "0825550001", "")
	if err != nil {
		t.Fatalf("register again: %v", err)
	}
	if second.Created || second.User.ID != first.User.ID {
		t.Fatalf("expected existing user, got %+v", second)
	}
}

func TestBalanceAndHistory(t *testing.T) {
	st := testutil.OpenTestStore(t)
	svc := NewService(st)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "0825550002", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	l := ledger.New(st)
	if _, err := l.Credit(ctx, ledger.Entry{UserID: reg.User.ID, Amount: decimal.RequireFromString("100"), Kind: ledger.KindDeposit}); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := l.Debit(ctx, ledger.Entry{UserID: reg.User.ID, Amount: decimal.RequireFromString("30"), Kind: ledger.KindBet}); err != nil {
		t.Fatalf("debit: %v", err)
	}

	bal, err := svc.GetBalance(ctx, reg.User.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !bal.Balance.Equal(decimal.RequireFromString("70")) {
		t.Fatalf("balance = %s, want 70", bal.Balance)
	}

	all, err := svc.TransactionHistory(ctx, reg.User.ID, HistoryFilter{}, 10, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(all.Items) != 2 || all.Items[0].Kind != ledger.KindBet {
		t.Fatalf("expected newest-first history, got %+v", all.Items)
	}
	deposits, err := svc.TransactionHistory(ctx, reg.User.ID, HistoryFilter{Kind: ledger.KindDeposit}, 10, 0)
	if err != nil {
		t.Fatalf("history by kind: %v", err)
	}
	if len(deposits.Items) != 1 {
		t.Fatalf("expected 1 deposit, got %d", len(deposits.Items))
	}
	if _, err := svc.TransactionHistory(ctx, reg.User.ID, HistoryFilter{Kind: "bogus"}, 10, 0); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}

	rep, err := svc.VerifyIntegrity(ctx, reg.User.ID)
	if err != nil {
		t.Fatalf("integrity: %v", err)
	}
	if !rep.OK || rep.TransactionCount != 2 {
		t.Fatalf("unexpected integrity report: %+v", rep)
	}
}

func TestUnknownUser(t *testing.T) {
	st := testutil.OpenTestStore(t)
	svc := NewService(st)
	ctx := context.Background()

	if _, err := svc.GetBalance(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.BetHistory(ctx, "missing", "", 10, 0); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.SetBlocked(ctx, "missing", true, "admin"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRequireActiveBlockedUser(t *testing.T) {
	st := testutil.OpenTestStore(t)
	svc := NewService(st)
	ctx := context.Background()
	u := testutil.SeedUser(t, st, "27825550003", "")

	if _, err := RequireActive(ctx, st.Queries, u.ID); err != nil {
		t.Fatalf("active user rejected: %v", err)
	}
	blocked, err := svc.SetBlocked(ctx, u.ID, true, "admin-1")
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	if !blocked.IsBlocked {
		t.Fatal("expected user to be blocked")
	}
	if _, err := RequireActive(ctx, st.Queries, u.ID); !errors.Is(err, ErrUserBlocked) {
		t.Fatalf("expected ErrUserBlocked, got %v", err)
	}
	actions, err := st.ListAdminActions(ctx, "user", u.ID, 10, 0)
	if err != nil {
		t.Fatalf("list actions: %v", err)
	}
	if len(actions) != 1 || actions[0].Action != "block_user" || actions[0].AdminID != "admin-1" {
		t.Fatalf("unexpected admin actions: %+v", actions)
	}
}
