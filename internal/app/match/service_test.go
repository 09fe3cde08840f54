package match

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kumbirai/my-kasi-bet/internal/betting"
	"github.com/kumbirai/my-kasi-bet/internal/game"
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

func (r *recordingNotifier) Kinds() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int{}
	for _, ev := range r.events {
		out[ev.Kind]++
	}
	return out
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fundedUser(t *testing.T, st *store.Store, phone, amount string) store.User {
	t.Helper()
	u := testutil.SeedUser(t, st, phone, "")
	if _, err := ledger.New(st).Credit(context.Background(), ledger.Entry{UserID: u.ID, Amount: d(amount), Kind: ledger.KindDeposit}); err != nil {
		t.Fatalf("fund user: %v", err)
	}
	return u
}

func newTestService(t *testing.T) (*Service, *store.Store, *recordingNotifier) {
	t.Helper()
	st := testutil.OpenTestStore(t)
	n := &recordingNotifier{}
	return NewService(st, betting.NewEngine(st, nil), n), st, n
}

func createMatch(t *testing.T, svc *Service) store.Match {
	t.Helper()
	m, err := svc.CreateMatch(context.Background(), CreateRequest{
		HomeTeam: "Chiefs",
		AwayTeam: "Pirates",
		Question: "Will Chiefs win?",
		YesOdds:  d("1.80"),
		NoOdds:   d("2.10"),
	}, "admin-1")
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	return m
}

func propositionBet(matchID, side string) map[string]any {
	return map[string]any{"match_id": matchID, "side": side}
}

func TestCreateMatchValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	cases := []CreateRequest{
		{HomeTeam: "", AwayTeam: "B", Question: "q", YesOdds: d("2"), NoOdds: d("2")},
		{HomeTeam: "A", AwayTeam: "B", Question: " ", YesOdds: d("2"), NoOdds: d("2")},
		{HomeTeam: "A", AwayTeam: "B", Question: "q", YesOdds: d("0"), NoOdds: d("2")},
		{HomeTeam: "A", AwayTeam: "B", Question: "q", YesOdds: d("2"), NoOdds: d("-1")},
		{HomeTeam: "A", AwayTeam: "B", Question: "q", YesOdds: d("2.005"), NoOdds: d("2")},
	}
	for i, req := range cases {
		if _, err := svc.CreateMatch(ctx, req, "admin"); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("case %d: expected ErrInvalidRequest, got %v", i, err)
		}
	}
}

func TestSettleMatchPaysCapturedOdds(t *testing.T) {
	svc, st, n := newTestService(t)
	ctx := context.Background()
	m := createMatch(t, svc)
	yes := fundedUser(t, st, "27840000001", "500.00")
	no := fundedUser(t, st, "27840000002", "500.00")

	yesBet, err := svc.PlaceBet(ctx, PlaceBetRequest{UserID: yes.ID, Stake: d("100.00"), Selection: propositionBet(m.ID, "YES")})
	if err != nil {
		t.Fatalf("place yes: %v", err)
	}
	if yesBet.MatchID != m.ID || yesBet.Selection["odds"] != "1.80" || yesBet.Selection["side"] != "yes" {
		t.Fatalf("unexpected stored selection: %+v", yesBet)
	}
	if _, err := svc.PlaceBet(ctx, PlaceBetRequest{UserID: no.ID, Stake: d("50.00"), Selection: propositionBet(m.ID, "no")}); err != nil {
		t.Fatalf("place no: %v", err)
	}
	testutil.RequireBalance(t, st, yes.ID, "400.00")
	testutil.RequireBalance(t, st, no.ID, "450.00")

	sum, err := svc.SettleMatch(ctx, m.ID, "yes", "admin-1")
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if sum.Won != 1 || sum.Lost != 1 || sum.Failed != 0 || !sum.TotalPayout.Equal(d("180.00")) {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if sum.Match.Status != StatusSettled || sum.Match.Result != "yes" || sum.Match.SettledAt == nil {
		t.Fatalf("unexpected match: %+v", sum.Match)
	}
	testutil.RequireBalance(t, st, yes.ID, "580.00")
	testutil.RequireBalance(t, st, no.ID, "450.00")

	kinds := n.Kinds()
	if kinds[notify.KindBetWon] != 1 || kinds[notify.KindBetLost] != 1 {
		t.Fatalf("unexpected notifications: %v", kinds)
	}
}

func TestSettleMatchTwiceAndResume(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	m := createMatch(t, svc)
	u := fundedUser(t, st, "27840000003", "100.00")
	if _, err := svc.PlaceBet(ctx, PlaceBetRequest{UserID: u.ID, Stake: d("10.00"), Selection: propositionBet(m.ID, "no")}); err != nil {
		t.Fatalf("place: %v", err)
	}

	if _, err := svc.ResumeSettlement(ctx, m.ID); !errors.Is(err, ErrInvalidMatchState) {
		t.Fatalf("resume on active match: expected ErrInvalidMatchState, got %v", err)
	}
	if _, err := svc.SettleMatch(ctx, m.ID, "no", "admin"); err != nil {
		t.Fatalf("settle: %v", err)
	}
	testutil.RequireBalance(t, st, u.ID, "111.00")

	if _, err := svc.SettleMatch(ctx, m.ID, "yes", "admin"); !errors.Is(err, ErrInvalidMatchState) {
		t.Fatalf("second settle: expected ErrInvalidMatchState, got %v", err)
	}
	sum, err := svc.ResumeSettlement(ctx, m.ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if sum.Processed != 0 {
		t.Fatalf("expected nothing left to settle, got %+v", sum)
	}
	testutil.RequireBalance(t, st, u.ID, "111.00")
}

func TestPlaceBetOnClosedMatch(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	m := createMatch(t, svc)
	u := fundedUser(t, st, "27840000004", "100.00")
	if _, err := svc.SettleMatch(ctx, m.ID, "yes", "admin"); err != nil {
		t.Fatalf("settle: %v", err)
	}

	_, err := svc.PlaceBet(ctx, PlaceBetRequest{UserID: u.ID, Stake: d("10.00"), Selection: propositionBet(m.ID, "yes")})
	if !errors.Is(err, game.ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
	_, err = svc.PlaceBet(ctx, PlaceBetRequest{UserID: u.ID, Stake: d("10.00"), Selection: propositionBet("missing", "yes")})
	if !errors.Is(err, game.ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection for missing match, got %v", err)
	}
	testutil.RequireBalance(t, st, u.ID, "100.00")
}

func TestCancelMatchRefundsPendingBets(t *testing.T) {
	svc, st, n := newTestService(t)
	ctx := context.Background()
	m := createMatch(t, svc)
	u := fundedUser(t, st, "27840000005", "100.00")
	if _, err := svc.PlaceBet(ctx, PlaceBetRequest{UserID: u.ID, Stake: d("40.00"), Selection: propositionBet(m.ID, "yes")}); err != nil {
		t.Fatalf("place: %v", err)
	}

	sum, err := svc.CancelMatch(ctx, m.ID, "admin")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if sum.Refunded != 1 || sum.Match.Status != StatusCancelled {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	testutil.RequireBalance(t, st, u.ID, "100.00")
	if n.Kinds()[notify.KindBetRefunded] != 1 {
		t.Fatalf("expected refund notification, got %v", n.Kinds())
	}
	if _, err := svc.CancelMatch(ctx, m.ID, "admin"); !errors.Is(err, ErrInvalidMatchState) {
		t.Fatalf("expected ErrInvalidMatchState, got %v", err)
	}
}

func TestListMatches(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	a := createMatch(t, svc)
	createMatch(t, svc)
	if _, err := svc.CancelMatch(ctx, a.ID, "admin"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	active, err := svc.ActiveMatches(ctx, 10, 0)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if len(active.Items) != 1 {
		t.Fatalf("expected 1 active match, got %d", len(active.Items))
	}
	if _, err := svc.ListMatches(ctx, "bogus", 10, 0); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.GetMatch(ctx, "missing"); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}
}
