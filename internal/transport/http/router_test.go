package httptransport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kumbirai/my-kasi-bet/internal/app/account"
	"github.com/kumbirai/my-kasi-bet/internal/app/deposit"
	"github.com/kumbirai/my-kasi-bet/internal/app/match"
	"github.com/kumbirai/my-kasi-bet/internal/app/play"
	"github.com/kumbirai/my-kasi-bet/internal/app/withdrawal"
	"github.com/kumbirai/my-kasi-bet/internal/betting"
	"github.com/kumbirai/my-kasi-bet/internal/config"
	"github.com/kumbirai/my-kasi-bet/internal/notify"
	"github.com/kumbirai/my-kasi-bet/internal/store"
	"github.com/kumbirai/my-kasi-bet/internal/testutil"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const (
	testGatewayKey = "gw-key"
	testAdminKey   = "admin-key"
)

func newTestRouter(t *testing.T, st *store.Store) *chi.Mux {
	t.Helper()
	engine := betting.NewEngine(st, nil)
	return NewRouter(config.ServerConfig{GatewayAPIKey: testGatewayKey, AdminAPIKey: testAdminKey}, Services{
		Store:       st,
		Accounts:    account.NewService(st),
		Play:        play.NewService(st, engine, nil),
		Matches:     match.NewService(st, engine, notify.Nop{}),
		Deposits:    deposit.NewService(st, deposit.DefaultPolicy(), notify.Nop{}),
		Withdrawals: withdrawal.NewService(st, withdrawal.DefaultPolicy(), notify.Nop{}),
	})
}

type apiClient struct {
	t      *testing.T
	router http.Handler
}

func (c apiClient) do(method, path string, body any, admin bool) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set(headerAdminKey, testAdminKey)
		req.Header.Set(headerAdminID, "ops-1")
	} else {
		req.Header.Set(headerGatewayKey, testGatewayKey)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func (c apiClient) expect(w *httptest.ResponseRecorder, status int, out any) {
	c.t.Helper()
	if w.Code != status {
		c.t.Fatalf("status = %d, want %d (body=%s)", w.Code, status, w.Body.String())
	}
	if out != nil {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			c.t.Fatalf("decode response: %v", err)
		}
	}
}

func (c apiClient) balance(userID string) decimal.Decimal {
	c.t.Helper()
	var res struct {
		Balance decimal.Decimal `json:"balance"`
	}
	c.expect(c.do(http.MethodGet, "/api/users/"+userID+"/balance", nil, false), http.StatusOK, &res)
	return res.Balance
}

func TestHealthz(t *testing.T) {
	st := testutil.OpenTestStore(t)
	router := newTestRouter(t, st)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("/healthz = %d, want 200", w.Code)
	}
}

func TestGatewayAndAdminFlow(t *testing.T) {
	st := testutil.OpenTestStore(t)
	c := apiClient{t: t, router: newTestRouter(t, st)}

	var reg struct {
		User    store.User `json:"user"`
		Created bool       `json:"created"`
	}
	c.expect(c.do(http.MethodPost, "/api/users", map[string]any{"phone_number": "072 000 0101"}, false), http.StatusCreated, &reg)
	if !reg.Created || reg.User.PhoneNumber != "27720000101" {
		t.Fatalf("unexpected registration: %+v", reg)
	}
	userID := reg.User.ID
	c.expect(c.do(http.MethodPost, "/api/users", map[string]any{"phone_number": "+27720000101"}, false), http.StatusOK, nil)

	var dep store.Deposit
	c.expect(c.do(http.MethodPost, "/api/users/"+userID+"/deposits", map[string]any{
		"amount": "200.00", "payment_method": "snapscan", "proof_type": "reference", "proof_value": "SNAP-1",
	}, false), http.StatusCreated, &dep)

	// Admin mutations must name the acting admin.
	req := httptest.NewRequest(http.MethodPost, "/api/admin/deposits/"+dep.ID+"/approve", nil)
	req.Header.Set(headerAdminKey, testAdminKey)
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("approve without admin id = %d, want 400", w.Code)
	}

	c.expect(c.do(http.MethodPost, "/api/admin/deposits/"+dep.ID+"/approve", nil, true), http.StatusOK, nil)
	c.expect(c.do(http.MethodPost, "/api/admin/deposits/"+dep.ID+"/approve", nil, true), http.StatusConflict, nil)
	if got := c.balance(userID); !got.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("balance after deposit = %s, want 200", got)
	}

	var m store.Match
	c.expect(c.do(http.MethodPost, "/api/admin/matches", map[string]any{
		"home_team": "Chiefs", "away_team": "Pirates", "question": "Will Chiefs win?",
		"yes_odds": "1.80", "no_odds": "2.10",
	}, true), http.StatusCreated, &m)

	var active match.ListResponse
	c.expect(c.do(http.MethodGet, "/api/matches", nil, false), http.StatusOK, &active)
	if len(active.Items) != 1 || active.Items[0].ID != m.ID {
		t.Fatalf("active matches = %+v", active.Items)
	}

	c.expect(c.do(http.MethodPost, "/api/users/"+userID+"/games/proposition", map[string]any{
		"stake": "50.00", "selection": map[string]any{"match_id": m.ID, "side": "yes"},
	}, false), http.StatusCreated, nil)
	if got := c.balance(userID); !got.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("balance after stake = %s, want 150", got)
	}

	var sum match.SettlementSummary
	c.expect(c.do(http.MethodPost, "/api/admin/matches/"+m.ID+"/settle", map[string]any{"result": "yes"}, true), http.StatusOK, &sum)
	if sum.Won != 1 || sum.Failed != 0 || !sum.TotalPayout.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if got := c.balance(userID); !got.Equal(decimal.NewFromInt(240)) {
		t.Fatalf("balance after settle = %s, want 240", got)
	}

	var wd store.Withdrawal
	c.expect(c.do(http.MethodPost, "/api/users/"+userID+"/withdrawals", map[string]any{
		"amount": "100.00", "method": "cash_pickup",
	}, false), http.StatusCreated, &wd)
	if got := c.balance(userID); !got.Equal(decimal.NewFromInt(140)) {
		t.Fatalf("balance after withdrawal request = %s, want 140", got)
	}
	c.expect(c.do(http.MethodPost, "/api/users/"+userID+"/withdrawals/"+wd.ID+"/cancel", nil, false), http.StatusOK, nil)
	if got := c.balance(userID); !got.Equal(decimal.NewFromInt(240)) {
		t.Fatalf("balance after cancel = %s, want 240", got)
	}

	var txs account.TransactionsResponse
	c.expect(c.do(http.MethodGet, "/api/users/"+userID+"/transactions?kind=win", nil, false), http.StatusOK, &txs)
	if len(txs.Items) != 1 || !txs.Items[0].Amount.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("win transactions = %+v", txs.Items)
	}

	var rep account.IntegrityResponse
	c.expect(c.do(http.MethodGet, "/api/admin/users/"+userID+"/integrity", nil, true), http.StatusOK, &rep)
	if !rep.OK || rep.TransactionCount != 5 {
		t.Fatalf("integrity = %+v", rep)
	}
}

func TestGatewayRejections(t *testing.T) {
	st := testutil.OpenTestStore(t)
	c := apiClient{t: t, router: newTestRouter(t, st)}
	u := testutil.SeedUser(t, st, "27720000102", "20.00")

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+u.ID+"/balance", nil)
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no gateway key = %d, want 401", w.Code)
	}

	c.expect(c.do(http.MethodPost, "/api/users/"+u.ID+"/games/roulette", map[string]any{
		"stake": "5.00", "selection": map[string]any{"number": 1},
	}, false), http.StatusNotFound, nil)

	var body map[string]any
	c.expect(c.do(http.MethodPost, "/api/users/"+u.ID+"/games/number_pick", map[string]any{
		"stake": "1.00", "selection": map[string]any{"number": 7},
	}, false), http.StatusBadRequest, &body)
	if body["error"] != "invalid_stake_amount" || body["min_stake"] != "5.00" {
		t.Fatalf("stake below minimum: %v", body)
	}

	c.expect(c.do(http.MethodPost, "/api/users/"+u.ID+"/games/number_pick", map[string]any{
		"stake": "5.00", "selection": map[string]any{"number": 13},
	}, false), http.StatusBadRequest, nil)

	body = nil
	c.expect(c.do(http.MethodPost, "/api/users/"+u.ID+"/withdrawals", map[string]any{
		"amount": "50.00", "method": "cash_pickup",
	}, false), http.StatusConflict, &body)
	if body["error"] != "insufficient_balance" {
		t.Fatalf("withdrawal over balance: %v", body)
	}
	testutil.RequireBalance(t, st, u.ID, "20.00")

	c.expect(c.do(http.MethodGet, "/api/users/missing/balance", nil, false), http.StatusNotFound, nil)
}

func TestAdminBlockUser(t *testing.T) {
	st := testutil.OpenTestStore(t)
	c := apiClient{t: t, router: newTestRouter(t, st)}
	u := testutil.SeedUser(t, st, "27720000103", "100.00")

	c.expect(c.do(http.MethodPost, "/api/admin/users/"+u.ID+"/block", nil, true), http.StatusOK, nil)
	c.expect(c.do(http.MethodPost, "/api/users/"+u.ID+"/games/color_pick", map[string]any{
		"stake": "10.00", "selection": map[string]any{"color": "red"},
	}, false), http.StatusForbidden, nil)

	c.expect(c.do(http.MethodPost, "/api/admin/users/"+u.ID+"/unblock", nil, true), http.StatusOK, nil)
	c.expect(c.do(http.MethodPost, "/api/users/"+u.ID+"/games/color_pick", map[string]any{
		"stake": "10.00", "selection": map[string]any{"color": "red"},
	}, false), http.StatusOK, nil)
}
