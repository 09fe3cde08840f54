package httptransport

import (
	"net/http"
	"time"

	"github.com/kumbirai/my-kasi-bet/internal/app/account"
	"github.com/kumbirai/my-kasi-bet/internal/app/deposit"
	"github.com/kumbirai/my-kasi-bet/internal/app/match"
	"github.com/kumbirai/my-kasi-bet/internal/app/play"
	"github.com/kumbirai/my-kasi-bet/internal/app/withdrawal"
	"github.com/kumbirai/my-kasi-bet/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// GatewayHandlers serve the chat gateway: structured calls made on behalf of
// a user the gateway has already identified by phone.
type GatewayHandlers struct {
	accounts    *account.Service
	play        *play.Service
	matches     *match.Service
	deposits    *deposit.Service
	withdrawals *withdrawal.Service
}

func NewGatewayHandlers(svc Services) *GatewayHandlers {
	return &GatewayHandlers{
		accounts:    svc.Accounts,
		play:        svc.Play,
		matches:     svc.Matches,
		deposits:    svc.Deposits,
		withdrawals: svc.Withdrawals,
	}
}

type registerBody struct {
	PhoneNumber string `json:"phone_number" validate:"required,max=32"`
	Username    string `json:"username" validate:"max=64"`
}

type playBody struct {
	Stake     decimal.Decimal `json:"stake" validate:"money"`
	Selection map[string]any  `json:"selection" validate:"required"`
}

type depositBody struct {
	Amount        decimal.Decimal `json:"amount" validate:"money"`
	PaymentMethod string          `json:"payment_method" validate:"required"`
	ProofType     string          `json:"proof_type" validate:"max=256"`
	ProofValue    string          `json:"proof_value" validate:"max=256"`
	Notes         string          `json:"notes" validate:"max=1000"`
}

type proofBody struct {
	ProofType  string `json:"proof_type" validate:"required,max=256"`
	ProofValue string `json:"proof_value" validate:"required,max=256"`
}

type withdrawalBody struct {
	Amount        decimal.Decimal `json:"amount" validate:"money"`
	Method        string          `json:"method" validate:"required,oneof=bank_transfer cash_pickup ewallet"`
	BankName      string          `json:"bank_name" validate:"max=128"`
	AccountNumber string          `json:"account_number" validate:"max=64"`
	AccountHolder string          `json:"account_holder" validate:"max=128"`
	Notes         string          `json:"notes" validate:"max=1000"`
}

func (h *GatewayHandlers) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body registerBody
		if !decodeBody(w, r, &body) {
			return
		}
		res, err := h.accounts.Register(r.Context(), body.PhoneNumber, body.Username)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		WriteJSON(w, status, res)
	}
}

func (h *GatewayHandlers) Balance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := h.accounts.GetBalance(r.Context(), chi.URLParam(r, "user_id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, res)
	}
}

func (h *GatewayHandlers) Transactions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, ok := parseHistoryFilter(w, r)
		if !ok {
			return
		}
		limit, offset := ParsePagination(r)
		res, err := h.accounts.TransactionHistory(r.Context(), chi.URLParam(r, "user_id"), f, limit, offset)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, res)
	}
}

func (h *GatewayHandlers) Bets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		res, err := h.accounts.BetHistory(r.Context(), chi.URLParam(r, "user_id"), r.URL.Query().Get("status"), limit, offset)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, res)
	}
}

// Play places a bet on any game. Instant games settle before the response;
// proposition bets stay pending until the match is settled.
func (h *GatewayHandlers) Play() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameType := chi.URLParam(r, "game")
		if !game.Known(gameType) {
			WriteHTTPError(w, http.StatusNotFound, game.ErrUnknownGame.Error())
			return
		}
		var body playBody
		if !decodeBody(w, r, &body) {
			return
		}
		userID := chi.URLParam(r, "user_id")

		if gameType == game.Proposition {
			bet, err := h.matches.PlaceBet(r.Context(), match.PlaceBetRequest{UserID: userID, Stake: body.Stake, Selection: body.Selection})
			if err != nil {
				metricBetErrorsTotal.Add(1)
				writeServiceError(w, r, err)
				return
			}
			metricBetPlacedTotal.Add(1)
			WriteJSON(w, http.StatusCreated, map[string]any{"bet": bet})
			return
		}

		res, err := h.play.Play(r.Context(), play.Request{UserID: userID, Game: gameType, Stake: body.Stake, Selection: body.Selection})
		if err != nil {
			metricBetErrorsTotal.Add(1)
			writeServiceError(w, r, err)
			return
		}
		metricBetPlacedTotal.Add(1)
		WriteJSON(w, http.StatusOK, res)
	}
}

func (h *GatewayHandlers) CreateDeposit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body depositBody
		if !decodeBody(w, r, &body) {
			return
		}
		dep, err := h.deposits.CreateRequest(r.Context(), deposit.CreateRequest{
			UserID:        chi.URLParam(r, "user_id"),
			Amount:        body.Amount,
			PaymentMethod: body.PaymentMethod,
			ProofType:     body.ProofType,
			ProofValue:    body.ProofValue,
			Notes:         body.Notes,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		metricDepositRequestedTotal.Add(1)
		WriteJSON(w, http.StatusCreated, dep)
	}
}

func (h *GatewayHandlers) SubmitProof() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body proofBody
		if !decodeBody(w, r, &body) {
			return
		}
		dep, err := h.deposits.SubmitProof(r.Context(), chi.URLParam(r, "deposit_id"), chi.URLParam(r, "user_id"), body.ProofType, body.ProofValue)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, dep)
	}
}

func (h *GatewayHandlers) CreateWithdrawal() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body withdrawalBody
		if !decodeBody(w, r, &body) {
			return
		}
		wd, err := h.withdrawals.CreateRequest(r.Context(), withdrawal.CreateRequest{
			UserID:        chi.URLParam(r, "user_id"),
			Amount:        body.Amount,
			Method:        body.Method,
			BankName:      body.BankName,
			AccountNumber: body.AccountNumber,
			AccountHolder: body.AccountHolder,
			Notes:         body.Notes,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		metricWithdrawalRequestedTotal.Add(1)
		WriteJSON(w, http.StatusCreated, wd)
	}
}

func (h *GatewayHandlers) CancelWithdrawal() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wd, err := h.withdrawals.Cancel(r.Context(), chi.URLParam(r, "withdrawal_id"), chi.URLParam(r, "user_id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, wd)
	}
}

func (h *GatewayHandlers) ActiveMatches() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		res, err := h.matches.ActiveMatches(r.Context(), limit, offset)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, res)
	}
}

func parseHistoryFilter(w http.ResponseWriter, r *http.Request) (account.HistoryFilter, bool) {
	q := r.URL.Query()
	f := account.HistoryFilter{Kind: q.Get("kind")}
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			WriteHTTPErrorDetail(w, http.StatusBadRequest, "invalid_request", map[string]any{"field": p.name})
			return account.HistoryFilter{}, false
		}
		*p.dst = t
	}
	return f, true
}
