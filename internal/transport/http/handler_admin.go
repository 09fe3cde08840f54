package httptransport

import (
	"net/http"
	"time"

	"github.com/kumbirai/my-kasi-bet/internal/app/account"
	"github.com/kumbirai/my-kasi-bet/internal/app/deposit"
	"github.com/kumbirai/my-kasi-bet/internal/app/match"
	"github.com/kumbirai/my-kasi-bet/internal/app/play"
	"github.com/kumbirai/my-kasi-bet/internal/app/withdrawal"
	"github.com/kumbirai/my-kasi-bet/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type AdminHandlers struct {
	store       *store.Store
	accounts    *account.Service
	matches     *match.Service
	deposits    *deposit.Service
	withdrawals *withdrawal.Service
	play        *play.Service
}

func NewAdminHandlers(svc Services) *AdminHandlers {
	return &AdminHandlers{
		store:       svc.Store,
		accounts:    svc.Accounts,
		matches:     svc.Matches,
		deposits:    svc.Deposits,
		withdrawals: svc.Withdrawals,
		play:        svc.Play,
	}
}

type reasonBody struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type optionalReasonBody struct {
	Reason string `json:"reason" validate:"max=500"`
}

type paymentBody struct {
	PaymentReference string `json:"payment_reference" validate:"max=128"`
}

type createMatchBody struct {
	HomeTeam    string          `json:"home_team" validate:"required,max=128"`
	AwayTeam    string          `json:"away_team" validate:"required,max=128"`
	Question    string          `json:"question" validate:"required,max=512"`
	YesOdds     decimal.Decimal `json:"yes_odds" validate:"money"`
	NoOdds      decimal.Decimal `json:"no_odds" validate:"money"`
	ScheduledAt *time.Time      `json:"scheduled_at"`
}

type settleMatchBody struct {
	Result string `json:"result" validate:"required,oneof=yes no"`
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.store.Ping(r.Context()); err != nil {
			WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "db": "down"})
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "db": "up"})
	}
}

func (h *AdminHandlers) Deposits() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		q := r.URL.Query()
		res, err := h.deposits.List(r.Context(), q.Get("user_id"), q.Get("status"), limit, offset)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, res)
	}
}

func (h *AdminHandlers) ApproveDeposit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dep, err := h.deposits.Approve(r.Context(), chi.URLParam(r, "id"), adminID(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		metricDepositReviewedTotal.Add(1)
		WriteJSON(w, http.StatusOK, dep)
	}
}

func (h *AdminHandlers) RejectDeposit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body reasonBody
		if !decodeBody(w, r, &body) {
			return
		}
		dep, err := h.deposits.Reject(r.Context(), chi.URLParam(r, "id"), adminID(r), body.Reason)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		metricDepositReviewedTotal.Add(1)
		WriteJSON(w, http.StatusOK, dep)
	}
}

func (h *AdminHandlers) Withdrawals() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		q := r.URL.Query()
		res, err := h.withdrawals.List(r.Context(), q.Get("user_id"), q.Get("status"), limit, offset)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, res)
	}
}

func (h *AdminHandlers) ApproveWithdrawal() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body paymentBody
		if !decodeOptionalBody(w, r, &body) {
			return
		}
		wd, err := h.withdrawals.Approve(r.Context(), chi.URLParam(r, "id"), adminID(r), body.PaymentReference)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		metricWithdrawalReviewedTotal.Add(1)
		WriteJSON(w, http.StatusOK, wd)
	}
}

func (h *AdminHandlers) RejectWithdrawal() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body reasonBody
		if !decodeBody(w, r, &body) {
			return
		}
		wd, err := h.withdrawals.Reject(r.Context(), chi.URLParam(r, "id"), adminID(r), body.Reason)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		metricWithdrawalReviewedTotal.Add(1)
		WriteJSON(w, http.StatusOK, wd)
	}
}

func (h *AdminHandlers) CreateMatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createMatchBody
		if !decodeBody(w, r, &body) {
			return
		}
		m, err := h.matches.CreateMatch(r.Context(), match.CreateRequest{
			HomeTeam:    body.HomeTeam,
			AwayTeam:    body.AwayTeam,
			Question:    body.Question,
			YesOdds:     body.YesOdds,
			NoOdds:      body.NoOdds,
			ScheduledAt: body.ScheduledAt,
		}, adminID(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusCreated, m)
	}
}

func (h *AdminHandlers) Matches() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		res, err := h.matches.ListMatches(r.Context(), r.URL.Query().Get("status"), limit, offset)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, res)
	}
}

// SettleMatch closes betting and settles every pending bet on the match.
// Per-bet failures are counted in the summary; POST .../resume retries them.
func (h *AdminHandlers) SettleMatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body settleMatchBody
		if !decodeBody(w, r, &body) {
			return
		}
		sum, err := h.matches.SettleMatch(r.Context(), chi.URLParam(r, "id"), body.Result, adminID(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		metricMatchSettledTotal.Add(1)
		WriteJSON(w, http.StatusOK, sum)
	}
}

func (h *AdminHandlers) ResumeMatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := h.matches.ResumeSettlement(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, sum)
	}
}

func (h *AdminHandlers) CancelMatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := h.matches.CancelMatch(r.Context(), chi.URLParam(r, "id"), adminID(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, sum)
	}
}

func (h *AdminHandlers) RefundBet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body optionalReasonBody
		if !decodeOptionalBody(w, r, &body) {
			return
		}
		res, err := h.play.Refund(r.Context(), chi.URLParam(r, "id"), body.Reason, adminID(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, res)
	}
}

func (h *AdminHandlers) Ledger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, ok := parseHistoryFilter(w, r)
		if !ok {
			return
		}
		limit, offset := ParsePagination(r)
		res, err := h.accounts.Ledger(r.Context(), r.URL.Query().Get("user_id"), f, limit, offset)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, res)
	}
}

func (h *AdminHandlers) UserIntegrity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := h.accounts.VerifyIntegrity(r.Context(), chi.URLParam(r, "user_id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, rep)
	}
}

func (h *AdminHandlers) BlockUser(blocked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := h.accounts.SetBlocked(r.Context(), chi.URLParam(r, "user_id"), blocked, adminID(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, u)
	}
}
