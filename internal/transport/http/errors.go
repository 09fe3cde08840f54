package httptransport

import (
	"errors"
	"net/http"

	"github.com/kumbirai/my-kasi-bet/internal/app/account"
	"github.com/kumbirai/my-kasi-bet/internal/app/deposit"
	"github.com/kumbirai/my-kasi-bet/internal/app/match"
	"github.com/kumbirai/my-kasi-bet/internal/app/play"
	"github.com/kumbirai/my-kasi-bet/internal/app/withdrawal"
	"github.com/kumbirai/my-kasi-bet/internal/betting"
	"github.com/kumbirai/my-kasi-bet/internal/game"
	"github.com/kumbirai/my-kasi-bet/internal/ledger"

	"github.com/rs/zerolog/log"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{account.ErrInvalidRequest, http.StatusBadRequest},
	{account.ErrInvalidPhone, http.StatusBadRequest},
	{match.ErrInvalidRequest, http.StatusBadRequest},
	{deposit.ErrInvalidRequest, http.StatusBadRequest},
	{deposit.ErrInvalidAmount, http.StatusBadRequest},
	{withdrawal.ErrInvalidRequest, http.StatusBadRequest},
	{withdrawal.ErrInvalidAmount, http.StatusBadRequest},
	{ledger.ErrInvalidAmount, http.StatusBadRequest},
	{betting.ErrInvalidStakeAmount, http.StatusBadRequest},
	{game.ErrInvalidSelection, http.StatusBadRequest},
	{game.ErrUnknownGame, http.StatusNotFound},

	{account.ErrUserBlocked, http.StatusForbidden},

	{account.ErrUserNotFound, http.StatusNotFound},
	{ledger.ErrAccountNotFound, http.StatusNotFound},
	{betting.ErrBetNotFound, http.StatusNotFound},
	{match.ErrMatchNotFound, http.StatusNotFound},
	{deposit.ErrDepositNotFound, http.StatusNotFound},
	{withdrawal.ErrWithdrawalNotFound, http.StatusNotFound},

	{ledger.ErrInsufficientBalance, http.StatusConflict},
	{betting.ErrInvalidBetState, http.StatusConflict},
	{match.ErrInvalidMatchState, http.StatusConflict},
	{deposit.ErrInvalidDepositState, http.StatusConflict},
	{withdrawal.ErrInvalidWithdrawalState, http.StatusConflict},
	{withdrawal.ErrDailyLimitExceeded, http.StatusConflict},
}

// writeServiceError maps a service error to its status and snake_case code.
// Unknown errors are logged and returned as internal_error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var settleErr *play.SettleError
	if errors.As(err, &settleErr) {
		metricSettleFailTotal.Add(1)
		WriteHTTPErrorDetail(w, http.StatusInternalServerError, "settlement_failed", map[string]any{"bet_id": settleErr.BetID})
		return
	}
	details := errorDetails(err)
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			WriteHTTPErrorDetail(w, m.status, m.err.Error(), details)
			return
		}
	}
	metricInternalErrorsTotal.Add(1)
	log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("http_internal_error")
	WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
}

func errorDetails(err error) map[string]any {
	var stakeErr *betting.StakeLimitError
	if errors.As(err, &stakeErr) {
		return map[string]any{
			"game":      stakeErr.Game,
			"min_stake": stakeErr.Min.StringFixed(2),
			"max_stake": stakeErr.Max.StringFixed(2),
		}
	}
	var limitErr *withdrawal.DailyLimitError
	if errors.As(err, &limitErr) {
		return map[string]any{
			"daily_limit": limitErr.Limit.StringFixed(2),
			"remaining":   limitErr.Remaining.StringFixed(2),
		}
	}
	var selErr *game.SelectionError
	if errors.As(err, &selErr) {
		return map[string]any{"reason": selErr.Reason}
	}
	return nil
}
