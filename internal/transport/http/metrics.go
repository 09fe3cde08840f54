package httptransport

import "expvar"

var (
	metricBetPlacedTotal  = expvar.NewInt("bet_placed_total")
	metricBetErrorsTotal  = expvar.NewInt("bet_errors_total")
	metricSettleFailTotal = expvar.NewInt("bet_settle_failed_total")

	metricDepositRequestedTotal = expvar.NewInt("deposit_requested_total")
	metricDepositReviewedTotal  = expvar.NewInt("deposit_reviewed_total")

	metricWithdrawalRequestedTotal = expvar.NewInt("withdrawal_requested_total")
	metricWithdrawalReviewedTotal  = expvar.NewInt("withdrawal_reviewed_total")

	metricMatchSettledTotal = expvar.NewInt("match_settled_total")

	metricInternalErrorsTotal = expvar.NewInt("http_internal_errors_total")
)
