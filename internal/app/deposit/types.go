package deposit

import (
	"fmt"
	"time"

	"github.com/kumbirai/my-kasi-bet/internal/config"
	"github.com/kumbirai/my-kasi-bet/internal/store"

	"github.com/shopspring/decimal"
)

// Deposit statuses. Everything but StatusPending is terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusExpired  = "expired"
)

var paymentMethods = map[string]struct{}{
	"one_voucher":   {},
	"snapscan":      {},
	"capitec":       {},
	"bank_transfer": {},
	"other":         {},
}

func ValidPaymentMethod(m string) bool {
	_, ok := paymentMethods[m]
	return ok
}

// Policy bounds deposit requests.
type Policy struct {
	Min    decimal.Decimal
	Max    decimal.Decimal
	Expiry time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		Min:    decimal.RequireFromString("10.00"),
		Max:    decimal.RequireFromString("50000.00"),
		Expiry: 24 * time.Hour,
	}
}

// PolicyFromConfig parses the deposit bounds. An empty max falls back to
// the default.
func PolicyFromConfig(cfg config.LimitsConfig) (Policy, error) {
	min, err := decimal.NewFromString(cfg.DepositMin)
	if err != nil {
		return Policy{}, err
	}
	max := DefaultPolicy().Max
	if cfg.DepositMax != "" {
		if max, err = decimal.NewFromString(cfg.DepositMax); err != nil {
			return Policy{}, err
		}
	}
	if max.LessThan(min) {
		return Policy{}, fmt.Errorf("deposit max %s below min %s", max.StringFixed(2), min.StringFixed(2))
	}
	p := Policy{Min: min, Max: max, Expiry: time.Duration(cfg.DepositExpiryHours) * time.Hour}
	if p.Expiry <= 0 {
		p.Expiry = DefaultPolicy().Expiry
	}
	return p, nil
}

type CreateRequest struct {
	UserID        string
	Amount        decimal.Decimal
	PaymentMethod string
	ProofType     string
	ProofValue    string
	Notes         string
}

type ListResponse struct {
	Items  []store.Deposit `json:"items"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}
