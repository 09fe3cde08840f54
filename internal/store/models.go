package store

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           string    `json:"id"`
	PhoneNumber  string    `json:"phone_number"`
	Username     string    `json:"username,omitempty"`
	IsBlocked    bool      `json:"is_blocked"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

type Account struct {
	UserID    string          `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Transaction struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	ReferenceKind string          `json:"reference_kind,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	Description   string          `json:"description"`
	Metadata      map[string]any  `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type Bet struct {
	ID           string              `json:"id"`
	UserID       string              `json:"user_id"`
	GameType     string              `json:"game_type"`
	StakeAmount  decimal.Decimal     `json:"stake_amount"`
	Selection    map[string]any      `json:"selection"`
	Outcome      map[string]any      `json:"outcome,omitempty"`
	Status       string              `json:"status"`
	Multiplier   decimal.NullDecimal `json:"multiplier"`
	PayoutAmount decimal.Decimal     `json:"payout_amount"`
	MatchID      string              `json:"match_id,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	SettledAt    *time.Time          `json:"settled_at,omitempty"`
}

type Deposit struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   string          `json:"payment_method"`
	ProofType       string          `json:"proof_type,omitempty"`
	ProofValue      string          `json:"proof_value,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Status          string          `json:"status"`
	ReviewedBy      string          `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time      `json:"reviewed_at,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	TransactionID   string          `json:"transaction_id,omitempty"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type Withdrawal struct {
	ID                  string          `json:"id"`
	UserID              string          `json:"user_id"`
	Amount              decimal.Decimal `json:"amount"`
	Method              string          `json:"method"`
	BankName            string          `json:"bank_name,omitempty"`
	AccountNumber       string          `json:"account_number,omitempty"`
	AccountHolder       string          `json:"account_holder,omitempty"`
	Notes               string          `json:"notes,omitempty"`
	Status              string          `json:"status"`
	ReviewedBy          string          `json:"reviewed_by,omitempty"`
	ReviewedAt          *time.Time      `json:"reviewed_at,omitempty"`
	RejectionReason     string          `json:"rejection_reason,omitempty"`
	DebitTransactionID  string          `json:"debit_transaction_id"`
	RefundTransactionID string          `json:"refund_transaction_id,omitempty"`
	PaymentReference    string          `json:"payment_reference,omitempty"`
	PaidAt              *time.Time      `json:"paid_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

type Match struct {
	ID          string          `json:"id"`
	HomeTeam    string          `json:"home_team"`
	AwayTeam    string          `json:"away_team"`
	Question    string          `json:"question"`
	YesOdds     decimal.Decimal `json:"yes_odds"`
	NoOdds      decimal.Decimal `json:"no_odds"`
	Status      string          `json:"status"`
	Result      string          `json:"result,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	ScheduledAt *time.Time      `json:"scheduled_at,omitempty"`
	SettledAt   *time.Time      `json:"settled_at,omitempty"`
}

type AdminAction struct {
	ID         string         `json:"id"`
	AdminID    string         `json:"admin_id"`
	Action     string         `json:"action"`
	EntityKind string         `json:"entity_kind"`
	EntityID   string         `json:"entity_id"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
