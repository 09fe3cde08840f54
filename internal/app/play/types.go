package play

import (
	"github.com/kumbirai/my-kasi-bet/internal/store"

	"github.com/shopspring/decimal"
)

type Request struct {
	UserID    string
	Game      string
	Stake     decimal.Decimal
	Selection map[string]any
}

type Response struct {
	Bet        store.Bet       `json:"bet"`
	Won        bool            `json:"won"`
	Outcome    map[string]any  `json:"outcome"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Payout     decimal.Decimal `json:"payout"`
	Balance    decimal.Decimal `json:"balance"`
}
