package notify

import (
	"strings"

	"github.com/kumbirai/my-kasi-bet/internal/notify/platforms"
)

var titles = map[string]string{
	KindDepositApproved:    "Deposit approved",
	KindDepositRejected:    "Deposit rejected",
	KindDepositExpired:     "Deposit expired",
	KindWithdrawalApproved: "Withdrawal paid",
	KindWithdrawalRejected: "Withdrawal rejected",
	KindBetWon:             "You won!",
	KindBetLost:            "Bet settled",
	KindBetRefunded:        "Bet refunded",
}

// FormatMessage renders an event as a chat message. The balance line is
// always last.
func FormatMessage(ev Event) platforms.Message {
	title := titles[ev.Kind]
	if title == "" {
		title = "Account update"
	}
	var b strings.Builder
	b.WriteString(title)
	if s := strings.TrimSpace(ev.Summary); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
	}
	b.WriteString("\nBalance: R")
	b.WriteString(ev.Balance.StringFixed(2))

	return platforms.Message{
		ID:         ev.ID,
		UserID:     ev.UserID,
		Phone:      ev.Phone,
		Kind:       ev.Kind,
		Text:       b.String(),
		Balance:    ev.Balance.StringFixed(2),
		OccurredAt: ev.OccurredAt,
	}
}
