package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFormatMessage(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	msg := FormatMessage(Event{
		ID:         "e1",
		UserID:     "u1",
		Kind:       KindWithdrawalRejected,
		Summary:    "R200.00 returned: details mismatch",
		Balance:    decimal.RequireFromString("250.5"),
		OccurredAt: at,
	})
	want := "Withdrawal rejected\nR200.00 returned: details mismatch\nBalance: R250.50"
	if msg.Text != want {
		t.Fatalf("unexpected text:\n%s", msg.Text)
	}
	if msg.Balance != "250.50" || !msg.OccurredAt.Equal(at) {
		t.Fatalf("unexpected message: %#v", msg)
	}
}

func TestFormatMessageUnknownKind(t *testing.T) {
	msg := FormatMessage(Event{Kind: "mystery", Balance: decimal.Zero})
	if !strings.HasPrefix(msg.Text, "Account update\n") {
		t.Fatalf("unexpected text: %q", msg.Text)
	}
	if !strings.HasSuffix(msg.Text, "Balance: R0.00") {
		t.Fatalf("unexpected text: %q", msg.Text)
	}
}
