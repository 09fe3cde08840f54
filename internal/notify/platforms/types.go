package platforms

import (
	"context"
	"time"
)

// Message is a rendered notification addressed to one user.
type Message struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Phone      string    `json:"phone,omitempty"`
	Kind       string    `json:"kind"`
	Text       string    `json:"text"`
	Balance    string    `json:"balance"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Adapter interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}
