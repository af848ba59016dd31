package chat

import "time"

// Sender identifies who authored a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one support-chat message belonging to an account.
type Message struct {
	ID        string
	AccountID string
	Sender    Sender
	Body      string
	CreatedAt time.Time
}
