package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Service stores support-chat messages and triggers the bot auto-reply.
type Service struct {
	repo Repository
	bot  *Bot
}

// NewService builds the chat service. The bot may be nil to disable auto-replies.
func NewService(repo Repository, bot *Bot) *Service {
	return &Service{repo: repo, bot: bot}
}

// Send stores a user message and schedules the bot's delayed reply.
func (s *Service) Send(ctx context.Context, accountID, body string) (Message, error) {
	if body == "" {
		return Message{}, errors.New("message body is required")
	}

	m := Message{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Sender:    SenderUser,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return Message{}, err
	}

	if s.bot != nil {
		s.bot.ScheduleReply(accountID, body)
	}

	return m, nil
}

// History returns the account's chat history, oldest first.
func (s *Service) History(ctx context.Context, accountID string) ([]Message, error) {
	return s.repo.ListByAccount(ctx, accountID)
}
