package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nzuri-bank/nzuri/internal/notification"
)

const defaultReply = "Thanks for reaching out. A support agent will review your message shortly."

var cannedReplies = []struct {
	keyword string
	reply   string
}{
	{"balance", "You can check your current balance on the account page or via GET /accounts/me."},
	{"transfer", "Transfers are sent to a recipient account number and settle immediately."},
	{"card", "Card services are not available yet. Transfers and withdrawals work as usual."},
	{"hello", "Hello! How can we help you today?"},
}

// Bot schedules delayed auto-replies to user messages. Every reply is a
// tracked goroutine cancelled on Close, so process shutdown cannot silently
// drop a scheduled reply without logging it.
type Bot struct {
	repo     Repository
	delay    time.Duration
	logger   *slog.Logger
	notifier notification.Notifier

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBot builds the auto-reply bot. A nil notifier disables reply notifications.
func NewBot(repo Repository, delay time.Duration, logger *slog.Logger, notifier notification.Notifier) *Bot {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		repo:     repo,
		delay:    delay,
		logger:   logger,
		notifier: notifier,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// ScheduleReply queues a reply to the given user message after the configured delay.
func (b *Bot) ScheduleReply(accountID, userBody string) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		timer := time.NewTimer(b.delay)
		defer timer.Stop()

		select {
		case <-b.ctx.Done():
			b.logger.Warn("bot reply dropped on shutdown", "account_id", accountID)
			return
		case <-timer.C:
		}

		reply := Message{
			ID:        uuid.NewString(),
			AccountID: accountID,
			Sender:    SenderBot,
			Body:      replyFor(userBody),
			CreatedAt: time.Now().UTC(),
		}
		if err := b.repo.Insert(b.ctx, reply); err != nil {
			b.logger.Error("bot reply insert failed", "account_id", accountID, "error", err)
			return
		}
		if b.notifier != nil {
			_ = b.notifier.Send(b.ctx, notification.Message{
				Kind:        notification.KindChatReply,
				Destination: accountID,
				Body:        reply.Body,
			})
		}
	}()
}

// Close cancels pending replies and waits for in-flight goroutines to finish.
func (b *Bot) Close() {
	b.cancel()
	b.wg.Wait()
}

func replyFor(userBody string) string {
	lowered := strings.ToLower(userBody)
	for _, c := range cannedReplies {
		if strings.Contains(lowered, c.keyword) {
			return c.reply
		}
	}
	return defaultReply
}
