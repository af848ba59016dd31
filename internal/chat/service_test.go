package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nzuri-bank/nzuri/internal/logging"
)

func waitForMessages(t *testing.T, repo Repository, accountID string, want int) []Message {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		messages, err := repo.ListByAccount(context.Background(), accountID)
		require.NoError(t, err)
		if len(messages) >= want {
			return messages
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d messages", want)
	return nil
}

func TestSendStoresMessageAndSchedulesReply(t *testing.T) {
	repo := NewMemoryRepository()
	bot := NewBot(repo, 10*time.Millisecond, logging.Discard(), nil)
	defer bot.Close()
	svc := NewService(repo, bot)

	m, err := svc.Send(context.Background(), "acct-1", "What is my balance?")
	require.NoError(t, err)
	assert.Equal(t, SenderUser, m.Sender)

	messages := waitForMessages(t, repo, "acct-1", 2)
	assert.Equal(t, SenderUser, messages[0].Sender)
	assert.Equal(t, SenderBot, messages[1].Sender)
	assert.Contains(t, messages[1].Body, "balance")
}

func TestSendRejectsEmptyBody(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil)

	_, err := svc.Send(context.Background(), "acct-1", "")
	assert.Error(t, err)
}

func TestBotCloseDropsPendingReply(t *testing.T) {
	repo := NewMemoryRepository()
	bot := NewBot(repo, time.Hour, logging.Discard(), nil)
	svc := NewService(repo, bot)

	_, err := svc.Send(context.Background(), "acct-1", "hello")
	require.NoError(t, err)

	// Close cancels the scheduled reply instead of leaking the timer.
	bot.Close()

	messages, err := repo.ListByAccount(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Len(t, messages, 1)
	assert.Equal(t, SenderUser, messages[0].Sender)
}

func TestReplyForKeywords(t *testing.T) {
	assert.Contains(t, replyFor("how do I TRANSFER money"), "Transfers")
	assert.Equal(t, defaultReply, replyFor("completely unrelated"))
}
