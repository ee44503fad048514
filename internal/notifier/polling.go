package notifier

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// CommandHandler is called when a user command is received.
type CommandHandler func(command string) string

// StartPolling begins long-polling for Telegram commands. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	if t.api == nil {
		return
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := t.api.GetUpdatesChan(u)
	t.log.Info("telegram polling started")

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			t.log.Info("telegram polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			t.handleUpdate(ctx, update, handler)
		}
	}
}

// handleUpdate answers commands from the configured chat. Messages from other
// chats are ignored.
func (t *TelegramNotifier) handleUpdate(ctx context.Context, update tgbotapi.Update, handler CommandHandler) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		return
	}
	if msg.Chat.ID != t.chatID {
		t.log.Debug("ignoring message from foreign chat", zap.Int64("chat_id", msg.Chat.ID))
		return
	}
	text := strings.TrimSpace(msg.Text)
	t.log.Info("received command", zap.String("text", text))
	reply := handler(text)
	if reply == "" {
		return
	}
	if err := t.Send(ctx, reply); err != nil {
		t.log.Error("send reply", zap.Error(err))
	}
}
