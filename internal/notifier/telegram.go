package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// sender is the subset of *tgbotapi.BotAPI used to deliver messages.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	bot    sender
	chatID int64
	log    *zap.Logger

	// MaxRetries is the number of retries after the first failed attempt.
	MaxRetries      int
	InitialInterval time.Duration
}

// NewTelegramNotifier creates a notifier with optional proxy support. It
// returns nil with no error when the token or chat id is missing.
func NewTelegramNotifier(botToken string, chatID int64, proxyURL string, log *zap.Logger) (*TelegramNotifier, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if botToken == "" || chatID == 0 {
		log.Warn("telegram not configured; alerts go to console only")
		return nil, nil
	}

	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	client := &http.Client{
		Timeout:   60 * time.Second,
		Transport: transport,
	}

	api, err := tgbotapi.NewBotAPIWithClient(botToken, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	log.Info("telegram authorized", zap.String("bot", api.Self.UserName))

	n := newTelegramNotifier(api, chatID, log)
	n.api = api
	return n, nil
}

func newTelegramNotifier(bot sender, chatID int64, log *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		bot:             bot,
		chatID:          chatID,
		log:             log,
		MaxRetries:      3,
		InitialInterval: time.Second,
	}
}

func (t *TelegramNotifier) Name() string { return "telegram" }

// ChatID returns the configured chat.
func (t *TelegramNotifier) ChatID() int64 { return t.chatID }

// sendOnce makes a single delivery attempt.
func (t *TelegramNotifier) sendOnce(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// Send delivers text to the configured chat, retrying transient failures.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	return t.SendWithRetry(ctx, text, t.MaxRetries)
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.InitialInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		if err := t.sendOnce(text); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(maxRetries+1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			t.log.Warn("telegram send failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", maxRetries+1),
				zap.Duration("retry_in", next),
				zap.Error(err))
		}),
	)
	if err != nil {
		return fmt.Errorf("telegram: %d attempts failed: %w", attempt, err)
	}
	return nil
}
