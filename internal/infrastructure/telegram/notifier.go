package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/VladKovDev/checkout-bridge/internal/config"
	"github.com/VladKovDev/checkout-bridge/pkg/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// maxMessageLength is the Telegram limit for a text message, in characters.
const maxMessageLength = 4096

// requestTimeout bounds every Bot API call, including the getMe on startup.
const requestTimeout = 10 * time.Second

// Notifier sends plain-text messages to the admin chat.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger logger.Logger
}

// New connects to the Bot API with the configured token. It performs a
// getMe call, so an invalid token fails here rather than on first use.
func New(cfg config.TelegramConfig, log logger.Logger) (*Notifier, error) {
	return NewWithEndpoint(cfg, tgbotapi.APIEndpoint, log)
}

// NewWithEndpoint is New against a custom Bot API endpoint format string.
func NewWithEndpoint(cfg config.TelegramConfig, endpoint string, log logger.Logger) (*Notifier, error) {
	client := &http.Client{Timeout: requestTimeout}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("telegram notifier ready",
		zap.String("bot", bot.Self.UserName),
		zap.Int64("chat_id", cfg.ChatID))

	return &Notifier{bot: bot, chatID: cfg.ChatID, logger: log}, nil
}

func (n *Notifier) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, clip(text))
	msg.DisableWebPagePreview = true

	// Send takes no context; the HTTP client timeout ends an abandoned call.
	done := make(chan error, 1)
	go func() {
		_, err := n.bot.Send(msg)
		done <- err
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err != nil {
		n.logger.Warn("failed to send telegram notification",
			zap.Int64("chat_id", n.chatID),
			zap.Error(err))
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// Noop discards notifications. Used when no bot token is configured.
type Noop struct{}

func (Noop) Notify(context.Context, string) error { return nil }

func clip(text string) string {
	if utf8.RuneCountInString(text) <= maxMessageLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxMessageLength-1]) + "…"
}
