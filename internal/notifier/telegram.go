package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrNotConfigured is returned when the bot token or chat id is missing.
// Delivery is skipped and never retried.
var ErrNotConfigured = errors.New("telegram notifier not configured")

// Notifier delivers a formatted message.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	Endpoint string
	Client   *http.Client

	mu  sync.Mutex
	api *tgbotapi.BotAPI
}

// NewTelegramNotifier creates a notifier with optional proxy support.
// The bot is connected lazily on first use.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		Endpoint: tgbotapi.APIEndpoint,
		Client: &http.Client{
			Timeout:   35 * time.Second,
			Transport: transport,
		},
	}
}

// Configured reports whether both credentials are present.
func (t *TelegramNotifier) Configured() bool {
	return t.BotToken != "" && t.ChatID != ""
}

func (t *TelegramNotifier) bot() (*tgbotapi.BotAPI, error) {
	if !t.Configured() {
		return nil, ErrNotConfigured
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.api != nil {
		return t.api, nil
	}
	api, err := tgbotapi.NewBotAPIWithClient(t.BotToken, t.Endpoint, t.Client)
	if err != nil {
		return nil, fmt.Errorf("connect bot: %w", err)
	}
	t.api = api
	return api, nil
}

func (t *TelegramNotifier) newMessage(text string) tgbotapi.MessageConfig {
	var msg tgbotapi.MessageConfig
	if id, err := strconv.ParseInt(t.ChatID, 10, 64); err == nil {
		msg = tgbotapi.NewMessage(id, text)
	} else {
		msg = tgbotapi.NewMessageToChannel(t.ChatID, text)
	}
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	return msg
}

// Send sends a message to the configured chat.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	api, err := t.bot()
	if err != nil {
		return err
	}
	if _, err := api.Send(t.newMessage(text)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
