// Package telegram integrates the platform with the Telegram Bot API:
// outbound messages, account linking via one-time codes, and webhook
// command handling.
package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot wraps the Telegram Bot API client. It satisfies notify.Messenger.
type Bot struct {
	api *tgbotapi.BotAPI
}

// NewBot creates a Bot from a bot token. The constructor calls getMe, so
// an invalid token fails fast.
func NewBot(token string) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is not configured")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	return &Bot{api: api}, nil
}

// Username returns the bot's Telegram username.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Send delivers an HTML-formatted message to chatID. The ctx is not
// threaded into the underlying client (it has no context support); the
// client's HTTP timeout bounds the call instead.
func (b *Bot) Send(ctx context.Context, chatID, text string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}
	msg := tgbotapi.NewMessage(id, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
