package telegram

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"eventhub/internal/notify"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Webhook processes incoming bot updates. Only text commands are
// handled; anything else is acknowledged and dropped.
type Webhook struct {
	links     *LinkService
	messenger notify.Messenger
	log       *slog.Logger
}

// NewWebhook constructs a Webhook. log may be nil.
func NewWebhook(links *LinkService, messenger notify.Messenger, log *slog.Logger) *Webhook {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Webhook{links: links, messenger: messenger, log: log}
}

// HandleUpdate dispatches one Telegram update. Errors are replied to the
// chat, never returned: the webhook endpoint must always acknowledge so
// Telegram does not redeliver.
func (w *Webhook) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	msg := update.Message
	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "/") {
		return
	}

	parts := strings.Fields(text)
	switch parts[0] {
	case "/start":
		w.handleStart(ctx, chatID, msg.From)
	case "/link":
		var code string
		if len(parts) > 1 {
			code = parts[1]
		}
		w.handleLink(ctx, chatID, code)
	case "/help":
		w.handleHelp(ctx, chatID)
	default:
		w.reply(ctx, chatID, "Unknown command. Send /help for the list of commands.")
	}
}

func (w *Webhook) handleStart(ctx context.Context, chatID string, from *tgbotapi.User) {
	name := "there"
	if from != nil && from.FirstName != "" {
		name = from.FirstName
	}
	w.reply(ctx, chatID,
		"👋 Hi, "+name+"!\n\n"+
			"This bot sends reminders about your events.\n\n"+
			"Commands:\n"+
			"/link <code> - link your account\n"+
			"/help - show help\n\n"+
			"Get a code in the app, then send /link <code> here.")
}

func (w *Webhook) handleLink(ctx context.Context, chatID, code string) {
	if code == "" {
		w.reply(ctx, chatID,
			"❌ Wrong format.\n\nUse: /link <code>\n\nGet a code in the app and try again.")
		return
	}
	_, err := w.links.Link(ctx, code, chatID)
	switch {
	case err == nil:
		// Link sends its own confirmation.
	case errors.Is(err, ErrInvalidCode):
		w.reply(ctx, chatID,
			"❌ Invalid or expired code.\n\nGet a new code in the app and try again.")
	case errors.Is(err, ErrAlreadyLinked):
		w.reply(ctx, chatID,
			"❌ This Telegram account is already linked to another user.")
	default:
		w.log.Error("link account", "chat_id", chatID, "error", err)
		w.reply(ctx, chatID, "❌ Something went wrong, please try again later.")
	}
}

func (w *Webhook) handleHelp(ctx context.Context, chatID string) {
	w.reply(ctx, chatID,
		"📖 <b>Commands:</b>\n\n"+
			"/start - introduction\n"+
			"/link <code> - link your account\n"+
			"/help - this help")
}

func (w *Webhook) reply(ctx context.Context, chatID, text string) {
	if err := w.messenger.Send(ctx, chatID, text); err != nil {
		w.log.Error("send reply", "chat_id", chatID, "error", err)
	}
}
