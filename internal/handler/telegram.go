package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"eventhub/internal/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramHandler holds the HTTP handlers for the Telegram integration:
// account linking for authenticated users and the bot webhook.
type TelegramHandler struct {
	links   *telegram.LinkService
	webhook *telegram.Webhook
	botName string
	log     *slog.Logger
}

// NewTelegramHandler constructs a TelegramHandler. log may be nil.
func NewTelegramHandler(links *telegram.LinkService, webhook *telegram.Webhook, botName string, log *slog.Logger) *TelegramHandler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &TelegramHandler{links: links, webhook: webhook, botName: botName, log: log}
}

// Status handles GET /telegram/status
func (h *TelegramHandler) Status(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"is_connected": user.Notifiable(),
		"telegram_id":  user.TelegramID,
		"bot_username": h.botName,
	})
}

// GenerateCode handles POST /telegram/generate-code
func (h *TelegramHandler) GenerateCode(w http.ResponseWriter, r *http.Request) {
	code, err := h.links.GenerateCode(r.Context(), currentUserID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"link_code":    code,
		"expires_in":   int(telegram.CodeTTL.Seconds()),
		"instructions": "Send /link " + code + " to @" + h.botName + " on Telegram",
	})
}

// Unlink handles DELETE /telegram/unlink
func (h *TelegramHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	if err := h.links.Unlink(r.Context(), currentUserID(r)); err != nil {
		if errors.Is(err, telegram.ErrNotLinked) {
			writeError(w, http.StatusBadRequest, "telegram account is not linked")
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "telegram account unlinked"})
}

// SendTest handles POST /telegram/test
func (h *TelegramHandler) SendTest(w http.ResponseWriter, r *http.Request) {
	if err := h.links.SendTest(r.Context(), currentUserID(r)); err != nil {
		if errors.Is(err, telegram.ErrNotLinked) {
			writeError(w, http.StatusBadRequest, "telegram account is not linked")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to send test message")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "test message sent"})
}

// Webhook handles POST /telegram/webhook
// The endpoint always replies 200 so Telegram does not redeliver; bad
// payloads are logged and dropped.
func (h *TelegramHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := decodeWebhook(r, &update); err != nil {
		h.log.Warn("malformed telegram update", "error", err)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}
	h.webhook.HandleUpdate(r.Context(), update)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// decodeWebhook decodes a Telegram update without the strict
// unknown-field handling used for our own API payloads.
func decodeWebhook(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(dst)
}
