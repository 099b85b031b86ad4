package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventhub/internal/model"
	"eventhub/internal/notify"
	"eventhub/internal/service"

	"github.com/google/uuid"
)

// CodeTTL is how long a generated link code stays valid.
const CodeTTL = 10 * time.Minute

const codeLen = 8

// codeKey namespaces link codes inside the shared cache.
func codeKey(code string) string { return "telegram_link_" + code }

// Linking errors, mapped to user-facing replies by the webhook and to
// HTTP statuses by the API layer.
var (
	ErrInvalidCode   = errors.New("invalid or expired link code")
	ErrAlreadyLinked = errors.New("telegram account already linked to another user")
	ErrNotLinked     = errors.New("telegram account is not linked")
)

// CodeStore is the expiring key-value store that holds pending link
// codes. Entries vanish after their TTL.
type CodeStore interface {
	Put(key, value string, ttl time.Duration)
	Get(key string) (string, bool)
	Delete(key string)
}

// Users is the slice of the user store the linking flow needs.
type Users interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID string) (*model.User, error)
	SetTelegramID(ctx context.Context, userID, telegramID string) error
}

// LinkService pairs platform accounts with Telegram chats through
// one-time codes: the user requests a code in the app and sends
// "/link <code>" to the bot.
type LinkService struct {
	codes     CodeStore
	users     Users
	messenger notify.Messenger
}

// NewLinkService constructs a LinkService.
func NewLinkService(codes CodeStore, users Users, messenger notify.Messenger) *LinkService {
	return &LinkService{codes: codes, users: users, messenger: messenger}
}

// GenerateCode issues a fresh link code for userID, valid for CodeTTL.
func (s *LinkService) GenerateCode(ctx context.Context, userID string) (string, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return "", service.ErrNotFound
		}
		return "", fmt.Errorf("get user: %w", err)
	}
	code := strings.ReplaceAll(uuid.NewString(), "-", "")[:codeLen]
	s.codes.Put(codeKey(code), userID, CodeTTL)
	return code, nil
}

// Link consumes a code and binds telegramID to the account that
// requested it. A Telegram account already bound to a different user is
// rejected; re-linking the same user is a no-op that still confirms.
func (s *LinkService) Link(ctx context.Context, code, telegramID string) (*model.User, error) {
	userID, ok := s.codes.Get(codeKey(code))
	if !ok {
		return nil, ErrInvalidCode
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, service.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if existing, err := s.users.GetByTelegramID(ctx, telegramID); err == nil {
		if existing.ID != user.ID {
			return nil, ErrAlreadyLinked
		}
	} else if !errors.Is(err, service.ErrNotFound) {
		return nil, fmt.Errorf("check telegram id: %w", err)
	}

	if err := s.users.SetTelegramID(ctx, user.ID, telegramID); err != nil {
		return nil, fmt.Errorf("set telegram id: %w", err)
	}
	s.codes.Delete(codeKey(code))

	_ = s.messenger.Send(ctx, telegramID,
		"✅ <b>Account linked!</b>\n\nYou will now receive reminders about your events.")
	return user, nil
}

// Unlink clears the user's Telegram binding and notifies the chat.
func (s *LinkService) Unlink(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return service.ErrNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}
	if !user.Notifiable() {
		return ErrNotLinked
	}

	_ = s.messenger.Send(ctx, user.TelegramID,
		"❌ <b>Account unlinked</b>\n\nYou will no longer receive event reminders.")

	if err := s.users.SetTelegramID(ctx, userID, ""); err != nil {
		return fmt.Errorf("clear telegram id: %w", err)
	}
	return nil
}

// SendTest sends a probe message to the user's linked chat.
func (s *LinkService) SendTest(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return service.ErrNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}
	if !user.Notifiable() {
		return ErrNotLinked
	}
	return s.messenger.Send(ctx, user.TelegramID,
		"🧪 <b>Test message</b>\n\nIf you can read this, notifications are working.")
}
