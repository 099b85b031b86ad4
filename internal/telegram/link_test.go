package telegram_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventhub/internal/cache"
	"eventhub/internal/model"
	"eventhub/internal/repository"
	"eventhub/internal/telegram"
)

type recordingMessenger struct {
	sent []string
}

func (m *recordingMessenger) Send(ctx context.Context, chatID, text string) error {
	m.sent = append(m.sent, chatID+": "+text)
	return nil
}

func newLinkFixture(t *testing.T) (*telegram.LinkService, *repository.MemoryUserRepo, *cache.Memory, *recordingMessenger) {
	t.Helper()
	users := repository.NewMemoryUserRepo()
	codes := cache.NewMemory(0)
	t.Cleanup(codes.Close)
	messenger := &recordingMessenger{}
	return telegram.NewLinkService(codes, users, messenger), users, codes, messenger
}

func seedUser(t *testing.T, users *repository.MemoryUserRepo, id, telegramID string) {
	t.Helper()
	err := users.Create(context.Background(), &model.User{
		ID:         id,
		Login:      id,
		Email:      id + "@example.com",
		APIToken:   "token-" + id,
		TelegramID: telegramID,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestLinkFlow(t *testing.T) {
	svc, users, _, messenger := newLinkFixture(t)
	ctx := context.Background()
	seedUser(t, users, "alice", "")

	code, err := svc.GenerateCode(ctx, "alice")
	if err != nil {
		t.Fatalf("GenerateCode failed: %v", err)
	}
	if len(code) != 8 {
		t.Errorf("code length = %d, want 8", len(code))
	}

	user, err := svc.Link(ctx, code, "12345")
	if err != nil {
		t.Fatalf("Link failed: %v", err)
	}
	if user.ID != "alice" {
		t.Errorf("linked wrong user %q", user.ID)
	}

	got, err := users.GetByID(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.TelegramID != "12345" {
		t.Errorf("telegram id = %q, want 12345", got.TelegramID)
	}
	if len(messenger.sent) != 1 {
		t.Errorf("expected a confirmation message, got %d", len(messenger.sent))
	}

	// The code is single-use.
	if _, err := svc.Link(ctx, code, "12345"); !errors.Is(err, telegram.ErrInvalidCode) {
		t.Errorf("reusing code error = %v, want ErrInvalidCode", err)
	}
}

func TestLinkInvalidCode(t *testing.T) {
	svc, users, _, _ := newLinkFixture(t)
	seedUser(t, users, "alice", "")

	if _, err := svc.Link(context.Background(), "nope1234", "12345"); !errors.Is(err, telegram.ErrInvalidCode) {
		t.Errorf("Link(bad code) error = %v, want ErrInvalidCode", err)
	}
}

func TestLinkExpiredCode(t *testing.T) {
	svc, users, codes, _ := newLinkFixture(t)
	ctx := context.Background()
	seedUser(t, users, "alice", "")

	// Plant a code that is already past its TTL.
	codes.Put("telegram_link_expired1", "alice", -time.Second)

	if _, err := svc.Link(ctx, "expired1", "12345"); !errors.Is(err, telegram.ErrInvalidCode) {
		t.Errorf("Link(expired) error = %v, want ErrInvalidCode", err)
	}
}

func TestLinkTakenTelegramAccount(t *testing.T) {
	svc, users, _, _ := newLinkFixture(t)
	ctx := context.Background()
	seedUser(t, users, "alice", "")
	seedUser(t, users, "bob", "12345")

	code, err := svc.GenerateCode(ctx, "alice")
	if err != nil {
		t.Fatalf("GenerateCode failed: %v", err)
	}
	if _, err := svc.Link(ctx, code, "12345"); !errors.Is(err, telegram.ErrAlreadyLinked) {
		t.Errorf("Link(taken chat) error = %v, want ErrAlreadyLinked", err)
	}
}

func TestUnlink(t *testing.T) {
	svc, users, _, messenger := newLinkFixture(t)
	ctx := context.Background()
	seedUser(t, users, "alice", "12345")

	if err := svc.Unlink(ctx, "alice"); err != nil {
		t.Fatalf("Unlink failed: %v", err)
	}
	got, _ := users.GetByID(ctx, "alice")
	if got.TelegramID != "" {
		t.Errorf("telegram id still set after unlink: %q", got.TelegramID)
	}
	if len(messenger.sent) != 1 {
		t.Errorf("expected an unlink notice, got %d messages", len(messenger.sent))
	}

	if err := svc.Unlink(ctx, "alice"); !errors.Is(err, telegram.ErrNotLinked) {
		t.Errorf("second Unlink error = %v, want ErrNotLinked", err)
	}
}

func TestSendTest(t *testing.T) {
	svc, users, _, messenger := newLinkFixture(t)
	ctx := context.Background()
	seedUser(t, users, "alice", "12345")
	seedUser(t, users, "bob", "")

	if err := svc.SendTest(ctx, "alice"); err != nil {
		t.Fatalf("SendTest failed: %v", err)
	}
	if len(messenger.sent) != 1 {
		t.Errorf("expected one message, got %d", len(messenger.sent))
	}
	if err := svc.SendTest(ctx, "bob"); !errors.Is(err, telegram.ErrNotLinked) {
		t.Errorf("SendTest(unlinked) error = %v, want ErrNotLinked", err)
	}
}
