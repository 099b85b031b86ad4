package service_test

import (
	"context"
	"errors"
	"testing"

	"eventhub/internal/model"
	"eventhub/internal/repository"
	"eventhub/internal/service"

	"golang.org/x/crypto/bcrypt"
)

func TestCreateUser(t *testing.T) {
	svc := service.NewUserService(repository.NewMemoryUserRepo())
	ctx := context.Background()

	user, err := svc.Create(ctx, model.CreateUserRequest{
		Login:    "alice",
		Email:    "Alice@Example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email not normalised: %q", user.Email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
	if user.APIToken == "" {
		t.Error("API token should be issued on create")
	}

	// Duplicate email is rejected.
	_, err = svc.Create(ctx, model.CreateUserRequest{
		Login: "alice2", Email: "alice@example.com", Password: "password1",
	})
	if !errors.Is(err, service.ErrConflict) {
		t.Errorf("duplicate email error = %v, want ErrConflict", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc := service.NewUserService(repository.NewMemoryUserRepo())
	ctx := context.Background()

	tests := []model.CreateUserRequest{
		{Login: "", Email: "a@b.com", Password: "password1"},
		{Login: "a", Email: "not-an-email", Password: "password1"},
		{Login: "a", Email: "a@b.com", Password: "short"},
	}
	for _, req := range tests {
		if _, err := svc.Create(ctx, req); !errors.Is(err, service.ErrValidation) {
			t.Errorf("Create(%+v) error = %v, want ErrValidation", req, err)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	svc := service.NewUserService(repository.NewMemoryUserRepo())
	ctx := context.Background()

	user, err := svc.Create(ctx, model.CreateUserRequest{
		Login: "alice", Email: "alice@example.com", Password: "password1",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := svc.Authenticate(ctx, user.APIToken)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("authenticated wrong user")
	}

	if _, err := svc.Authenticate(ctx, "bogus"); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("Authenticate(bogus) error = %v, want ErrForbidden", err)
	}
	if _, err := svc.Authenticate(ctx, ""); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("Authenticate(empty) error = %v, want ErrForbidden", err)
	}
}
