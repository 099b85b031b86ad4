package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventhub/internal/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles account registration and lookup. Authentication
// proper (sessions, token issuance policy) lives outside this core; the
// service only stores bcrypt hashes and resolves bearer tokens.
type UserService struct {
	users UserStore
}

// NewUserService constructs a UserService.
func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// Create registers a new user with a hashed password and a fresh API
// token.
func (s *UserService) Create(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	req.Login = strings.TrimSpace(req.Login)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Login == "" {
		return nil, fmt.Errorf("%w: login is required", ErrValidation)
	}
	if !isValidEmail(req.Email) {
		return nil, fmt.Errorf("%w: email is not valid", ErrValidation)
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Login:        req.Login,
		Email:        req.Email,
		PasswordHash: string(hash),
		APIToken:     uuid.New().String(),
		Avatar:       req.Avatar,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// Authenticate resolves a bearer token to a user, or ErrForbidden.
func (s *UserService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrForbidden
	}
	user, err := s.users.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("resolve token: %w", err)
	}
	return user, nil
}

// isValidEmail does a basic structural check (no external deps).
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
