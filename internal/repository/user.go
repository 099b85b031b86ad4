package repository

import (
	"context"
	"errors"
	"fmt"

	"eventhub/internal/model"
	"eventhub/internal/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, login, email, password_hash, api_token, avatar,
	telegram_id, created_at`

// UserRepository handles persistence for user accounts.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A duplicate email surfaces as
// service.ErrConflict via the unique index.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Login, u.Email, u.PasswordHash, u.APIToken, u.Avatar,
		u.TelegramID, u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return service.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID returns a user or service.ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getBy(ctx, `id = $1`, id)
}

// GetByEmail returns a user by email or service.ErrNotFound.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getBy(ctx, `email = $1`, email)
}

// GetByToken returns a user by API token or service.ErrNotFound.
func (r *UserRepository) GetByToken(ctx context.Context, token string) (*model.User, error) {
	return r.getBy(ctx, `api_token = $1`, token)
}

// GetByTelegramID returns the user bound to a Telegram chat or
// service.ErrNotFound.
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID string) (*model.User, error) {
	return r.getBy(ctx, `telegram_id = $1 AND telegram_id <> ''`, telegramID)
}

// List returns all users ordered by creation time.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Login, &u.Email, &u.PasswordHash,
			&u.APIToken, &u.Avatar, &u.TelegramID, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetTelegramID binds (or, with an empty value, unbinds) a Telegram chat
// to the user.
func (r *UserRepository) SetTelegramID(ctx context.Context, userID, telegramID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET telegram_id = $2 WHERE id = $1`,
		userID, telegramID,
	)
	if err != nil {
		return fmt.Errorf("set telegram id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (r *UserRepository) getBy(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where, arg,
	).Scan(&u.ID, &u.Login, &u.Email, &u.PasswordHash, &u.APIToken,
		&u.Avatar, &u.TelegramID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
