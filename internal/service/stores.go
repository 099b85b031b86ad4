package service

import (
	"context"
	"time"

	"eventhub/internal/model"
)

// EventStore is the persistence contract for events. Implementations
// signal missing rows and duplicates with the ErrNotFound and
// ErrConflict sentinels from this package, recognisable via errors.Is.
type EventStore interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id string) error

	// ListVisible returns events readable by userID (public plus owned
	// plus allow-listed); an empty userID lists only public events.
	ListVisible(ctx context.Context, userID string) ([]model.Event, error)
	ListPublic(ctx context.Context) ([]model.Event, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Event, error)
	ListParticipating(ctx context.Context, userID string) ([]model.Event, error)

	// FindStartingBetween returns events whose start timestamp falls in
	// [start, end], boundaries included.
	FindStartingBetween(ctx context.Context, start, end time.Time) ([]model.Event, error)
}

// ParticipationStore is the persistence contract for participation
// records. Create must be guarded by a uniqueness constraint on
// (event_id, user_id) and report a duplicate as ErrConflict; the
// in-service existence check is an optimisation, not the authoritative
// guard.
type ParticipationStore interface {
	Find(ctx context.Context, eventID, userID string) (*model.Participation, error)
	Create(ctx context.Context, p *model.Participation) error
	UpdateStatus(ctx context.Context, eventID, userID string, status model.ParticipationStatus) error
	Delete(ctx context.Context, eventID, userID string) error
	ListByEvent(ctx context.Context, eventID string) ([]model.Participation, error)
}

// UserStore is the persistence contract for user accounts.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByToken(ctx context.Context, token string) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	SetTelegramID(ctx context.Context, userID, telegramID string) error
}

// CommentStore is the persistence contract for event comments.
type CommentStore interface {
	Create(ctx context.Context, c *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	Update(ctx context.Context, c *model.Comment) error
	Delete(ctx context.Context, id string) error
	ListByEvent(ctx context.Context, eventID string) ([]model.Comment, error)
}
