// Package model defines the core domain types for the events platform.
package model

import (
	"encoding/json"
	"time"
)

// Visibility values for an event.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Event represents an event created by an organizer.
type Event struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"owner_id"`
	Name           string          `json:"name"`
	StartAt        time.Time       `json:"start_at"`
	IsMultiDay     bool            `json:"is_multi_day"`
	EndDate        *time.Time      `json:"end_date,omitempty"`
	LocationName   string          `json:"location_name"`
	LocationCoords json.RawMessage `json:"location_coords,omitempty"`
	Description    string          `json:"description"`
	Link           string          `json:"link,omitempty"`
	Visibility     string          `json:"visibility"`
	AllowList      []string        `json:"allow_list,omitempty"`
	Tags           []string        `json:"tags,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// IsPublic returns true when the event is visible to everyone.
func (e *Event) IsPublic() bool {
	return e.Visibility == VisibilityPublic
}

// IsOwner returns true when userID is the event's organizer.
func (e *Event) IsOwner(userID string) bool {
	return userID != "" && e.OwnerID == userID
}

// InAllowList returns true when userID is on the event's allow-list.
func (e *Event) InAllowList(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range e.AllowList {
		if id == userID {
			return true
		}
	}
	return false
}

// ParticipationStatus is the status of a user's participation in an event.
type ParticipationStatus string

// Valid participation statuses.
const (
	StatusPending  ParticipationStatus = "pending"
	StatusAccepted ParticipationStatus = "accepted"
	StatusDeclined ParticipationStatus = "declined"
)

// Valid reports whether s is one of the recognised statuses.
func (s ParticipationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined:
		return true
	}
	return false
}

// Participation links a user to an event. Exactly one record may exist
// per (event, user) pair, and the owner of an event never holds one for
// their own event.
type Participation struct {
	EventID   string              `json:"event_id"`
	UserID    string              `json:"user_id"`
	Status    ParticipationStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// User is a registered account. TelegramID is empty until the user links
// their Telegram account; an unlinked user is simply not notifiable.
type User struct {
	ID           string    `json:"id"`
	Login        string    `json:"login"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	APIToken     string    `json:"-"`
	Avatar       string    `json:"avatar,omitempty"`
	TelegramID   string    `json:"telegram_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Notifiable returns true when the user can receive Telegram messages.
func (u *User) Notifiable() bool {
	return u.TelegramID != ""
}

// Comment is a user comment on an event.
type Comment struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Name           string          `json:"name"`
	StartAt        time.Time       `json:"start_at"`
	IsMultiDay     bool            `json:"is_multi_day"`
	EndDate        *time.Time      `json:"end_date"`
	LocationName   string          `json:"location_name"`
	LocationCoords json.RawMessage `json:"location_coords"`
	Description    string          `json:"description"`
	Link           string          `json:"link"`
	Visibility     string          `json:"visibility"`
	AllowList      []string        `json:"allow_list"`
	Tags           []string        `json:"tags"`
}

// UpdateEventRequest is the payload for a partial event update. Nil
// fields are left unchanged.
type UpdateEventRequest struct {
	Name           *string         `json:"name"`
	StartAt        *time.Time      `json:"start_at"`
	IsMultiDay     *bool           `json:"is_multi_day"`
	EndDate        *time.Time      `json:"end_date"`
	LocationName   *string         `json:"location_name"`
	LocationCoords json.RawMessage `json:"location_coords"`
	Description    *string         `json:"description"`
	Link           *string         `json:"link"`
	Visibility     *string         `json:"visibility"`
	AllowList      []string        `json:"allow_list"`
	Tags           []string        `json:"tags"`
}

// UpdateStatusRequest is the payload for changing a participation status.
type UpdateStatusRequest struct {
	Status ParticipationStatus `json:"status"`
}

// CreateUserRequest is the payload for registering a user.
type CreateUserRequest struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
}

// CreateCommentRequest is the payload for posting a comment.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
