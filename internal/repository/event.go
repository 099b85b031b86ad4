// Package repository implements the persistence contracts from the
// service layer. It uses pgx directly (no ORM) for transparency, and
// additionally provides in-memory implementations for tests and
// dependency-free development.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/model"
	"eventhub/internal/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, owner_id, name, start_at, is_multi_day, end_date,
	location_name, location_coords, description, link, visibility,
	allow_list, tags, created_at, updated_at`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		e.ID, e.OwnerID, e.Name, e.StartAt, e.IsMultiDay, e.EndDate,
		e.LocationName, e.LocationCoords, e.Description, e.Link, e.Visibility,
		e.AllowList, e.Tags, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID returns a single event or service.ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// Update overwrites all mutable fields of an event.
func (r *EventRepository) Update(ctx context.Context, e *model.Event) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE events SET name = $2, start_at = $3, is_multi_day = $4,
		 end_date = $5, location_name = $6, location_coords = $7,
		 description = $8, link = $9, visibility = $10, allow_list = $11,
		 tags = $12, updated_at = $13
		 WHERE id = $1`,
		e.ID, e.Name, e.StartAt, e.IsMultiDay, e.EndDate, e.LocationName,
		e.LocationCoords, e.Description, e.Link, e.Visibility, e.AllowList,
		e.Tags, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

// Delete removes an event. Participations and comments cascade via
// foreign keys.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

// ListVisible returns events readable by userID: public plus owned plus
// allow-listed. An empty userID yields public events only.
func (r *EventRepository) ListVisible(ctx context.Context, userID string) ([]model.Event, error) {
	if userID == "" {
		return r.ListPublic(ctx)
	}
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE visibility = 'public' OR owner_id = $1 OR $1 = ANY(allow_list)
		 ORDER BY created_at DESC`,
		userID)
}

// ListPublic returns all public events ordered by start time descending.
func (r *EventRepository) ListPublic(ctx context.Context) ([]model.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE visibility = 'public'
		 ORDER BY start_at DESC`)
}

// ListByOwner returns the events organized by ownerID.
func (r *EventRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE owner_id = $1
		 ORDER BY start_at DESC`,
		ownerID)
}

// ListParticipating returns the events userID has a participation
// record for.
func (r *EventRepository) ListParticipating(ctx context.Context, userID string) ([]model.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+qualifiedEventColumns()+` FROM events e
		 JOIN event_participants p ON p.event_id = e.id
		 WHERE p.user_id = $1
		 ORDER BY e.start_at DESC`,
		userID)
}

// FindStartingBetween returns events whose start timestamp falls in
// [start, end], boundaries included.
func (r *EventRepository) FindStartingBetween(ctx context.Context, start, end time.Time) ([]model.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE start_at BETWEEN $1 AND $2
		 ORDER BY start_at ASC`,
		start, end)
}

func (r *EventRepository) queryEvents(ctx context.Context, sql string, args ...any) ([]model.Event, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.OwnerID, &e.Name, &e.StartAt, &e.IsMultiDay,
		&e.EndDate, &e.LocationName, &e.LocationCoords, &e.Description,
		&e.Link, &e.Visibility, &e.AllowList, &e.Tags, &e.CreatedAt,
		&e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func qualifiedEventColumns() string {
	return `e.id, e.owner_id, e.name, e.start_at, e.is_multi_day, e.end_date,
	e.location_name, e.location_coords, e.description, e.link, e.visibility,
	e.allow_list, e.tags, e.created_at, e.updated_at`
}
