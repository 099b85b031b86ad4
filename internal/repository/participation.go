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

// uniqueViolation is the Postgres error code raised when the primary
// key on (event_id, user_id) rejects a duplicate participation.
const uniqueViolation = "23505"

// ParticipationRepository handles persistence for participation records.
type ParticipationRepository struct {
	db *pgxpool.Pool
}

// NewParticipationRepository constructs a ParticipationRepository.
func NewParticipationRepository(db *pgxpool.Pool) *ParticipationRepository {
	return &ParticipationRepository{db: db}
}

// Find returns the participation record for (eventID, userID) or
// service.ErrNotFound.
func (r *ParticipationRepository) Find(ctx context.Context, eventID, userID string) (*model.Participation, error) {
	var p model.Participation
	err := r.db.QueryRow(ctx,
		`SELECT event_id, user_id, status, created_at, updated_at
		 FROM event_participants
		 WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	).Scan(&p.EventID, &p.UserID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		return nil, fmt.Errorf("find participation: %w", err)
	}
	return &p, nil
}

// Create inserts a participation record. The table's primary key on
// (event_id, user_id) is the authoritative duplicate guard: a concurrent
// identical join loses the race here and surfaces as service.ErrConflict.
func (r *ParticipationRepository) Create(ctx context.Context, p *model.Participation) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO event_participants (event_id, user_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.EventID, p.UserID, p.Status, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return service.ErrConflict
		}
		return fmt.Errorf("insert participation: %w", err)
	}
	return nil
}

// UpdateStatus overwrites the status of an existing record.
func (r *ParticipationRepository) UpdateStatus(ctx context.Context, eventID, userID string, status model.ParticipationStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE event_participants SET status = $3, updated_at = now()
		 WHERE event_id = $1 AND user_id = $2`,
		eventID, userID, status,
	)
	if err != nil {
		return fmt.Errorf("update participation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

// Delete removes a participation record.
func (r *ParticipationRepository) Delete(ctx context.Context, eventID, userID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM event_participants WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete participation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

// ListByEvent returns all participation records for an event ordered by
// creation time ascending.
func (r *ParticipationRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Participation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT event_id, user_id, status, created_at, updated_at
		 FROM event_participants
		 WHERE event_id = $1
		 ORDER BY created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	defer rows.Close()

	var out []model.Participation
	for rows.Next() {
		var p model.Participation
		if err := rows.Scan(&p.EventID, &p.UserID, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
