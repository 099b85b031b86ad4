package repository

import (
	"context"
	"errors"
	"fmt"

	"eventhub/internal/model"
	"eventhub/internal/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CommentRepository handles persistence for event comments.
type CommentRepository struct {
	db *pgxpool.Pool
}

// NewCommentRepository constructs a CommentRepository.
func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a comment.
func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO event_comments (id, event_id, user_id, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.EventID, c.UserID, c.Content, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// GetByID returns a comment or service.ErrNotFound.
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	err := r.db.QueryRow(ctx,
		`SELECT id, event_id, user_id, content, created_at, updated_at
		 FROM event_comments WHERE id = $1`, id,
	).Scan(&c.ID, &c.EventID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &c, nil
}

// Update overwrites a comment's content.
func (r *CommentRepository) Update(ctx context.Context, c *model.Comment) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE event_comments SET content = $2, updated_at = $3 WHERE id = $1`,
		c.ID, c.Content, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

// Delete removes a comment.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM event_comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

// ListByEvent returns all comments on an event ordered by creation time
// ascending.
func (r *CommentRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Comment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, event_id, user_id, content, created_at, updated_at
		 FROM event_comments
		 WHERE event_id = $1
		 ORDER BY created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var out []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.EventID, &c.UserID, &c.Content,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
