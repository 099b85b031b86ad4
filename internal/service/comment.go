package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventhub/internal/model"

	"github.com/google/uuid"
)

// CommentService handles event comments. Reading and posting are gated
// by the event access policy; editing and deleting are author-only.
type CommentService struct {
	events   EventStore
	comments CommentStore
}

// NewCommentService constructs a CommentService.
func NewCommentService(events EventStore, comments CommentStore) *CommentService {
	return &CommentService{events: events, comments: comments}
}

// List returns the comments on an event in creation order.
func (s *CommentService) List(ctx context.Context, eventID, requesterID string) ([]model.Comment, error) {
	if err := s.checkEventAccess(ctx, eventID, requesterID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Create posts a comment on an event.
func (s *CommentService) Create(ctx context.Context, eventID, authorID string, req model.CreateCommentRequest) (*model.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is required", ErrValidation)
	}
	if err := s.checkEventAccess(ctx, eventID, authorID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	comment := &model.Comment{
		ID:        uuid.New().String(),
		EventID:   eventID,
		UserID:    authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return comment, nil
}

// Update rewrites a comment's content. Only the author may edit.
func (s *CommentService) Update(ctx context.Context, commentID, requesterID string, req model.CreateCommentRequest) (*model.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is required", ErrValidation)
	}
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != requesterID {
		return nil, ErrForbidden
	}
	comment.Content = content
	comment.UpdatedAt = time.Now().UTC()
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

// Delete removes a comment. Only the author may delete.
func (s *CommentService) Delete(ctx context.Context, commentID, requesterID string) error {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != requesterID {
		return ErrForbidden
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func (s *CommentService) checkEventAccess(ctx context.Context, eventID, requesterID string) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if !CanAccess(event, requesterID) {
		return ErrForbidden
	}
	return nil
}

func (s *CommentService) getComment(ctx context.Context, id string) (*model.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return comment, nil
}
