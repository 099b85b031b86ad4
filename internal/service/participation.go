package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/model"
)

// ParticipationService manages the join/leave/status lifecycle of a
// user's relationship to an event.
//
// Two invariants hold across every mutator:
//   - the organizer never holds a participation record for their own
//     event, checked by identity comparison on each call since no
//     database constraint can express it;
//   - at most one record exists per (event, user) pair, backed by a
//     uniqueness constraint at the storage layer.
type ParticipationService struct {
	events         EventStore
	participations ParticipationStore
}

// NewParticipationService constructs a ParticipationService.
func NewParticipationService(events EventStore, participations ParticipationStore) *ParticipationService {
	return &ParticipationService{events: events, participations: participations}
}

// Join adds userID as a participant of the event. The record is created
// with status accepted directly; pending and declined are only reachable
// through UpdateStatus.
func (s *ParticipationService) Join(ctx context.Context, eventID, userID string) (*model.Participation, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !CanAccess(event, userID) {
		return nil, ErrForbidden
	}
	if event.IsOwner(userID) {
		return nil, fmt.Errorf("%w: organizer cannot join own event", ErrInvalidOperation)
	}

	// Fast-path duplicate check; the unique (event_id, user_id)
	// constraint in the store is the authoritative guard against a
	// concurrent identical request.
	if _, err := s.participations.Find(ctx, eventID, userID); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check participation: %w", err)
	}

	now := time.Now().UTC()
	p := &model.Participation{
		EventID:   eventID,
		UserID:    userID,
		Status:    model.StatusAccepted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.participations.Create(ctx, p); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create participation: %w", err)
	}
	return p, nil
}

// Leave removes userID's participation record for the event.
func (s *ParticipationService) Leave(ctx context.Context, eventID, userID string) error {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event.IsOwner(userID) {
		return fmt.Errorf("%w: organizer cannot leave own event", ErrInvalidOperation)
	}
	if _, err := s.participations.Find(ctx, eventID, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("check participation: %w", err)
	}
	if err := s.participations.Delete(ctx, eventID, userID); err != nil {
		return fmt.Errorf("delete participation: %w", err)
	}
	return nil
}

// UpdateStatus overwrites the participation status in place. Any valid
// status is reachable from any other; there is no transition graph.
func (s *ParticipationService) UpdateStatus(ctx context.Context, eventID, userID string, status model.ParticipationStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event.IsOwner(userID) {
		return fmt.Errorf("%w: organizer has no participation status", ErrInvalidOperation)
	}
	if _, err := s.participations.Find(ctx, eventID, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("check participation: %w", err)
	}
	if err := s.participations.UpdateStatus(ctx, eventID, userID, status); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

// ListParticipants returns the event's participation records ordered by
// creation time ascending. Access is gated by the same policy as reading
// the event itself.
func (s *ParticipationService) ListParticipants(ctx context.Context, eventID, requesterID string) ([]model.Participation, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !CanAccess(event, requesterID) {
		return nil, ErrForbidden
	}
	participants, err := s.participations.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}

func (s *ParticipationService) getEvent(ctx context.Context, eventID string) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}
