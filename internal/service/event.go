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

// EventService orchestrates event CRUD and visibility rules.
type EventService struct {
	events EventStore
}

// NewEventService constructs an EventService.
func NewEventService(events EventStore) *EventService {
	return &EventService{events: events}
}

// Create validates the request and stores a new event owned by ownerID.
func (s *EventService) Create(ctx context.Context, ownerID string, req model.CreateEventRequest) (*model.Event, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("%w: event name is required", ErrValidation)
	}
	if req.StartAt.IsZero() {
		return nil, fmt.Errorf("%w: start time is required", ErrValidation)
	}
	if strings.TrimSpace(req.LocationName) == "" {
		return nil, fmt.Errorf("%w: location name is required", ErrValidation)
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = model.VisibilityPublic
	}
	if visibility != model.VisibilityPublic && visibility != model.VisibilityPrivate {
		return nil, fmt.Errorf("%w: unknown visibility %q", ErrValidation, visibility)
	}
	endDate, err := checkEndDate(req.IsMultiDay, req.EndDate, req.StartAt)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	event := &model.Event{
		ID:             uuid.New().String(),
		OwnerID:        ownerID,
		Name:           req.Name,
		StartAt:        req.StartAt,
		IsMultiDay:     req.IsMultiDay,
		EndDate:        endDate,
		LocationName:   req.LocationName,
		LocationCoords: req.LocationCoords,
		Description:    req.Description,
		Link:           req.Link,
		Visibility:     visibility,
		AllowList:      req.AllowList,
		Tags:           req.Tags,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

// Get returns a single event, gated by the access policy.
func (s *EventService) Get(ctx context.Context, id, requesterID string) (*model.Event, error) {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccess(event, requesterID) {
		return nil, ErrForbidden
	}
	return event, nil
}

// Update applies a partial update. Only the organizer may mutate an
// event.
func (s *EventService) Update(ctx context.Context, id, requesterID string, req model.UpdateEventRequest) (*model.Event, error) {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !event.IsOwner(requesterID) {
		return nil, ErrForbidden
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: event name cannot be empty", ErrValidation)
		}
		event.Name = name
	}
	if req.StartAt != nil {
		event.StartAt = *req.StartAt
	}
	if req.IsMultiDay != nil {
		event.IsMultiDay = *req.IsMultiDay
	}
	if req.EndDate != nil {
		event.EndDate = req.EndDate
	}
	if req.LocationName != nil {
		event.LocationName = *req.LocationName
	}
	if req.LocationCoords != nil {
		event.LocationCoords = req.LocationCoords
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Link != nil {
		event.Link = *req.Link
	}
	if req.Visibility != nil {
		if *req.Visibility != model.VisibilityPublic && *req.Visibility != model.VisibilityPrivate {
			return nil, fmt.Errorf("%w: unknown visibility %q", ErrValidation, *req.Visibility)
		}
		event.Visibility = *req.Visibility
	}
	if req.AllowList != nil {
		event.AllowList = req.AllowList
	}
	if req.Tags != nil {
		event.Tags = req.Tags
	}

	endDate, err := checkEndDate(event.IsMultiDay, event.EndDate, event.StartAt)
	if err != nil {
		return nil, err
	}
	event.EndDate = endDate
	event.UpdatedAt = time.Now().UTC()

	if err := s.events.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// Delete removes an event. Only the organizer may delete; participations
// and comments cascade at the storage layer.
func (s *EventService) Delete(ctx context.Context, id, requesterID string) error {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return err
	}
	if !event.IsOwner(requesterID) {
		return ErrForbidden
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// ListVisible returns every event readable by requesterID.
func (s *EventService) ListVisible(ctx context.Context, requesterID string) ([]model.Event, error) {
	return s.events.ListVisible(ctx, requesterID)
}

// ListPublic returns all public events.
func (s *EventService) ListPublic(ctx context.Context) ([]model.Event, error) {
	return s.events.ListPublic(ctx)
}

// ListCreated returns the events organized by userID.
func (s *EventService) ListCreated(ctx context.Context, userID string) ([]model.Event, error) {
	return s.events.ListByOwner(ctx, userID)
}

// ListParticipating returns the events userID has joined.
func (s *EventService) ListParticipating(ctx context.Context, userID string) ([]model.Event, error) {
	return s.events.ListParticipating(ctx, userID)
}

// checkEndDate enforces the multi-day invariant: end date is required
// and must not precede the start date when the multi-day flag is set,
// and is meaningless (dropped) otherwise.
func checkEndDate(multiDay bool, endDate *time.Time, startAt time.Time) (*time.Time, error) {
	if !multiDay {
		return nil, nil
	}
	if endDate == nil {
		return nil, fmt.Errorf("%w: end date is required for multi-day events", ErrValidation)
	}
	startDay := startAt.Truncate(24 * time.Hour)
	if endDate.Before(startDay) {
		return nil, fmt.Errorf("%w: end date precedes start date", ErrValidation)
	}
	return endDate, nil
}

func (s *EventService) getEvent(ctx context.Context, id string) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}
