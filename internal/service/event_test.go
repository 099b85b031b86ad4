package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventhub/internal/model"
	"eventhub/internal/repository"
	"eventhub/internal/service"
)

func newEventService(t *testing.T) (*service.EventService, *repository.MemoryEventRepo) {
	t.Helper()
	events := repository.NewMemoryEventRepo()
	return service.NewEventService(events), events
}

func validCreateRequest() model.CreateEventRequest {
	return model.CreateEventRequest{
		Name:         "Board games night",
		StartAt:      time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC),
		LocationName: "Community hall",
		Description:  "Bring your own snacks",
	}
}

func TestCreateEventDefaultsToPublic(t *testing.T) {
	svc, _ := newEventService(t)

	event, err := svc.Create(context.Background(), "owner", validCreateRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if event.Visibility != model.VisibilityPublic {
		t.Errorf("visibility = %q, want public", event.Visibility)
	}
	if event.OwnerID != "owner" {
		t.Errorf("owner = %q, want owner", event.OwnerID)
	}
	if event.ID == "" {
		t.Error("ID should be assigned on create")
	}
}

func TestCreateEventValidation(t *testing.T) {
	svc, _ := newEventService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*model.CreateEventRequest)
	}{
		{"empty name", func(r *model.CreateEventRequest) { r.Name = "  " }},
		{"zero start", func(r *model.CreateEventRequest) { r.StartAt = time.Time{} }},
		{"empty location", func(r *model.CreateEventRequest) { r.LocationName = "" }},
		{"empty description", func(r *model.CreateEventRequest) { r.Description = "" }},
		{"bad visibility", func(r *model.CreateEventRequest) { r.Visibility = "secret" }},
		{"multi-day without end date", func(r *model.CreateEventRequest) { r.IsMultiDay = true }},
		{"multi-day end before start", func(r *model.CreateEventRequest) {
			r.IsMultiDay = true
			end := r.StartAt.Add(-48 * time.Hour)
			r.EndDate = &end
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)
			if _, err := svc.Create(ctx, "owner", req); !errors.Is(err, service.ErrValidation) {
				t.Errorf("Create error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCreateMultiDayEvent(t *testing.T) {
	svc, _ := newEventService(t)

	req := validCreateRequest()
	req.IsMultiDay = true
	end := req.StartAt.Add(48 * time.Hour)
	req.EndDate = &end

	event, err := svc.Create(context.Background(), "owner", req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if event.EndDate == nil || !event.EndDate.Equal(end) {
		t.Errorf("end date not stored")
	}
}

func TestGetEventGatedByAccess(t *testing.T) {
	svc, _ := newEventService(t)
	ctx := context.Background()

	req := validCreateRequest()
	req.Visibility = model.VisibilityPrivate
	req.AllowList = []string{"friend"}
	event, err := svc.Create(ctx, "owner", req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Get(ctx, event.ID, ""); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("Get(unauthenticated) error = %v, want ErrForbidden", err)
	}
	if _, err := svc.Get(ctx, event.ID, "stranger"); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("Get(stranger) error = %v, want ErrForbidden", err)
	}
	if _, err := svc.Get(ctx, event.ID, "friend"); err != nil {
		t.Errorf("Get(allow-listed) failed: %v", err)
	}
	if _, err := svc.Get(ctx, event.ID, "owner"); err != nil {
		t.Errorf("Get(owner) failed: %v", err)
	}
}

func TestUpdateEventOwnerOnly(t *testing.T) {
	svc, _ := newEventService(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, "owner", validCreateRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	name := "Renamed"
	if _, err := svc.Update(ctx, event.ID, "intruder", model.UpdateEventRequest{Name: &name}); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("Update(non-owner) error = %v, want ErrForbidden", err)
	}

	updated, err := svc.Update(ctx, event.ID, "owner", model.UpdateEventRequest{Name: &name})
	if err != nil {
		t.Fatalf("Update(owner) failed: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("name = %q, want Renamed", updated.Name)
	}
}

func TestDeleteEventCascades(t *testing.T) {
	events := repository.NewMemoryEventRepo()
	participations := repository.NewMemoryParticipationRepo()
	comments := repository.NewMemoryCommentRepo()
	events.AttachParticipations(participations)
	events.AttachComments(comments)

	svc := service.NewEventService(events)
	ctx := context.Background()

	event, err := svc.Create(ctx, "owner", validCreateRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	seed := &model.Participation{
		EventID: event.ID, UserID: "alice",
		Status:    model.StatusAccepted,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	if err := participations.Create(ctx, seed); err != nil {
		t.Fatalf("seed participation: %v", err)
	}

	if err := svc.Delete(ctx, event.ID, "stranger"); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("Delete(non-owner) error = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, event.ID, "owner"); err != nil {
		t.Fatalf("Delete(owner) failed: %v", err)
	}
	if _, err := participations.Find(ctx, event.ID, "alice"); !errors.Is(err, service.ErrNotFound) {
		t.Error("participation survived event deletion")
	}
}

func TestListVisible(t *testing.T) {
	svc, _ := newEventService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "owner", validCreateRequest()); err != nil {
		t.Fatalf("Create public failed: %v", err)
	}
	privReq := validCreateRequest()
	privReq.Name = "Private dinner"
	privReq.Visibility = model.VisibilityPrivate
	privReq.AllowList = []string{"friend"}
	if _, err := svc.Create(ctx, "owner", privReq); err != nil {
		t.Fatalf("Create private failed: %v", err)
	}

	for _, tt := range []struct {
		requester string
		want      int
	}{
		{"", 1},
		{"stranger", 1},
		{"friend", 2},
		{"owner", 2},
	} {
		events, err := svc.ListVisible(ctx, tt.requester)
		if err != nil {
			t.Fatalf("ListVisible(%q) failed: %v", tt.requester, err)
		}
		if len(events) != tt.want {
			t.Errorf("ListVisible(%q) = %d events, want %d", tt.requester, len(events), tt.want)
		}
	}
}
