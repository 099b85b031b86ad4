package service_test

import (
	"testing"

	"eventhub/internal/model"
	"eventhub/internal/service"
)

func TestCanAccess(t *testing.T) {
	publicEvent := &model.Event{
		ID:         "e1",
		OwnerID:    "owner",
		Visibility: model.VisibilityPublic,
	}
	privateEvent := &model.Event{
		ID:         "e2",
		OwnerID:    "owner",
		Visibility: model.VisibilityPrivate,
		AllowList:  []string{"friend"},
	}

	tests := []struct {
		name      string
		event     *model.Event
		requester string
		want      bool
	}{
		{"public event, unauthenticated", publicEvent, "", true},
		{"public event, random user", publicEvent, "stranger", true},
		{"public event, owner", publicEvent, "owner", true},
		{"private event, unauthenticated", privateEvent, "", false},
		{"private event, owner", privateEvent, "owner", true},
		{"private event, allow-listed", privateEvent, "friend", true},
		{"private event, stranger", privateEvent, "stranger", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := service.CanAccess(tt.event, tt.requester); got != tt.want {
				t.Errorf("CanAccess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanAccessReflectsMutation(t *testing.T) {
	event := &model.Event{
		ID:         "e1",
		OwnerID:    "owner",
		Visibility: model.VisibilityPrivate,
	}

	if service.CanAccess(event, "guest") {
		t.Fatal("guest should not access private event")
	}

	// The allow-list is mutable; the verdict must follow it.
	event.AllowList = []string{"guest"}
	if !service.CanAccess(event, "guest") {
		t.Error("guest should access after being allow-listed")
	}

	event.AllowList = nil
	if service.CanAccess(event, "guest") {
		t.Error("guest should lose access after removal from allow-list")
	}
}
