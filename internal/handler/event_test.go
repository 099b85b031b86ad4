package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventhub/internal/handler"
	"eventhub/internal/model"
	"eventhub/internal/repository"
	"eventhub/internal/service"

	"github.com/go-chi/chi/v5"
)

type testServer struct {
	router chi.Router
	users  *service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	events := repository.NewMemoryEventRepo()
	participations := repository.NewMemoryParticipationRepo()
	comments := repository.NewMemoryCommentRepo()
	events.AttachParticipations(participations)
	events.AttachComments(comments)

	eventSvc := service.NewEventService(events)
	participationSvc := service.NewParticipationService(events, participations)
	userSvc := service.NewUserService(repository.NewMemoryUserRepo())

	eventHandler := handler.NewEventHandler(eventSvc)
	participantHandler := handler.NewParticipantHandler(participationSvc)

	r := chi.NewRouter()
	r.Use(handler.Auth(userSvc))
	r.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.List)
		r.With(handler.RequireAuth).Post("/", eventHandler.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", eventHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(handler.RequireAuth)
				r.Delete("/", eventHandler.Delete)
				r.Post("/join", participantHandler.Join)
				r.Delete("/leave", participantHandler.Leave)
			})
		})
	})

	return &testServer{router: r, users: userSvc}
}

// register creates a user and returns their bearer token and ID.
func (s *testServer) register(t *testing.T, login string) (token, id string) {
	t.Helper()
	user, err := s.users.Create(context.Background(), model.CreateUserRequest{
		Login:    login,
		Email:    login + "@example.com",
		Password: "password1",
	})
	if err != nil {
		t.Fatalf("register %s: %v", login, err)
	}
	return user.APIToken, user.ID
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func createEventReq(visibility string, allowList []string) model.CreateEventRequest {
	return model.CreateEventRequest{
		Name:         "Lake trip",
		StartAt:      time.Now().UTC().Add(48 * time.Hour),
		LocationName: "North shore",
		Description:  "Swimming and barbecue",
		Visibility:   visibility,
		AllowList:    allowList,
	}
}

func TestCreateEventRequiresAuth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/events", "", createEventReq("public", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestEventVisibilityOverHTTP(t *testing.T) {
	s := newTestServer(t)
	ownerToken, _ := s.register(t, "owner")
	friendToken, friendID := s.register(t, "friend")
	strangerToken, _ := s.register(t, "stranger")

	rec := s.do(t, http.MethodPost, "/events", ownerToken,
		createEventReq("private", []string{friendID}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rec.Code, rec.Body)
	}
	var event model.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"unauthenticated", "", http.StatusForbidden},
		{"stranger", strangerToken, http.StatusForbidden},
		{"allow-listed", friendToken, http.StatusOK},
		{"owner", ownerToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/events/"+event.ID, tt.token, nil)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestJoinOverHTTP(t *testing.T) {
	s := newTestServer(t)
	ownerToken, _ := s.register(t, "owner")
	aliceToken, _ := s.register(t, "alice")

	rec := s.do(t, http.MethodPost, "/events", ownerToken, createEventReq("public", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	var event model.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}

	// Owner cannot join their own event.
	if rec := s.do(t, http.MethodPost, "/events/"+event.ID+"/join", ownerToken, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("owner join status = %d, want 400", rec.Code)
	}

	// First join succeeds, second conflicts.
	if rec := s.do(t, http.MethodPost, "/events/"+event.ID+"/join", aliceToken, nil); rec.Code != http.StatusCreated {
		t.Errorf("join status = %d, want 201", rec.Code)
	}
	if rec := s.do(t, http.MethodPost, "/events/"+event.ID+"/join", aliceToken, nil); rec.Code != http.StatusConflict {
		t.Errorf("second join status = %d, want 409", rec.Code)
	}

	// Leave, then leaving again is a 404.
	if rec := s.do(t, http.MethodDelete, "/events/"+event.ID+"/leave", aliceToken, nil); rec.Code != http.StatusNoContent {
		t.Errorf("leave status = %d, want 204", rec.Code)
	}
	if rec := s.do(t, http.MethodDelete, "/events/"+event.ID+"/leave", aliceToken, nil); rec.Code != http.StatusNotFound {
		t.Errorf("second leave status = %d, want 404", rec.Code)
	}
}

func TestListEventsFiltersByViewer(t *testing.T) {
	s := newTestServer(t)
	ownerToken, _ := s.register(t, "owner")

	if rec := s.do(t, http.MethodPost, "/events", ownerToken, createEventReq("public", nil)); rec.Code != http.StatusCreated {
		t.Fatalf("create public: %d", rec.Code)
	}
	if rec := s.do(t, http.MethodPost, "/events", ownerToken, createEventReq("private", nil)); rec.Code != http.StatusCreated {
		t.Fatalf("create private: %d", rec.Code)
	}

	var anon, owned []model.Event
	if rec := s.do(t, http.MethodGet, "/events", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	} else if err := json.Unmarshal(rec.Body.Bytes(), &anon); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if rec := s.do(t, http.MethodGet, "/events", ownerToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	} else if err := json.Unmarshal(rec.Body.Bytes(), &owned); err != nil {
		t.Fatalf("decode list: %v", err)
	}

	if len(anon) != 1 {
		t.Errorf("anonymous sees %d events, want 1", len(anon))
	}
	if len(owned) != 2 {
		t.Errorf("owner sees %d events, want 2", len(owned))
	}
}
