package handler

import (
	"net/http"

	"eventhub/internal/model"
	"eventhub/internal/service"

	"github.com/go-chi/chi/v5"
)

// ParticipantHandler holds the HTTP handlers for event participation.
type ParticipantHandler struct {
	svc *service.ParticipationService
}

// NewParticipantHandler constructs a ParticipantHandler.
func NewParticipantHandler(svc *service.ParticipationService) *ParticipantHandler {
	return &ParticipantHandler{svc: svc}
}

// List handles GET /events/{id}/participants
func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	participants, err := h.svc.ListParticipants(r.Context(), chi.URLParam(r, "id"), currentUserID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if participants == nil {
		participants = []model.Participation{}
	}
	writeJSON(w, http.StatusOK, participants)
}

// Join handles POST /events/{id}/join
func (h *ParticipantHandler) Join(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Join(r.Context(), chi.URLParam(r, "id"), currentUserID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Leave handles DELETE /events/{id}/leave
func (h *ParticipantHandler) Leave(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Leave(r.Context(), chi.URLParam(r, "id"), currentUserID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateStatus handles PUT /events/{id}/status
func (h *ParticipantHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), currentUserID(r), req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(req.Status)})
}
