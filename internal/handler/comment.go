package handler

import (
	"net/http"

	"eventhub/internal/model"
	"eventhub/internal/service"

	"github.com/go-chi/chi/v5"
)

// CommentHandler holds the HTTP handlers for event comments.
type CommentHandler struct {
	svc *service.CommentService
}

// NewCommentHandler constructs a CommentHandler.
func NewCommentHandler(svc *service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// List handles GET /events/{id}/comments
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	comments, err := h.svc.List(r.Context(), chi.URLParam(r, "id"), currentUserID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

// Create handles POST /events/{id}/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	comment, err := h.svc.Create(r.Context(), chi.URLParam(r, "id"), currentUserID(r), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// Update handles PUT /events/{id}/comments/{commentID}
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	comment, err := h.svc.Update(r.Context(), chi.URLParam(r, "commentID"), currentUserID(r), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// Delete handles DELETE /events/{id}/comments/{commentID}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "commentID"), currentUserID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
