package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/trainingdesk-api/internal/application/registration"
	"github.com/trainingdesk-api/internal/domain"
)

// RegistrationHandler handles course booking endpoints.
type RegistrationHandler struct {
	svc registration.Service
}

func NewRegistrationHandler(svc registration.Service) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

// Create is the public booking endpoint.
func (h *RegistrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reg, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	if courseID := r.URL.Query().Get("course_id"); courseID != "" {
		regs, err := h.svc.ListByCourse(r.Context(), courseID)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, PageEnvelope{Data: regs})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	regs, next, err := h.svc.List(r.Context(), limit, r.URL.Query().Get("cursor"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: regs, NextCursor: next})
}

func (h *RegistrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	reg, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// Action applies a lifecycle transition: mark_paid, mark_completed or cancel.
// Completing a paid registration issues its invoice as a side effect.
func (h *RegistrationHandler) Action(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	switch chi.URLParam(r, "action") {
	case "mark_paid":
		reg, err := h.svc.MarkPaid(r.Context(), id)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reg)
	case "mark_completed":
		res, err := h.svc.MarkCompleted(r.Context(), id)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	case "cancel":
		reg, err := h.svc.Cancel(r.Context(), id)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reg)
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
