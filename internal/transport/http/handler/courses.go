package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/trainingdesk-api/internal/application/catalog"
	"github.com/trainingdesk-api/internal/domain"
)

// CourseHandler handles course catalog endpoints.
type CourseHandler struct {
	svc catalog.Service
}

func NewCourseHandler(svc catalog.Service) *CourseHandler { return &CourseHandler{svc: svc} }

// List returns the public catalog; admins see disabled courses too.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	includeDisabled := r.URL.Query().Get("all") == "true"
	courses, err := h.svc.ListCourses(r.Context(), includeDisabled)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (h *CourseHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetCourseBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetCourse(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.CourseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.svc.CreateCourse(r.Context(), input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.UpdateCourse(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "course updated"})
}

// Delete disables the course; rows are never removed.
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DisableCourse(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "course disabled"})
}
