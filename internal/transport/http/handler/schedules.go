package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/trainingdesk-api/internal/application/catalog"
	"github.com/trainingdesk-api/internal/domain"
)

// ScheduleHandler handles course schedule endpoints.
type ScheduleHandler struct {
	svc catalog.Service
}

func NewScheduleHandler(svc catalog.Service) *ScheduleHandler { return &ScheduleHandler{svc: svc} }

// ListByCourseSlug is the public listing: enabled runs of an enabled course,
// addressed by the course's URL slug.
func (h *ScheduleHandler) ListByCourseSlug(w http.ResponseWriter, r *http.Request) {
	course, err := h.svc.GetCourseBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httpError(w, err)
		return
	}
	schedules, err := h.svc.ListSchedules(r.Context(), course.CourseID, false)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schedules)
}

// ListByCourse is the admin listing by course id; disabled runs included on request.
func (h *ScheduleHandler) ListByCourse(w http.ResponseWriter, r *http.Request) {
	includeDisabled := r.URL.Query().Get("all") == "true"
	schedules, err := h.svc.ListSchedules(r.Context(), chi.URLParam(r, "id"), includeDisabled)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schedules)
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	sch, err := h.svc.GetSchedule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sch)
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.ScheduleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.svc.CreateSchedule(r.Context(), input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.UpdateSchedule(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "schedule updated"})
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DisableSchedule(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "schedule disabled"})
}
