package handler

import (
	"encoding/json"
	"net/http"

	"github.com/trainingdesk-api/internal/application/enquiry"
	"github.com/trainingdesk-api/internal/domain"
)

// EnquiryHandler handles contact-form endpoints.
type EnquiryHandler struct {
	svc enquiry.Service
}

func NewEnquiryHandler(svc enquiry.Service) *EnquiryHandler { return &EnquiryHandler{svc: svc} }

// Create is the public contact-form endpoint.
func (h *EnquiryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.EnquiryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.svc.Create(r.Context(), input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *EnquiryHandler) List(w http.ResponseWriter, r *http.Request) {
	enquiries, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, enquiries)
}
