package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/trainingdesk-api/internal/application/invoice"
	"github.com/trainingdesk-api/internal/domain"
)

// InvoiceHandler handles invoice endpoints (admin only).
type InvoiceHandler struct {
	svc invoice.Service
}

func NewInvoiceHandler(svc invoice.Service) *InvoiceHandler { return &InvoiceHandler{svc: svc} }

// Create issues an invoice directly, outside the registration flow. Used for
// manual or corporate bookings.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	if res.AlreadyExisted {
		writeJSON(w, http.StatusOK, res)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	if number := r.URL.Query().Get("number"); number != "" {
		inv, err := h.svc.GetByNumber(r.Context(), number)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, PageEnvelope{Data: []domain.Invoice{*inv}})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	invoices, next, err := h.svc.List(r.Context(), limit, r.URL.Query().Get("cursor"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: invoices, NextCursor: next})
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// PDF returns a short-lived download URL for the invoice artifact.
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.PDFURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
