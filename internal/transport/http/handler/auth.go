package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/trainingdesk-api/internal/application/auth"
	"github.com/trainingdesk-api/internal/domain"
	"github.com/trainingdesk-api/internal/pkg/validate"
)

// AuthHandler handles the email-code admin login flow.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

// SendCode issues a login code to an allow-listed admin address.
func (h *AuthHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req auth.SendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.RequestCode(r.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			// Generic body: don't spell out the allow-list reason.
			writeError(w, http.StatusForbidden, "not authorized")
			return
		}
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "code sent"})
}

// VerifyCode exchanges a valid login code for an admin session token. All
// verification failures return the same 401 body.
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req auth.VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	token, err := h.svc.VerifyCode(r.Context(), req.Email, req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid or expired code")
			return
		}
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{Bearer: token})
}
