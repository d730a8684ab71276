package handler

import (
	"encoding/json"
	"net/http"

	"github.com/identity-api/internal/application/verification"
	"github.com/identity-api/internal/domain"
	"github.com/identity-api/internal/pkg/validate"
)

// PasswordResetHandler handles the password-recovery flow endpoints.
type PasswordResetHandler struct {
	svc verification.Service
}

func NewPasswordResetHandler(svc verification.Service) *PasswordResetHandler {
	return &PasswordResetHandler{svc: svc}
}

type requestResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *PasswordResetHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req requestResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EmailEnvelope{Email: domain.NormalizeEmail(req.Email)})
}

type finalizeResetRequest struct {
	Email       string `json:"email" validate:"required,email"`
	ResetToken  string `json:"reset_token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

func (h *PasswordResetHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	var req finalizeResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.FinalizePasswordReset(r.Context(), req.Email, req.ResetToken, req.NewPassword); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password updated"})
}
