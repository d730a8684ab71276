package handler

import (
	"encoding/json"
	"net/http"

	"github.com/identity-api/internal/application/verification"
	"github.com/identity-api/internal/domain"
	"github.com/identity-api/internal/pkg/validate"
)

// VerificationHandler handles the OTP issue/verify endpoints.
type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

type sendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *VerificationHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req sendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.SendVerificationCode(r.Context(), req.Email); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EmailEnvelope{Email: domain.NormalizeEmail(req.Email)})
}

type verifyCodeRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Code    string `json:"code" validate:"required"`
	Purpose string `json:"purpose"`
}

func (h *VerificationHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	purpose, err := domain.ParsePurpose(req.Purpose)
	if err != nil {
		httpError(w, err)
		return
	}
	token, err := h.svc.VerifyCode(r.Context(), req.Email, req.Code, purpose)
	if err != nil {
		httpError(w, err)
		return
	}
	if token != "" {
		writeJSON(w, http.StatusOK, ResetTokenEnvelope{ResetToken: token})
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "code verified"})
}
