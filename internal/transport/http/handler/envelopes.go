package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/identity-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// EmailEnvelope confirms which address a code was dispatched to.
type EmailEnvelope struct {
	Email string `json:"email"`
}

// ResetTokenEnvelope carries the reset token issued after a successful
// password-reset code verification.
type ResetTokenEnvelope struct {
	ResetToken string `json:"reset_token"`
}

// AuthEnvelope wraps login responses.
type AuthEnvelope struct {
	Bearer string       `json:"Bearer,omitempty"`
	User   *domain.User `json:"user,omitempty"`
	Error  string       `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinels to HTTP responses. Consume failures and
// token failures always surface their fixed generic message so the caller
// cannot distinguish missing, wrong and expired; anything unrecognized is an
// opaque 500.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCodeInvalid):
		writeError(w, http.StatusBadRequest, domain.ErrCodeInvalid.Error())
	case errors.Is(err, domain.ErrTokenInvalid):
		writeError(w, http.StatusBadRequest, domain.ErrTokenInvalid.Error())
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "account not found")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrDispatch):
		writeError(w, http.StatusInternalServerError, "could not deliver code")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
