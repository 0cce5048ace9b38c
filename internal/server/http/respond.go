package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/agendaclin/agendaclin/internal/errs"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeDomainError maps sentinel errors to HTTP responses. Every kind gets a
// distinct status/message pair; anything unmapped is an opaque 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient not found")
	case errors.Is(err, errs.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment not found")
	case errors.Is(err, errs.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, errs.ErrPastAppointment):
		writeError(w, http.StatusUnprocessableEntity, "appointment start time is in the past")
	case errors.Is(err, errs.ErrInvalidAppointmentTime):
		writeError(w, http.StatusUnprocessableEntity, "start time must be before end time")
	case errors.Is(err, errs.ErrAppointmentConflict):
		writeError(w, http.StatusConflict, "time conflicts with an existing appointment")
	case errors.Is(err, errs.ErrAppointmentNotEditable):
		writeError(w, http.StatusConflict, "completed appointments cannot be changed")
	case errors.Is(err, errs.ErrPatientHasAppointments):
		writeError(w, http.StatusConflict, "patient still has scheduled appointments")
	case errors.Is(err, errs.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, errs.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, errs.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "too many attempts, try again later")
	case errors.Is(err, errs.ErrNotAllowed):
		writeError(w, http.StatusForbidden, "not allowed")
	case errors.Is(err, errs.ErrInvalidResetToken):
		writeError(w, http.StatusBadRequest, "invalid reset code")
	case errors.Is(err, errs.ErrResetTokenExpired):
		writeError(w, http.StatusBadRequest, "reset code expired")
	case strings.HasPrefix(err.Error(), "validation:"):
		writeError(w, http.StatusBadRequest, strings.TrimSpace(strings.TrimPrefix(err.Error(), "validation:")))
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
