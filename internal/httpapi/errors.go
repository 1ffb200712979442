package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/attachments"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/domain"
)

type APIError struct {
	Success bool `json:"success"`
	Error   struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// writeServiceError maps errors from the intake and review services onto
// the API error envelope. Unexpected errors are logged and reported
// generically.
func writeServiceError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	var se *domain.SubmissionError
	switch {
	case errors.As(err, &se):
		status := http.StatusBadRequest
		if errors.Is(err, attachments.ErrTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		msg := se.Reason
		if se.Err != nil && (errors.Is(err, attachments.ErrTooLarge) || errors.Is(err, attachments.ErrBadType)) {
			msg = se.Err.Error()
		}
		WriteError(w, r, status, "submission_error", msg)
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, r, http.StatusNotFound, "not_found", "Applicant not found")
	case errors.Is(err, domain.ErrInvalidStatus):
		WriteError(w, r, http.StatusBadRequest, "invalid_status", "status must be pending, approved, rejected or contacted")
	default:
		log.WithError(err).WithFields(logrus.Fields{
			"request_id": RequestIDFrom(r.Context()),
			"path":       r.URL.Path,
			"method":     r.Method,
		}).Error("request failed")
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
