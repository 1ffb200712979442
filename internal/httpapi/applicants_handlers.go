package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/domain"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/events"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/review"
)

type ApplicantsHandler struct {
	Review *review.Service
	Hub    *events.Hub
	Log    logrus.FieldLogger
}

type statusRequest struct {
	Status string `json:"status"`
}

// List returns every application in submission order. status and q narrow
// the result the same way the admin dashboard filter does.
func (h ApplicantsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := review.Query{
		Status: domain.Status(r.URL.Query().Get("status")),
		Search: r.URL.Query().Get("q"),
	}
	var (
		apps []domain.Application
		err  error
	)
	if q.Status == "" && q.Search == "" {
		apps, err = h.Review.List(r.Context())
	} else {
		apps, err = h.Review.Search(r.Context(), q)
	}
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	if apps == nil {
		apps = []domain.Application{}
	}
	WriteJSON(w, http.StatusOK, apps)
}

func (h ApplicantsHandler) Get(w http.ResponseWriter, r *http.Request) {
	app, err := h.Review.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeApplicant(w, http.StatusOK, app)
}

func (h ApplicantsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Review.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, st)
}

func (h ApplicantsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4<<10)).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "body must be JSON like {\"status\":\"approved\"}")
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_status", "status is required")
		return
	}

	app, err := h.Review.UpdateStatus(r.Context(), chi.URLParam(r, "id"), domain.Status(req.Status))
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}

	if h.Hub != nil {
		h.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), events.TypeApplicationStatusChanged, map[string]any{
			"id":     app.ID,
			"status": app.Status,
		}))
	}
	writeApplicant(w, http.StatusOK, app)
}
