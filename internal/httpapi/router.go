package httpapi

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/metrics"
)

// NewRouter returns the chi mux so main can still attach /shutdown, which
// needs the server and token.
func NewRouter(d Deps) *chi.Mux {
	log := d.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	r := chi.NewRouter()
	r.Use(RequestID, AccessLog(log), Recover(log), Cors(d.CorsOrigins))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Get("/health", HealthHandler{}.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	ah := ApplicantsHandler{Review: d.Review, Hub: d.Hub, Log: log}
	r.Route("/api/applicants", func(r chi.Router) {
		r.Get("/", ah.List)
		r.Get("/stats", ah.Stats)
		r.Get("/{id}", ah.Get)
		r.Put("/{id}/status", ah.UpdateStatus)
	})

	rh := RegisterHandler{
		Intake:         d.Intake,
		Hub:            d.Hub,
		Log:            log,
		Limiter:        d.SubmitLimiter,
		MaxUploadBytes: d.MaxUploadBytes,
	}
	r.Post("/api/register", rh.Submit)

	if d.Files != nil {
		fh := ResumesHandler{Files: d.Files, Log: log}
		r.Get("/images/{key}", fh.Get)
	}

	if d.Hub != nil {
		eh := EventsHandler{Hub: d.Hub}
		r.Get("/api/events", eh.ServeSSE)
	}

	return r
}
