package httpapi

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/attachments"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/domain"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/events"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/intake"
)

// resumeField is the multipart field carrying the optional résumé.
const resumeField = "resume"

// formSlack is allowed on top of the attachment limit for the text fields
// and multipart framing.
const formSlack = 1 << 20

type RegisterHandler struct {
	Intake  *intake.Service
	Hub     *events.Hub
	Log     logrus.FieldLogger
	Limiter *KeyLimiter

	MaxUploadBytes int64
}

type registerRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	Education    string `json:"education"`
	Motivation   string `json:"motivation"`
	Availability string `json:"availability"`
	Experience   string `json:"experience"`
	Skills       string `json:"skills"`
}

func (rr registerRequest) fields() domain.Fields {
	return domain.Fields{
		FirstName:    rr.FirstName,
		LastName:     rr.LastName,
		Email:        rr.Email,
		Phone:        rr.Phone,
		Role:         domain.Role(rr.Role),
		Education:    rr.Education,
		Motivation:   rr.Motivation,
		Availability: rr.Availability,
		Experience:   rr.Experience,
		Skills:       rr.Skills,
	}
}

func formRequest(r *http.Request) registerRequest {
	return registerRequest{
		FirstName:    r.FormValue("firstName"),
		LastName:     r.FormValue("lastName"),
		Email:        r.FormValue("email"),
		Phone:        r.FormValue("phone"),
		Role:         r.FormValue("role"),
		Education:    r.FormValue("education"),
		Motivation:   r.FormValue("motivation"),
		Availability: r.FormValue("availability"),
		Experience:   r.FormValue("experience"),
		Skills:       r.FormValue("skills"),
	}
}

// Submit accepts an application as multipart/form-data (with an optional
// résumé file), urlencoded form or JSON. Any status sent by the client is
// ignored.
func (h RegisterHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h.Limiter != nil && !h.Limiter.Allow(clientIP(r)) {
		WriteError(w, r, http.StatusTooManyRequests, "rate_limited", "too many submissions, try again later")
		return
	}

	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = attachments.DefaultMaxBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+formSlack)

	var (
		req    registerRequest
		upload *attachments.Upload
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			h.badBody(w, r, err)
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()
		req = formRequest(r)

		file, hdr, err := r.FormFile(resumeField)
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			h.badBody(w, r, err)
			return
		default:
			defer file.Close()
			upload = &attachments.Upload{
				Filename:    hdr.Filename,
				ContentType: hdr.Header.Get("Content-Type"),
				Body:        file,
			}
		}
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.badBody(w, r, err)
			return
		}
	default:
		if err := r.ParseForm(); err != nil {
			h.badBody(w, r, err)
			return
		}
		req = formRequest(r)
	}

	fields := req.fields()
	if missing := fields.Missing(); len(missing) > 0 {
		WriteError(w, r, http.StatusBadRequest, "submission_error", "missing required fields: "+strings.Join(missing, ", "))
		return
	}
	if !domain.NormalizeRole(fields.Role).Valid() {
		WriteError(w, r, http.StatusBadRequest, "submission_error", "role must be intern, volunteer, teacher, coordinator or other")
		return
	}

	app, err := h.Intake.Submit(r.Context(), fields, upload)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}

	if h.Hub != nil {
		h.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), events.TypeApplicationSubmitted, map[string]any{
			"id":   app.ID,
			"role": app.Role,
		}))
	}
	writeApplicant(w, http.StatusCreated, app)
}

func (h RegisterHandler) badBody(w http.ResponseWriter, r *http.Request, err error) {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large") {
		WriteError(w, r, http.StatusRequestEntityTooLarge, "submission_error", "request body too large")
		return
	}
	h.Log.WithError(err).WithField("request_id", RequestIDFrom(r.Context())).Debug("malformed submission")
	WriteError(w, r, http.StatusBadRequest, "submission_error", "malformed request body")
}
