package httpapi

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/attachments"
)

type ResumesHandler struct {
	Files *attachments.Manager
	Log   logrus.FieldLogger
}

// Get serves a stored résumé by key, the last segment of its reference.
func (h ResumesHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	rc, obj, err := h.Files.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, attachments.ErrNotFound) || errors.Is(err, attachments.ErrInvalidKey) {
			WriteError(w, r, http.StatusNotFound, "not_found", "file not found")
			return
		}
		h.Log.WithError(err).WithField("key", key).Error("open attachment")
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	defer rc.Close()

	ct := obj.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": key}))
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.Log.WithError(err).WithField("key", key).Debug("copy attachment")
	}
}
