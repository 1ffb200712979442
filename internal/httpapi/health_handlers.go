package httpapi

import (
	"net/http"
	"time"
)

type HealthHandler struct {
	Now func() time.Time
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": now().UTC().Format(time.RFC3339),
	})
}
