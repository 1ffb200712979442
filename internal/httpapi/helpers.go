package httpapi

import (
	"net"
	"net/http"
)

type applicantResponse struct {
	Success   bool `json:"success"`
	Applicant any  `json:"applicant"`
}

func writeApplicant(w http.ResponseWriter, status int, app any) {
	WriteJSON(w, status, applicantResponse{Success: true, Applicant: app})
}

// clientIP is the remote host without port. X-Forwarded-For is ignored.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
