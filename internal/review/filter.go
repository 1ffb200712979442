package review

import (
	"strings"

	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/domain"
)

// Query narrows a list of applications. An empty Status (or "all") matches
// every status; an empty Search matches every record.
type Query struct {
	Status domain.Status
	Search string
}

// Matches reports whether app has the requested status and contains the
// search term, case-insensitively, in its first name, last name, email or
// role. Status is compared exactly and the search term is not trimmed, the
// same as the admin dashboard.
func (q Query) Matches(app domain.Application) bool {
	if q.Status != "" && q.Status != "all" && app.Status != q.Status {
		return false
	}
	if q.Search == "" {
		return true
	}
	term := strings.ToLower(q.Search)
	for _, field := range []string{app.FirstName, app.LastName, app.Email, string(app.Role)} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Filter returns the applications matching q in their original order.
// It never modifies apps.
func Filter(apps []domain.Application, q Query) []domain.Application {
	out := make([]domain.Application, 0, len(apps))
	for _, app := range apps {
		if q.Matches(app) {
			out = append(out, app)
		}
	}
	return out
}
