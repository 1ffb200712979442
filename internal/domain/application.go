package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleIntern      Role = "intern"
	RoleVolunteer   Role = "volunteer"
	RoleTeacher     Role = "teacher"
	RoleCoordinator Role = "coordinator"
	RoleOther       Role = "other"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusContacted Status = "contacted"
)

// Statuses lists every review state in display order.
var Statuses = []Status{StatusPending, StatusApproved, StatusRejected, StatusContacted}

// Application is one stored submission. ID and AppliedAt are set once by the
// intake service and never change; only Status is mutated afterwards.
type Application struct {
	ID              string    `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Role            Role      `json:"role"`
	Education       string    `json:"education"`
	Motivation      string    `json:"motivation"`
	Availability    string    `json:"availability"`
	Experience      string    `json:"experience"`
	Skills          string    `json:"skills"`
	ResumeReference *string   `json:"resumeReference"`
	AppliedAt       time.Time `json:"appliedAt"`
	Status          Status    `json:"status"`
}

// Fields carries the applicant-supplied text of a submission.
type Fields struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Role         Role
	Education    string
	Motivation   string
	Availability string
	Experience   string
	Skills       string
}

// Missing returns the form names of required fields that are blank.
func (f Fields) Missing() []string {
	var out []string
	check := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			out = append(out, name)
		}
	}
	check("firstName", f.FirstName)
	check("lastName", f.LastName)
	check("email", f.Email)
	check("phone", f.Phone)
	check("role", string(f.Role))
	check("education", f.Education)
	check("motivation", f.Motivation)
	check("availability", f.Availability)
	return out
}

func NormalizeRole(r Role) Role {
	return Role(strings.ToLower(strings.TrimSpace(string(r))))
}

func (r Role) Valid() bool {
	switch r {
	case RoleIntern, RoleVolunteer, RoleTeacher, RoleCoordinator, RoleOther:
		return true
	default:
		return false
	}
}

func NormalizeStatus(s Status) Status {
	return Status(strings.ToLower(strings.TrimSpace(string(s))))
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusContacted:
		return true
	default:
		return false
	}
}

// Clone returns a copy that shares no pointers with a.
func (a Application) Clone() Application {
	if a.ResumeReference != nil {
		ref := *a.ResumeReference
		a.ResumeReference = &ref
	}
	return a
}
