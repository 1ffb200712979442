package httpapi

import (
	"github.com/sirupsen/logrus"

	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/attachments"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/events"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/intake"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/review"
)

type Deps struct {
	Intake *intake.Service
	Review *review.Service

	// Files serves stored résumés; nil disables /images.
	Files *attachments.Manager

	Hub *events.Hub
	Log logrus.FieldLogger

	// SubmitLimiter throttles POST /api/register per client; nil disables it.
	SubmitLimiter *KeyLimiter

	// MaxUploadBytes bounds the attachment; the request body may be a
	// little larger to fit the text fields.
	MaxUploadBytes int64
	CorsOrigins    []string
}
