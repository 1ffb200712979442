// Package intake turns applicant submissions into stored applications.
package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/attachments"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/domain"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/metrics"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/store"
)

// Files is the attachment storage the service writes résumés to.
type Files interface {
	Put(ctx context.Context, up attachments.Upload) (attachments.Stored, error)
	Remove(ctx context.Context, key string) error
}

type Service struct {
	store store.Store
	files Files
	log   logrus.FieldLogger

	now   func() time.Time
	newID func() string
}

func NewService(st store.Store, files Files, log logrus.FieldLogger) *Service {
	return &Service{
		store: st,
		files: files,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return ulid.Make().String() },
	}
}

// Submit stores a new application. The attachment, if any, is saved first;
// the record is appended only after that succeeds, and the saved file is
// removed again if the append fails. Status always starts as pending.
// Text is stored as submitted apart from surrounding whitespace.
func (s *Service) Submit(ctx context.Context, f domain.Fields, up *attachments.Upload) (domain.Application, error) {
	app := domain.Application{
		ID:           s.newID(),
		FirstName:    strings.TrimSpace(f.FirstName),
		LastName:     strings.TrimSpace(f.LastName),
		Email:        strings.TrimSpace(f.Email),
		Phone:        strings.TrimSpace(f.Phone),
		Role:         domain.NormalizeRole(f.Role),
		Education:    strings.TrimSpace(f.Education),
		Motivation:   strings.TrimSpace(f.Motivation),
		Availability: strings.TrimSpace(f.Availability),
		Experience:   strings.TrimSpace(f.Experience),
		Skills:       strings.TrimSpace(f.Skills),
		AppliedAt:    s.now(),
		Status:       domain.StatusPending,
	}

	var stored *attachments.Stored
	if up != nil {
		if s.files == nil {
			metrics.RecordSubmission("rejected")
			return domain.Application{}, domain.NewSubmissionError("attachments are not accepted", nil)
		}
		st, err := s.files.Put(ctx, *up)
		if err != nil {
			metrics.RecordSubmission("rejected")
			return domain.Application{}, domain.NewSubmissionError("attachment could not be saved", err)
		}
		stored = &st
		ref := st.Reference
		app.ResumeReference = &ref
	}

	if err := s.store.Append(ctx, app); err != nil {
		if stored != nil {
			// release with a fresh context: the request one may be what failed
			if rerr := s.files.Remove(context.WithoutCancel(ctx), stored.Key); rerr != nil {
				s.log.WithError(rerr).WithField("key", stored.Key).Error("release attachment after failed append")
			}
		}
		metrics.RecordSubmission("failed")
		return domain.Application{}, fmt.Errorf("append application: %w", err)
	}

	if stored != nil {
		metrics.RecordAttachment(stored.Size)
	}
	metrics.RecordSubmission("created")
	s.log.WithFields(logrus.Fields{
		"id":     app.ID,
		"role":   app.Role,
		"resume": stored != nil,
	}).Info("application submitted")
	return app.Clone(), nil
}
