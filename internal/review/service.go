// Package review is the admin side: listing applications and moving them
// between review states.
package review

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/domain"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/metrics"
	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/store"
)

type Service struct {
	store store.Store
	log   logrus.FieldLogger
}

func NewService(st store.Store, log logrus.FieldLogger) *Service {
	return &Service{store: st, log: log}
}

func (s *Service) List(ctx context.Context) ([]domain.Application, error) {
	return s.store.List(ctx)
}

// Search lists the applications matching q.
func (s *Service) Search(ctx context.Context, q Query) ([]domain.Application, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(all, q), nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Application, error) {
	return s.store.Get(ctx, id)
}

// UpdateStatus sets the status of one application. Any of the four states
// may follow any other; values outside them are rejected with
// domain.ErrInvalidStatus before the store is touched.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Application, error) {
	next := domain.NormalizeStatus(status)
	if !next.Valid() {
		return domain.Application{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, string(status))
	}
	updated, err := s.store.UpdateStatus(ctx, id, next)
	if err != nil {
		return domain.Application{}, err
	}
	metrics.RecordStatusChange(string(next))
	s.log.WithFields(logrus.Fields{"id": id, "status": next}).Info("application status updated")
	return updated, nil
}

// Stats counts applications per status.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Contacted int `json:"contacted"`
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Count(all), nil
}

func Count(apps []domain.Application) Stats {
	st := Stats{Total: len(apps)}
	for _, app := range apps {
		switch app.Status {
		case domain.StatusPending:
			st.Pending++
		case domain.StatusApproved:
			st.Approved++
		case domain.StatusRejected:
			st.Rejected++
		case domain.StatusContacted:
			st.Contacted++
		}
	}
	return st
}
