package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/domain"
)

// Memory keeps records in a map keyed by id plus a slice that remembers
// insertion order.
type Memory struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Application
	order []string
}

func NewMemory() *Memory {
	return &Memory{byID: make(map[string]*domain.Application)}
}

func (m *Memory) Append(_ context.Context, app domain.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[app.ID]; ok {
		return fmt.Errorf("append %s: duplicate id", app.ID)
	}
	rec := app.Clone()
	m.byID[app.ID] = &rec
	m.order = append(m.order, app.ID)
	return nil
}

func (m *Memory) List(_ context.Context) ([]domain.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Application, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id].Clone())
	}
	return out, nil
}

func (m *Memory) Get(_ context.Context, id string) (domain.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.byID[id]
	if !ok {
		return domain.Application{}, domain.ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *Memory) UpdateStatus(_ context.Context, id string, status domain.Status) (domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[id]
	if !ok {
		return domain.Application{}, domain.ErrNotFound
	}
	rec.Status = status
	return rec.Clone(), nil
}
