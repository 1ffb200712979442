package store

import (
	"context"

	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/domain"
)

// Store owns every application record for the lifetime of the process.
// Implementations hand out copies; callers never hold a writable reference.
type Store interface {
	// Append adds a new record. The id must not already exist.
	Append(ctx context.Context, app domain.Application) error
	// List returns all records in insertion order.
	List(ctx context.Context) ([]domain.Application, error)
	// Get returns the record with the given id or domain.ErrNotFound.
	Get(ctx context.Context, id string) (domain.Application, error)
	// UpdateStatus replaces the status of one record and returns the result.
	// Unknown ids yield domain.ErrNotFound and leave the store untouched.
	UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Application, error)
}
