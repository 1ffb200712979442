package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Sumit-ops357/NGO-Foundation-Project/internal/domain"
)

// SQLite is a Store backed by the applications table.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

const selectApplication = `
SELECT id, first_name, last_name, email, phone, role, education, motivation,
       availability, experience, skills, resume_ref, applied_at, status
FROM applications`

func (s *SQLite) Append(ctx context.Context, app domain.Application) error {
	var ref sql.NullString
	if app.ResumeReference != nil {
		ref = sql.NullString{String: *app.ResumeReference, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO applications (id, first_name, last_name, email, phone, role, education, motivation,
                          availability, experience, skills, resume_ref, applied_at, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		app.ID, app.FirstName, app.LastName, app.Email, app.Phone, string(app.Role),
		app.Education, app.Motivation, app.Availability, app.Experience, app.Skills,
		ref, app.AppliedAt.UTC().Format(time.RFC3339Nano), string(app.Status),
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *SQLite) List(ctx context.Context) ([]domain.Application, error) {
	rows, err := s.db.QueryContext(ctx, selectApplication+` ORDER BY seq ASC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLite) Get(ctx context.Context, id string) (domain.Application, error) {
	row := s.db.QueryRowContext(ctx, selectApplication+` WHERE id = ? LIMIT 1;`, id)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Application{}, domain.ErrNotFound
	}
	return app, err
}

func (s *SQLite) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Application, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Application{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE applications SET status = ? WHERE id = ?;`, string(status), id)
	if err != nil {
		return domain.Application{}, fmt.Errorf("update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Application{}, domain.ErrNotFound
	}

	app, err := scanApplication(tx.QueryRowContext(ctx, selectApplication+` WHERE id = ? LIMIT 1;`, id))
	if err != nil {
		return domain.Application{}, err
	}
	return app, tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanApplication(row scanner) (domain.Application, error) {
	var (
		app       domain.Application
		role      string
		status    string
		ref       sql.NullString
		appliedAt string
	)
	if err := row.Scan(
		&app.ID,
		&app.FirstName,
		&app.LastName,
		&app.Email,
		&app.Phone,
		&role,
		&app.Education,
		&app.Motivation,
		&app.Availability,
		&app.Experience,
		&app.Skills,
		&ref,
		&appliedAt,
		&status,
	); err != nil {
		return domain.Application{}, err
	}
	app.Role = domain.Role(role)
	app.Status = domain.Status(status)
	if ref.Valid {
		r := ref.String
		app.ResumeReference = &r
	}
	t, err := time.Parse(time.RFC3339Nano, appliedAt)
	if err != nil {
		return domain.Application{}, fmt.Errorf("parse applied_at %q: %w", appliedAt, err)
	}
	app.AppliedAt = t
	return app, nil
}
