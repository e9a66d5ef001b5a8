package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arturoeanton/redcross-volunteers/internal/domain"
	"github.com/arturoeanton/redcross-volunteers/internal/port"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const volunteerColumns = `id, matricule, first_name, last_name, email, phone, skills, availability, status, created_at, updated_at`

func scanVolunteer(row interface{ Scan(...any) error }) (*domain.Volunteer, error) {
	var v domain.Volunteer
	var skills []string
	if err := row.Scan(
		&v.ID, &v.Matricule, &v.FirstName, &v.LastName, &v.Email, &v.Phone,
		pq.Array(&skills), &v.Availability, &v.Status, &v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		return nil, err
	}
	v.Skills = skills
	return &v, nil
}

// GetVolunteerByMatricule retrieves a volunteer by registration code.
func (s *PostgresStore) GetVolunteerByMatricule(ctx context.Context, matricule string) (*domain.Volunteer, error) {
	query := `SELECT ` + volunteerColumns + ` FROM volunteers WHERE matricule = $1`

	v, err := scanVolunteer(s.db.QueryRowContext(ctx, query, matricule))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrVolunteerNotFound
	}
	if err != nil {
		return nil, classify(fmt.Errorf("get volunteer by matricule: %w", err))
	}
	return v, nil
}

// GetVolunteerByID retrieves a volunteer by ID.
func (s *PostgresStore) GetVolunteerByID(ctx context.Context, id string) (*domain.Volunteer, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, port.ErrVolunteerNotFound
	}
	query := `SELECT ` + volunteerColumns + ` FROM volunteers WHERE id = $1`

	v, err := scanVolunteer(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrVolunteerNotFound
	}
	if err != nil {
		return nil, classify(fmt.Errorf("get volunteer: %w", err))
	}
	return v, nil
}

// CreateVolunteer inserts a new volunteer.
func (s *PostgresStore) CreateVolunteer(ctx context.Context, in *domain.Volunteer) (*domain.Volunteer, error) {
	query := `INSERT INTO volunteers (matricule, first_name, last_name, email, phone, skills, availability, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING ` + volunteerColumns

	v, err := scanVolunteer(s.db.QueryRowContext(ctx, query,
		in.Matricule, in.FirstName, in.LastName, in.Email, in.Phone,
		pq.Array(in.Skills), in.Availability, in.Status,
	))
	if isUniqueViolation(err) {
		return nil, port.ErrDuplicateMatricule
	}
	if err != nil {
		return nil, classify(fmt.Errorf("create volunteer: %w", err))
	}
	return v, nil
}

// UpdateVolunteerStatus sets the eligibility status of a volunteer.
func (s *PostgresStore) UpdateVolunteerStatus(ctx context.Context, id string, status domain.VolunteerStatus) error {
	if _, err := uuid.Parse(id); err != nil {
		return port.ErrVolunteerNotFound
	}
	query := `UPDATE volunteers SET status = $1, updated_at = NOW() WHERE id = $2`
	res, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return classify(fmt.Errorf("update volunteer status: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return port.ErrVolunteerNotFound
	}
	return nil
}

// ListVolunteers returns volunteers, optionally filtered by status, newest first.
func (s *PostgresStore) ListVolunteers(ctx context.Context, status domain.VolunteerStatus) ([]domain.Volunteer, error) {
	query := `SELECT ` + volunteerColumns + ` FROM volunteers`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("list volunteers: %w", err))
	}
	defer rows.Close()

	var volunteers []domain.Volunteer
	for rows.Next() {
		v, err := scanVolunteer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan volunteer: %w", err)
		}
		volunteers = append(volunteers, *v)
	}
	return volunteers, rows.Err()
}
