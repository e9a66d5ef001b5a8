package store

import (
	"context"
	"fmt"

	"github.com/arturoeanton/redcross-volunteers/internal/domain"
)

const donationColumns = `id, donor_name, donor_email, amount_cents, currency, message, status, created_at`

// CreateDonation records a pledge.
func (s *PostgresStore) CreateDonation(ctx context.Context, in *domain.Donation) (*domain.Donation, error) {
	query := `INSERT INTO donations (donor_name, donor_email, amount_cents, currency, message, status)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING ` + donationColumns

	var d domain.Donation
	err := s.db.QueryRowContext(ctx, query,
		in.DonorName, in.DonorEmail, in.AmountCents, in.Currency, in.Message, in.Status,
	).Scan(&d.ID, &d.DonorName, &d.DonorEmail, &d.AmountCents, &d.Currency, &d.Message, &d.Status, &d.CreatedAt)
	if err != nil {
		return nil, classify(fmt.Errorf("create donation: %w", err))
	}
	return &d, nil
}

// ListDonations returns the most recent pledges.
func (s *PostgresStore) ListDonations(ctx context.Context, limit int) ([]domain.Donation, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + donationColumns + ` FROM donations ORDER BY created_at DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, classify(fmt.Errorf("list donations: %w", err))
	}
	defer rows.Close()

	var out []domain.Donation
	for rows.Next() {
		var d domain.Donation
		if err := rows.Scan(&d.ID, &d.DonorName, &d.DonorEmail, &d.AmountCents, &d.Currency,
			&d.Message, &d.Status, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
