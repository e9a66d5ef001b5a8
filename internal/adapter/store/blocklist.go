package store

import (
	"context"
	"fmt"

	"github.com/arturoeanton/redcross-volunteers/internal/domain"
	"github.com/arturoeanton/redcross-volunteers/internal/port"
)

// IsBlocked reports whether ip is on the blocklist.
func (s *PostgresStore) IsBlocked(ctx context.Context, ip string) (bool, error) {
	var blocked bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM blocked_ips WHERE ip = $1)`, ip).Scan(&blocked)
	if err != nil {
		return false, classify(fmt.Errorf("check blocklist: %w", err))
	}
	return blocked, nil
}

// BlockIP adds ip to the blocklist, or updates the reason if it is already there.
func (s *PostgresStore) BlockIP(ctx context.Context, ip, reason string) (*domain.BlockedIP, error) {
	query := `INSERT INTO blocked_ips (ip, reason) VALUES ($1, $2)
	          ON CONFLICT (ip) DO UPDATE SET reason = EXCLUDED.reason
	          RETURNING ip, reason, created_at`

	var b domain.BlockedIP
	if err := s.db.QueryRowContext(ctx, query, ip, reason).Scan(&b.IP, &b.Reason, &b.CreatedAt); err != nil {
		return nil, classify(fmt.Errorf("block ip: %w", err))
	}
	return &b, nil
}

// UnblockIP removes ip from the blocklist.
func (s *PostgresStore) UnblockIP(ctx context.Context, ip string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blocked_ips WHERE ip = $1`, ip)
	if err != nil {
		return classify(fmt.Errorf("unblock ip: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return port.ErrBlockedIPNotFound
	}
	return nil
}

// ListBlockedIPs returns the blocklist, most recent first.
func (s *PostgresStore) ListBlockedIPs(ctx context.Context) ([]domain.BlockedIP, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ip, reason, created_at FROM blocked_ips ORDER BY created_at DESC`)
	if err != nil {
		return nil, classify(fmt.Errorf("list blocked ips: %w", err))
	}
	defer rows.Close()

	var out []domain.BlockedIP
	for rows.Next() {
		var b domain.BlockedIP
		if err := rows.Scan(&b.IP, &b.Reason, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan blocked ip: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
