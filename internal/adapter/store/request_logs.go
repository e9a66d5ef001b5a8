package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/arturoeanton/redcross-volunteers/internal/domain"
)

const (
	defaultRequestLogLimit = 100
	maxRequestLogLimit     = 1000
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// WriteRequestLog appends one audit row.
func (s *PostgresStore) WriteRequestLog(ctx context.Context, e *domain.RequestLog) error {
	query, args, err := psql.Insert("request_logs").
		Columns("ip", "method", "path", "user_agent", "status", "is_threat", "duration_ms", "created_at").
		Values(e.IP, e.Method, e.Path, e.UserAgent, e.Status, e.IsThreat, e.DurationMS, e.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&e.ID); err != nil {
		return classify(fmt.Errorf("write request log: %w", err))
	}
	return nil
}

// ListRequestLogs returns audit rows matching filter, newest first.
func (s *PostgresStore) ListRequestLogs(ctx context.Context, filter domain.RequestLogFilter) ([]domain.RequestLog, error) {
	query, args, err := requestLogQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("list request logs: %w", err))
	}
	defer rows.Close()

	var out []domain.RequestLog
	for rows.Next() {
		var e domain.RequestLog
		if err := rows.Scan(&e.ID, &e.IP, &e.Method, &e.Path, &e.UserAgent, &e.Status,
			&e.IsThreat, &e.DurationMS, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan request log: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func requestLogQuery(filter domain.RequestLogFilter) sq.SelectBuilder {
	q := psql.Select("id", "ip", "method", "path", "user_agent", "status", "is_threat", "duration_ms", "created_at").
		From("request_logs")

	if filter.IP != "" {
		q = q.Where(sq.Eq{"ip": filter.IP})
	}
	if filter.ThreatOnly {
		q = q.Where(sq.Eq{"is_threat": true})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultRequestLogLimit
	}
	if limit > maxRequestLogLimit {
		limit = maxRequestLogLimit
	}
	return q.OrderBy("created_at DESC").Limit(uint64(limit))
}
