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

const missionSelect = `SELECT m.id, m.title, m.description, m.location, m.status, m.start_at, m.end_at,
	       m.max_participants, m.created_at, m.updated_at,
	       ARRAY(SELECT p.volunteer_id::text FROM mission_participants p
	             WHERE p.mission_id = m.id ORDER BY p.joined_at)
	FROM missions m`

func scanMission(row interface{ Scan(...any) error }) (*domain.Mission, error) {
	var m domain.Mission
	var maxParticipants sql.NullInt64
	var participants []string
	if err := row.Scan(
		&m.ID, &m.Title, &m.Description, &m.Location, &m.Status, &m.StartAt, &m.EndAt,
		&maxParticipants, &m.CreatedAt, &m.UpdatedAt, pq.Array(&participants),
	); err != nil {
		return nil, err
	}
	if maxParticipants.Valid {
		n := int(maxParticipants.Int64)
		m.MaxParticipants = &n
	}
	if participants == nil {
		participants = []string{}
	}
	m.Participants = participants
	return &m, nil
}

func getMission(ctx context.Context, q querier, id string) (*domain.Mission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, port.ErrMissionNotFound
	}
	m, err := scanMission(q.QueryRowContext(ctx, missionSelect+` WHERE m.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrMissionNotFound
	}
	if err != nil {
		return nil, classify(fmt.Errorf("get mission: %w", err))
	}
	return m, nil
}

// CreateMission inserts a new mission.
func (s *PostgresStore) CreateMission(ctx context.Context, in *domain.Mission) (*domain.Mission, error) {
	query := `INSERT INTO missions (title, description, location, status, start_at, end_at, max_participants)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`

	var maxParticipants sql.NullInt64
	if in.MaxParticipants != nil {
		maxParticipants = sql.NullInt64{Int64: int64(*in.MaxParticipants), Valid: true}
	}

	var id string
	err := s.db.QueryRowContext(ctx, query,
		in.Title, in.Description, in.Location, in.Status, in.StartAt, in.EndAt, maxParticipants,
	).Scan(&id)
	if err != nil {
		return nil, classify(fmt.Errorf("create mission: %w", err))
	}
	return getMission(ctx, s.db, id)
}

// GetMission returns a mission with its participant set.
func (s *PostgresStore) GetMission(ctx context.Context, id string) (*domain.Mission, error) {
	return getMission(ctx, s.db, id)
}

// ListMissions returns missions ordered by start date, optionally filtered by status.
func (s *PostgresStore) ListMissions(ctx context.Context, statuses ...domain.MissionStatus) ([]domain.Mission, error) {
	query := missionSelect
	args := []any{}
	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, st := range statuses {
			values[i] = string(st)
		}
		query += ` WHERE m.status = ANY($1)`
		args = append(args, pq.Array(values))
	}
	query += ` ORDER BY m.start_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("list missions: %w", err))
	}
	defer rows.Close()

	var missions []domain.Mission
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mission: %w", err)
		}
		missions = append(missions, *m)
	}
	return missions, rows.Err()
}

// UpdateMissionStatus sets the status of a mission.
func (s *PostgresStore) UpdateMissionStatus(ctx context.Context, id string, status domain.MissionStatus) error {
	if _, err := uuid.Parse(id); err != nil {
		return port.ErrMissionNotFound
	}
	query := `UPDATE missions SET status = $1, updated_at = NOW() WHERE id = $2`
	res, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return classify(fmt.Errorf("update mission status: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return port.ErrMissionNotFound
	}
	return nil
}

// WithMissionLock implements port.MissionStore. The mission row is locked with
// SELECT ... FOR UPDATE for the duration of fn, which serializes concurrent
// registrations on the same mission.
func (s *PostgresStore) WithMissionLock(ctx context.Context, missionID string, fn func(ctx context.Context, m *domain.Mission, tx port.MissionTx) error) error {
	if _, err := uuid.Parse(missionID); err != nil {
		return port.ErrMissionNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM missions WHERE id = $1 FOR UPDATE`, missionID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return port.ErrMissionNotFound
	}
	if err != nil {
		return classify(fmt.Errorf("lock mission: %w", err))
	}

	// Load after the lock is held: under READ COMMITTED this statement gets a
	// fresh snapshot that includes the previous holder's participants.
	m, err := getMission(ctx, tx, missionID)
	if err != nil {
		return err
	}

	if err := fn(ctx, m, &missionTx{tx: tx, missionID: missionID}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("commit: %w", err))
	}
	return nil
}

type missionTx struct {
	tx        *sql.Tx
	missionID string
}

// AddParticipant inserts into the participant set; the (mission_id, volunteer_id)
// primary key rejects duplicates.
func (t *missionTx) AddParticipant(ctx context.Context, volunteerID string) error {
	query := `INSERT INTO mission_participants (mission_id, volunteer_id) VALUES ($1, $2)`
	_, err := t.tx.ExecContext(ctx, query, t.missionID, volunteerID)
	if isUniqueViolation(err) {
		return port.ErrAlreadyRegistered
	}
	if err != nil {
		return classify(fmt.Errorf("add participant: %w", err))
	}
	return nil
}
