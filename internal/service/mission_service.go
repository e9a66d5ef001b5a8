package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arturoeanton/redcross-volunteers/internal/domain"
	"github.com/arturoeanton/redcross-volunteers/internal/port"
	"go.uber.org/zap"
)

// CreateMissionRequest is the staff form for a new mission.
type CreateMissionRequest struct {
	Title           string    `json:"title"            validate:"required,max=200"`
	Description     string    `json:"description"      validate:"max=5000"`
	Location        string    `json:"location"         validate:"max=200"`
	StartAt         time.Time `json:"start_at"         validate:"required"`
	EndAt           time.Time `json:"end_at"           validate:"required,gtfield=StartAt"`
	MaxParticipants *int      `json:"max_participants" validate:"omitempty,min=0"`
}

// MissionService manages missions.
type MissionService struct {
	store  port.MissionStore
	logger *zap.Logger
}

// NewMissionService creates a new mission service.
func NewMissionService(store port.MissionStore, logger *zap.Logger) *MissionService {
	return &MissionService{store: store, logger: logger.Named("missions")}
}

// Create adds a Planned mission.
func (s *MissionService) Create(ctx context.Context, req CreateMissionRequest) (*domain.Mission, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := checkInput(req); err != nil {
		return nil, err
	}

	m, err := s.store.CreateMission(ctx, &domain.Mission{
		Title:           req.Title,
		Description:     strings.TrimSpace(req.Description),
		Location:        strings.TrimSpace(req.Location),
		Status:          domain.MissionPlanned,
		StartAt:         req.StartAt,
		EndAt:           req.EndAt,
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		return nil, fmt.Errorf("create mission: %w", err)
	}
	s.logger.Info("mission created", zap.String("mission_id", m.ID), zap.String("title", m.Title))
	return m, nil
}

// Get returns a mission with its participants.
func (s *MissionService) Get(ctx context.Context, id string) (*domain.Mission, error) {
	return s.store.GetMission(ctx, id)
}

// ListOpen returns missions accepting registrations.
func (s *MissionService) ListOpen(ctx context.Context) ([]domain.Mission, error) {
	return s.store.ListMissions(ctx, domain.MissionPlanned, domain.MissionInProgress)
}

// List returns missions in the given status, or all of them when status is empty.
func (s *MissionService) List(ctx context.Context, status string) ([]domain.Mission, error) {
	if status == "" {
		return s.store.ListMissions(ctx)
	}
	st := domain.MissionStatus(status)
	if !st.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", port.ErrInvalidInput, status)
	}
	return s.store.ListMissions(ctx, st)
}

// SetStatus moves a mission through its lifecycle.
func (s *MissionService) SetStatus(ctx context.Context, id, status string) error {
	st := domain.MissionStatus(status)
	if !st.Valid() {
		return fmt.Errorf("%w: unknown status %q", port.ErrInvalidInput, status)
	}
	if err := s.store.UpdateMissionStatus(ctx, id, st); err != nil {
		return err
	}
	s.logger.Info("mission status changed", zap.String("mission_id", id), zap.String("status", status))
	return nil
}
