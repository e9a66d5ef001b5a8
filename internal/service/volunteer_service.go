package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arturoeanton/redcross-volunteers/internal/domain"
	"github.com/arturoeanton/redcross-volunteers/internal/port"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const matriculeAttempts = 3

// ApplyRequest is a volunteer application form.
type ApplyRequest struct {
	FirstName    string   `json:"first_name"   validate:"required,max=100"`
	LastName     string   `json:"last_name"    validate:"max=100"`
	Email        string   `json:"email"        validate:"required,email"`
	Phone        string   `json:"phone"        validate:"omitempty,max=30"`
	Skills       []string `json:"skills"       validate:"max=20,dive,max=50"`
	Availability string   `json:"availability" validate:"max=500"`
}

// VolunteerService manages volunteer applications and eligibility.
type VolunteerService struct {
	store  port.VolunteerStore
	logger *zap.Logger
	now    func() time.Time
}

// NewVolunteerService creates a new volunteer service.
func NewVolunteerService(store port.VolunteerStore, logger *zap.Logger) *VolunteerService {
	return &VolunteerService{store: store, logger: logger.Named("volunteers"), now: time.Now}
}

// Apply records an application. The volunteer starts Pending and receives a
// matricule to use when joining missions once an administrator activates them.
func (s *VolunteerService) Apply(ctx context.Context, req ApplyRequest) (*domain.Volunteer, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	if err := checkInput(req); err != nil {
		return nil, err
	}

	skills := make([]string, 0, len(req.Skills))
	for _, sk := range req.Skills {
		if sk = strings.TrimSpace(sk); sk != "" {
			skills = append(skills, sk)
		}
	}

	in := &domain.Volunteer{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		Skills:       skills,
		Availability: strings.TrimSpace(req.Availability),
		Status:       domain.VolunteerPending,
	}

	for attempt := 0; attempt < matriculeAttempts; attempt++ {
		in.Matricule = newMatricule(s.now())
		v, err := s.store.CreateVolunteer(ctx, in)
		if errors.Is(err, port.ErrDuplicateMatricule) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create volunteer: %w", err)
		}
		s.logger.Info("volunteer application received", zap.String("volunteer_id", v.ID), zap.String("matricule", v.Matricule))
		return v, nil
	}
	return nil, fmt.Errorf("create volunteer: %w", port.ErrDuplicateMatricule)
}

// newMatricule returns CRV-<year>-<6 hex digits>.
func newMatricule(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("CRV-%d-%s", now.Year(), strings.ToUpper(id[:6]))
}

// Get returns a volunteer by ID.
func (s *VolunteerService) Get(ctx context.Context, id string) (*domain.Volunteer, error) {
	return s.store.GetVolunteerByID(ctx, id)
}

// List returns volunteers, optionally filtered by status.
func (s *VolunteerService) List(ctx context.Context, status string) ([]domain.Volunteer, error) {
	st := domain.VolunteerStatus(status)
	if st != "" && !st.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", port.ErrInvalidInput, status)
	}
	return s.store.ListVolunteers(ctx, st)
}

// SetStatus is the administrator decision on an application.
func (s *VolunteerService) SetStatus(ctx context.Context, id, status string) error {
	st := domain.VolunteerStatus(status)
	if !st.Valid() {
		return fmt.Errorf("%w: unknown status %q", port.ErrInvalidInput, status)
	}
	if err := s.store.UpdateVolunteerStatus(ctx, id, st); err != nil {
		return err
	}
	s.logger.Info("volunteer status changed", zap.String("volunteer_id", id), zap.String("status", status))
	return nil
}
