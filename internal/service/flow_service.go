package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arturoeanton/redcross-volunteers/internal/domain"
	"github.com/arturoeanton/redcross-volunteers/internal/port"
	"go.uber.org/zap"
)

// Flow names.
const (
	FlowMissionRecommendation = "mission_recommendation"
	FlowMissionDescription    = "mission_description"
	FlowVolunteerFAQ          = "volunteer_faq"
)

const defaultFlowTimeout = 2 * time.Minute

// FlowError is returned when the model side of a flow fails.
type FlowError struct {
	Flow string
	Err  error
}

func (e *FlowError) Error() string { return fmt.Sprintf("run flow %s: %v", e.Flow, e.Err) }
func (e *FlowError) Unwrap() error { return e.Err }

// FlowService runs AI flows with data pulled from the stores.
type FlowService struct {
	engine     *port.FlowEngine
	volunteers port.VolunteerStore
	missions   port.MissionStore
	logger     *zap.Logger
	timeout    time.Duration
}

// NewFlowService creates a new flow service with the given engine.
func NewFlowService(engine *port.FlowEngine, volunteers port.VolunteerStore, missions port.MissionStore, logger *zap.Logger) *FlowService {
	return &FlowService{
		engine:     engine,
		volunteers: volunteers,
		missions:   missions,
		logger:     logger.Named("flows"),
		timeout:    defaultFlowTimeout,
	}
}

// RecommendRequest asks for missions suited to a volunteer.
type RecommendRequest struct {
	Matricule string `json:"matricule" validate:"required,max=64"`
	Question  string `json:"question"  validate:"max=1000"`
	Language  string `json:"language"  validate:"omitempty,bcp47_language_tag"`
}

// FAQRequest is a free-form question from a volunteer or visitor.
type FAQRequest struct {
	Question string `json:"question" validate:"required,max=1000"`
	Language string `json:"language" validate:"omitempty,bcp47_language_tag"`
}

// DescribeRequest turns staff notes into a public mission description.
type DescribeRequest struct {
	Notes    string `json:"notes"    validate:"required,max=5000"`
	Language string `json:"language" validate:"omitempty,bcp47_language_tag"`
}

// Recommend ranks open missions with free seats for the volunteer.
func (s *FlowService) Recommend(ctx context.Context, req RecommendRequest) (*port.FlowOutput, error) {
	req.Matricule = strings.TrimSpace(req.Matricule)
	if err := checkInput(req); err != nil {
		return nil, err
	}

	v, err := s.volunteers.GetVolunteerByMatricule(ctx, req.Matricule)
	if err != nil {
		return nil, err
	}

	missions, err := s.openMissions(ctx, true)
	if err != nil {
		return nil, err
	}

	return s.run(ctx, FlowMissionRecommendation, port.FlowInput{
		Question: req.Question,
		Language: req.Language,
		Volunteer: &port.VolunteerProfile{
			Name:         v.FullName(),
			Skills:       v.Skills,
			Availability: v.Availability,
		},
		Missions: missions,
	})
}

// FAQ answers a question using the current open missions as context.
func (s *FlowService) FAQ(ctx context.Context, req FAQRequest) (*port.FlowOutput, error) {
	if err := checkInput(req); err != nil {
		return nil, err
	}

	missions, err := s.openMissions(ctx, false)
	if err != nil {
		return nil, err
	}

	return s.run(ctx, FlowVolunteerFAQ, port.FlowInput{
		Question: req.Question,
		Language: req.Language,
		Missions: missions,
	})
}

// DescribeMission drafts a mission description from staff notes.
func (s *FlowService) DescribeMission(ctx context.Context, req DescribeRequest) (*port.FlowOutput, error) {
	if err := checkInput(req); err != nil {
		return nil, err
	}
	return s.run(ctx, FlowMissionDescription, port.FlowInput{Notes: req.Notes, Language: req.Language})
}

// ListFlows returns the available flow names.
func (s *FlowService) ListFlows() []string {
	return s.engine.AvailableFlows()
}

func (s *FlowService) run(ctx context.Context, name string, in port.FlowInput) (*port.FlowOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	out, err := s.engine.Run(ctx, name, in)
	if errors.Is(err, port.ErrFlowNotFound) {
		return nil, fmt.Errorf("run flow %s: %w", name, err)
	}
	if err != nil {
		return nil, &FlowError{Flow: name, Err: err}
	}
	s.logger.Info("flow completed",
		zap.String("flow", name), zap.String("model", out.Model), zap.Duration("took", time.Since(start)))
	return out, nil
}

func (s *FlowService) openMissions(ctx context.Context, withSeats bool) ([]port.MissionSummary, error) {
	missions, err := s.missions.ListMissions(ctx, domain.MissionPlanned, domain.MissionInProgress)
	if err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}

	out := make([]port.MissionSummary, 0, len(missions))
	for i := range missions {
		m := &missions[i]
		if withSeats && m.IsFull() {
			continue
		}
		out = append(out, port.MissionSummary{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			Location:    m.Location,
			StartAt:     m.StartAt.Format(time.RFC3339),
			Remaining:   m.Remaining(),
		})
	}
	return out, nil
}
