package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/arturoeanton/redcross-volunteers/internal/domain"
	"github.com/arturoeanton/redcross-volunteers/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var matriculePattern = regexp.MustCompile(`^CRV-2026-[0-9A-F]{6}$`)

func TestVolunteerService_Apply(t *testing.T) {
	store := newMemStore()
	svc := NewVolunteerService(store, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) }

	v, err := svc.Apply(context.Background(), ApplyRequest{
		FirstName: " Amélie ",
		LastName:  "Durand",
		Email:     "Amelie.Durand@Example.org",
		Skills:    []string{"PSC1", " ", "conduite"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.VolunteerPending, v.Status)
	assert.Regexp(t, matriculePattern, v.Matricule)
	assert.Equal(t, "Amélie", v.FirstName)
	assert.Equal(t, "amelie.durand@example.org", v.Email)
	assert.Equal(t, []string{"PSC1", "conduite"}, v.Skills)
}

func TestVolunteerService_ApplyRetriesMatriculeCollision(t *testing.T) {
	store := newMemStore()
	store.createErrs = []error{port.ErrDuplicateMatricule}
	svc := NewVolunteerService(store, zap.NewNop())

	v, err := svc.Apply(context.Background(), ApplyRequest{FirstName: "Jo", Email: "jo@example.org"})
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)

	store.createErrs = []error{port.ErrDuplicateMatricule, port.ErrDuplicateMatricule, port.ErrDuplicateMatricule}
	_, err = svc.Apply(context.Background(), ApplyRequest{FirstName: "Jo", Email: "jo@example.org"})
	assert.ErrorIs(t, err, port.ErrDuplicateMatricule)
}

func TestVolunteerService_ApplyValidation(t *testing.T) {
	svc := NewVolunteerService(newMemStore(), zap.NewNop())

	_, err := svc.Apply(context.Background(), ApplyRequest{FirstName: "Jo", Email: "not-an-email"})
	require.ErrorIs(t, err, port.ErrInvalidInput)
	assert.Contains(t, err.Error(), "Email: email")

	_, err = svc.Apply(context.Background(), ApplyRequest{Email: "jo@example.org"})
	assert.ErrorIs(t, err, port.ErrInvalidInput)
}

func TestVolunteerService_SetStatusEnablesRegistration(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	volunteers := NewVolunteerService(store, zap.NewNop())
	registration := NewRegistrationService(store, zap.NewNop())
	m := store.addMission("Maraude", domain.MissionPlanned, nil)

	v, err := volunteers.Apply(ctx, ApplyRequest{FirstName: "Jo", Email: "jo@example.org"})
	require.NoError(t, err)

	res, err := registration.Register(ctx, m.ID, v.Matricule)
	require.NoError(t, err)
	assert.Equal(t, KindIneligible, res.Kind)

	require.NoError(t, volunteers.SetStatus(ctx, v.ID, "active"))

	res, err = registration.Register(ctx, m.ID, v.Matricule)
	require.NoError(t, err)
	assert.True(t, res.Success)

	assert.ErrorIs(t, volunteers.SetStatus(ctx, v.ID, "banned"), port.ErrInvalidInput)
	assert.ErrorIs(t, volunteers.SetStatus(ctx, "vol-404", "active"), port.ErrVolunteerNotFound)
}

func TestVolunteerService_List(t *testing.T) {
	store := newMemStore()
	store.addVolunteer("A", domain.VolunteerActive)
	store.addVolunteer("B", domain.VolunteerPending)
	svc := NewVolunteerService(store, zap.NewNop())

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.List(context.Background(), "pending")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "B", pending[0].Matricule)

	_, err = svc.List(context.Background(), "unknown")
	assert.ErrorIs(t, err, port.ErrInvalidInput)
}

func TestMissionService(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewMissionService(store, zap.NewNop())
	start := time.Date(2026, 12, 5, 8, 0, 0, 0, time.UTC)

	m, err := svc.Create(ctx, CreateMissionRequest{
		Title:           "Collecte de sang",
		StartAt:         start,
		EndAt:           start.Add(6 * time.Hour),
		MaxParticipants: intPtr(8),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MissionPlanned, m.Status)
	assert.Equal(t, 8, *m.MaxParticipants)

	_, err = svc.Create(ctx, CreateMissionRequest{Title: "Bad dates", StartAt: start, EndAt: start.Add(-time.Hour)})
	assert.ErrorIs(t, err, port.ErrInvalidInput)

	_, err = svc.Create(ctx, CreateMissionRequest{Title: "Negative", StartAt: start, EndAt: start.Add(time.Hour), MaxParticipants: intPtr(-1)})
	assert.ErrorIs(t, err, port.ErrInvalidInput)

	open, err := svc.ListOpen(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 1)

	require.NoError(t, svc.SetStatus(ctx, m.ID, "cancelled"))
	open, err = svc.ListOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	cancelled, err := svc.List(ctx, "cancelled")
	require.NoError(t, err)
	assert.Len(t, cancelled, 1)

	assert.ErrorIs(t, svc.SetStatus(ctx, m.ID, "archived"), port.ErrInvalidInput)
	_, err = svc.Get(ctx, "mis-404")
	assert.ErrorIs(t, err, port.ErrMissionNotFound)
}

func TestDonationService_Pledge(t *testing.T) {
	store := newMemStore()
	svc := NewDonationService(store, zap.NewNop())

	d, err := svc.Pledge(context.Background(), PledgeRequest{
		DonorName:   "Claire",
		DonorEmail:  "claire@example.org",
		AmountCents: 2500,
		Currency:    "eur",
	})
	require.NoError(t, err)
	assert.Equal(t, "EUR", d.Currency)
	assert.Equal(t, domain.DonationStatusPending, d.Status)

	tests := []PledgeRequest{
		{DonorName: "X", DonorEmail: "x@example.org", AmountCents: 0, Currency: "EUR"},
		{DonorName: "X", DonorEmail: "x@example.org", AmountCents: 100, Currency: "EURO"},
		{DonorName: "X", DonorEmail: "bad", AmountCents: 100, Currency: "EUR"},
		{DonorEmail: "x@example.org", AmountCents: 100, Currency: "EUR"},
	}
	for _, req := range tests {
		_, err := svc.Pledge(context.Background(), req)
		assert.ErrorIs(t, err, port.ErrInvalidInput, "%+v", req)
	}

	list, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

type stubFlow struct {
	name string
	got  port.FlowInput
	err  error
}

func (f *stubFlow) Name() string        { return f.name }
func (f *stubFlow) Description() string { return "stub" }

func (f *stubFlow) Run(ctx context.Context, in port.FlowInput) (*port.FlowOutput, error) {
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("expected a deadline")
	}
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	return &port.FlowOutput{Flow: f.name, Text: "ok", Model: "stub-model"}, nil
}

func TestFlowService(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	v := store.addVolunteer("CRV-001", domain.VolunteerActive)
	v.Skills = []string{"PSE1"}
	store.addMission("Poste de secours", domain.MissionPlanned, intPtr(1), "vol-x")
	store.addMission("Maraude", domain.MissionInProgress, nil)
	store.addMission("Ancienne mission", domain.MissionCompleted, nil)

	rec := &stubFlow{name: FlowMissionRecommendation}
	faq := &stubFlow{name: FlowVolunteerFAQ}
	desc := &stubFlow{name: FlowMissionDescription}
	svc := NewFlowService(port.NewFlowEngine(rec, faq, desc), store, store, zap.NewNop())

	assert.Equal(t, []string{FlowMissionDescription, FlowMissionRecommendation, FlowVolunteerFAQ}, svc.ListFlows())

	out, err := svc.Recommend(ctx, RecommendRequest{Matricule: "CRV-001"})
	require.NoError(t, err)
	assert.Equal(t, "stub-model", out.Model)
	require.NotNil(t, rec.got.Volunteer)
	assert.Equal(t, []string{"PSE1"}, rec.got.Volunteer.Skills)
	require.Len(t, rec.got.Missions, 1, "full and closed missions are not recommended")
	assert.Equal(t, "Maraude", rec.got.Missions[0].Title)
	assert.Equal(t, -1, rec.got.Missions[0].Remaining)

	_, err = svc.FAQ(ctx, FAQRequest{Question: "Comment devenir bénévole ?", Language: "fr"})
	require.NoError(t, err)
	assert.Len(t, faq.got.Missions, 2)
	assert.Equal(t, "fr", faq.got.Language)

	_, err = svc.DescribeMission(ctx, DescribeRequest{Notes: "distribution samedi 9h gare"})
	require.NoError(t, err)
	assert.Equal(t, "distribution samedi 9h gare", desc.got.Notes)

	_, err = svc.Recommend(ctx, RecommendRequest{Matricule: "CRV-404"})
	assert.ErrorIs(t, err, port.ErrVolunteerNotFound)

	_, err = svc.FAQ(ctx, FAQRequest{})
	assert.ErrorIs(t, err, port.ErrInvalidInput)

	faq.err = errors.New("model offline")
	_, err = svc.FAQ(ctx, FAQRequest{Question: "?"})
	assert.EqualError(t, err, "run flow volunteer_faq: model offline")
}
