package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/arturoeanton/redcross-volunteers/internal/domain"
	"github.com/arturoeanton/redcross-volunteers/internal/middleware"
	"github.com/arturoeanton/redcross-volunteers/internal/port"
	"github.com/arturoeanton/redcross-volunteers/internal/service"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore backs every port the handlers reach, guarded by one mutex.
type fakeStore struct {
	mu         sync.Mutex
	volunteers []*domain.Volunteer
	missions   []*domain.Mission
	donations  []domain.Donation
	blocked    map[string]domain.BlockedIP
	logs       []domain.RequestLog
	lastFilter domain.RequestLogFilter
	failWith   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{blocked: map[string]domain.BlockedIP{}}
}

func (s *fakeStore) GetVolunteerByMatricule(_ context.Context, matricule string) (*domain.Volunteer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	for _, v := range s.volunteers {
		if v.Matricule == matricule {
			cp := *v
			return &cp, nil
		}
	}
	return nil, port.ErrVolunteerNotFound
}

func (s *fakeStore) GetVolunteerByID(_ context.Context, id string) (*domain.Volunteer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.volunteers {
		if v.ID == id {
			cp := *v
			return &cp, nil
		}
	}
	return nil, port.ErrVolunteerNotFound
}

func (s *fakeStore) CreateVolunteer(_ context.Context, in *domain.Volunteer) (*domain.Volunteer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := *in
	v.ID = fmt.Sprintf("vol-%d", len(s.volunteers)+1)
	s.volunteers = append(s.volunteers, &v)
	cp := v
	return &cp, nil
}

func (s *fakeStore) UpdateVolunteerStatus(_ context.Context, id string, status domain.VolunteerStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.volunteers {
		if v.ID == id {
			v.Status = status
			return nil
		}
	}
	return port.ErrVolunteerNotFound
}

func (s *fakeStore) ListVolunteers(_ context.Context, status domain.VolunteerStatus) ([]domain.Volunteer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Volunteer
	for _, v := range s.volunteers {
		if status == "" || v.Status == status {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateMission(_ context.Context, in *domain.Mission) (*domain.Mission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := *in
	m.ID = fmt.Sprintf("mis-%d", len(s.missions)+1)
	m.Participants = []string{}
	s.missions = append(s.missions, &m)
	cp := m
	return &cp, nil
}

func (s *fakeStore) findMission(id string) *domain.Mission {
	for _, m := range s.missions {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (s *fakeStore) GetMission(_ context.Context, id string) (*domain.Mission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.findMission(id)
	if m == nil {
		return nil, port.ErrMissionNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *fakeStore) ListMissions(_ context.Context, statuses ...domain.MissionStatus) ([]domain.Mission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Mission
	for _, m := range s.missions {
		for _, st := range statuses {
			if m.Status == st {
				out = append(out, *m)
				break
			}
		}
		if len(statuses) == 0 {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateMissionStatus(_ context.Context, id string, status domain.MissionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.findMission(id)
	if m == nil {
		return port.ErrMissionNotFound
	}
	m.Status = status
	return nil
}

func (s *fakeStore) WithMissionLock(ctx context.Context, missionID string, fn func(ctx context.Context, m *domain.Mission, tx port.MissionTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.findMission(missionID)
	if m == nil {
		return port.ErrMissionNotFound
	}
	cp := *m
	cp.Participants = append([]string{}, m.Participants...)
	tx := &fakeTx{}
	if err := fn(ctx, &cp, tx); err != nil {
		return err
	}
	m.Participants = append(m.Participants, tx.added...)
	return nil
}

type fakeTx struct{ added []string }

func (t *fakeTx) AddParticipant(_ context.Context, id string) error {
	t.added = append(t.added, id)
	return nil
}

func (s *fakeStore) CreateDonation(_ context.Context, in *domain.Donation) (*domain.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := *in
	d.ID = fmt.Sprintf("don-%d", len(s.donations)+1)
	s.donations = append(s.donations, d)
	return &d, nil
}

func (s *fakeStore) ListDonations(_ context.Context, limit int) ([]domain.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Donation{}, s.donations...), nil
}

func (s *fakeStore) IsBlocked(_ context.Context, ip string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blocked[ip]
	return ok, nil
}

func (s *fakeStore) BlockIP(_ context.Context, ip, reason string) (*domain.BlockedIP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := domain.BlockedIP{IP: ip, Reason: reason, CreatedAt: time.Now()}
	s.blocked[ip] = b
	return &b, nil
}

func (s *fakeStore) UnblockIP(_ context.Context, ip string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blocked[ip]; !ok {
		return port.ErrBlockedIPNotFound
	}
	delete(s.blocked, ip)
	return nil
}

func (s *fakeStore) ListBlockedIPs(context.Context) ([]domain.BlockedIP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.BlockedIP
	for _, b := range s.blocked {
		out = append(out, b)
	}
	return out, nil
}

func (s *fakeStore) ListRequestLogs(_ context.Context, filter domain.RequestLogFilter) ([]domain.RequestLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFilter = filter
	return append([]domain.RequestLog{}, s.logs...), nil
}

type echoFlow struct{ name string }

func (f echoFlow) Name() string        { return f.name }
func (f echoFlow) Description() string { return "echo" }
func (f echoFlow) Run(_ context.Context, in port.FlowInput) (*port.FlowOutput, error) {
	if strings.Contains(in.Question, "fail") {
		return nil, errors.New("model offline")
	}
	return &port.FlowOutput{Flow: f.name, Text: in.Question + in.Notes, Model: "echo"}, nil
}

var testJWT = middleware.JWTConfig{Secret: "handler-secret", Issuer: "redcross-test", ExpiresIn: time.Hour}

func newTestApp(t *testing.T, store *fakeStore) *fiber.App {
	t.Helper()
	logger := zap.NewNop()

	volunteers := service.NewVolunteerService(store, logger)
	missions := service.NewMissionService(store, logger)
	donations := service.NewDonationService(store, logger)
	registration := service.NewRegistrationService(store, logger)
	engine := port.NewFlowEngine(
		echoFlow{service.FlowMissionRecommendation},
		echoFlow{service.FlowMissionDescription},
		echoFlow{service.FlowVolunteerFAQ},
	)
	flows := service.NewFlowService(engine, store, store, logger)

	app := fiber.New()
	api := app.Group("/api/v1")
	NewMissionHandler(missions, registration, logger).Register(api)
	NewVolunteerHandler(volunteers, logger).Register(api)
	NewDonationHandler(donations, logger).Register(api)
	aiHandler := NewAIHandler(flows, logger)
	aiHandler.Register(api)

	admin := api.Group("/admin", middleware.JWTMiddleware(testJWT), middleware.RequireRole(domain.RoleAdmin))
	NewAdminHandler(store, store, volunteers, missions, donations, logger).Register(admin)
	aiHandler.RegisterAdmin(admin)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target, body, token string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func adminToken(t *testing.T) string {
	t.Helper()
	tok, err := middleware.GenerateJWT(domain.UserContext{UserID: "staff-1", Email: "staff@croix-rouge.example", Role: domain.RoleAdmin}, testJWT)
	require.NoError(t, err)
	return tok
}

func seed(store *fakeStore) (*domain.Volunteer, *domain.Mission) {
	v := &domain.Volunteer{ID: "vol-a", Matricule: "CRV-2026-AAAAAA", FirstName: "Awa", Status: domain.VolunteerActive}
	store.volunteers = append(store.volunteers, v)
	capacity := 1
	m := &domain.Mission{ID: "mis-a", Title: "Maraude", Status: domain.MissionPlanned, MaxParticipants: &capacity, Participants: []string{}}
	store.missions = append(store.missions, m)
	return v, m
}

func TestRegisterVolunteer_Scenarios(t *testing.T) {
	store := newFakeStore()
	seed(store)
	store.volunteers = append(store.volunteers,
		&domain.Volunteer{ID: "vol-b", Matricule: "CRV-2026-BBBBBB", Status: domain.VolunteerActive},
		&domain.Volunteer{ID: "vol-p", Matricule: "CRV-2026-PPPPPP", Status: domain.VolunteerPending},
	)
	app := newTestApp(t, store)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/missions/mis-a/register", `{"matricule":"CRV-2026-AAAAAA"}`, "")
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "reason")

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/missions/mis-a/register", `{"matricule":"CRV-2026-AAAAAA"}`, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "duplicate", body["reason"])

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/missions/mis-a/register", `{"matricule":"CRV-2026-PPPPPP"}`, "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "ineligible", body["reason"])

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/missions/mis-a/register", `{"matricule":"CRV-2026-BBBBBB"}`, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "full", body["reason"])

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/missions/mis-404/register", `{"matricule":"CRV-2026-BBBBBB"}`, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", body["reason"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/missions/mis-a/register", `{"matricule":""}`, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/missions/mis-a/register", `not json`, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRegisterVolunteer_StoreDown(t *testing.T) {
	store := newFakeStore()
	seed(store)
	store.failWith = fmt.Errorf("%w: connection reset", port.ErrTransient)
	app := newTestApp(t, store)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/missions/mis-a/register", `{"matricule":"CRV-2026-AAAAAA"}`, "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "infrastructure", body["reason"])
	assert.Equal(t, false, body["success"])
}

func TestMissionCatalogue(t *testing.T) {
	store := newFakeStore()
	seed(store)
	store.missions = append(store.missions, &domain.Mission{ID: "mis-old", Title: "Ancienne", Status: domain.MissionCompleted})
	app := newTestApp(t, store)

	status, body := doJSON(t, app, http.MethodGet, "/api/v1/missions", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/missions/mis-a", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Maraude", body["title"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/missions/nope", "", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestApplyAndPledge(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(t, store)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/volunteers", `{"first_name":"Lina","email":"lina@example.org","skills":["PSC1"]}`, "")
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "pending", body["status"])
	assert.Regexp(t, `^CRV-\d{4}-[0-9A-F]{6}$`, body["matricule"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/volunteers", `{"first_name":"Lina","email":"nope"}`, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/donations", `{"donor_name":"Paul","donor_email":"paul@example.org","amount_cents":1000,"currency":"eur"}`, "")
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "EUR", body["currency"])
	assert.Equal(t, "pending", body["status"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/donations", `{"donor_name":"Paul","donor_email":"paul@example.org","amount_cents":-5,"currency":"EUR"}`, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAIRoutes(t *testing.T) {
	store := newFakeStore()
	seed(store)
	app := newTestApp(t, store)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/ai/faq", `{"question":"Où est le local ?"}`, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Où est le local ?", body["text"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/ai/faq", `{"question":"please fail"}`, "")
	assert.Equal(t, http.StatusBadGateway, status)

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/ai/recommendations", `{"matricule":"CRV-2026-AAAAAA"}`, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "echo", body["model"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/ai/recommendations", `{"matricule":"CRV-404"}`, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/ai/flows", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["flows"], 3)

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/admin/ai/mission-description", `{"notes":"collecte"}`, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/admin/ai/mission-description", `{"notes":"collecte"}`, adminToken(t))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "collecte", body["text"])
}

func TestAdmin_RequiresAdminRole(t *testing.T) {
	app := newTestApp(t, newFakeStore())

	status, _ := doJSON(t, app, http.MethodGet, "/api/v1/admin/blocked-ips", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	staff, err := middleware.GenerateJWT(domain.UserContext{UserID: "s", Role: "staff"}, testJWT)
	require.NoError(t, err)
	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/admin/blocked-ips", "", staff)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAdmin_Blocklist(t *testing.T) {
	store := newFakeStore()
	app := newTestApp(t, store)
	tok := adminToken(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/admin/blocked-ips", `{"ip":" 203.0.113.7 ","reason":"scanner"}`, tok)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "203.0.113.7", body["ip"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/admin/blocked-ips", `{"ip":"not-an-ip"}`, tok)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/admin/blocked-ips", "", tok)
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])

	status, _ = doJSON(t, app, http.MethodDelete, "/api/v1/admin/blocked-ips/203.0.113.7", "", tok)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = doJSON(t, app, http.MethodDelete, "/api/v1/admin/blocked-ips/203.0.113.7", "", tok)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAdmin_RequestLogsFilter(t *testing.T) {
	store := newFakeStore()
	store.logs = []domain.RequestLog{{ID: "1", IP: "10.0.0.1", IsThreat: true}}
	app := newTestApp(t, store)

	status, body := doJSON(t, app, http.MethodGet, "/api/v1/admin/request-logs?threat=true&ip=10.0.0.1&limit=5", "", adminToken(t))
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])
	assert.Equal(t, domain.RequestLogFilter{IP: "10.0.0.1", ThreatOnly: true, Limit: 5}, store.lastFilter)

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/admin/request-logs?ip=2001:0DB8:0000:0000:0000:0000:0000:0001", "", adminToken(t))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2001:db8::1", store.lastFilter.IP, "ipv6 filter is canonicalized")

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/admin/request-logs?ip=not-an-ip", "", adminToken(t))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdmin_VolunteerAndMissionManagement(t *testing.T) {
	store := newFakeStore()
	store.volunteers = append(store.volunteers, &domain.Volunteer{ID: "vol-p", Matricule: "CRV-P", Status: domain.VolunteerPending})
	app := newTestApp(t, store)
	tok := adminToken(t)

	status, body := doJSON(t, app, http.MethodGet, "/api/v1/admin/volunteers?status=pending", "", tok)
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])

	status, _ = doJSON(t, app, http.MethodPatch, "/api/v1/admin/volunteers/vol-p/status", `{"status":"active"}`, tok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.VolunteerActive, store.volunteers[0].Status)

	status, _ = doJSON(t, app, http.MethodPatch, "/api/v1/admin/volunteers/vol-p/status", `{"status":"vip"}`, tok)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/admin/missions",
		`{"title":"Collecte","start_at":"2026-12-01T09:00:00Z","end_at":"2026-12-01T12:00:00Z","max_participants":4}`, tok)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "planned", body["status"])
	id := body["id"].(string)

	status, _ = doJSON(t, app, http.MethodPatch, "/api/v1/admin/missions/"+id+"/status", `{"status":"in_progress"}`, tok)
	assert.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/admin/missions?status=in_progress", "", tok)
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/admin/donations", "", tok)
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["count"])
}
