package port

import (
	"context"

	"github.com/arturoeanton/redcross-volunteers/internal/domain"
)

// VolunteerStore persists volunteers.
type VolunteerStore interface {
	GetVolunteerByMatricule(ctx context.Context, matricule string) (*domain.Volunteer, error)
	GetVolunteerByID(ctx context.Context, id string) (*domain.Volunteer, error)
	CreateVolunteer(ctx context.Context, v *domain.Volunteer) (*domain.Volunteer, error)
	UpdateVolunteerStatus(ctx context.Context, id string, status domain.VolunteerStatus) error
	ListVolunteers(ctx context.Context, status domain.VolunteerStatus) ([]domain.Volunteer, error)
}

// MissionTx is the write side of a mission lock scope.
type MissionTx interface {
	AddParticipant(ctx context.Context, volunteerID string) error
}

// MissionStore persists missions and their participant sets.
type MissionStore interface {
	CreateMission(ctx context.Context, m *domain.Mission) (*domain.Mission, error)
	GetMission(ctx context.Context, id string) (*domain.Mission, error)
	ListMissions(ctx context.Context, statuses ...domain.MissionStatus) ([]domain.Mission, error)
	UpdateMissionStatus(ctx context.Context, id string, status domain.MissionStatus) error

	// WithMissionLock loads the mission with its participants and runs fn while
	// holding an exclusive lock on that mission. Writes made through tx are
	// committed only if fn returns nil. Returns ErrMissionNotFound if the
	// mission does not exist; fn is not called in that case.
	WithMissionLock(ctx context.Context, missionID string, fn func(ctx context.Context, m *domain.Mission, tx MissionTx) error) error
}

// RegistrationStore is what the registration workflow needs.
type RegistrationStore interface {
	GetVolunteerByMatricule(ctx context.Context, matricule string) (*domain.Volunteer, error)
	WithMissionLock(ctx context.Context, missionID string, fn func(ctx context.Context, m *domain.Mission, tx MissionTx) error) error
}

// BlocklistChecker answers the per-request gate question.
type BlocklistChecker interface {
	IsBlocked(ctx context.Context, ip string) (bool, error)
}

// BlocklistStore is the administrator side of the blocklist.
type BlocklistStore interface {
	BlocklistChecker
	BlockIP(ctx context.Context, ip, reason string) (*domain.BlockedIP, error)
	UnblockIP(ctx context.Context, ip string) error
	ListBlockedIPs(ctx context.Context) ([]domain.BlockedIP, error)
}

// RequestLogWriter appends audit rows.
type RequestLogWriter interface {
	WriteRequestLog(ctx context.Context, entry *domain.RequestLog) error
}

// RequestLogReader lists audit rows for administrators.
type RequestLogReader interface {
	ListRequestLogs(ctx context.Context, filter domain.RequestLogFilter) ([]domain.RequestLog, error)
}

// DonationStore persists donation pledges.
type DonationStore interface {
	CreateDonation(ctx context.Context, d *domain.Donation) (*domain.Donation, error)
	ListDonations(ctx context.Context, limit int) ([]domain.Donation, error)
}
