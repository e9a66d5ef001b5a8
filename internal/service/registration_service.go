package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arturoeanton/redcross-volunteers/internal/domain"
	"github.com/arturoeanton/redcross-volunteers/internal/port"
	"go.uber.org/zap"
)

// Kind tells callers why a registration was not accepted.
type Kind int

const (
	KindNone Kind = iota
	KindNotFound
	KindIneligible
	KindClosed
	KindFull
	KindDuplicate
	KindInfrastructure
)

var kindNames = map[Kind]string{
	KindNone:           "",
	KindNotFound:       "not_found",
	KindIneligible:     "ineligible",
	KindClosed:         "closed",
	KindFull:           "full",
	KindDuplicate:      "duplicate",
	KindInfrastructure: "infrastructure",
}

func (k Kind) String() string {
	return kindNames[k]
}

// MarshalText encodes the kind as its reason code.
func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown kind %d", int(k))
	}
	return []byte(name), nil
}

// User-facing messages.
const (
	msgRegistered          = "Inscription confirmée pour la mission « %s »."
	msgVolunteerNotFound   = "Bénévole introuvable. Vérifiez votre matricule."
	msgVolunteerPending    = "Votre candidature est en cours d'examen. Vous pourrez vous inscrire aux missions une fois votre profil validé."
	msgVolunteerInactive   = "Votre compte bénévole est inactif. Contactez le comité pour le réactiver."
	msgVolunteerRejected   = "Votre candidature n'a pas été retenue. Vous ne pouvez pas vous inscrire aux missions."
	msgVolunteerIneligible = "Votre statut ne permet pas l'inscription aux missions."
	msgMissionNotFound     = "Mission introuvable."
	msgMissionClosed       = "Les inscriptions pour cette mission sont closes."
	msgMissionFull         = "Cette mission est complète."
	msgAlreadyRegistered   = "Vous êtes déjà inscrit(e) à cette mission."
	msgUnavailable         = "Service temporairement indisponible. Veuillez réessayer plus tard."
)

// Result is the outcome of a registration attempt.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Kind    Kind   `json:"reason,omitempty"`
}

func reject(kind Kind, message string) Result {
	return Result{Kind: kind, Message: message}
}

// errRejected aborts the lock scope so nothing is written.
var errRejected = errors.New("registration rejected")

// RegisterRequest is the validated input of Register.
type RegisterRequest struct {
	MissionID string `validate:"required,max=64"`
	Matricule string `validate:"required,max=64"`
}

// RegistrationService admits volunteers to missions.
type RegistrationService struct {
	store  port.RegistrationStore
	logger *zap.Logger
}

// NewRegistrationService creates a new registration service.
func NewRegistrationService(store port.RegistrationStore, logger *zap.Logger) *RegistrationService {
	return &RegistrationService{store: store, logger: logger.Named("registration")}
}

// Register adds the volunteer identified by matricule to the mission.
//
// Domain rejections come back as a Result with a nil error. Store failures
// are retried once when transient; after that Register returns a
// KindInfrastructure result together with the error.
func (s *RegistrationService) Register(ctx context.Context, missionID, matricule string) (Result, error) {
	req := RegisterRequest{
		MissionID: strings.TrimSpace(missionID),
		Matricule: strings.TrimSpace(matricule),
	}
	if err := checkInput(req); err != nil {
		return Result{}, err
	}

	res, err := s.register(ctx, req)
	if err != nil && errors.Is(err, port.ErrTransient) && ctx.Err() == nil {
		s.logger.Warn("transient store failure, retrying registration",
			zap.String("mission_id", req.MissionID), zap.Error(err))
		res, err = s.register(ctx, req)
	}
	if err != nil {
		return reject(KindInfrastructure, msgUnavailable), fmt.Errorf("register volunteer: %w", err)
	}

	if res.Success {
		s.logger.Info("volunteer registered",
			zap.String("mission_id", req.MissionID), zap.String("matricule", req.Matricule))
	} else {
		s.logger.Debug("registration rejected",
			zap.String("mission_id", req.MissionID),
			zap.String("matricule", req.Matricule),
			zap.Stringer("reason", res.Kind))
	}
	return res, nil
}

func (s *RegistrationService) register(ctx context.Context, req RegisterRequest) (Result, error) {
	v, err := s.store.GetVolunteerByMatricule(ctx, req.Matricule)
	if errors.Is(err, port.ErrVolunteerNotFound) {
		return reject(KindNotFound, msgVolunteerNotFound), nil
	}
	if err != nil {
		return Result{}, err
	}

	if !v.Status.CanRegister() {
		return reject(KindIneligible, ineligibleMessage(v.Status)), nil
	}

	var res Result
	err = s.store.WithMissionLock(ctx, req.MissionID, func(ctx context.Context, m *domain.Mission, tx port.MissionTx) error {
		switch {
		case !m.Status.OpenForRegistration():
			res = reject(KindClosed, msgMissionClosed)
			return errRejected
		case m.IsFull():
			res = reject(KindFull, msgMissionFull)
			return errRejected
		case m.HasParticipant(v.ID):
			res = reject(KindDuplicate, msgAlreadyRegistered)
			return errRejected
		}

		if err := tx.AddParticipant(ctx, v.ID); err != nil {
			if errors.Is(err, port.ErrAlreadyRegistered) {
				res = reject(KindDuplicate, msgAlreadyRegistered)
				return errRejected
			}
			return err
		}
		res = Result{Success: true, Message: fmt.Sprintf(msgRegistered, m.Title)}
		return nil
	})

	switch {
	case err == nil, errors.Is(err, errRejected):
		return res, nil
	case errors.Is(err, port.ErrMissionNotFound):
		return reject(KindNotFound, msgMissionNotFound), nil
	default:
		return Result{}, err
	}
}

func ineligibleMessage(status domain.VolunteerStatus) string {
	switch status {
	case domain.VolunteerPending:
		return msgVolunteerPending
	case domain.VolunteerInactive:
		return msgVolunteerInactive
	case domain.VolunteerRejected:
		return msgVolunteerRejected
	default:
		return msgVolunteerIneligible
	}
}
