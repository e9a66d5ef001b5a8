package port

import "errors"

// Sentinel errors used across ports.
var (
	ErrFlowNotFound       = errors.New("ai flow not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrVolunteerNotFound  = errors.New("volunteer not found")
	ErrMissionNotFound    = errors.New("mission not found")
	ErrAlreadyRegistered  = errors.New("volunteer already registered")
	ErrBlockedIPNotFound  = errors.New("blocked ip not found")
	ErrDuplicateMatricule = errors.New("matricule already exists")
	ErrInvalidInput       = errors.New("invalid input")

	// ErrTransient marks store failures worth one retry (serialization
	// failure, deadlock, dropped connection).
	ErrTransient = errors.New("transient store failure")
)
