package domain

import (
	"slices"
	"time"
)

// Mission is a time-bounded volunteer activity.
type Mission struct {
	ID              string        `json:"id"               db:"id"`
	Title           string        `json:"title"            db:"title"`
	Description     string        `json:"description"      db:"description"`
	Location        string        `json:"location"         db:"location"`
	Status          MissionStatus `json:"status"           db:"status"`
	StartAt         time.Time     `json:"start_at"         db:"start_at"`
	EndAt           time.Time     `json:"end_at"           db:"end_at"`
	MaxParticipants *int          `json:"max_participants" db:"max_participants"` // nil = unlimited
	Participants    []string      `json:"participants"`                           // volunteer IDs
	CreatedAt       time.Time     `json:"created_at"       db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"       db:"updated_at"`
}

// IsFull returns true when a capacity is set and reached.
func (m *Mission) IsFull() bool {
	return m.MaxParticipants != nil && len(m.Participants) >= *m.MaxParticipants
}

// Remaining returns the number of open slots, or -1 when the mission is unbounded.
func (m *Mission) Remaining() int {
	if m.MaxParticipants == nil {
		return -1
	}
	if r := *m.MaxParticipants - len(m.Participants); r > 0 {
		return r
	}
	return 0
}

// HasParticipant reports whether volunteerID is already in the participant set.
func (m *Mission) HasParticipant(volunteerID string) bool {
	return slices.Contains(m.Participants, volunteerID)
}

// MissionStatus transitions are driven by staff.
type MissionStatus string

const (
	MissionPlanned    MissionStatus = "planned"
	MissionInProgress MissionStatus = "in_progress"
	MissionCompleted  MissionStatus = "completed"
	MissionCancelled  MissionStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s MissionStatus) Valid() bool {
	switch s {
	case MissionPlanned, MissionInProgress, MissionCompleted, MissionCancelled:
		return true
	}
	return false
}

// OpenForRegistration is true for planned and in-progress missions.
func (s MissionStatus) OpenForRegistration() bool {
	return s == MissionPlanned || s == MissionInProgress
}
