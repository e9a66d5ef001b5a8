package domain

import "time"

// Volunteer is a committee member able to take part in missions.
type Volunteer struct {
	ID           string          `json:"id"           db:"id"`
	Matricule    string          `json:"matricule"    db:"matricule"`
	FirstName    string          `json:"first_name"   db:"first_name"`
	LastName     string          `json:"last_name"    db:"last_name"`
	Email        string          `json:"email"        db:"email"`
	Phone        string          `json:"phone"        db:"phone"`
	Skills       []string        `json:"skills"       db:"skills"`
	Availability string          `json:"availability" db:"availability"`
	Status       VolunteerStatus `json:"status"       db:"status"`
	CreatedAt    time.Time       `json:"created_at"   db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"   db:"updated_at"`
}

// FullName returns "First Last".
func (v *Volunteer) FullName() string {
	if v.LastName == "" {
		return v.FirstName
	}
	return v.FirstName + " " + v.LastName
}

// VolunteerStatus is changed only by an administrator.
type VolunteerStatus string

const (
	VolunteerActive   VolunteerStatus = "active"
	VolunteerInactive VolunteerStatus = "inactive"
	VolunteerRejected VolunteerStatus = "rejected"
	VolunteerPending  VolunteerStatus = "pending"
)

// Valid reports whether s is one of the known statuses.
func (s VolunteerStatus) Valid() bool {
	switch s {
	case VolunteerActive, VolunteerInactive, VolunteerRejected, VolunteerPending:
		return true
	}
	return false
}

// CanRegister reports whether a volunteer in this status may join missions.
func (s VolunteerStatus) CanRegister() bool {
	return s == VolunteerActive
}
