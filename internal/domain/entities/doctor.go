package entities

import (
	"time"
)

// WorkingHours describes a doctor's daily bookable window in whole hours.
type WorkingHours struct {
	OpeningHour int `json:"opening_hour" db:"opening_hour"`
	ClosingHour int `json:"closing_hour" db:"closing_hour"`
}

// Doctor is read-only reference data owned by the identity/profile
// subsystem. The core consults it for fee, active flag and working hours.
type Doctor struct {
	ID           string       `json:"id" db:"id"`
	Name         string       `json:"name" db:"name"`
	Speciality   string       `json:"speciality" db:"speciality"`
	Fee          string       `json:"fee" db:"fee"`
	IsActive     bool         `json:"is_active" db:"is_active"`
	WorkingHours WorkingHours `json:"working_hours"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}
