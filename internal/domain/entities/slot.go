package entities

import (
	"time"
)

// Slot is a fixed-duration candidate booking window for one doctor.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DaySlots groups the candidate slots of one calendar day in the booking
// horizon. DayIndex 0 is today.
type DaySlots struct {
	DayIndex int       `json:"day_index"`
	Date     time.Time `json:"date"`
	Slots    []Slot    `json:"slots"`
}

// ConfirmedSlot is an occupied window derived from a confirmed appointment.
type ConfirmedSlot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}
