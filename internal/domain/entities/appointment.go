package entities

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// legacyCancelledSpelling is the single-l spelling that older records and
// call sites used. It is accepted on read and normalized to the canonical
// double-l value.
const legacyCancelledSpelling = "canceled"

// NormalizeStatus maps a raw persisted status string to its canonical value.
// The second return is false when the value is not a known status.
func NormalizeStatus(raw string) (AppointmentStatus, bool) {
	switch AppointmentStatus(raw) {
	case AppointmentStatusPending, AppointmentStatusConfirmed,
		AppointmentStatusCancelled, AppointmentStatusCompleted:
		return AppointmentStatus(raw), true
	}
	if raw == legacyCancelledSpelling {
		return AppointmentStatusCancelled, true
	}
	return AppointmentStatus(raw), false
}

// IsTerminal reports whether no further status transitions are allowed
// from s. Confirmed is deliberately not terminal here: it is closed to
// SetStatus but still reachable by the explicit cancel/complete operations.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCancelled || s == AppointmentStatusCompleted
}

// PaymentStatus represents whether an appointment has been paid for
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// Appointment represents a scheduled appointment with a doctor
type Appointment struct {
	ID            string            `json:"id" db:"id"`
	PatientID     string            `json:"patient_id" db:"patient_id"`
	DoctorID      string            `json:"doctor_id" db:"doctor_id"`
	StartTime     time.Time         `json:"start_time" db:"start_time"`
	Status        AppointmentStatus `json:"status" db:"status"`
	PaymentStatus PaymentStatus     `json:"payment_status" db:"payment_status"`
	Note          string            `json:"note" db:"note"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`
}

// End returns the exclusive end of the appointment's reserved window.
// Appointments occupy exactly one slot.
func (a *Appointment) End(slotDuration time.Duration) time.Time {
	return a.StartTime.Add(slotDuration)
}
