package entities

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentEventType represents the type of appointment event
type AppointmentEventType string

const (
	AppointmentEventTypeBooked        AppointmentEventType = "booked"
	AppointmentEventTypeStatusChanged AppointmentEventType = "status_changed"
	AppointmentEventTypePaid          AppointmentEventType = "paid"
	AppointmentEventTypeDeleted       AppointmentEventType = "deleted"
)

// AppointmentEvent is the outbound notification fired after a successful
// ledger mutation. It is a side channel only and carries no core state.
type AppointmentEvent struct {
	ID            string               `json:"id"`
	AppointmentID string               `json:"appointment_id"`
	DoctorID      string               `json:"doctor_id"`
	PatientID     string               `json:"patient_id"`
	EventType     AppointmentEventType `json:"event_type"`
	Status        AppointmentStatus    `json:"status"`
	PaymentStatus PaymentStatus        `json:"payment_status"`
	Timestamp     time.Time            `json:"timestamp"`
}

// NewAppointmentEvent creates a new event for a ledger mutation
func NewAppointmentEvent(appointment *Appointment, eventType AppointmentEventType) *AppointmentEvent {
	return &AppointmentEvent{
		ID:            uuid.New().String(),
		AppointmentID: appointment.ID,
		DoctorID:      appointment.DoctorID,
		PatientID:     appointment.PatientID,
		EventType:     eventType,
		Status:        appointment.Status,
		PaymentStatus: appointment.PaymentStatus,
		Timestamp:     time.Now(),
	}
}
