package entities

import (
	"time"
)

// PaymentOutcome represents the result of a payment event
type PaymentOutcome string

const (
	PaymentOutcomeSuccess PaymentOutcome = "success"
	PaymentOutcomeFailure PaymentOutcome = "failure"
)

// Payment is an append-only record linking a payment event to its
// appointment. At most one payment may reference an appointment.
type Payment struct {
	ID            string         `json:"id" db:"id"`
	AppointmentID string         `json:"appointment_id" db:"appointment_id"`
	Amount        float64        `json:"amount" db:"amount"`
	Method        string         `json:"method" db:"method"`
	Status        PaymentOutcome `json:"status" db:"status"`
	PaymentTime   time.Time      `json:"payment_time" db:"payment_time"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
}
