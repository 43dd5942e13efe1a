package repositories

import (
	"context"

	"github.com/clinicdesk/clinic-booking/internal/domain/entities"
)

// PaymentRepository defines the interface for payment reconciliation storage
type PaymentRepository interface {
	// RecordPayment performs the reconciliation atomic unit: verify the
	// appointment is confirmed, insert the payment and mark the
	// appointment paid, all in one transaction. When the appointment
	// already has a payment the existing record is returned and created
	// is false. Fails with not found for an unknown appointment and with
	// conflict when the appointment is not confirmed.
	RecordPayment(ctx context.Context, payment *entities.Payment) (result *entities.Payment, created bool, err error)

	// GetByAppointmentID retrieves the payment referencing an appointment
	GetByAppointmentID(ctx context.Context, appointmentID string) (*entities.Payment, error)
}
