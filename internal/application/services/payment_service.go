package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-booking/internal/domain/entities"
	"github.com/clinicdesk/clinic-booking/internal/domain/repositories"
	apperrors "github.com/clinicdesk/clinic-booking/pkg/errors"
)

// PaymentService reconciles payment events against the appointment
// ledger. One payment per appointment; the repository enforces the
// atomic unit (insert payment + mark appointment paid).
type PaymentService struct {
	payments     repositories.PaymentRepository
	appointments repositories.AppointmentRepository
	notifier     *NotificationService
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	payments repositories.PaymentRepository,
	appointments repositories.AppointmentRepository,
	notifier *NotificationService,
) *PaymentService {
	return &PaymentService{
		payments:     payments,
		appointments: appointments,
		notifier:     notifier,
	}
}

// PayRequest carries the payment input
type PayRequest struct {
	AppointmentID string  `json:"appointment_id"`
	Amount        float64 `json:"amount"`
	Method        string  `json:"method"`
}

// Pay records a payment against a confirmed appointment and marks it
// paid. Idempotent per appointment: paying an already-paid appointment
// returns the existing payment without creating a second record.
func (s *PaymentService) Pay(ctx context.Context, principal entities.Principal, req PayRequest) (*entities.Payment, error) {
	if req.AppointmentID == "" {
		return nil, apperrors.NewValidationError("appointment_id is required")
	}
	if req.Amount <= 0 {
		return nil, apperrors.NewValidationError("amount must be positive")
	}
	if req.Method == "" {
		return nil, apperrors.NewValidationError("method is required")
	}

	appointment, err := s.appointments.GetByID(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}

	if principal.Role == entities.RolePatient && principal.ID != appointment.PatientID {
		return nil, apperrors.NewUnauthorizedError("patients can only pay for their own appointments")
	}
	if principal.Role == entities.RoleDoctor {
		return nil, apperrors.NewUnauthorizedError("doctors cannot record payments")
	}

	now := time.Now()
	payment := &entities.Payment{
		ID:            uuid.New().String(),
		AppointmentID: req.AppointmentID,
		Amount:        req.Amount,
		Method:        req.Method,
		Status:        entities.PaymentOutcomeSuccess,
		PaymentTime:   now,
		CreatedAt:     now,
	}

	result, created, err := s.payments.RecordPayment(ctx, payment)
	if err != nil {
		return nil, err
	}

	if created {
		appointment.PaymentStatus = entities.PaymentStatusPaid
		s.notifier.AppointmentPaid(ctx, appointment)
	}

	return result, nil
}

// GetForAppointment retrieves the payment referencing an appointment
func (s *PaymentService) GetForAppointment(ctx context.Context, principal entities.Principal, appointmentID string) (*entities.Payment, error) {
	appointment, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	switch principal.Role {
	case entities.RoleAdmin:
	case entities.RolePatient:
		if principal.ID != appointment.PatientID {
			return nil, apperrors.NewUnauthorizedError("patients can only view their own payments")
		}
	case entities.RoleDoctor:
		if principal.ID != appointment.DoctorID {
			return nil, apperrors.NewUnauthorizedError("doctors can only view payments for their own appointments")
		}
	}

	return s.payments.GetByAppointmentID(ctx, appointmentID)
}
