package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-booking/internal/domain/entities"
	"github.com/clinicdesk/clinic-booking/internal/domain/repositories"
	apperrors "github.com/clinicdesk/clinic-booking/pkg/errors"
)

// AppointmentService owns the appointment ledger: booking, the status
// state machine and deletion. All invariant enforcement funnels through
// here and the repository's atomic operations.
type AppointmentService struct {
	repo         repositories.AppointmentRepository
	doctorRepo   repositories.DoctorRepository
	availability *AvailabilityService
	notifier     *NotificationService
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(
	repo repositories.AppointmentRepository,
	doctorRepo repositories.DoctorRepository,
	availability *AvailabilityService,
	notifier *NotificationService,
) *AppointmentService {
	return &AppointmentService{
		repo:         repo,
		doctorRepo:   doctorRepo,
		availability: availability,
		notifier:     notifier,
	}
}

// BookRequest carries the patient's booking input
type BookRequest struct {
	DoctorID  string    `json:"doctor_id"`
	StartTime time.Time `json:"start_time"`
	Note      string    `json:"note"`
}

// Book creates a pending, unpaid appointment for the calling patient.
// Pending holds are non-binding, so two patients may both hold the same
// slot; exclusivity is decided at confirmation time.
func (s *AppointmentService) Book(ctx context.Context, principal entities.Principal, req BookRequest) (*entities.Appointment, error) {
	if principal.Role != entities.RolePatient {
		return nil, apperrors.NewUnauthorizedError("only patients can book appointments")
	}
	if req.DoctorID == "" {
		return nil, apperrors.NewValidationError("doctor_id is required")
	}
	if req.StartTime.IsZero() {
		return nil, apperrors.NewValidationError("start_time is required")
	}
	if !req.StartTime.After(time.Now()) {
		return nil, apperrors.NewValidationError("start_time must be in the future")
	}

	doctor, err := s.doctorRepo.GetByID(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.IsActive {
		return nil, apperrors.NewValidationError("doctor is not accepting appointments")
	}

	booked, err := s.availability.IsBooked(ctx, req.DoctorID, req.StartTime)
	if err != nil {
		return nil, err
	}
	if booked {
		return nil, apperrors.NewConflictError("slot already confirmed by another patient")
	}

	now := time.Now()
	appointment := &entities.Appointment{
		ID:            uuid.New().String(),
		PatientID:     principal.ID,
		DoctorID:      req.DoctorID,
		StartTime:     req.StartTime,
		Status:        entities.AppointmentStatusPending,
		PaymentStatus: entities.PaymentStatusUnpaid,
		Note:          req.Note,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, err
	}

	s.notifier.AppointmentBooked(ctx, appointment)

	return appointment, nil
}

// SetStatus transitions a pending appointment to another status. A
// confirmed appointment never changes through this path; use Cancel or
// Complete for the explicit post-confirmation transitions.
func (s *AppointmentService) SetStatus(ctx context.Context, principal entities.Principal, id, rawStatus string) (*entities.Appointment, error) {
	status, ok := entities.NormalizeStatus(rawStatus)
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid status %q", rawStatus))
	}

	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !principal.IsAdmin() &&
		!(principal.Role == entities.RoleDoctor && principal.ID == appointment.DoctorID) {
		return nil, apperrors.NewUnauthorizedError("only admins or the appointment's doctor can change its status")
	}

	switch {
	case appointment.Status == entities.AppointmentStatusConfirmed:
		return nil, apperrors.NewConflictError("appointment is already confirmed and cannot change status")
	case appointment.Status.IsTerminal():
		return nil, apperrors.NewConflictError(fmt.Sprintf("appointment is %s and cannot change status", appointment.Status))
	}

	if status == entities.AppointmentStatusPending {
		return appointment, nil
	}

	if status == entities.AppointmentStatusConfirmed {
		confirmed, err := s.repo.Confirm(ctx, id, s.availability.SlotDuration())
		if err != nil {
			return nil, err
		}
		s.notifier.AppointmentStatusChanged(ctx, confirmed)
		return confirmed, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, entities.AppointmentStatusPending, status); err != nil {
		return nil, err
	}

	appointment.Status = status
	appointment.UpdatedAt = time.Now()
	s.notifier.AppointmentStatusChanged(ctx, appointment)

	return appointment, nil
}

// Cancel cancels an appointment. Patients may cancel their own pending
// appointments; admins may also cancel confirmed ones.
func (s *AppointmentService) Cancel(ctx context.Context, principal entities.Principal, id string) (*entities.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch principal.Role {
	case entities.RoleAdmin:
	case entities.RolePatient:
		if principal.ID != appointment.PatientID {
			return nil, apperrors.NewUnauthorizedError("patients can only cancel their own appointments")
		}
		if appointment.Status == entities.AppointmentStatusConfirmed {
			return nil, apperrors.NewUnauthorizedError("confirmed appointments can only be cancelled by an admin")
		}
	default:
		return nil, apperrors.NewUnauthorizedError("role cannot cancel appointments")
	}

	if appointment.Status.IsTerminal() {
		return nil, apperrors.NewConflictError(fmt.Sprintf("appointment is already %s", appointment.Status))
	}

	if err := s.repo.UpdateStatus(ctx, id, appointment.Status, entities.AppointmentStatusCancelled); err != nil {
		return nil, err
	}

	appointment.Status = entities.AppointmentStatusCancelled
	appointment.UpdatedAt = time.Now()
	s.notifier.AppointmentStatusChanged(ctx, appointment)

	return appointment, nil
}

// Complete marks a confirmed appointment as completed. Admins and the
// appointment's doctor may complete.
func (s *AppointmentService) Complete(ctx context.Context, principal entities.Principal, id string) (*entities.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !principal.IsAdmin() &&
		!(principal.Role == entities.RoleDoctor && principal.ID == appointment.DoctorID) {
		return nil, apperrors.NewUnauthorizedError("only admins or the appointment's doctor can complete it")
	}

	if appointment.Status != entities.AppointmentStatusConfirmed {
		return nil, apperrors.NewConflictError(fmt.Sprintf("appointment is %s, only confirmed appointments can be completed", appointment.Status))
	}

	if err := s.repo.UpdateStatus(ctx, id, entities.AppointmentStatusConfirmed, entities.AppointmentStatusCompleted); err != nil {
		return nil, err
	}

	appointment.Status = entities.AppointmentStatusCompleted
	appointment.UpdatedAt = time.Now()
	s.notifier.AppointmentStatusChanged(ctx, appointment)

	return appointment, nil
}

// Delete removes an appointment. Admin only; confirmed appointments
// cannot be deleted.
func (s *AppointmentService) Delete(ctx context.Context, principal entities.Principal, id string) error {
	if !principal.IsAdmin() {
		return apperrors.NewUnauthorizedError("only admins can delete appointments")
	}

	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.notifier.AppointmentDeleted(ctx, appointment)

	return nil
}

// Get retrieves one appointment, scoped to the caller: patients and
// doctors only see their own.
func (s *AppointmentService) Get(ctx context.Context, principal entities.Principal, id string) (*entities.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch principal.Role {
	case entities.RoleAdmin:
	case entities.RolePatient:
		if principal.ID != appointment.PatientID {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
		}
	case entities.RoleDoctor:
		if principal.ID != appointment.DoctorID {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
		}
	}

	return appointment, nil
}

// ListFor lists appointments visible to the caller, most recent
// start_time first. Patients and doctors are scoped to themselves, admins
// see everything the filter allows.
func (s *AppointmentService) ListFor(ctx context.Context, principal entities.Principal, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	switch principal.Role {
	case entities.RolePatient:
		filter.PatientID = principal.ID
		filter.DoctorID = ""
	case entities.RoleDoctor:
		filter.DoctorID = principal.ID
		filter.PatientID = ""
	case entities.RoleAdmin:
	default:
		return nil, apperrors.NewUnauthorizedError("unknown role")
	}

	return s.repo.List(ctx, filter)
}

// HasOpenAppointments reports whether a patient still has appointments
// that are not cancelled. The identity subsystem consults this before
// removing a user.
func (s *AppointmentService) HasOpenAppointments(ctx context.Context, principal entities.Principal, patientID string) (bool, error) {
	if !principal.IsAdmin() {
		return false, apperrors.NewUnauthorizedError("only admins can inspect a patient's open appointments")
	}
	if patientID == "" {
		return false, apperrors.NewValidationError("patient_id is required")
	}
	return s.repo.HasOpenForPatient(ctx, patientID)
}
