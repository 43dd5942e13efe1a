package services

import (
	"context"
	"time"

	"github.com/clinicdesk/clinic-booking/internal/domain/entities"
	"github.com/clinicdesk/clinic-booking/internal/domain/repositories"
	apperrors "github.com/clinicdesk/clinic-booking/pkg/errors"
)

// AvailabilityService answers whether a slot is free. Only confirmed
// appointments reserve a slot; pending holds are non-binding. Every call
// reads the latest committed ledger state, never a cache.
type AvailabilityService struct {
	repo         repositories.AppointmentRepository
	slotDuration time.Duration
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(repo repositories.AppointmentRepository, slotMinutes int) *AvailabilityService {
	return &AvailabilityService{
		repo:         repo,
		slotDuration: time.Duration(slotMinutes) * time.Minute,
	}
}

// SlotDuration returns the fixed appointment duration used for overlap
// checks.
func (s *AvailabilityService) SlotDuration() time.Duration {
	return s.slotDuration
}

// IsBooked reports whether a confirmed appointment for the doctor occupies
// a window containing the instant.
func (s *AvailabilityService) IsBooked(ctx context.Context, doctorID string, startTime time.Time) (bool, error) {
	if doctorID == "" {
		return false, apperrors.NewValidationError("doctor_id is required")
	}
	if startTime.IsZero() {
		return false, apperrors.NewValidationError("start_time is required")
	}
	return s.repo.ExistsConfirmedAt(ctx, doctorID, startTime, s.slotDuration)
}

// ConfirmedTimes returns the occupied windows of a doctor's confirmed
// appointments, earliest first. With an empty doctorID it spans all
// doctors, matching what the booking UI greys out.
func (s *AvailabilityService) ConfirmedTimes(ctx context.Context, doctorID string) ([]entities.ConfirmedSlot, error) {
	return s.repo.ListConfirmedTimes(ctx, doctorID, s.slotDuration)
}
