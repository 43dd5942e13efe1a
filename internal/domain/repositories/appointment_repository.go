package repositories

import (
	"context"
	"time"

	"github.com/clinicdesk/clinic-booking/internal/domain/entities"
)

// AppointmentRepository defines the interface for appointment ledger storage
type AppointmentRepository interface {
	// Create creates a new appointment
	Create(ctx context.Context, appointment *entities.Appointment) error

	// GetByID retrieves an appointment by ID
	GetByID(ctx context.Context, id string) (*entities.Appointment, error)

	// UpdateStatus flips the status from `from` to `to` in one conditional
	// write. It fails with a conflict when the stored status is no longer
	// `from`, and with not found when the id is unknown.
	UpdateStatus(ctx context.Context, id string, from, to entities.AppointmentStatus) error

	// Confirm atomically re-checks the confirmed-overlap invariant for the
	// appointment's slot and flips pending to confirmed. Exactly one of two
	// racing confirmations for overlapping slots succeeds; the loser gets a
	// conflict error.
	Confirm(ctx context.Context, id string, slotDuration time.Duration) (*entities.Appointment, error)

	// Delete removes an appointment
	Delete(ctx context.Context, id string) error

	// List retrieves appointments matching the filter, most recent
	// start_time first
	List(ctx context.Context, filter AppointmentFilter) ([]*entities.Appointment, error)

	// ExistsConfirmedAt reports whether a confirmed appointment for the
	// doctor occupies a window containing the instant
	ExistsConfirmedAt(ctx context.Context, doctorID string, at time.Time, slotDuration time.Duration) (bool, error)

	// ListConfirmedTimes returns the occupied windows of a doctor's
	// confirmed appointments in ascending start order
	ListConfirmedTimes(ctx context.Context, doctorID string, slotDuration time.Duration) ([]entities.ConfirmedSlot, error)

	// HasOpenForPatient reports whether the patient has any appointment
	// that is not cancelled
	HasOpenForPatient(ctx context.Context, patientID string) (bool, error)

	// StatsRows returns the minimal per-appointment projection the stats
	// aggregator scans
	StatsRows(ctx context.Context) ([]AppointmentStatsRow, error)
}

// AppointmentFilter defines filters for listing appointments
type AppointmentFilter struct {
	PatientID string
	DoctorID  string
	Status    entities.AppointmentStatus
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// AppointmentStatsRow is the projection of one appointment used by the
// dashboard aggregation.
type AppointmentStatsRow struct {
	ID            string
	DoctorID      string
	Status        string
	PaymentStatus string
}
