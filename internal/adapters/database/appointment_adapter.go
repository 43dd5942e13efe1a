package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"

	"github.com/clinicdesk/clinic-booking/internal/domain/entities"
	"github.com/clinicdesk/clinic-booking/internal/domain/repositories"
	"github.com/clinicdesk/clinic-booking/internal/infrastructure/clients/postgres"
	apperrors "github.com/clinicdesk/clinic-booking/pkg/errors"
)

// appointmentColumns is the scan order shared by every appointment query.
var appointmentColumns = []interface{}{
	"id", "patient_id", "doctor_id", "start_time",
	"status", "payment_status", "note",
	"created_at", "updated_at",
}

// AppointmentAdapter implements the AppointmentRepository interface
type AppointmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAppointmentAdapter creates a new appointment adapter
func NewAppointmentAdapter(client *postgres.Client) repositories.AppointmentRepository {
	return &AppointmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new appointment
func (a *AppointmentAdapter) Create(ctx context.Context, appointment *entities.Appointment) error {
	record := goqu.Record{
		"id":             appointment.ID,
		"patient_id":     appointment.PatientID,
		"doctor_id":      appointment.DoctorID,
		"start_time":     appointment.StartTime,
		"status":         appointment.Status,
		"payment_status": appointment.PaymentStatus,
		"note":           appointment.Note,
		"created_at":     appointment.CreatedAt,
		"updated_at":     appointment.UpdatedAt,
	}

	query, args, err := a.db.Insert("appointments").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return apperrors.NewConflictError("slot already confirmed by another patient")
	}
	if err != nil {
		return apperrors.NewInternalError("failed to create appointment", err)
	}

	return nil
}

// GetByID retrieves an appointment by ID
func (a *AppointmentAdapter) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	query, args, err := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	row := a.client.DB().QueryRowContext(ctx, query, args...)
	appointment, err := scanAppointment(row.Scan)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get appointment", err)
	}

	return appointment, nil
}

// UpdateStatus flips the status from `from` to `to` in one conditional write.
func (a *AppointmentAdapter) UpdateStatus(ctx context.Context, id string, from, to entities.AppointmentStatus) error {
	query, args, err := a.db.Update("appointments").
		Set(goqu.Record{
			"status":     to,
			"updated_at": time.Now(),
		}).
		Where(goqu.Ex{"id": id, "status": from}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update appointment status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		// Lost a race or the id is unknown; a follow-up read tells which.
		if _, getErr := a.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return apperrors.NewConflictError(fmt.Sprintf("appointment is no longer %s", from))
	}

	return nil
}

// Confirm atomically re-checks the confirmed-overlap invariant and flips
// pending to confirmed. The pre-image status decides the error: confirmed
// means the appointment itself was already confirmed, an overlapping
// confirmed row for the same doctor means the slot went to someone else.
func (a *AppointmentAdapter) Confirm(ctx context.Context, id string, slotDuration time.Duration) (*entities.Appointment, error) {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	query, args, err := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(goqu.Ex{"id": id}).
		ForUpdate(exp.Wait).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build lock query", err)
	}

	row := tx.QueryRowContext(ctx, query, args...)
	appointment, err := scanAppointment(row.Scan)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to lock appointment", err)
	}

	switch appointment.Status {
	case entities.AppointmentStatusPending:
	case entities.AppointmentStatusConfirmed:
		return nil, apperrors.NewConflictError("appointment is already confirmed and cannot change status")
	default:
		return nil, apperrors.NewConflictError(fmt.Sprintf("appointment is %s and cannot be confirmed", appointment.Status))
	}

	// Lock every confirmed appointment of this doctor whose window overlaps
	// the candidate slot. Two racing confirmations serialize on these rows
	// (or, when neither sees the other, on the partial unique index below).
	windowStart := appointment.StartTime.Add(-slotDuration)
	windowEnd := appointment.StartTime.Add(slotDuration)
	query, args, err = a.db.Select("id").
		From("appointments").
		Where(
			goqu.Ex{"doctor_id": appointment.DoctorID, "status": entities.AppointmentStatusConfirmed},
			goqu.C("start_time").Gt(windowStart),
			goqu.C("start_time").Lt(windowEnd),
		).
		ForUpdate(exp.Wait).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build overlap query", err)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to check for conflicting appointments", err)
	}
	conflicting := rows.Next()
	if err := rows.Close(); err != nil {
		return nil, apperrors.NewInternalError("failed to read conflicting appointments", err)
	}
	if conflicting {
		return nil, apperrors.NewConflictError("slot already confirmed by another patient")
	}

	now := time.Now()
	query, args, err = a.db.Update("appointments").
		Set(goqu.Record{
			"status":     entities.AppointmentStatusConfirmed,
			"updated_at": now,
		}).
		Where(goqu.Ex{"id": id, "status": entities.AppointmentStatusPending}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build confirm query", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflictError("slot already confirmed by another patient")
		}
		return nil, apperrors.NewInternalError("failed to confirm appointment", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflictError("slot already confirmed by another patient")
		}
		return nil, apperrors.NewInternalError("failed to commit confirmation", err)
	}

	appointment.Status = entities.AppointmentStatusConfirmed
	appointment.UpdatedAt = now
	return appointment, nil
}

// Delete removes an appointment. Confirmed appointments cannot be deleted.
func (a *AppointmentAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("appointments").
		Where(
			goqu.Ex{"id": id},
			goqu.C("status").Neq(entities.AppointmentStatusConfirmed),
		).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete appointment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		if _, getErr := a.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return apperrors.NewConflictError("confirmed appointments cannot be deleted")
	}

	return nil
}

// List retrieves appointments matching the filter, most recent first
func (a *AppointmentAdapter) List(ctx context.Context, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	ds := a.db.Select(appointmentColumns...).From("appointments")

	if filter.PatientID != "" {
		ds = ds.Where(goqu.Ex{"patient_id": filter.PatientID})
	}
	if filter.DoctorID != "" {
		ds = ds.Where(goqu.Ex{"doctor_id": filter.DoctorID})
	}
	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": filter.Status})
	}
	if filter.From != nil {
		ds = ds.Where(goqu.C("start_time").Gte(*filter.From))
	}
	if filter.To != nil {
		ds = ds.Where(goqu.C("start_time").Lte(*filter.To))
	}

	ds = ds.Order(goqu.I("start_time").Desc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list appointments", err)
	}
	defer rows.Close()

	var appointments []*entities.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows.Scan)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan appointment", err)
		}
		appointments = append(appointments, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate appointments", err)
	}

	return appointments, nil
}

// ExistsConfirmedAt reports whether a confirmed appointment's window
// [start, start+slotDuration) contains the instant for the doctor.
func (a *AppointmentAdapter) ExistsConfirmedAt(ctx context.Context, doctorID string, at time.Time, slotDuration time.Duration) (bool, error) {
	query, args, err := a.db.Select(goqu.COUNT("id")).
		From("appointments").
		Where(
			goqu.Ex{"doctor_id": doctorID, "status": entities.AppointmentStatusConfirmed},
			goqu.C("start_time").Gt(at.Add(-slotDuration)),
			goqu.C("start_time").Lte(at),
		).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build availability query", err)
	}

	var count int64
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, apperrors.NewInternalError("failed to check availability", err)
	}

	return count > 0, nil
}

// ListConfirmedTimes returns the occupied windows of a doctor's confirmed
// appointments, earliest first.
func (a *AppointmentAdapter) ListConfirmedTimes(ctx context.Context, doctorID string, slotDuration time.Duration) ([]entities.ConfirmedSlot, error) {
	ds := a.db.Select("start_time").
		From("appointments").
		Where(goqu.Ex{"status": entities.AppointmentStatusConfirmed})
	if doctorID != "" {
		ds = ds.Where(goqu.Ex{"doctor_id": doctorID})
	}
	ds = ds.Order(goqu.I("start_time").Asc())

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build confirmed times query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list confirmed times", err)
	}
	defer rows.Close()

	var slots []entities.ConfirmedSlot
	for rows.Next() {
		var start time.Time
		if err := rows.Scan(&start); err != nil {
			return nil, apperrors.NewInternalError("failed to scan confirmed time", err)
		}
		slots = append(slots, entities.ConfirmedSlot{
			StartTime: start,
			EndTime:   start.Add(slotDuration),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate confirmed times", err)
	}

	return slots, nil
}

// HasOpenForPatient reports whether the patient has any appointment that is
// not cancelled. Both historical spellings of cancelled are excluded.
func (a *AppointmentAdapter) HasOpenForPatient(ctx context.Context, patientID string) (bool, error) {
	query, args, err := a.db.Select(goqu.COUNT("id")).
		From("appointments").
		Where(
			goqu.Ex{"patient_id": patientID},
			goqu.C("status").NotIn([]string{string(entities.AppointmentStatusCancelled), "canceled"}),
		).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build open appointments query", err)
	}

	var count int64
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, apperrors.NewInternalError("failed to check open appointments", err)
	}

	return count > 0, nil
}

// StatsRows returns the per-appointment projection scanned by the dashboard
// aggregation. Status strings are returned raw; the aggregator buckets them.
func (a *AppointmentAdapter) StatsRows(ctx context.Context) ([]repositories.AppointmentStatsRow, error) {
	query, args, err := a.db.Select("id", "doctor_id", "status", "payment_status").
		From("appointments").
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build stats query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to scan appointments for stats", err)
	}
	defer rows.Close()

	var result []repositories.AppointmentStatsRow
	for rows.Next() {
		var row repositories.AppointmentStatsRow
		if err := rows.Scan(&row.ID, &row.DoctorID, &row.Status, &row.PaymentStatus); err != nil {
			return nil, apperrors.NewInternalError("failed to scan stats row", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate stats rows", err)
	}

	return result, nil
}

// scanAppointment scans one appointment row, normalizing legacy status
// spellings on the way in.
func scanAppointment(scan func(dest ...interface{}) error) (*entities.Appointment, error) {
	appointment := &entities.Appointment{}
	var status string
	var note sql.NullString

	err := scan(
		&appointment.ID,
		&appointment.PatientID,
		&appointment.DoctorID,
		&appointment.StartTime,
		&status,
		&appointment.PaymentStatus,
		&note,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	normalized, _ := entities.NormalizeStatus(status)
	appointment.Status = normalized
	appointment.Note = note.String

	return appointment, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (the confirmed-slot partial index or the one-payment index).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
