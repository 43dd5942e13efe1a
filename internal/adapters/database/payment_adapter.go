package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/clinicdesk/clinic-booking/internal/domain/entities"
	"github.com/clinicdesk/clinic-booking/internal/domain/repositories"
	"github.com/clinicdesk/clinic-booking/internal/infrastructure/clients/postgres"
	apperrors "github.com/clinicdesk/clinic-booking/pkg/errors"
)

var paymentColumns = []interface{}{
	"id", "appointment_id", "amount", "method",
	"status", "payment_time", "created_at",
}

// PaymentAdapter implements the PaymentRepository interface
type PaymentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPaymentAdapter creates a new payment adapter
func NewPaymentAdapter(client *postgres.Client) repositories.PaymentRepository {
	return &PaymentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// RecordPayment performs the reconciliation atomic unit. The appointment
// row is locked first so a reader inside a transaction can never observe a
// payment without the matching payment_status, or vice versa.
func (a *PaymentAdapter) RecordPayment(ctx context.Context, payment *entities.Payment) (*entities.Payment, bool, error) {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return nil, false, apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	query, args, err := a.db.Select("status").
		From("appointments").
		Where(goqu.Ex{"id": payment.AppointmentID}).
		ForUpdate(exp.Wait).
		ToSQL()
	if err != nil {
		return nil, false, apperrors.NewInternalError("failed to build lock query", err)
	}

	var rawStatus string
	err = tx.QueryRowContext(ctx, query, args...).Scan(&rawStatus)
	if err == sql.ErrNoRows {
		return nil, false, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", payment.AppointmentID))
	}
	if err != nil {
		return nil, false, apperrors.NewInternalError("failed to lock appointment", err)
	}

	status, _ := entities.NormalizeStatus(rawStatus)
	if status != entities.AppointmentStatusConfirmed {
		return nil, false, apperrors.NewConflictError("appointment is not confirmed and cannot be paid")
	}

	// Idempotency per appointment: an existing payment wins and no second
	// row is written.
	existing, err := a.getByAppointmentIDTx(ctx, tx, payment.AppointmentID)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, false, err
	}
	if existing != nil {
		if err := tx.Commit(); err != nil {
			return nil, false, apperrors.NewInternalError("failed to commit payment read", err)
		}
		return existing, false, nil
	}

	record := goqu.Record{
		"id":             payment.ID,
		"appointment_id": payment.AppointmentID,
		"amount":         payment.Amount,
		"method":         payment.Method,
		"status":         payment.Status,
		"payment_time":   payment.PaymentTime,
		"created_at":     payment.CreatedAt,
	}
	query, args, err = a.db.Insert("payments").Rows(record).ToSQL()
	if err != nil {
		return nil, false, apperrors.NewInternalError("failed to build payment insert", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, false, apperrors.NewConflictError("appointment already has a payment")
		}
		return nil, false, apperrors.NewInternalError("failed to insert payment", err)
	}

	query, args, err = a.db.Update("appointments").
		Set(goqu.Record{
			"payment_status": entities.PaymentStatusPaid,
			"updated_at":     time.Now(),
		}).
		Where(goqu.Ex{"id": payment.AppointmentID}).
		ToSQL()
	if err != nil {
		return nil, false, apperrors.NewInternalError("failed to build payment status update", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, false, apperrors.NewInternalError("failed to mark appointment paid", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, apperrors.NewInternalError("failed to commit payment", err)
	}

	return payment, true, nil
}

// GetByAppointmentID retrieves the payment referencing an appointment
func (a *PaymentAdapter) GetByAppointmentID(ctx context.Context, appointmentID string) (*entities.Payment, error) {
	return a.getByAppointmentID(ctx, a.client.DB(), appointmentID)
}

// queryRower is satisfied by both *sql.DB and *sql.Tx
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (a *PaymentAdapter) getByAppointmentID(ctx context.Context, q queryRower, appointmentID string) (*entities.Payment, error) {
	query, args, err := a.db.Select(paymentColumns...).
		From("payments").
		Where(goqu.Ex{"appointment_id": appointmentID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build payment query", err)
	}

	payment := &entities.Payment{}
	err = q.QueryRowContext(ctx, query, args...).Scan(
		&payment.ID,
		&payment.AppointmentID,
		&payment.Amount,
		&payment.Method,
		&payment.Status,
		&payment.PaymentTime,
		&payment.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no payment for appointment %s", appointmentID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get payment", err)
	}

	return payment, nil
}

func (a *PaymentAdapter) getByAppointmentIDTx(ctx context.Context, tx *sql.Tx, appointmentID string) (*entities.Payment, error) {
	return a.getByAppointmentID(ctx, tx, appointmentID)
}
