package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/clinicdesk/clinic-booking/internal/domain/entities"
	"github.com/clinicdesk/clinic-booking/internal/domain/repositories"
	"github.com/clinicdesk/clinic-booking/internal/infrastructure/clients/postgres"
	apperrors "github.com/clinicdesk/clinic-booking/pkg/errors"
)

// DoctorAdapter implements the read-only DoctorRepository view over the
// doctors table the profile subsystem owns.
type DoctorAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDoctorAdapter creates a new doctor adapter
func NewDoctorAdapter(client *postgres.Client) repositories.DoctorRepository {
	return &DoctorAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a doctor by ID
func (a *DoctorAdapter) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	query, args, err := a.db.Select(
		"id", "name", "speciality", "fee", "is_active",
		"opening_hour", "closing_hour", "created_at",
	).From("doctors").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	doctor, err := scanDoctor(a.client.DB().QueryRowContext(ctx, query, args...).Scan)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("doctor with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get doctor", err)
	}

	return doctor, nil
}

// List retrieves all doctors
func (a *DoctorAdapter) List(ctx context.Context) ([]*entities.Doctor, error) {
	query, args, err := a.db.Select(
		"id", "name", "speciality", "fee", "is_active",
		"opening_hour", "closing_hour", "created_at",
	).From("doctors").
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list doctors", err)
	}
	defer rows.Close()

	var doctors []*entities.Doctor
	for rows.Next() {
		doctor, err := scanDoctor(rows.Scan)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan doctor", err)
		}
		doctors = append(doctors, doctor)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate doctors", err)
	}

	return doctors, nil
}

// ListFees returns the raw fee value per doctor ID. Fees stay raw here;
// normalization is the aggregator's concern.
func (a *DoctorAdapter) ListFees(ctx context.Context) (map[string]string, error) {
	query, args, err := a.db.Select("id", "fee").From("doctors").ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build fees query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list fees", err)
	}
	defer rows.Close()

	fees := make(map[string]string)
	for rows.Next() {
		var id string
		var fee sql.NullString
		if err := rows.Scan(&id, &fee); err != nil {
			return nil, apperrors.NewInternalError("failed to scan fee", err)
		}
		fees[id] = fee.String
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate fees", err)
	}

	return fees, nil
}

// Count returns the number of doctors
func (a *DoctorAdapter) Count(ctx context.Context) (int64, error) {
	return a.countTable(ctx, "doctors")
}

func (a *DoctorAdapter) countTable(ctx context.Context, table string) (int64, error) {
	query, args, err := a.db.Select(goqu.COUNT("id")).From(table).ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int64
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError(fmt.Sprintf("failed to count %s", table), err)
	}

	return count, nil
}

func scanDoctor(scan func(dest ...interface{}) error) (*entities.Doctor, error) {
	doctor := &entities.Doctor{}
	var speciality, fee sql.NullString

	err := scan(
		&doctor.ID,
		&doctor.Name,
		&speciality,
		&fee,
		&doctor.IsActive,
		&doctor.WorkingHours.OpeningHour,
		&doctor.WorkingHours.ClosingHour,
		&doctor.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	doctor.Speciality = speciality.String
	doctor.Fee = fee.String

	return doctor, nil
}
