package services

import (
	"context"

	"github.com/clinicdesk/clinic-booking/internal/domain/entities"
	"github.com/clinicdesk/clinic-booking/internal/domain/repositories"
	"github.com/clinicdesk/clinic-booking/internal/infrastructure/observability"
	apperrors "github.com/clinicdesk/clinic-booking/pkg/errors"
)

// StatsService derives the admin dashboard projection from the ledger.
// Nothing here is persisted; every call recomputes from current rows.
type StatsService struct {
	appointments repositories.AppointmentRepository
	doctors      repositories.DoctorRepository
	users        repositories.UserRepository
}

// NewStatsService creates a new stats service
func NewStatsService(
	appointments repositories.AppointmentRepository,
	doctors repositories.DoctorRepository,
	users repositories.UserRepository,
) *StatsService {
	return &StatsService{
		appointments: appointments,
		doctors:      doctors,
		users:        users,
	}
}

// Compute builds the dashboard stats. Status buckets match the stored
// string exactly; rows with any other status value stay uncounted.
// Revenue sums the owning doctor's fee, looked up live, over paid
// appointments; fees that fail to parse contribute zero and surface as
// anomalies.
func (s *StatsService) Compute(ctx context.Context, principal entities.Principal) (*entities.DashboardStats, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.NewUnauthorizedError("only admins can view dashboard stats")
	}

	logger := observability.LoggerFromContext(ctx)

	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}

	totalDoctors, err := s.doctors.Count(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.appointments.StatsRows(ctx)
	if err != nil {
		return nil, err
	}

	fees, err := s.doctors.ListFees(ctx)
	if err != nil {
		return nil, err
	}

	stats := &entities.DashboardStats{
		TotalUsers:        totalUsers,
		TotalDoctors:      totalDoctors,
		TotalAppointments: int64(len(rows)),
	}

	flagged := make(map[string]bool)

	for _, row := range rows {
		switch row.Status {
		case "confirmed":
			stats.ConfirmedAppointments++
		case "cancelled":
			stats.CancelledAppointments++
		case "pending":
			stats.PendingAppointments++
		}

		if row.PaymentStatus != string(entities.PaymentStatusPaid) {
			continue
		}

		rawFee, ok := fees[row.DoctorID]
		if !ok {
			if !flagged[row.DoctorID] {
				flagged[row.DoctorID] = true
				stats.FeeAnomalies = append(stats.FeeAnomalies, entities.FeeAnomaly{DoctorID: row.DoctorID})
				logger.Warn().
					Str("doctor_id", row.DoctorID).
					Msg("Paid appointment references doctor with no fee on record")
			}
			continue
		}

		amount, ok := entities.ParseFee(rawFee)
		if !ok {
			if !flagged[row.DoctorID] {
				flagged[row.DoctorID] = true
				stats.FeeAnomalies = append(stats.FeeAnomalies, entities.FeeAnomaly{DoctorID: row.DoctorID, RawFee: rawFee})
				logger.Warn().
					Str("doctor_id", row.DoctorID).
					Str("raw_fee", rawFee).
					Msg("Unparseable doctor fee, counting as zero revenue")
			}
			continue
		}

		stats.TotalRevenue += amount
	}

	return stats, nil
}
