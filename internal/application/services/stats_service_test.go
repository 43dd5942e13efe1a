package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinic-booking/internal/application/services"
	"github.com/clinicdesk/clinic-booking/internal/domain/repositories"
	apperrors "github.com/clinicdesk/clinic-booking/pkg/errors"
)

func TestStatsService_Compute(t *testing.T) {
	ctx := context.Background()
	appointments := new(MockAppointmentRepository)
	doctors := new(MockDoctorRepository)
	users := new(MockUserRepository)
	service := services.NewStatsService(appointments, doctors, users)

	users.On("Count", mock.Anything).Return(int64(12), nil)
	doctors.On("Count", mock.Anything).Return(int64(4), nil)
	appointments.On("StatsRows", mock.Anything).Return([]repositories.AppointmentStatsRow{
		{ID: "a1", DoctorID: "doc-1", Status: "confirmed", PaymentStatus: "paid"},
		{ID: "a2", DoctorID: "doc-1", Status: "confirmed", PaymentStatus: "unpaid"},
		{ID: "a3", DoctorID: "doc-2", Status: "pending", PaymentStatus: "unpaid"},
		{ID: "a4", DoctorID: "doc-2", Status: "cancelled", PaymentStatus: "unpaid"},
		{ID: "a5", DoctorID: "doc-2", Status: "completed", PaymentStatus: "paid"},
	}, nil)
	doctors.On("ListFees", mock.Anything).Return(map[string]string{
		"doc-1": "25000",
		"doc-2": "500.000 VND",
	}, nil)

	stats, err := service.Compute(ctx, admin)

	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.TotalUsers)
	assert.Equal(t, int64(4), stats.TotalDoctors)
	assert.Equal(t, int64(5), stats.TotalAppointments)
	assert.Equal(t, int64(2), stats.ConfirmedAppointments)
	assert.Equal(t, int64(1), stats.CancelledAppointments)
	assert.Equal(t, int64(1), stats.PendingAppointments)
	assert.InDelta(t, 525000, stats.TotalRevenue, 0.001)
	assert.Empty(t, stats.FeeAnomalies)
}

func TestStatsService_Compute_UnparseableFeeIsAnomaly(t *testing.T) {
	ctx := context.Background()
	appointments := new(MockAppointmentRepository)
	doctors := new(MockDoctorRepository)
	users := new(MockUserRepository)
	service := services.NewStatsService(appointments, doctors, users)

	users.On("Count", mock.Anything).Return(int64(1), nil)
	doctors.On("Count", mock.Anything).Return(int64(2), nil)
	appointments.On("StatsRows", mock.Anything).Return([]repositories.AppointmentStatsRow{
		{ID: "a1", DoctorID: "doc-1", Status: "confirmed", PaymentStatus: "paid"},
		{ID: "a2", DoctorID: "doc-1", Status: "confirmed", PaymentStatus: "paid"},
		{ID: "a3", DoctorID: "doc-2", Status: "confirmed", PaymentStatus: "paid"},
	}, nil)
	doctors.On("ListFees", mock.Anything).Return(map[string]string{
		"doc-1": "N/A",
		"doc-2": "150",
	}, nil)

	stats, err := service.Compute(ctx, admin)

	require.NoError(t, err)
	assert.InDelta(t, 150, stats.TotalRevenue, 0.001)
	// The anomaly is reported once per doctor, not once per appointment.
	require.Len(t, stats.FeeAnomalies, 1)
	assert.Equal(t, "doc-1", stats.FeeAnomalies[0].DoctorID)
	assert.Equal(t, "N/A", stats.FeeAnomalies[0].RawFee)
}

func TestStatsService_Compute_UnknownStatusUncounted(t *testing.T) {
	ctx := context.Background()
	appointments := new(MockAppointmentRepository)
	doctors := new(MockDoctorRepository)
	users := new(MockUserRepository)
	service := services.NewStatsService(appointments, doctors, users)

	users.On("Count", mock.Anything).Return(int64(0), nil)
	doctors.On("Count", mock.Anything).Return(int64(0), nil)
	// The legacy single-l spelling and arbitrary strings fall outside
	// every bucket but still count toward the total.
	appointments.On("StatsRows", mock.Anything).Return([]repositories.AppointmentStatsRow{
		{ID: "a1", DoctorID: "doc-1", Status: "canceled", PaymentStatus: "unpaid"},
		{ID: "a2", DoctorID: "doc-1", Status: "rescheduled", PaymentStatus: "unpaid"},
	}, nil)
	doctors.On("ListFees", mock.Anything).Return(map[string]string{}, nil)

	stats, err := service.Compute(ctx, admin)

	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalAppointments)
	assert.Zero(t, stats.ConfirmedAppointments)
	assert.Zero(t, stats.CancelledAppointments)
	assert.Zero(t, stats.PendingAppointments)
}

func TestStatsService_Compute_AdminOnly(t *testing.T) {
	ctx := context.Background()
	service := services.NewStatsService(new(MockAppointmentRepository), new(MockDoctorRepository), new(MockUserRepository))

	_, err := service.Compute(ctx, patient)

	assert.True(t, apperrors.IsUnauthorized(err))
}
