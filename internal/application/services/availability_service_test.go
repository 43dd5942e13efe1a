package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/clinicdesk/clinic-booking/internal/application/services"
	"github.com/clinicdesk/clinic-booking/internal/domain/entities"
	apperrors "github.com/clinicdesk/clinic-booking/pkg/errors"
)

func TestAvailabilityService_IsBooked(t *testing.T) {
	ctx := context.Background()
	repo := new(MockAppointmentRepository)
	service := services.NewAvailabilityService(repo, 30)

	at := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	repo.On("ExistsConfirmedAt", mock.Anything, "doc-1", at, 30*time.Minute).Return(true, nil)

	booked, err := service.IsBooked(ctx, "doc-1", at)

	assert.NoError(t, err)
	assert.True(t, booked)
	repo.AssertExpectations(t)
}

func TestAvailabilityService_IsBooked_Validation(t *testing.T) {
	ctx := context.Background()
	service := services.NewAvailabilityService(new(MockAppointmentRepository), 30)

	_, err := service.IsBooked(ctx, "", time.Now())
	assert.True(t, apperrors.IsValidation(err))

	_, err = service.IsBooked(ctx, "doc-1", time.Time{})
	assert.True(t, apperrors.IsValidation(err))
}

func TestAvailabilityService_ConfirmedTimes(t *testing.T) {
	ctx := context.Background()
	repo := new(MockAppointmentRepository)
	service := services.NewAvailabilityService(repo, 30)

	start := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	repo.On("ListConfirmedTimes", mock.Anything, "doc-1", 30*time.Minute).
		Return([]entities.ConfirmedSlot{{StartTime: start, EndTime: start.Add(30 * time.Minute)}}, nil)

	slots, err := service.ConfirmedTimes(ctx, "doc-1")

	assert.NoError(t, err)
	assert.Len(t, slots, 1)
	assert.Equal(t, start, slots[0].StartTime)
}
