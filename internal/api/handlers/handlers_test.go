package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/clinicdesk/clinic-booking/internal/api/handlers"
	"github.com/clinicdesk/clinic-booking/internal/api/routes"
	"github.com/clinicdesk/clinic-booking/internal/application/services"
	"github.com/clinicdesk/clinic-booking/internal/domain/entities"
	"github.com/clinicdesk/clinic-booking/internal/domain/repositories"
	"github.com/clinicdesk/clinic-booking/internal/infrastructure/observability"
	"github.com/clinicdesk/clinic-booking/pkg/config"
)

// Mocks

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, appointment *entities.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) UpdateStatus(ctx context.Context, id string, from, to entities.AppointmentStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockAppointmentRepository) Confirm(ctx context.Context, id string, slotDuration time.Duration) (*entities.Appointment, error) {
	args := m.Called(ctx, id, slotDuration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAppointmentRepository) List(ctx context.Context, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ExistsConfirmedAt(ctx context.Context, doctorID string, at time.Time, slotDuration time.Duration) (bool, error) {
	args := m.Called(ctx, doctorID, at, slotDuration)
	return args.Bool(0), args.Error(1)
}

func (m *MockAppointmentRepository) ListConfirmedTimes(ctx context.Context, doctorID string, slotDuration time.Duration) ([]entities.ConfirmedSlot, error) {
	args := m.Called(ctx, doctorID, slotDuration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.ConfirmedSlot), args.Error(1)
}

func (m *MockAppointmentRepository) HasOpenForPatient(ctx context.Context, patientID string) (bool, error) {
	args := m.Called(ctx, patientID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAppointmentRepository) StatsRows(ctx context.Context) ([]repositories.AppointmentStatsRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.AppointmentStatsRow), args.Error(1)
}

type MockDoctorRepository struct {
	mock.Mock
}

func (m *MockDoctorRepository) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Doctor), args.Error(1)
}

func (m *MockDoctorRepository) List(ctx context.Context) ([]*entities.Doctor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Doctor), args.Error(1)
}

func (m *MockDoctorRepository) ListFees(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockDoctorRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) RecordPayment(ctx context.Context, payment *entities.Payment) (*entities.Payment, bool, error) {
	args := m.Called(ctx, payment)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entities.Payment), args.Bool(1), args.Error(2)
}

func (m *MockPaymentRepository) GetByAppointmentID(ctx context.Context, appointmentID string) (*entities.Payment, error) {
	args := m.Called(ctx, appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

// testEnv wires the full handler stack over mocked repositories.
type testEnv struct {
	handler      http.Handler
	appointments *MockAppointmentRepository
	doctors      *MockDoctorRepository
	users        *MockUserRepository
	payments     *MockPaymentRepository
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	appointments := new(MockAppointmentRepository)
	doctors := new(MockDoctorRepository)
	users := new(MockUserRepository)
	payments := new(MockPaymentRepository)

	scheduling := config.SchedulingConfig{
		OpeningHour: 10,
		ClosingHour: 21,
		SlotMinutes: 30,
		HorizonDays: 7,
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		t.Fatalf("Failed to init metrics: %v", err)
	}

	notifier := services.NewNotificationService(nil, nil)
	slotService := services.NewSlotService()
	availability := services.NewAvailabilityService(appointments, scheduling.SlotMinutes)
	appointmentService := services.NewAppointmentService(appointments, doctors, availability, notifier)
	paymentService := services.NewPaymentService(payments, appointments, notifier)
	statsService := services.NewStatsService(appointments, doctors, users)

	router := routes.NewRouter(
		handlers.NewDoctorHandler(doctors, slotService, availability, scheduling),
		handlers.NewAppointmentHandler(appointmentService, metrics),
		handlers.NewPaymentHandler(paymentService, metrics),
		handlers.NewStatsHandler(statsService),
		handlers.NewSSEHandler(nil),
		metrics,
	)

	return &testEnv{
		handler:      router.SetupRoutes(),
		appointments: appointments,
		doctors:      doctors,
		users:        users,
		payments:     payments,
	}
}

func (e *testEnv) do(method, path, body string, principal *entities.Principal) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if principal != nil {
		req.Header.Set("X-User-ID", principal.ID)
		req.Header.Set("X-User-Role", string(principal.Role))
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}
