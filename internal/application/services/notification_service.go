package services

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/clinicdesk/clinic-booking/internal/domain/entities"
	"github.com/clinicdesk/clinic-booking/internal/domain/providers"
	"github.com/clinicdesk/clinic-booking/internal/infrastructure/observability"
)

// NotificationService records appointment events and fans them out over
// the event bus. Everything here is fire-and-forget: a failed
// notification never fails the operation that triggered it.
type NotificationService struct {
	db  *sqlx.DB
	bus providers.EventBus
}

// NewNotificationService creates a new notification service. Both the
// database handle and the bus may be nil, in which case the matching
// channel is skipped.
func NewNotificationService(db *sqlx.DB, bus providers.EventBus) *NotificationService {
	return &NotificationService{db: db, bus: bus}
}

// AppointmentBooked announces a newly created appointment
func (n *NotificationService) AppointmentBooked(ctx context.Context, appointment *entities.Appointment) {
	n.dispatch(ctx, entities.NewAppointmentEvent(appointment, entities.AppointmentEventTypeBooked))
}

// AppointmentStatusChanged announces a status transition
func (n *NotificationService) AppointmentStatusChanged(ctx context.Context, appointment *entities.Appointment) {
	n.dispatch(ctx, entities.NewAppointmentEvent(appointment, entities.AppointmentEventTypeStatusChanged))
}

// AppointmentPaid announces a recorded payment
func (n *NotificationService) AppointmentPaid(ctx context.Context, appointment *entities.Appointment) {
	n.dispatch(ctx, entities.NewAppointmentEvent(appointment, entities.AppointmentEventTypePaid))
}

// AppointmentDeleted announces a removed appointment
func (n *NotificationService) AppointmentDeleted(ctx context.Context, appointment *entities.Appointment) {
	n.dispatch(ctx, entities.NewAppointmentEvent(appointment, entities.AppointmentEventTypeDeleted))
}

func (n *NotificationService) dispatch(ctx context.Context, event *entities.AppointmentEvent) {
	if n == nil {
		return
	}
	logger := observability.LoggerFromContext(ctx)

	if n.db != nil {
		if err := n.logEvent(ctx, event); err != nil {
			logger.Warn().Err(err).
				Str("event_type", string(event.EventType)).
				Str("appointment_id", event.AppointmentID).
				Msg("Failed to record notification")
		}
	}

	if n.bus != nil {
		if err := n.bus.Publish(ctx, providers.EventChannelAppointmentUpdates, event); err != nil {
			logger.Warn().Err(err).
				Str("event_type", string(event.EventType)).
				Str("appointment_id", event.AppointmentID).
				Msg("Failed to publish appointment event")
		}
		if err := n.bus.Publish(ctx, providers.DoctorChannel(event.DoctorID), event); err != nil {
			logger.Warn().Err(err).
				Str("event_type", string(event.EventType)).
				Str("doctor_id", event.DoctorID).
				Msg("Failed to publish doctor event")
		}
	}
}

func (n *NotificationService) logEvent(ctx context.Context, event *entities.AppointmentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO notification_log (id, appointment_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = n.db.ExecContext(ctx, query,
		event.ID, event.AppointmentID, string(event.EventType), payload, event.Timestamp,
	)
	return err
}
