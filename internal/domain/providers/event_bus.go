package providers

import (
	"context"
	"fmt"

	"github.com/clinicdesk/clinic-booking/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.AppointmentEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.AppointmentEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannel constants for different event scopes
const (
	// EventChannelAppointmentUpdates is the channel for all appointment updates
	EventChannelAppointmentUpdates = "appointments:updates"

	// EventChannelDoctorPrefix is the prefix for doctor-specific channels
	EventChannelDoctorPrefix = "appointments:doctor:"
)

// DoctorChannel returns the channel name for a specific doctor's updates
func DoctorChannel(doctorID string) string {
	return fmt.Sprintf("%s%s", EventChannelDoctorPrefix, doctorID)
}
