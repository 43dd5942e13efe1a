package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/clinicdesk/clinic-booking/internal/api/middleware"
	"github.com/clinicdesk/clinic-booking/internal/domain/entities"
	"github.com/clinicdesk/clinic-booking/internal/domain/providers"
	"github.com/clinicdesk/clinic-booking/internal/infrastructure/observability"
)

// SSEHandler handles Server-Sent Events for real-time appointment updates
type SSEHandler struct {
	eventBus    providers.EventBus
	heartbeat   time.Duration
	clientCount atomic.Int64
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus) *SSEHandler {
	return &SSEHandler{eventBus: eventBus, heartbeat: 30 * time.Second}
}

// StreamDoctorUpdates handles SSE connections for a single doctor's
// appointment updates. GET /api/stream/doctors/{id}
func (h *SSEHandler) StreamDoctorUpdates(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	doctorID := r.PathValue("id")
	if doctorID == "" {
		respondWithError(w, http.StatusBadRequest, "doctor ID is required")
		return
	}
	if !principal.IsAdmin() && !(principal.Role == entities.RoleDoctor && principal.ID == doctorID) {
		respondWithError(w, http.StatusForbidden, "cannot stream another doctor's updates")
		return
	}

	h.stream(w, r, providers.DoctorChannel(doctorID), map[string]interface{}{
		"doctor_id": doctorID,
	})
}

// StreamAllUpdates handles SSE connections for every appointment update.
// GET /api/stream/appointments
func (h *SSEHandler) StreamAllUpdates(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !principal.IsAdmin() {
		respondWithError(w, http.StatusForbidden, "only admins can stream all appointment updates")
		return
	}

	h.stream(w, r, providers.EventChannelAppointmentUpdates, nil)
}

// GetClientCount returns the number of connected SSE clients
func (h *SSEHandler) GetClientCount() int64 {
	return h.clientCount.Load()
}

func (h *SSEHandler) stream(w http.ResponseWriter, r *http.Request, channel string, hello map[string]interface{}) {
	if h.eventBus == nil {
		respondWithError(w, http.StatusServiceUnavailable, "event streaming is not available")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	logger := observability.LoggerFromContext(r.Context())

	// The server's write deadline is sized for JSON responses and would
	// sever the stream before the first heartbeat. Clear it for this
	// connection only.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		logger.Warn().Err(err).Msg("Failed to clear write deadline for event stream")
	}

	eventChan, err := h.eventBus.Subscribe(r.Context(), channel)
	if err != nil {
		logger.Error().Err(err).Str("channel", channel).Msg("Failed to subscribe to event channel")
		respondWithError(w, http.StatusInternalServerError, "failed to subscribe to updates")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	h.clientCount.Add(1)
	defer h.clientCount.Add(-1)

	connected := map[string]interface{}{"timestamp": time.Now()}
	for k, v := range hello {
		connected[k] = v
	}
	sendEvent(w, "connected", connected)
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			sendEvent(w, "heartbeat", map[string]interface{}{"timestamp": time.Now()})
			flusher.Flush()
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

func sendEvent(w http.ResponseWriter, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, data)
}
