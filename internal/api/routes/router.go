package routes

import (
	"fmt"
	"net/http"

	"github.com/clinicdesk/clinic-booking/internal/api/handlers"
	"github.com/clinicdesk/clinic-booking/internal/api/middleware"
	"github.com/clinicdesk/clinic-booking/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	doctorHandler      *handlers.DoctorHandler
	appointmentHandler *handlers.AppointmentHandler
	paymentHandler     *handlers.PaymentHandler
	statsHandler       *handlers.StatsHandler
	sseHandler         *handlers.SSEHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	doctorHandler *handlers.DoctorHandler,
	appointmentHandler *handlers.AppointmentHandler,
	paymentHandler *handlers.PaymentHandler,
	statsHandler *handlers.StatsHandler,
	sseHandler *handlers.SSEHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                http.NewServeMux(),
		doctorHandler:      doctorHandler,
		appointmentHandler: appointmentHandler,
		paymentHandler:     paymentHandler,
		statsHandler:       statsHandler,
		sseHandler:         sseHandler,
		metrics:            metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Doctor directory and slot calendar
	r.mux.HandleFunc("GET /api/doctors", r.doctorHandler.ListDoctors)
	r.mux.HandleFunc("GET /api/doctors/{id}", r.doctorHandler.GetDoctor)
	r.mux.HandleFunc("GET /api/doctors/{id}/slots", r.doctorHandler.GetSlots)
	r.mux.HandleFunc("GET /api/doctors/{id}/availability", r.doctorHandler.GetAvailability)

	// Appointment endpoints
	r.mux.HandleFunc("POST /api/appointments", r.appointmentHandler.Book)
	r.mux.HandleFunc("GET /api/appointments", r.appointmentHandler.List)
	r.mux.HandleFunc("GET /api/appointments/{id}", r.appointmentHandler.Get)
	r.mux.HandleFunc("PATCH /api/appointments/{id}/status", r.appointmentHandler.SetStatus)
	r.mux.HandleFunc("POST /api/appointments/{id}/cancel", r.appointmentHandler.Cancel)
	r.mux.HandleFunc("POST /api/appointments/{id}/complete", r.appointmentHandler.Complete)
	r.mux.HandleFunc("DELETE /api/appointments/{id}", r.appointmentHandler.Delete)

	// Payment endpoints
	r.mux.HandleFunc("POST /api/payments", r.paymentHandler.Pay)
	r.mux.HandleFunc("GET /api/appointments/{id}/payment", r.paymentHandler.GetForAppointment)

	// Real-time appointment streams
	r.mux.HandleFunc("GET /api/stream/appointments", r.sseHandler.StreamAllUpdates)
	r.mux.HandleFunc("GET /api/stream/doctors/{id}", r.sseHandler.StreamDoctorUpdates)
	r.mux.HandleFunc("GET /api/stream/stats", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"connected_clients": %d}`, r.sseHandler.GetClientCount())
	})

	// Admin endpoints
	r.mux.HandleFunc("GET /api/admin/stats", r.statsHandler.GetDashboardStats)
	r.mux.HandleFunc("GET /api/admin/patients/{id}/open-appointments", r.appointmentHandler.OpenAppointments)

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS is outermost so every response carries its headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.AuthMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
