package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/clinicdesk/clinic-booking/internal/api/middleware"
	"github.com/clinicdesk/clinic-booking/internal/application/services"
	"github.com/clinicdesk/clinic-booking/internal/infrastructure/observability"
)

// PaymentHandler handles payment reconciliation requests
type PaymentHandler struct {
	service *services.PaymentService
	metrics *observability.Metrics
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service *services.PaymentService, metrics *observability.Metrics) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		metrics: metrics,
	}
}

// Pay handles POST /api/payments
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req services.PayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	payment, err := h.service.Pay(r.Context(), principal, req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	observability.RecordPayment(r.Context(), h.metrics, payment.Method)

	respondWithJSON(w, http.StatusCreated, payment)
}

// GetForAppointment handles GET /api/appointments/{id}/payment
func (h *PaymentHandler) GetForAppointment(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	appointmentID := r.PathValue("id")
	if appointmentID == "" {
		respondWithError(w, http.StatusBadRequest, "appointment ID is required")
		return
	}

	payment, err := h.service.GetForAppointment(r.Context(), principal, appointmentID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, payment)
}
