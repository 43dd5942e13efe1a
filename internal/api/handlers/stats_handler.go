package handlers

import (
	"net/http"

	"github.com/clinicdesk/clinic-booking/internal/api/middleware"
	"github.com/clinicdesk/clinic-booking/internal/application/services"
)

// StatsHandler serves the admin dashboard projection
type StatsHandler struct {
	service *services.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(service *services.StatsService) *StatsHandler {
	return &StatsHandler{
		service: service,
	}
}

// GetDashboardStats handles GET /api/admin/stats
func (h *StatsHandler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	stats, err := h.service.Compute(r.Context(), principal)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}
