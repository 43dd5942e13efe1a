package handlers

import (
	"net/http"
	"time"

	"github.com/clinicdesk/clinic-booking/internal/application/services"
	"github.com/clinicdesk/clinic-booking/internal/domain/repositories"
	"github.com/clinicdesk/clinic-booking/pkg/config"
)

// DoctorHandler serves the doctor directory and the slot calendar
type DoctorHandler struct {
	doctorRepo   repositories.DoctorRepository
	slots        *services.SlotService
	availability *services.AvailabilityService
	scheduling   config.SchedulingConfig
}

// NewDoctorHandler creates a new doctor handler
func NewDoctorHandler(
	doctorRepo repositories.DoctorRepository,
	slots *services.SlotService,
	availability *services.AvailabilityService,
	scheduling config.SchedulingConfig,
) *DoctorHandler {
	return &DoctorHandler{
		doctorRepo:   doctorRepo,
		slots:        slots,
		availability: availability,
		scheduling:   scheduling,
	}
}

// ListDoctors handles GET /api/doctors
func (h *DoctorHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.doctorRepo.List(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctors": doctors,
		"count":   len(doctors),
	})
}

// GetDoctor handles GET /api/doctors/{id}
func (h *DoctorHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "doctor ID is required")
		return
	}

	doctor, err := h.doctorRepo.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, doctor)
}

// GetSlots handles GET /api/doctors/{id}/slots. It returns the candidate
// slot calendar over the configured horizon; confirmed bookings are not
// subtracted here, the client checks availability per slot at booking
// time.
func (h *DoctorHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "doctor ID is required")
		return
	}

	doctor, err := h.doctorRepo.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	days := h.slots.Generate(doctor.WorkingHours, h.scheduling.HorizonDays, h.scheduling.SlotMinutes, time.Now())

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctor_id": doctor.ID,
		"days":      days,
	})
}

// GetAvailability handles GET /api/doctors/{id}/availability. With a
// start_time query it answers whether that slot is blocked by a
// confirmed appointment; without one it lists all confirmed times.
func (h *DoctorHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "doctor ID is required")
		return
	}

	if startStr := r.URL.Query().Get("start_time"); startStr != "" {
		startTime, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid start_time format (use RFC3339)")
			return
		}

		booked, err := h.availability.IsBooked(r.Context(), id, startTime)
		if err != nil {
			respondWithAppError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"doctor_id":  id,
			"start_time": startTime,
			"booked":     booked,
		})
		return
	}

	confirmed, err := h.availability.ConfirmedTimes(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctor_id": id,
		"confirmed": confirmed,
	})
}
