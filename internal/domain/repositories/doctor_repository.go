package repositories

import (
	"context"

	"github.com/clinicdesk/clinic-booking/internal/domain/entities"
)

// DoctorRepository is the read-only view of the doctor directory the core
// consumes. Doctor records are owned by the identity/profile subsystem.
type DoctorRepository interface {
	// GetByID retrieves a doctor by ID
	GetByID(ctx context.Context, id string) (*entities.Doctor, error)

	// List retrieves all doctors
	List(ctx context.Context) ([]*entities.Doctor, error)

	// ListFees returns the raw fee value per doctor ID
	ListFees(ctx context.Context) (map[string]string, error)

	// Count returns the number of doctors
	Count(ctx context.Context) (int64, error)
}

// UserRepository is the read-only view of the patient directory.
type UserRepository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// Count returns the number of users
	Count(ctx context.Context) (int64, error)
}
