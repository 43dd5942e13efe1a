package entities

import (
	"time"
)

// User is read-only reference data owned by the identity subsystem.
// The core only counts users and checks their open appointments.
type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
