package entities

// Role is the authenticated caller's role as supplied by the identity
// subsystem. The core trusts it and applies its own checks per operation.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// ParseRole validates a raw role string
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RolePatient, RoleDoctor, RoleAdmin:
		return Role(raw), true
	}
	return "", false
}

// Principal is the request-scoped authenticated identity. There is no
// process-wide session state; every core call receives one explicitly.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// IsAdmin reports whether the principal holds the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
