package auth

import "errors"

// Role represents an authorisation tier.
type Role string

const (
	// RoleViewer can read readings, correlations and inventory.
	RoleViewer Role = "viewer"

	// RoleSensor is a machine identity that can also ingest readings.
	RoleSensor Role = "sensor"

	// RoleAdmin has every permission.
	RoleAdmin Role = "admin"
)

// ValidRoles is the set of roles a token may carry.
var ValidRoles = []Role{RoleViewer, RoleSensor, RoleAdmin}

// IsValidRole reports whether r is a known role.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if v == r {
			return true
		}
	}
	return false
}

// Errors.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrInvalidRole  = errors.New("invalid role")
	ErrForbidden    = errors.New("insufficient permissions")
)
