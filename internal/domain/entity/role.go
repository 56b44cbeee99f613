package entity

// Role represents the type of role a user can have in the system.
// It is a closed set; the authorization policy in internal/domain/authz
// is the single place role-based decisions are made.
type Role string

const (
	// RoleAdmin indicates a platform administrator.
	RoleAdmin Role = "ADMIN"
	// RoleProvider indicates a service provider (consultancy).
	RoleProvider Role = "PROVIDER"
	// RoleCustomer indicates a regular customer.
	RoleCustomer Role = "CUSTOMER"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleProvider, RoleCustomer:
		return true
	default:
		return false
	}
}

// RoleFromString converts a string (e.g. a JWT claim) to a Role,
// reporting whether the string named a known role.
func RoleFromString(s string) (Role, bool) {
	role := Role(s)

	return role, role.IsValid()
}
