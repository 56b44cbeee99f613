// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core entity in the system, representing a unique account.
// The role is assigned at registration and is immutable afterwards; there
// is no promotion endpoint.
type User struct {
	ID              uuid.UUID        // The unique identifier for the user.
	Email           string           // The user's login identifier; unique across the system.
	Name            string           // The user's display name.
	Role            Role             // The user's role: ADMIN, PROVIDER or CUSTOMER.
	EmailVerifiedAt *time.Time       // When the email address was verified; nil if unverified.
	ProviderProfile *ProviderProfile // Present only for users with the PROVIDER role.
	CreatedAt       time.Time        // Timestamp of when this account was created.
	UpdatedAt       time.Time        // Timestamp of the last modification to this user's data.
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ProviderProfile holds data specific to the PROVIDER role. It is a 1:1
// extension of a User and owns zero or more Services.
type ProviderProfile struct {
	ID                 uuid.UUID // The unique identifier of the provider profile itself.
	UserID             uuid.UUID // Foreign key linking this profile to its User.
	CompanyName        string    // The provider's registered company name.
	Description        string    // A free-form description of the consultancy.
	Website            string    // The provider's public website, if any.
	Phone              string    // Contact phone number.
	VerificationStatus string    // Platform verification state, e.g. "PENDING", "VERIFIED".
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
