package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProviderTypeEmail is the credential provider for email/password logins.
// It is the only provider this deployment uses; external identity
// providers would add their own constants here.
const ProviderTypeEmail = "email"

// Authentication represents a single method of logging in (a credential).
type Authentication struct {
	ID             uuid.UUID // The unique ID for this specific authentication record itself.
	UserID         uuid.UUID // Links this authentication method to the User it belongs to.
	Provider       string    // The authentication provider; always "email" here.
	ProviderUserID string    // The provider-scoped identifier; for email this is the address itself.
	PasswordHash   string    // The bcrypt-hashed password.
	CreatedAt      time.Time // Timestamp of when this credential was created.
}

// RefreshToken represents a long-lived, authorized user session.
// Deleting the row is the server-side revocation path; the short-lived
// access token itself stays valid until its expiry.
type RefreshToken struct {
	ID        uuid.UUID // The unique ID for this specific refresh token record.
	UserID    uuid.UUID // Links this session to the User it belongs to.
	TokenHash string    // SHA-256 hash of the raw refresh token for secure comparison.
	ExpiresAt time.Time // The exact time when this refresh token becomes invalid.
	CreatedAt time.Time // When this session was created (i.e. when the user logged in).
}
