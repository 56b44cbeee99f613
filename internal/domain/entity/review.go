package entity

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer's published rating of a service. Creation requires
// a prior Transaction for the same (customer, service) pair, and at most
// one review per pair exists. Reviews are immutable once published.
type Review struct {
	ID         uuid.UUID // The unique identifier of the review.
	UserID     uuid.UUID // The reviewing customer's user ID.
	ServiceID  uuid.UUID // The reviewed service.
	Rating     int       // Star rating, 1 through 5.
	Comment    string    // Optional free-form comment.
	AuthorName string    // Denormalized display name of the reviewer for listing pages.
	CreatedAt  time.Time
}

// Transaction is evidence that a customer purchased a service. It is the
// precondition for that customer to author a Review on that service.
type Transaction struct {
	ID        uuid.UUID // The unique identifier of the transaction.
	BuyerID   uuid.UUID // The purchasing customer's user ID.
	ServiceID uuid.UUID // The purchased service.
	Amount    float64   // The price paid at purchase time.
	CreatedAt time.Time
}
