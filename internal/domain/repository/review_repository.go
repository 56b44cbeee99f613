package repository

import (
	"context"
	"errors"

	"marketplace/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrReviewNotFound is returned when no review matches the query.
	ErrReviewNotFound = errors.New("review not found")
	// ErrTransactionNotFound is returned when no purchase record matches.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// ReviewRepository defines the operations for review persistence.
// Reviews are append-only; there is no update path.
type ReviewRepository interface {
	// Create persists a new review. The store enforces uniqueness of the
	// (user, service) pair; a violation surfaces as a conflict error so
	// racing duplicate inserts resolve to exactly one success.
	Create(ctx context.Context, review *entity.Review) error

	// FindByUserAndService retrieves the review a user wrote for a service.
	FindByUserAndService(ctx context.Context, userID, serviceID uuid.UUID) (*entity.Review, error)

	// ListByService returns the published reviews for a service, newest first.
	ListByService(ctx context.Context, serviceID uuid.UUID) ([]*entity.Review, error)

	// AverageRatingByService returns the mean rating for a service, or 0 with
	// no error when the service has no reviews.
	AverageRatingByService(ctx context.Context, serviceID uuid.UUID) (float64, error)
}

// TransactionRepository defines the operations for purchase records.
type TransactionRepository interface {
	// Create persists a new purchase record.
	Create(ctx context.Context, tx *entity.Transaction) error

	// FindByBuyerAndService retrieves a purchase record for the pair.
	FindByBuyerAndService(ctx context.Context, buyerID, serviceID uuid.UUID) (*entity.Transaction, error)
}
