// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"marketplace/internal/domain/authz"
	"marketplace/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateReviewInput defines the data required to publish a review.
type CreateReviewInput struct {
	ServiceID uuid.UUID
	Rating    int
	Comment   string
}

// ReviewUsecase defines the interface for review and purchase operations.
type ReviewUsecase interface {
	// Create publishes a review after the policy confirms the actor is a
	// customer with a matching purchase and no prior review.
	Create(ctx context.Context, actor authz.Actor, input *CreateReviewInput) (*entity.Review, error)

	// ListByService returns a service's reviews, newest first.
	ListByService(ctx context.Context, serviceID uuid.UUID) ([]*entity.Review, error)

	// Checkout records a purchase of a published service by the acting
	// customer. No payment is processed; the transaction row is the
	// proof of purchase the review gate consults.
	Checkout(ctx context.Context, actor authz.Actor, serviceID uuid.UUID) (*entity.Transaction, error)
}
