package repository

import (
	"context"
	"errors"

	"marketplace/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrServiceNotFound is returned when a service listing does not exist.
var ErrServiceNotFound = errors.New("service not found")

// ServiceFilter narrows catalog queries. Zero values mean "no filter".
// Results are always restricted to PUBLISHED listings unless OwnerID is
// set, in which case the owner's full catalog is returned.
type ServiceFilter struct {
	Query       string           // Case-insensitive substring match on title, description or country.
	Category    entity.ServiceCategory
	CountryCode string           // ISO code, matched exactly after upper-casing.
	MinPrice    *float64
	MaxPrice    *float64
	OwnerID     *uuid.UUID       // Provider profile ID; includes hidden listings.
	Limit       int              // Defaults to a store-side cap when zero.
}

// ServiceRepository defines the operations for listing persistence.
type ServiceRepository interface {
	// FindByID retrieves a single listing by ID regardless of status.
	// Visibility is the authorization policy's concern, not the store's.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Service, error)

	// FindBySlug retrieves a single listing by its URL slug.
	FindBySlug(ctx context.Context, slug string) (*entity.Service, error)

	// List returns listings matching the filter, promoted first then newest.
	List(ctx context.Context, filter ServiceFilter) ([]*entity.Service, error)

	// Create persists a new listing.
	Create(ctx context.Context, svc *entity.Service) error

	// Update modifies an existing listing.
	Update(ctx context.Context, svc *entity.Service) error

	// Delete removes a listing. The caller is responsible for the
	// purchase-count guard; the store only enforces referential integrity.
	Delete(ctx context.Context, id uuid.UUID) error

	// IncrementViewCount bumps the monotonic view counter atomically.
	IncrementViewCount(ctx context.Context, id uuid.UUID) error

	// IncrementPurchaseCount bumps the monotonic purchase counter atomically.
	IncrementPurchaseCount(ctx context.Context, id uuid.UUID) error
}
