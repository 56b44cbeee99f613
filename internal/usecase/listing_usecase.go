// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"marketplace/internal/domain/authz"
	"marketplace/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateServiceInput defines the data required to create a listing.
type CreateServiceInput struct {
	Category       entity.ServiceCategory
	Title          string
	Description    string
	Price          float64
	Country        string
	CountryCode    string
	Features       []string
	Requirements   []string
	ProcessingTime string
}

// UpdateServiceInput defines the editable fields of a listing. Nil
// pointers leave the current value unchanged.
type UpdateServiceInput struct {
	Title          *string
	Description    *string
	Price          *float64
	Country        *string
	CountryCode    *string
	Features       []string
	Requirements   []string
	ProcessingTime *string
	Status         *entity.ServiceStatus
	IsPromoted     *bool
}

// SearchServicesInput narrows a public catalog query.
type SearchServicesInput struct {
	Query       string
	Category    entity.ServiceCategory
	CountryCode string
	MinPrice    *float64
	MaxPrice    *float64
	Limit       int
}

// ServiceDetail is a listing together with its review aggregate.
type ServiceDetail struct {
	Service       *entity.Service
	Reviews       []*entity.Review
	AverageRating float64
}

// ServiceSummary is a catalog search row.
type ServiceSummary struct {
	Service       *entity.Service
	AverageRating float64
}

// ListingUsecase defines the interface for service listing operations.
// Every operation that touches a specific listing consults the
// authorization policy with facts loaded inside the same call.
type ListingUsecase interface {
	Create(ctx context.Context, actor authz.Actor, input *CreateServiceInput) (*entity.Service, error)
	Update(ctx context.Context, actor authz.Actor, serviceID uuid.UUID, input *UpdateServiceInput) (*entity.Service, error)
	Delete(ctx context.Context, actor authz.Actor, serviceID uuid.UUID) error

	// Get returns a listing with its reviews. The zero Actor is an
	// anonymous caller; hidden listings then surface as not found.
	Get(ctx context.Context, actor authz.Actor, serviceID uuid.UUID) (*ServiceDetail, error)
	GetBySlug(ctx context.Context, actor authz.Actor, slug string) (*ServiceDetail, error)

	// Search queries the public catalog, promoted listings first.
	Search(ctx context.Context, input *SearchServicesInput) ([]*ServiceSummary, error)

	// ListOwn returns the acting provider's full catalog, hidden included.
	ListOwn(ctx context.Context, actor authz.Actor) ([]*entity.Service, error)
}
