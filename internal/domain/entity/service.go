package entity

import (
	"time"

	"github.com/google/uuid"
)

// ServiceStatus is the publication state of a Service listing.
type ServiceStatus string

const (
	// ServiceStatusDraft marks an unpublished listing, visible only to its owner and admins.
	ServiceStatusDraft ServiceStatus = "DRAFT"
	// ServiceStatusPublished marks a publicly visible listing.
	ServiceStatusPublished ServiceStatus = "PUBLISHED"
	// ServiceStatusPaused marks a temporarily withdrawn listing, hidden like a draft.
	ServiceStatusPaused ServiceStatus = "PAUSED"
)

// IsValid checks if the ServiceStatus is a valid value.
func (s ServiceStatus) IsValid() bool {
	switch s {
	case ServiceStatusDraft, ServiceStatusPublished, ServiceStatusPaused:
		return true
	default:
		return false
	}
}

// ServiceCategory is the line of business a Service belongs to.
type ServiceCategory string

const (
	CategoryCitizenship          ServiceCategory = "CITIZENSHIP"
	CategoryResidency            ServiceCategory = "RESIDENCY"
	CategoryCompanyIncorporation ServiceCategory = "COMPANY_INCORPORATION"
	CategoryBanking              ServiceCategory = "BANKING"
	CategoryInsurance            ServiceCategory = "INSURANCE"
	CategoryShipping             ServiceCategory = "SHIPPING"
)

// IsValid checks if the ServiceCategory is a valid value.
func (c ServiceCategory) IsValid() bool {
	switch c {
	case CategoryCitizenship, CategoryResidency, CategoryCompanyIncorporation,
		CategoryBanking, CategoryInsurance, CategoryShipping:
		return true
	default:
		return false
	}
}

// Service is a marketplace listing owned by exactly one provider.
// Mutable fields are editable only by the owning provider or an admin.
// A service with recorded purchases can never be deleted, only paused.
type Service struct {
	ID             uuid.UUID       // The unique identifier of the listing.
	ProviderID     uuid.UUID       // The owning ProviderProfile's ID.
	Category       ServiceCategory // The line of business.
	Title          string          // Public listing title.
	Description    string          // Long-form description.
	Price          float64         // Listed price; always positive.
	Country        string          // Human-readable country name.
	CountryCode    string          // ISO 3166-1 alpha-2 code, upper case.
	Features       []string        // Selling points shown on the listing page.
	Requirements   []string        // Prerequisites the customer must satisfy.
	ProcessingTime string          // Free-form estimate, e.g. "12-14 months".
	Status         ServiceStatus   // DRAFT, PUBLISHED or PAUSED.
	Slug           string          // URL-safe identifier derived from the title.
	IsPromoted     bool            // Promoted listings sort first in search results.
	ViewCount      int             // Monotonic page view counter.
	PurchaseCount  int             // Monotonic purchase counter; guards deletion.
	PublishedAt    *time.Time      // When the listing first went live; nil for drafts.
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Hidden reports whether the listing is withheld from the public catalog.
func (s *Service) Hidden() bool {
	return s.Status != ServiceStatusPublished
}
