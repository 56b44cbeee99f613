package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"

	deliverycontext "marketplace/internal/delivery/context"
	"marketplace/internal/domain/authz"
	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/repository"
	"marketplace/internal/infra/metrics"
	"marketplace/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	minTitleLength       = 5
	minDescriptionLength = 50
)

// listingService implements the ListingUsecase interface.
type listingService struct {
	serviceRepo repository.ServiceRepository
	reviewRepo  repository.ReviewRepository
	userRepo    repository.UserRepository
	collector   metrics.Collector
	logger      *slog.Logger
}

// NewListingService is the constructor for listingService.
func NewListingService(
	serviceRepo repository.ServiceRepository,
	reviewRepo repository.ReviewRepository,
	userRepo repository.UserRepository,
	collector metrics.Collector,
	logger *slog.Logger,
) usecase.ListingUsecase {
	return &listingService{
		serviceRepo: serviceRepo,
		reviewRepo:  reviewRepo,
		userRepo:    userRepo,
		collector:   collector,
		logger:      logger,
	}
}

func (srv *listingService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// resolveProviderID loads the acting user's provider profile ID. Ownership
// facts are re-derived server-side on every request rather than trusted
// from the client.
func (srv *listingService) resolveProviderID(ctx context.Context, actor authz.Actor) (*uuid.UUID, error) {
	if actor.Role != entity.RoleProvider {
		return nil, nil
	}

	profile, err := srv.userRepo.FindProviderProfileByUserID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrProviderProfileNotFound) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "failed to resolve provider profile")
	}

	return &profile.ID, nil
}

// deny records the policy denial and returns its boundary error.
func (srv *listingService) deny(decision authz.Decision) error {
	srv.collector.RecordAuthzDenial(string(decision.Reason))

	return authz.DenialError(decision)
}

// Create persists a new DRAFT listing owned by the acting provider.
func (srv *listingService) Create(ctx context.Context, actor authz.Actor, input *usecase.CreateServiceInput) (*entity.Service, error) {
	if actor.Role != entity.RoleProvider {
		return nil, domainerrors.ErrForbidden.WrapMessage("only providers can create listings")
	}

	providerID, err := srv.resolveProviderID(ctx, actor)
	if err != nil {
		return nil, err
	}
	if providerID == nil {
		return nil, domainerrors.ErrProviderProfileNotFound
	}

	if err := validateListingInput(input); err != nil {
		return nil, err
	}

	svc := &entity.Service{
		ProviderID:     *providerID,
		Category:       input.Category,
		Title:          input.Title,
		Description:    input.Description,
		Price:          input.Price,
		Country:        input.Country,
		CountryCode:    strings.ToUpper(input.CountryCode),
		Features:       input.Features,
		Requirements:   input.Requirements,
		ProcessingTime: input.ProcessingTime,
		Status:         entity.ServiceStatusDraft,
		Slug:           buildSlug(input.Title),
	}

	if err := srv.serviceRepo.Create(ctx, svc); err != nil {
		return nil, errors.Wrap(err, "failed to create listing")
	}

	srv.log(ctx).Info("Listing created", "serviceID", svc.ID, "providerID", svc.ProviderID)

	return svc, nil
}

// Update applies the edits after the policy confirms ownership or admin.
func (srv *listingService) Update(ctx context.Context, actor authz.Actor, serviceID uuid.UUID, input *usecase.UpdateServiceInput) (*entity.Service, error) {
	svc, err := srv.findService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	actor.ProviderID, err = srv.resolveProviderID(ctx, actor)
	if err != nil {
		return nil, err
	}

	decision := authz.Decide(actor, authz.ActionUpdateService, authz.Resource{Service: serviceFacts(svc)})
	if !decision.Allowed {
		return nil, srv.deny(decision)
	}

	if err := applyListingUpdate(svc, input); err != nil {
		return nil, err
	}

	if err := srv.serviceRepo.Update(ctx, svc); err != nil {
		return nil, errors.Wrap(err, "failed to update listing")
	}

	srv.log(ctx).Info("Listing updated", "serviceID", svc.ID)

	return svc, nil
}

// Delete removes a listing that has no recorded purchases.
func (srv *listingService) Delete(ctx context.Context, actor authz.Actor, serviceID uuid.UUID) error {
	svc, err := srv.findService(ctx, serviceID)
	if err != nil {
		return err
	}

	actor.ProviderID, err = srv.resolveProviderID(ctx, actor)
	if err != nil {
		return err
	}

	decision := authz.Decide(actor, authz.ActionDeleteService, authz.Resource{Service: serviceFacts(svc)})
	if !decision.Allowed {
		return srv.deny(decision)
	}

	if err := srv.serviceRepo.Delete(ctx, serviceID); err != nil {
		return errors.Wrap(err, "failed to delete listing")
	}

	srv.log(ctx).Info("Listing deleted", "serviceID", serviceID)

	return nil
}

// Get returns a listing with its reviews, counting the page view.
func (srv *listingService) Get(ctx context.Context, actor authz.Actor, serviceID uuid.UUID) (*usecase.ServiceDetail, error) {
	svc, err := srv.findService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	return srv.buildDetail(ctx, actor, svc)
}

// GetBySlug is Get addressed by URL slug.
func (srv *listingService) GetBySlug(ctx context.Context, actor authz.Actor, slug string) (*usecase.ServiceDetail, error) {
	svc, err := srv.serviceRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return nil, domainerrors.ErrServiceNotFound
		}

		return nil, errors.Wrap(err, "failed to find listing")
	}

	return srv.buildDetail(ctx, actor, svc)
}

func (srv *listingService) buildDetail(ctx context.Context, actor authz.Actor, svc *entity.Service) (*usecase.ServiceDetail, error) {
	var err error
	actor.ProviderID, err = srv.resolveProviderID(ctx, actor)
	if err != nil {
		return nil, err
	}

	decision := authz.Decide(actor, authz.ActionReadService, authz.Resource{Service: serviceFacts(svc)})
	if !decision.Allowed {
		return nil, srv.deny(decision)
	}

	if err := srv.serviceRepo.IncrementViewCount(ctx, svc.ID); err != nil {
		// A lost view count never fails the read.
		srv.log(ctx).Warn("Failed to increment view count", "serviceID", svc.ID, "error", err)
	}

	reviews, err := srv.reviewRepo.ListByService(ctx, svc.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reviews")
	}

	avg, err := srv.reviewRepo.AverageRatingByService(ctx, svc.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate ratings")
	}

	return &usecase.ServiceDetail{
		Service:       svc,
		Reviews:       reviews,
		AverageRating: avg,
	}, nil
}

// Search queries the public catalog. Only PUBLISHED listings are returned.
func (srv *listingService) Search(ctx context.Context, input *usecase.SearchServicesInput) ([]*usecase.ServiceSummary, error) {
	if input.Category != "" && !input.Category.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("unknown category")
	}

	filter := repository.ServiceFilter{
		Query:       input.Query,
		Category:    input.Category,
		CountryCode: input.CountryCode,
		MinPrice:    input.MinPrice,
		MaxPrice:    input.MaxPrice,
		Limit:       input.Limit,
	}

	services, err := srv.serviceRepo.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search listings")
	}

	srv.collector.RecordCatalogSearch()

	summaries := make([]*usecase.ServiceSummary, 0, len(services))
	for _, svc := range services {
		avg, err := srv.reviewRepo.AverageRatingByService(ctx, svc.ID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to aggregate ratings")
		}
		summaries = append(summaries, &usecase.ServiceSummary{
			Service:       svc,
			AverageRating: avg,
		})
	}

	return summaries, nil
}

// ListOwn returns the acting provider's full catalog, hidden included.
func (srv *listingService) ListOwn(ctx context.Context, actor authz.Actor) ([]*entity.Service, error) {
	providerID, err := srv.resolveProviderID(ctx, actor)
	if err != nil {
		return nil, err
	}
	if providerID == nil {
		return nil, domainerrors.ErrProviderProfileNotFound
	}

	services, err := srv.serviceRepo.List(ctx, repository.ServiceFilter{OwnerID: providerID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list own services")
	}

	return services, nil
}

func (srv *listingService) findService(ctx context.Context, serviceID uuid.UUID) (*entity.Service, error) {
	svc, err := srv.serviceRepo.FindByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return nil, domainerrors.ErrServiceNotFound
		}

		return nil, errors.Wrap(err, "failed to find listing")
	}

	return svc, nil
}

// serviceFacts extracts the policy-relevant fields of a listing.
func serviceFacts(svc *entity.Service) *authz.ServiceFacts {
	return &authz.ServiceFacts{
		OwnerProviderID: svc.ProviderID,
		Status:          svc.Status,
		PurchaseCount:   svc.PurchaseCount,
	}
}

func validateListingInput(input *usecase.CreateServiceInput) error {
	switch {
	case !input.Category.IsValid():
		return domainerrors.ErrValidationFailed.WrapMessage("unknown category")
	case len(strings.TrimSpace(input.Title)) < minTitleLength:
		return domainerrors.ErrValidationFailed.WrapMessage("title is too short")
	case len(strings.TrimSpace(input.Description)) < minDescriptionLength:
		return domainerrors.ErrValidationFailed.WrapMessage("description is too short")
	case input.Price <= 0:
		return domainerrors.ErrValidationFailed.WrapMessage("price must be positive")
	case len(input.CountryCode) != 2:
		return domainerrors.ErrValidationFailed.WrapMessage("country code must be two letters")
	}

	return nil
}

// applyListingUpdate copies the non-nil fields of the input onto the
// listing, handling the status lifecycle.
func applyListingUpdate(svc *entity.Service, input *usecase.UpdateServiceInput) error {
	if input.Title != nil {
		if len(strings.TrimSpace(*input.Title)) < minTitleLength {
			return domainerrors.ErrValidationFailed.WrapMessage("title is too short")
		}
		svc.Title = *input.Title
	}
	if input.Description != nil {
		if len(strings.TrimSpace(*input.Description)) < minDescriptionLength {
			return domainerrors.ErrValidationFailed.WrapMessage("description is too short")
		}
		svc.Description = *input.Description
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			return domainerrors.ErrValidationFailed.WrapMessage("price must be positive")
		}
		svc.Price = *input.Price
	}
	if input.Country != nil {
		svc.Country = *input.Country
	}
	if input.CountryCode != nil {
		if len(*input.CountryCode) != 2 {
			return domainerrors.ErrValidationFailed.WrapMessage("country code must be two letters")
		}
		svc.CountryCode = strings.ToUpper(*input.CountryCode)
	}
	if input.Features != nil {
		svc.Features = input.Features
	}
	if input.Requirements != nil {
		svc.Requirements = input.Requirements
	}
	if input.ProcessingTime != nil {
		svc.ProcessingTime = *input.ProcessingTime
	}
	if input.IsPromoted != nil {
		svc.IsPromoted = *input.IsPromoted
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return domainerrors.ErrValidationFailed.WrapMessage("unknown status")
		}
		if *input.Status == entity.ServiceStatusPublished && svc.PublishedAt == nil {
			now := time.Now()
			svc.PublishedAt = &now
		}
		svc.Status = *input.Status
	}

	return nil
}

// buildSlug derives a URL-safe identifier from the title, suffixed with
// random hex so listings with identical titles never collide.
func buildSlug(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]

	if slug == "" {
		return suffix
	}

	return slug + "-" + suffix
}
