package impl

import (
	"context"
	"strings"
	"testing"

	"marketplace/internal/domain/authz"
	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/repository"
	"marketplace/internal/infra/metrics"
	"marketplace/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDescription = "A thorough walkthrough of the full application process, documents included, start to finish."

type listingServiceFixtures struct {
	service     usecase.ListingUsecase
	serviceRepo *fakeServiceRepo
	reviewRepo  *fakeReviewRepo
	userRepo    *fakeUserRepo
}

func createTestListingService() listingServiceFixtures {
	serviceRepo := &fakeServiceRepo{}
	reviewRepo := &fakeReviewRepo{}
	userRepo := &fakeUserRepo{}

	svc := NewListingService(serviceRepo, reviewRepo, userRepo, metrics.NoopCollector{}, newDiscardLogger())

	return listingServiceFixtures{
		service:     svc,
		serviceRepo: serviceRepo,
		reviewRepo:  reviewRepo,
		userRepo:    userRepo,
	}
}

// providerFixture wires the user repo so the actor resolves to the given
// provider profile ID.
func (f listingServiceFixtures) providerFixture(userID, profileID uuid.UUID) authz.Actor {
	f.userRepo.FindProviderProfileByUserIDFn = func(_ context.Context, uid uuid.UUID) (*entity.ProviderProfile, error) {
		if uid == userID {
			return &entity.ProviderProfile{ID: profileID, UserID: userID}, nil
		}

		return nil, repository.ErrProviderProfileNotFound
	}

	return authz.Actor{ID: userID, Role: entity.RoleProvider}
}

func validCreateInput() *usecase.CreateServiceInput {
	return &usecase.CreateServiceInput{
		Category:    entity.CategoryResidency,
		Title:       "Golden visa assistance",
		Description: validDescription,
		Price:       1500,
		Country:     "Portugal",
		CountryCode: "pt",
	}
}

func TestListingService_Create_Draft(t *testing.T) {
	fx := createTestListingService()
	actor := fx.providerFixture(uuid.New(), uuid.New())

	var created *entity.Service
	fx.serviceRepo.CreateFn = func(_ context.Context, svc *entity.Service) error {
		svc.ID = uuid.New()
		created = svc

		return nil
	}

	svc, err := fx.service.Create(context.Background(), actor, validCreateInput())

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, entity.ServiceStatusDraft, svc.Status)
	assert.Equal(t, "PT", svc.CountryCode)
	assert.True(t, strings.HasPrefix(svc.Slug, "golden-visa-assistance-"), "slug %q", svc.Slug)
}

func TestListingService_Create_CustomerForbidden(t *testing.T) {
	fx := createTestListingService()

	_, err := fx.service.Create(context.Background(), authz.Actor{ID: uuid.New(), Role: entity.RoleCustomer}, validCreateInput())
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestListingService_Create_ProviderWithoutProfile(t *testing.T) {
	fx := createTestListingService()
	fx.userRepo.FindProviderProfileByUserIDFn = func(_ context.Context, _ uuid.UUID) (*entity.ProviderProfile, error) {
		return nil, repository.ErrProviderProfileNotFound
	}

	_, err := fx.service.Create(context.Background(), authz.Actor{ID: uuid.New(), Role: entity.RoleProvider}, validCreateInput())
	assert.ErrorIs(t, err, domainerrors.ErrProviderProfileNotFound)
}

func TestListingService_Create_ValidationFailures(t *testing.T) {
	fx := createTestListingService()
	actor := fx.providerFixture(uuid.New(), uuid.New())

	cases := []struct {
		name   string
		mutate func(*usecase.CreateServiceInput)
	}{
		{"unknown category", func(in *usecase.CreateServiceInput) { in.Category = "GARDENING" }},
		{"short title", func(in *usecase.CreateServiceInput) { in.Title = "visa" }},
		{"short description", func(in *usecase.CreateServiceInput) { in.Description = "too short" }},
		{"non-positive price", func(in *usecase.CreateServiceInput) { in.Price = 0 }},
		{"bad country code", func(in *usecase.CreateServiceInput) { in.CountryCode = "PRT" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateInput()
			tc.mutate(input)

			_, err := fx.service.Create(context.Background(), actor, input)
			assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
		})
	}
}

func TestListingService_Update_OwnerPublishes(t *testing.T) {
	fx := createTestListingService()
	profileID := uuid.New()
	actor := fx.providerFixture(uuid.New(), profileID)
	serviceID := uuid.New()

	fx.serviceRepo.FindByIDFn = func(_ context.Context, id uuid.UUID) (*entity.Service, error) {
		return &entity.Service{ID: id, ProviderID: profileID, Status: entity.ServiceStatusDraft}, nil
	}

	var updated *entity.Service
	fx.serviceRepo.UpdateFn = func(_ context.Context, svc *entity.Service) error {
		updated = svc

		return nil
	}

	published := entity.ServiceStatusPublished
	svc, err := fx.service.Update(context.Background(), actor, serviceID, &usecase.UpdateServiceInput{Status: &published})

	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, entity.ServiceStatusPublished, svc.Status)
	require.NotNil(t, svc.PublishedAt)
}

func TestListingService_Update_CrossProviderDenied(t *testing.T) {
	fx := createTestListingService()
	actor := fx.providerFixture(uuid.New(), uuid.New())

	fx.serviceRepo.FindByIDFn = func(_ context.Context, id uuid.UUID) (*entity.Service, error) {
		return &entity.Service{ID: id, ProviderID: uuid.New(), Status: entity.ServiceStatusPublished}, nil
	}

	title := "A perfectly fine new title"
	_, err := fx.service.Update(context.Background(), actor, uuid.New(), &usecase.UpdateServiceInput{Title: &title})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestListingService_Update_AdminBypassesOwnership(t *testing.T) {
	fx := createTestListingService()

	fx.serviceRepo.FindByIDFn = func(_ context.Context, id uuid.UUID) (*entity.Service, error) {
		return &entity.Service{ID: id, ProviderID: uuid.New(), Status: entity.ServiceStatusPublished}, nil
	}
	fx.serviceRepo.UpdateFn = func(_ context.Context, _ *entity.Service) error { return nil }

	promoted := true
	svc, err := fx.service.Update(
		context.Background(),
		authz.Actor{ID: uuid.New(), Role: entity.RoleAdmin},
		uuid.New(),
		&usecase.UpdateServiceInput{IsPromoted: &promoted},
	)

	require.NoError(t, err)
	assert.True(t, svc.IsPromoted)
}

func TestListingService_Delete_PurchaseGuard(t *testing.T) {
	fx := createTestListingService()
	profileID := uuid.New()
	actor := fx.providerFixture(uuid.New(), profileID)

	fx.serviceRepo.FindByIDFn = func(_ context.Context, id uuid.UUID) (*entity.Service, error) {
		return &entity.Service{ID: id, ProviderID: profileID, Status: entity.ServiceStatusPublished, PurchaseCount: 3}, nil
	}

	err := fx.service.Delete(context.Background(), actor, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrServiceHasPurchases)
}

func TestListingService_Delete_OwnerWithoutPurchases(t *testing.T) {
	fx := createTestListingService()
	profileID := uuid.New()
	actor := fx.providerFixture(uuid.New(), profileID)
	serviceID := uuid.New()

	fx.serviceRepo.FindByIDFn = func(_ context.Context, id uuid.UUID) (*entity.Service, error) {
		return &entity.Service{ID: id, ProviderID: profileID, Status: entity.ServiceStatusDraft}, nil
	}

	var deletedID uuid.UUID
	fx.serviceRepo.DeleteFn = func(_ context.Context, id uuid.UUID) error {
		deletedID = id

		return nil
	}

	require.NoError(t, fx.service.Delete(context.Background(), actor, serviceID))
	assert.Equal(t, serviceID, deletedID)
}

func TestListingService_Get_HiddenListingReportsNotFound(t *testing.T) {
	fx := createTestListingService()

	fx.serviceRepo.FindByIDFn = func(_ context.Context, id uuid.UUID) (*entity.Service, error) {
		return &entity.Service{ID: id, ProviderID: uuid.New(), Status: entity.ServiceStatusDraft}, nil
	}

	// Anonymous caller: a draft listing must be indistinguishable from a
	// missing one.
	_, err := fx.service.Get(context.Background(), authz.Actor{}, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrServiceNotFound)
}

func TestListingService_Get_PublishedListingWithReviews(t *testing.T) {
	fx := createTestListingService()
	serviceID := uuid.New()

	fx.serviceRepo.FindByIDFn = func(_ context.Context, id uuid.UUID) (*entity.Service, error) {
		return &entity.Service{ID: id, ProviderID: uuid.New(), Status: entity.ServiceStatusPublished}, nil
	}

	var viewCounted bool
	fx.serviceRepo.IncrementViewCountFn = func(_ context.Context, id uuid.UUID) error {
		viewCounted = true

		return nil
	}
	fx.reviewRepo.ListByServiceFn = func(_ context.Context, _ uuid.UUID) ([]*entity.Review, error) {
		return []*entity.Review{{Rating: 5}, {Rating: 4}}, nil
	}
	fx.reviewRepo.AverageRatingByServiceFn = func(_ context.Context, _ uuid.UUID) (float64, error) {
		return 4.5, nil
	}

	detail, err := fx.service.Get(context.Background(), authz.Actor{}, serviceID)

	require.NoError(t, err)
	assert.True(t, viewCounted)
	assert.Len(t, detail.Reviews, 2)
	assert.InDelta(t, 4.5, detail.AverageRating, 0.001)
}

func TestListingService_Search_PassesFilterThrough(t *testing.T) {
	fx := createTestListingService()

	var gotFilter repository.ServiceFilter
	fx.serviceRepo.ListFn = func(_ context.Context, filter repository.ServiceFilter) ([]*entity.Service, error) {
		gotFilter = filter

		return []*entity.Service{{ID: uuid.New(), Status: entity.ServiceStatusPublished}}, nil
	}
	fx.reviewRepo.AverageRatingByServiceFn = func(_ context.Context, _ uuid.UUID) (float64, error) {
		return 0, nil
	}

	minPrice := 100.0
	summaries, err := fx.service.Search(context.Background(), &usecase.SearchServicesInput{
		Query:       "visa",
		Category:    entity.CategoryResidency,
		CountryCode: "PT",
		MinPrice:    &minPrice,
		Limit:       10,
	})

	require.NoError(t, err)
	assert.Len(t, summaries, 1)
	assert.Equal(t, "visa", gotFilter.Query)
	assert.Equal(t, entity.CategoryResidency, gotFilter.Category)
	assert.Nil(t, gotFilter.OwnerID)
}

func TestListingService_Search_UnknownCategory(t *testing.T) {
	fx := createTestListingService()

	_, err := fx.service.Search(context.Background(), &usecase.SearchServicesInput{Category: "GARDENING"})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestListingService_ListOwn_ScopedToProvider(t *testing.T) {
	fx := createTestListingService()
	profileID := uuid.New()
	actor := fx.providerFixture(uuid.New(), profileID)

	fx.serviceRepo.ListFn = func(_ context.Context, filter repository.ServiceFilter) ([]*entity.Service, error) {
		require.NotNil(t, filter.OwnerID)
		assert.Equal(t, profileID, *filter.OwnerID)

		return []*entity.Service{{Status: entity.ServiceStatusDraft}}, nil
	}

	services, err := fx.service.ListOwn(context.Background(), actor)
	require.NoError(t, err)
	assert.Len(t, services, 1)
}

func TestBuildSlug(t *testing.T) {
	slug := buildSlug("  Citizenship by Investment -- fast track!  ")
	assert.True(t, strings.HasPrefix(slug, "citizenship-by-investment-fast-track-"), "slug %q", slug)
	assert.Len(t, strings.TrimPrefix(slug, "citizenship-by-investment-fast-track-"), 8)

	// A title with no usable runes still produces a non-empty slug.
	assert.Len(t, buildSlug("!!!"), 8)
}
