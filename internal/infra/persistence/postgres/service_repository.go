package postgres

import (
	"context"
	"strings"

	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/repository"
	"marketplace/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const defaultCatalogLimit = 50

// serviceRepository implements the domain.ServiceRepository interface using GORM.
type serviceRepository struct {
	db *gorm.DB
}

// NewServiceRepository is the constructor for serviceRepository.
func NewServiceRepository(db *gorm.DB) repository.ServiceRepository {
	return &serviceRepository{db: db}
}

// FindByID retrieves a single listing by ID regardless of status.
func (repo *serviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	var svcM model.ServiceModel
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&svcM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrServiceNotFound
		}

		return nil, errors.Wrap(err, "failed to find service by id")
	}

	return toServiceDomain(&svcM), nil
}

// FindBySlug retrieves a single listing by its URL slug.
func (repo *serviceRepository) FindBySlug(ctx context.Context, slug string) (*entity.Service, error) {
	var svcM model.ServiceModel
	err := repo.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&svcM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrServiceNotFound
		}

		return nil, errors.Wrap(err, "failed to find service by slug")
	}

	return toServiceDomain(&svcM), nil
}

// List returns listings matching the filter, promoted first then newest.
// Without an OwnerID the query is restricted to PUBLISHED listings.
func (repo *serviceRepository) List(ctx context.Context, filter repository.ServiceFilter) ([]*entity.Service, error) {
	query := repo.db.WithContext(ctx).Model(&model.ServiceModel{})

	if filter.OwnerID != nil {
		query = query.Where("provider_id = ?", *filter.OwnerID)
	} else {
		query = query.Where("status = ?", entity.ServiceStatusPublished)
	}

	if filter.Query != "" {
		pattern := "%" + strings.ToLower(filter.Query) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(country) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.CountryCode != "" {
		query = query.Where("country_code = ?", strings.ToUpper(filter.CountryCode))
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	limit := filter.Limit
	if limit <= 0 || limit > defaultCatalogLimit {
		limit = defaultCatalogLimit
	}

	var svcModels []*model.ServiceModel
	err := query.
		Order("is_promoted DESC, created_at DESC").
		Limit(limit).
		Find(&svcModels).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list services")
	}

	services := make([]*entity.Service, 0, len(svcModels))
	for _, svcM := range svcModels {
		services = append(services, toServiceDomain(svcM))
	}

	return services, nil
}

// Create persists a new listing.
func (repo *serviceRepository) Create(ctx context.Context, svc *entity.Service) error {
	svcM := fromServiceDomain(svc)

	if err := repo.db.WithContext(ctx).Create(svcM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("slug already in use")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrProviderProfileNotFound.WrapMessage("invalid provider reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create service")
	}

	svc.ID = svcM.ID
	svc.CreatedAt = svcM.CreatedAt
	svc.UpdatedAt = svcM.UpdatedAt

	return nil
}

// Update modifies an existing listing.
func (repo *serviceRepository) Update(ctx context.Context, svc *entity.Service) error {
	svcM := fromServiceDomain(svc)

	if err := repo.db.WithContext(ctx).Save(svcM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("slug already in use")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update service")
	}

	svc.UpdatedAt = svcM.UpdatedAt

	return nil
}

// Delete removes a listing.
func (repo *serviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.ServiceModel{})

	if result.Error != nil {
		return errors.WithStack(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrServiceNotFound
	}

	return nil
}

// IncrementViewCount bumps the view counter with a single UPDATE so
// concurrent page views never lose increments.
func (repo *serviceRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Model(&model.ServiceModel{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// IncrementPurchaseCount bumps the purchase counter atomically.
func (repo *serviceRepository) IncrementPurchaseCount(ctx context.Context, id uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Model(&model.ServiceModel{}).
		Where("id = ?", id).
		UpdateColumn("purchase_count", gorm.Expr("purchase_count + 1")).Error
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// --- Mapper Functions ---

// toServiceDomain converts a GORM ServiceModel to a domain Service entity.
func toServiceDomain(data *model.ServiceModel) *entity.Service {
	if data == nil {
		return nil
	}

	return &entity.Service{
		ID:             data.ID,
		ProviderID:     data.ProviderID,
		Category:       entity.ServiceCategory(data.Category),
		Title:          data.Title,
		Description:    data.Description,
		Price:          data.Price,
		Country:        data.Country,
		CountryCode:    data.CountryCode,
		Features:       data.Features,
		Requirements:   data.Requirements,
		ProcessingTime: data.ProcessingTime,
		Status:         entity.ServiceStatus(data.Status),
		Slug:           data.Slug,
		IsPromoted:     data.IsPromoted,
		ViewCount:      data.ViewCount,
		PurchaseCount:  data.PurchaseCount,
		PublishedAt:    data.PublishedAt,
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}
}

// fromServiceDomain converts a domain Service entity to a GORM ServiceModel.
func fromServiceDomain(data *entity.Service) *model.ServiceModel {
	if data == nil {
		return nil
	}

	return &model.ServiceModel{
		ID:             data.ID,
		ProviderID:     data.ProviderID,
		Category:       string(data.Category),
		Title:          data.Title,
		Description:    data.Description,
		Price:          data.Price,
		Country:        data.Country,
		CountryCode:    data.CountryCode,
		Features:       data.Features,
		Requirements:   data.Requirements,
		ProcessingTime: data.ProcessingTime,
		Status:         string(data.Status),
		Slug:           data.Slug,
		IsPromoted:     data.IsPromoted,
		ViewCount:      data.ViewCount,
		PurchaseCount:  data.PurchaseCount,
		PublishedAt:    data.PublishedAt,
		CreatedAt:      data.CreatedAt,
	}
}
