package postgres

import (
	"context"

	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/repository"
	"marketplace/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// reviewRepository implements the domain.ReviewRepository interface using GORM.
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository is the constructor for reviewRepository.
func NewReviewRepository(db *gorm.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

// Create persists a new review. The unique index on (user_id, service_id)
// resolves racing duplicate inserts to exactly one success.
func (repo *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	reviewM := fromReviewDomain(review)

	if err := repo.db.WithContext(ctx).Create(reviewM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrDuplicateReview
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrServiceNotFound.WrapMessage("invalid service reference")
		}
		if isCheckConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("rating out of range")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create review")
	}

	review.ID = reviewM.ID
	review.CreatedAt = reviewM.CreatedAt

	return nil
}

// FindByUserAndService retrieves the review a user wrote for a service.
func (repo *reviewRepository) FindByUserAndService(ctx context.Context, userID, serviceID uuid.UUID) (*entity.Review, error) {
	var reviewM model.ReviewModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND service_id = ?", userID, serviceID).
		First(&reviewM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrReviewNotFound
		}

		return nil, errors.Wrap(err, "failed to find review")
	}

	return toReviewDomain(&reviewM), nil
}

// ListByService returns the reviews for a service, newest first.
func (repo *reviewRepository) ListByService(ctx context.Context, serviceID uuid.UUID) ([]*entity.Review, error) {
	var reviewModels []*model.ReviewModel
	err := repo.db.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Order("created_at DESC").
		Find(&reviewModels).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reviews")
	}

	reviews := make([]*entity.Review, 0, len(reviewModels))
	for _, reviewM := range reviewModels {
		reviews = append(reviews, toReviewDomain(reviewM))
	}

	return reviews, nil
}

// AverageRatingByService returns the mean rating for a service, or 0 when
// the service has no reviews.
func (repo *reviewRepository) AverageRatingByService(ctx context.Context, serviceID uuid.UUID) (float64, error) {
	var avg *float64
	err := repo.db.WithContext(ctx).
		Model(&model.ReviewModel{}).
		Where("service_id = ?", serviceID).
		Select("AVG(rating)").
		Scan(&avg).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to aggregate ratings")
	}

	if avg == nil {
		return 0, nil
	}

	return *avg, nil
}

// --- Mapper Functions ---

// toReviewDomain converts a GORM ReviewModel to a domain Review entity.
func toReviewDomain(data *model.ReviewModel) *entity.Review {
	if data == nil {
		return nil
	}

	return &entity.Review{
		ID:         data.ID,
		UserID:     data.UserID,
		ServiceID:  data.ServiceID,
		Rating:     data.Rating,
		Comment:    data.Comment,
		AuthorName: data.AuthorName,
		CreatedAt:  data.CreatedAt,
	}
}

// fromReviewDomain converts a domain Review entity to a GORM ReviewModel.
func fromReviewDomain(data *entity.Review) *model.ReviewModel {
	if data == nil {
		return nil
	}

	return &model.ReviewModel{
		ID:         data.ID,
		UserID:     data.UserID,
		ServiceID:  data.ServiceID,
		Rating:     data.Rating,
		Comment:    data.Comment,
		AuthorName: data.AuthorName,
		CreatedAt:  data.CreatedAt,
	}
}
