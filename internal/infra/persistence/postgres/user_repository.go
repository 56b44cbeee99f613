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

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a domain interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single user by their unique ID, preloading the provider profile.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Preload("ProviderProfile").
		Where("id = ?", id).
		First(&userM).Error

	if err != nil {
		// If the error is 'record not found', return a domain-specific error.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	// Map the persistence model back to a pure domain entity before returning.
	return toUserDomain(&userM), nil
}

// FindByEmail retrieves a single user by their email address, preloading the provider profile.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Preload("ProviderProfile").
		Where("email = ?", email).
		First(&userM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	return toUserDomain(&userM), nil
}

// Create persists a new user entity, including its provider profile when present.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	// Map the pure domain entity to a GORM persistence model.
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		// Convert PostgreSQL errors to domain errors
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email already exists")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required user information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	// Update the user entity with the generated ID and timestamps
	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	if user.ProviderProfile != nil && userM.ProviderProfile != nil {
		user.ProviderProfile.ID = userM.ProviderProfile.ID
		user.ProviderProfile.UserID = userM.ProviderProfile.UserID
		user.ProviderProfile.CreatedAt = userM.ProviderProfile.CreatedAt
		user.ProviderProfile.UpdatedAt = userM.ProviderProfile.UpdatedAt
	}

	return nil
}

// Update modifies an existing user entity in the database.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	err := repo.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(userM).Error
	if err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email already exists")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update user")
	}

	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// FindProviderProfileByUserID retrieves the provider profile attached to a user.
func (repo *userRepository) FindProviderProfileByUserID(ctx context.Context, userID uuid.UUID) (*entity.ProviderProfile, error) {
	var profileM model.ProviderProfileModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profileM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProviderProfileNotFound
		}

		return nil, errors.Wrap(err, "failed to find provider profile")
	}

	return toProviderProfileDomain(&profileM), nil
}

// CreateProviderProfile persists a new provider profile for an existing user.
func (repo *userRepository) CreateProviderProfile(ctx context.Context, profile *entity.ProviderProfile) error {
	profileM := fromProviderProfileDomain(profile)

	if err := repo.db.WithContext(ctx).Create(profileM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("provider profile already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("invalid user reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create provider profile")
	}

	profile.ID = profileM.ID
	profile.CreatedAt = profileM.CreatedAt
	profile.UpdatedAt = profileM.UpdatedAt

	return nil
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:              data.ID,
		Email:           data.Email,
		Name:            data.Name,
		Role:            entity.Role(data.Role),
		EmailVerifiedAt: data.EmailVerifiedAt,
		ProviderProfile: toProviderProfileDomain(data.ProviderProfile),
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}

// fromUserDomain converts a domain User entity to a GORM UserModel for persistence.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:              data.ID,
		Email:           data.Email,
		Name:            data.Name,
		Role:            data.Role.String(),
		EmailVerifiedAt: data.EmailVerifiedAt,
		ProviderProfile: fromProviderProfileDomain(data.ProviderProfile),
	}
}

// toProviderProfileDomain converts a GORM ProviderProfileModel to a domain entity.
func toProviderProfileDomain(data *model.ProviderProfileModel) *entity.ProviderProfile {
	if data == nil {
		return nil
	}

	return &entity.ProviderProfile{
		ID:                 data.ID,
		UserID:             data.UserID,
		CompanyName:        data.CompanyName,
		Description:        data.Description,
		Website:            data.Website,
		Phone:              data.Phone,
		VerificationStatus: data.VerificationStatus,
		CreatedAt:          data.CreatedAt,
		UpdatedAt:          data.UpdatedAt,
	}
}

// fromProviderProfileDomain converts a domain ProviderProfile entity to a GORM model.
func fromProviderProfileDomain(data *entity.ProviderProfile) *model.ProviderProfileModel {
	if data == nil {
		return nil
	}

	return &model.ProviderProfileModel{
		ID:                 data.ID,
		UserID:             data.UserID,
		CompanyName:        data.CompanyName,
		Description:        data.Description,
		Website:            data.Website,
		Phone:              data.Phone,
		VerificationStatus: data.VerificationStatus,
	}
}
