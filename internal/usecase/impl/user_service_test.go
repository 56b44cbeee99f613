package impl

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/repository"
	"marketplace/internal/domain/service"
	"marketplace/internal/infra/metrics"
	"marketplace/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userServiceFixtures holds all test dependencies for user service tests.
type userServiceFixtures struct {
	service          usecase.UserUsecase
	userRepo         *fakeUserRepo
	authRepo         *fakeAuthRepo
	refreshTokenRepo *fakeRefreshTokenRepo
	tokenService     *fakeTokenService
	hasher           *fakeHasher
}

func createTestUserService() userServiceFixtures {
	userRepo := &fakeUserRepo{}
	authRepo := &fakeAuthRepo{}
	refreshTokenRepo := &fakeRefreshTokenRepo{}
	hasher := &fakeHasher{}
	tokenService := &fakeTokenService{}

	factory := &fakeFactory{
		userRepo:         userRepo,
		authRepo:         authRepo,
		refreshTokenRepo: refreshTokenRepo,
	}

	svc := NewUserService(
		&fakeTxManager{factory: factory},
		userRepo,
		hasher,
		tokenService,
		metrics.NoopCollector{},
		newDiscardLogger(),
	)

	return userServiceFixtures{
		service:          svc,
		userRepo:         userRepo,
		authRepo:         authRepo,
		refreshTokenRepo: refreshTokenRepo,
		tokenService:     tokenService,
		hasher:           hasher,
	}
}

func TestUserService_Register_Customer(t *testing.T) {
	fx := createTestUserService()
	ctx := context.Background()

	fx.authRepo.FindAuthenticationFn = func(_ context.Context, provider, providerUserID string) (*entity.Authentication, error) {
		assert.Equal(t, entity.ProviderTypeEmail, provider)
		assert.Equal(t, "ada@example.com", providerUserID)

		return nil, repository.ErrAuthNotFound
	}
	fx.userRepo.CreateFn = func(_ context.Context, user *entity.User) error {
		user.ID = uuid.New()

		return nil
	}

	var createdAuth *entity.Authentication
	fx.authRepo.CreateAuthenticationFn = func(_ context.Context, auth *entity.Authentication) error {
		createdAuth = auth

		return nil
	}

	output, err := fx.service.Register(ctx, &usecase.RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "Password123!",
		Role:     entity.RoleCustomer,
	})

	require.NoError(t, err)
	assert.Equal(t, entity.RoleCustomer, output.User.Role)
	assert.Nil(t, output.User.ProviderProfile)
	require.NotNil(t, createdAuth)
	assert.Equal(t, output.User.ID, createdAuth.UserID)
	assert.Equal(t, "hashed:Password123!", createdAuth.PasswordHash)
}

func TestUserService_Register_ProviderGetsProfile(t *testing.T) {
	fx := createTestUserService()

	fx.authRepo.FindAuthenticationFn = func(_ context.Context, _, _ string) (*entity.Authentication, error) {
		return nil, repository.ErrAuthNotFound
	}
	fx.userRepo.CreateFn = func(_ context.Context, user *entity.User) error {
		user.ID = uuid.New()

		return nil
	}
	fx.authRepo.CreateAuthenticationFn = func(_ context.Context, _ *entity.Authentication) error {
		return nil
	}

	output, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Name:        "Acme",
		Email:       "acme@example.com",
		Password:    "Password123!",
		Role:        entity.RoleProvider,
		CompanyName: "Acme Consulting",
	})

	require.NoError(t, err)
	require.NotNil(t, output.User.ProviderProfile)
	assert.Equal(t, "Acme Consulting", output.User.ProviderProfile.CompanyName)
	assert.Equal(t, "PENDING", output.User.ProviderProfile.VerificationStatus)
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	fx := createTestUserService()

	fx.authRepo.FindAuthenticationFn = func(_ context.Context, _, _ string) (*entity.Authentication, error) {
		return &entity.Authentication{UserID: uuid.New()}, nil
	}

	output, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "Password123!",
		Role:     entity.RoleCustomer,
	})

	assert.Nil(t, output)
	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
}

func TestUserService_Register_RejectsAdminRole(t *testing.T) {
	fx := createTestUserService()

	output, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Name:     "Root",
		Email:    "root@example.com",
		Password: "Password123!",
		Role:     entity.RoleAdmin,
	})

	assert.Nil(t, output)
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestUserService_Register_ProviderRequiresCompanyName(t *testing.T) {
	fx := createTestUserService()

	_, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Name:     "Acme",
		Email:    "acme@example.com",
		Password: "Password123!",
		Role:     entity.RoleProvider,
	})

	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestUserService_Register_WeakPasswordRejected(t *testing.T) {
	fx := createTestUserService()
	fx.hasher.ValidatePasswordStrengthFn = func(string) error {
		return domainerrors.ErrValidationFailed.WrapMessage("password must be at least 8 characters")
	}

	_, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "short",
		Role:     entity.RoleCustomer,
	})

	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestUserService_Login_Success(t *testing.T) {
	fx := createTestUserService()
	userID := uuid.New()

	fx.authRepo.FindAuthenticationFn = func(_ context.Context, _, _ string) (*entity.Authentication, error) {
		return &entity.Authentication{UserID: userID, PasswordHash: "hashed:Password123!"}, nil
	}
	fx.userRepo.FindByIDFn = func(_ context.Context, id uuid.UUID) (*entity.User, error) {
		return &entity.User{ID: id, Email: "ada@example.com", Role: entity.RoleCustomer}, nil
	}

	var storedToken *entity.RefreshToken
	fx.refreshTokenRepo.CreateRefreshTokenFn = func(_ context.Context, token *entity.RefreshToken) error {
		storedToken = token

		return nil
	}

	output, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "ada@example.com",
		Password: "Password123!",
	})

	require.NoError(t, err)
	assert.Equal(t, "access-CUSTOMER", output.AccessToken)
	assert.NotEmpty(t, output.RefreshToken)

	// The raw refresh token is never stored, only its hash.
	require.NotNil(t, storedToken)
	assert.Equal(t, "hash:"+output.RefreshToken, storedToken.TokenHash)
	assert.Equal(t, userID, storedToken.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), storedToken.ExpiresAt, time.Minute)
}

func TestUserService_Login_UnknownEmailAndWrongPasswordIndistinguishable(t *testing.T) {
	fx := createTestUserService()

	fx.authRepo.FindAuthenticationFn = func(_ context.Context, _, _ string) (*entity.Authentication, error) {
		return nil, repository.ErrAuthNotFound
	}

	_, errUnknown := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	require.ErrorIs(t, errUnknown, domainerrors.ErrInvalidCredentials)

	fx.authRepo.FindAuthenticationFn = func(_ context.Context, _, _ string) (*entity.Authentication, error) {
		return &entity.Authentication{UserID: uuid.New(), PasswordHash: "hashed:other"}, nil
	}

	_, errWrong := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "ada@example.com",
		Password: "not-the-password",
	})
	require.ErrorIs(t, errWrong, domainerrors.ErrInvalidCredentials)
}

func TestUserService_RefreshToken_RotatesSession(t *testing.T) {
	fx := createTestUserService()
	userID := uuid.New()

	fx.tokenService.ValidateTokenFn = func(tokenString string) (*service.Claims, error) {
		assert.Equal(t, "old-refresh", tokenString)

		return &service.Claims{UserID: userID, Type: "refresh"}, nil
	}
	fx.refreshTokenRepo.FindRefreshTokenByHashFn = func(_ context.Context, hash string) (*entity.RefreshToken, error) {
		assert.Equal(t, "hash:old-refresh", hash)

		return &entity.RefreshToken{UserID: userID, TokenHash: hash}, nil
	}
	fx.userRepo.FindByIDFn = func(_ context.Context, id uuid.UUID) (*entity.User, error) {
		return &entity.User{ID: id, Role: entity.RoleProvider}, nil
	}

	var created, deleted string
	fx.refreshTokenRepo.CreateRefreshTokenFn = func(_ context.Context, token *entity.RefreshToken) error {
		created = token.TokenHash

		return nil
	}
	fx.refreshTokenRepo.DeleteRefreshTokenByHashFn = func(_ context.Context, hash string) error {
		deleted = hash

		return nil
	}

	output, err := fx.service.RefreshToken(context.Background(), &usecase.RefreshTokenInput{RefreshToken: "old-refresh"})

	require.NoError(t, err)
	assert.Equal(t, "access-PROVIDER", output.AccessToken)
	assert.Equal(t, "hash:"+output.RefreshToken, created)
	assert.Equal(t, "hash:old-refresh", deleted)
}

func TestUserService_RefreshToken_RejectsAccessToken(t *testing.T) {
	fx := createTestUserService()

	fx.tokenService.ValidateTokenFn = func(string) (*service.Claims, error) {
		return &service.Claims{UserID: uuid.New(), Type: "access"}, nil
	}

	_, err := fx.service.RefreshToken(context.Background(), &usecase.RefreshTokenInput{RefreshToken: "an-access-token"})
	assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)
}

func TestUserService_RefreshToken_RevokedSessionRejected(t *testing.T) {
	fx := createTestUserService()

	fx.tokenService.ValidateTokenFn = func(string) (*service.Claims, error) {
		return &service.Claims{UserID: uuid.New(), Type: "refresh"}, nil
	}
	fx.refreshTokenRepo.FindRefreshTokenByHashFn = func(_ context.Context, _ string) (*entity.RefreshToken, error) {
		return nil, repository.ErrRefreshTokenNotFound
	}

	_, err := fx.service.RefreshToken(context.Background(), &usecase.RefreshTokenInput{RefreshToken: "revoked"})
	assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)
}

func TestUserService_Logout_DeletesSession(t *testing.T) {
	fx := createTestUserService()

	fx.tokenService.ValidateTokenFn = func(string) (*service.Claims, error) {
		return &service.Claims{UserID: uuid.New(), Type: "refresh"}, nil
	}

	var deleted string
	fx.refreshTokenRepo.DeleteRefreshTokenByHashFn = func(_ context.Context, hash string) error {
		deleted = hash

		return nil
	}

	err := fx.service.Logout(context.Background(), &usecase.LogoutInput{RefreshToken: "the-refresh"})
	require.NoError(t, err)
	assert.Equal(t, "hash:the-refresh", deleted)
}

func TestUserService_Logout_MissingSessionIsNotAnError(t *testing.T) {
	fx := createTestUserService()

	fx.tokenService.ValidateTokenFn = func(string) (*service.Claims, error) {
		return &service.Claims{UserID: uuid.New(), Type: "refresh"}, nil
	}
	fx.refreshTokenRepo.DeleteRefreshTokenByHashFn = func(_ context.Context, _ string) error {
		return repository.ErrRefreshTokenNotFound
	}

	err := fx.service.Logout(context.Background(), &usecase.LogoutInput{RefreshToken: "already-gone"})
	assert.NoError(t, err)
}

func TestUserService_GetProfile_NotFound(t *testing.T) {
	fx := createTestUserService()

	fx.userRepo.FindByIDFn = func(_ context.Context, _ uuid.UUID) (*entity.User, error) {
		return nil, repository.ErrUserNotFound
	}

	_, err := fx.service.GetProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}
