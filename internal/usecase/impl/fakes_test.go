package impl

import (
	"context"
	"io"
	"log/slog"
	"time"

	"marketplace/internal/domain/entity"
	"marketplace/internal/domain/repository"
	"marketplace/internal/domain/service"

	"github.com/google/uuid"
)

// Hand-written fakes for the repository and service interfaces. Each fake
// delegates to an optional function field; an unset field means the call
// was not expected by the test.

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserRepo struct {
	FindByIDFn                    func(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmailFn                 func(ctx context.Context, email string) (*entity.User, error)
	CreateFn                      func(ctx context.Context, user *entity.User) error
	UpdateFn                      func(ctx context.Context, user *entity.User) error
	FindProviderProfileByUserIDFn func(ctx context.Context, userID uuid.UUID) (*entity.ProviderProfile, error)
	CreateProviderProfileFn       func(ctx context.Context, profile *entity.ProviderProfile) error
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return f.FindByIDFn(ctx, id)
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return f.FindByEmailFn(ctx, email)
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	return f.CreateFn(ctx, user)
}

func (f *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	return f.UpdateFn(ctx, user)
}

func (f *fakeUserRepo) FindProviderProfileByUserID(ctx context.Context, userID uuid.UUID) (*entity.ProviderProfile, error) {
	return f.FindProviderProfileByUserIDFn(ctx, userID)
}

func (f *fakeUserRepo) CreateProviderProfile(ctx context.Context, profile *entity.ProviderProfile) error {
	return f.CreateProviderProfileFn(ctx, profile)
}

type fakeAuthRepo struct {
	CreateAuthenticationFn func(ctx context.Context, auth *entity.Authentication) error
	FindAuthenticationFn   func(ctx context.Context, provider, providerUserID string) (*entity.Authentication, error)
}

func (f *fakeAuthRepo) CreateAuthentication(ctx context.Context, auth *entity.Authentication) error {
	return f.CreateAuthenticationFn(ctx, auth)
}

func (f *fakeAuthRepo) FindAuthentication(ctx context.Context, provider, providerUserID string) (*entity.Authentication, error) {
	return f.FindAuthenticationFn(ctx, provider, providerUserID)
}

type fakeRefreshTokenRepo struct {
	CreateRefreshTokenFn          func(ctx context.Context, token *entity.RefreshToken) error
	FindRefreshTokenByHashFn      func(ctx context.Context, hash string) (*entity.RefreshToken, error)
	DeleteRefreshTokenByHashFn    func(ctx context.Context, hash string) error
	DeleteRefreshTokensByUserIDFn func(ctx context.Context, userID uuid.UUID) error
	DeleteExpiredRefreshTokensFn  func(ctx context.Context) error
}

func (f *fakeRefreshTokenRepo) CreateRefreshToken(ctx context.Context, token *entity.RefreshToken) error {
	return f.CreateRefreshTokenFn(ctx, token)
}

func (f *fakeRefreshTokenRepo) FindRefreshTokenByHash(ctx context.Context, hash string) (*entity.RefreshToken, error) {
	return f.FindRefreshTokenByHashFn(ctx, hash)
}

func (f *fakeRefreshTokenRepo) DeleteRefreshTokenByHash(ctx context.Context, hash string) error {
	return f.DeleteRefreshTokenByHashFn(ctx, hash)
}

func (f *fakeRefreshTokenRepo) DeleteRefreshTokensByUserID(ctx context.Context, userID uuid.UUID) error {
	return f.DeleteRefreshTokensByUserIDFn(ctx, userID)
}

func (f *fakeRefreshTokenRepo) DeleteExpiredRefreshTokens(ctx context.Context) error {
	return f.DeleteExpiredRefreshTokensFn(ctx)
}

type fakeServiceRepo struct {
	FindByIDFn               func(ctx context.Context, id uuid.UUID) (*entity.Service, error)
	FindBySlugFn             func(ctx context.Context, slug string) (*entity.Service, error)
	ListFn                   func(ctx context.Context, filter repository.ServiceFilter) ([]*entity.Service, error)
	CreateFn                 func(ctx context.Context, svc *entity.Service) error
	UpdateFn                 func(ctx context.Context, svc *entity.Service) error
	DeleteFn                 func(ctx context.Context, id uuid.UUID) error
	IncrementViewCountFn     func(ctx context.Context, id uuid.UUID) error
	IncrementPurchaseCountFn func(ctx context.Context, id uuid.UUID) error
}

func (f *fakeServiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	return f.FindByIDFn(ctx, id)
}

func (f *fakeServiceRepo) FindBySlug(ctx context.Context, slug string) (*entity.Service, error) {
	return f.FindBySlugFn(ctx, slug)
}

func (f *fakeServiceRepo) List(ctx context.Context, filter repository.ServiceFilter) ([]*entity.Service, error) {
	return f.ListFn(ctx, filter)
}

func (f *fakeServiceRepo) Create(ctx context.Context, svc *entity.Service) error {
	return f.CreateFn(ctx, svc)
}

func (f *fakeServiceRepo) Update(ctx context.Context, svc *entity.Service) error {
	return f.UpdateFn(ctx, svc)
}

func (f *fakeServiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return f.DeleteFn(ctx, id)
}

func (f *fakeServiceRepo) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	if f.IncrementViewCountFn == nil {
		return nil
	}

	return f.IncrementViewCountFn(ctx, id)
}

func (f *fakeServiceRepo) IncrementPurchaseCount(ctx context.Context, id uuid.UUID) error {
	if f.IncrementPurchaseCountFn == nil {
		return nil
	}

	return f.IncrementPurchaseCountFn(ctx, id)
}

type fakeReviewRepo struct {
	CreateFn                 func(ctx context.Context, review *entity.Review) error
	FindByUserAndServiceFn   func(ctx context.Context, userID, serviceID uuid.UUID) (*entity.Review, error)
	ListByServiceFn          func(ctx context.Context, serviceID uuid.UUID) ([]*entity.Review, error)
	AverageRatingByServiceFn func(ctx context.Context, serviceID uuid.UUID) (float64, error)
}

func (f *fakeReviewRepo) Create(ctx context.Context, review *entity.Review) error {
	return f.CreateFn(ctx, review)
}

func (f *fakeReviewRepo) FindByUserAndService(ctx context.Context, userID, serviceID uuid.UUID) (*entity.Review, error) {
	return f.FindByUserAndServiceFn(ctx, userID, serviceID)
}

func (f *fakeReviewRepo) ListByService(ctx context.Context, serviceID uuid.UUID) ([]*entity.Review, error) {
	return f.ListByServiceFn(ctx, serviceID)
}

func (f *fakeReviewRepo) AverageRatingByService(ctx context.Context, serviceID uuid.UUID) (float64, error) {
	if f.AverageRatingByServiceFn == nil {
		return 0, nil
	}

	return f.AverageRatingByServiceFn(ctx, serviceID)
}

type fakeTransactionRepo struct {
	CreateFn                func(ctx context.Context, tx *entity.Transaction) error
	FindByBuyerAndServiceFn func(ctx context.Context, buyerID, serviceID uuid.UUID) (*entity.Transaction, error)
}

func (f *fakeTransactionRepo) Create(ctx context.Context, tx *entity.Transaction) error {
	return f.CreateFn(ctx, tx)
}

func (f *fakeTransactionRepo) FindByBuyerAndService(ctx context.Context, buyerID, serviceID uuid.UUID) (*entity.Transaction, error) {
	return f.FindByBuyerAndServiceFn(ctx, buyerID, serviceID)
}

// fakeFactory hands out the fake repositories inside a fakeTxManager run.
type fakeFactory struct {
	userRepo         *fakeUserRepo
	authRepo         *fakeAuthRepo
	refreshTokenRepo *fakeRefreshTokenRepo
	serviceRepo      *fakeServiceRepo
	reviewRepo       *fakeReviewRepo
	transactionRepo  *fakeTransactionRepo
}

func (f *fakeFactory) UserRepo() repository.UserRepository { return f.userRepo }

func (f *fakeFactory) AuthRepo() repository.AuthRepository { return f.authRepo }

func (f *fakeFactory) RefreshTokenRepo() repository.RefreshTokenRepository {
	return f.refreshTokenRepo
}

func (f *fakeFactory) ServiceRepo() repository.ServiceRepository { return f.serviceRepo }

func (f *fakeFactory) ReviewRepo() repository.ReviewRepository { return f.reviewRepo }

func (f *fakeFactory) TransactionRepo() repository.TransactionRepository {
	return f.transactionRepo
}

// fakeTxManager runs the callback against the fake factory without any
// real transaction semantics.
type fakeTxManager struct {
	factory *fakeFactory
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(m.factory)
}

type fakeHasher struct {
	HashFn                     func(password string) (string, error)
	CheckFn                    func(password, hash string) bool
	ValidatePasswordStrengthFn func(password string) error
}

func (f *fakeHasher) Hash(password string) (string, error) {
	if f.HashFn == nil {
		return "hashed:" + password, nil
	}

	return f.HashFn(password)
}

func (f *fakeHasher) Check(password, hash string) bool {
	if f.CheckFn == nil {
		return hash == "hashed:"+password
	}

	return f.CheckFn(password, hash)
}

func (f *fakeHasher) ValidatePasswordStrength(password string) error {
	if f.ValidatePasswordStrengthFn == nil {
		return nil
	}

	return f.ValidatePasswordStrengthFn(password)
}

type fakeTokenService struct {
	GenerateTokensFn func(userID uuid.UUID, role string) (string, string, error)
	ValidateTokenFn  func(tokenString string) (*service.Claims, error)
}

func (f *fakeTokenService) GenerateTokens(userID uuid.UUID, role string) (string, string, error) {
	if f.GenerateTokensFn == nil {
		return "access-" + role, "refresh-" + userID.String(), nil
	}

	return f.GenerateTokensFn(userID, role)
}

func (f *fakeTokenService) ValidateToken(tokenString string) (*service.Claims, error) {
	return f.ValidateTokenFn(tokenString)
}

func (f *fakeTokenService) HashToken(token string) string {
	return "hash:" + token
}

func (f *fakeTokenService) GetRefreshTokenDuration() time.Duration {
	return time.Hour
}
