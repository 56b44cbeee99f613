package impl

import (
	"context"
	"log/slog"
	"strings"

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

const minCommentLength = 10

// reviewService implements the ReviewUsecase interface.
type reviewService struct {
	txManager  repository.TransactionManager
	reviewRepo repository.ReviewRepository
	collector  metrics.Collector
	logger     *slog.Logger
}

// NewReviewService is the constructor for reviewService.
func NewReviewService(
	txManager repository.TransactionManager,
	reviewRepo repository.ReviewRepository,
	collector metrics.Collector,
	logger *slog.Logger,
) usecase.ReviewUsecase {
	return &reviewService{
		txManager:  txManager,
		reviewRepo: reviewRepo,
		collector:  collector,
		logger:     logger,
	}
}

func (srv *reviewService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Create publishes a review. The purchase and duplicate facts are loaded
// and the policy consulted inside the same transaction that inserts the
// row, with the unique index as the final arbiter under races.
func (srv *reviewService) Create(ctx context.Context, actor authz.Actor, input *usecase.CreateReviewInput) (*entity.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("rating must be between 1 and 5")
	}
	if input.Comment != "" && len(strings.TrimSpace(input.Comment)) < minCommentLength {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("comment is too short")
	}

	var created *entity.Review

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		serviceRepo := repoFactory.ServiceRepo()
		reviewRepo := repoFactory.ReviewRepo()
		transactionRepo := repoFactory.TransactionRepo()
		userRepo := repoFactory.UserRepo()

		// The service must exist before any policy question is asked.
		if _, err := serviceRepo.FindByID(ctx, input.ServiceID); err != nil {
			if errors.Is(err, repository.ErrServiceNotFound) {
				return domainerrors.ErrServiceNotFound
			}

			return errors.Wrap(err, "failed to find service")
		}

		facts := &authz.ReviewFacts{}

		if _, err := transactionRepo.FindByBuyerAndService(ctx, actor.ID, input.ServiceID); err == nil {
			facts.Purchased = true
		} else if !errors.Is(err, repository.ErrTransactionNotFound) {
			return errors.Wrap(err, "failed to check purchase")
		}

		if _, err := reviewRepo.FindByUserAndService(ctx, actor.ID, input.ServiceID); err == nil {
			facts.AlreadyReviewed = true
		} else if !errors.Is(err, repository.ErrReviewNotFound) {
			return errors.Wrap(err, "failed to check existing review")
		}

		decision := authz.Decide(actor, authz.ActionCreateReview, authz.Resource{Review: facts})
		if !decision.Allowed {
			srv.collector.RecordAuthzDenial(string(decision.Reason))

			return authz.DenialError(decision)
		}

		// Denormalize the display name onto the review.
		user, err := userRepo.FindByID(ctx, actor.ID)
		if err != nil {
			return errors.Wrap(err, "failed to find reviewer")
		}

		review := &entity.Review{
			UserID:     actor.ID,
			ServiceID:  input.ServiceID,
			Rating:     input.Rating,
			Comment:    input.Comment,
			AuthorName: user.Name,
		}
		if err := reviewRepo.Create(ctx, review); err != nil {
			return errors.WithStack(err)
		}
		created = review

		return nil
	})

	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Review published", "reviewID", created.ID, "serviceID", created.ServiceID)

	return created, nil
}

// ListByService returns a service's reviews, newest first.
func (srv *reviewService) ListByService(ctx context.Context, serviceID uuid.UUID) ([]*entity.Review, error) {
	reviews, err := srv.reviewRepo.ListByService(ctx, serviceID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reviews")
	}

	return reviews, nil
}

// Checkout records a purchase of a published service. Providers and
// admins do not buy; only the customer path exists.
func (srv *reviewService) Checkout(ctx context.Context, actor authz.Actor, serviceID uuid.UUID) (*entity.Transaction, error) {
	if actor.Role != entity.RoleCustomer {
		return nil, domainerrors.ErrForbidden.WrapMessage("only customers can purchase services")
	}

	var created *entity.Transaction

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		serviceRepo := repoFactory.ServiceRepo()
		transactionRepo := repoFactory.TransactionRepo()

		svc, err := serviceRepo.FindByID(ctx, serviceID)
		if err != nil {
			if errors.Is(err, repository.ErrServiceNotFound) {
				return domainerrors.ErrServiceNotFound
			}

			return errors.Wrap(err, "failed to find service")
		}

		// Hidden listings cannot be bought; report them as absent.
		if svc.Hidden() {
			return domainerrors.ErrServiceNotFound
		}

		tx := &entity.Transaction{
			BuyerID:   actor.ID,
			ServiceID: serviceID,
			Amount:    svc.Price,
		}
		if err := transactionRepo.Create(ctx, tx); err != nil {
			return errors.WithStack(err)
		}

		if err := serviceRepo.IncrementPurchaseCount(ctx, serviceID); err != nil {
			return errors.Wrap(err, "failed to increment purchase count")
		}
		created = tx

		return nil
	})

	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Purchase recorded", "transactionID", created.ID, "serviceID", serviceID)

	return created, nil
}
