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

// transactionRepository implements the domain.TransactionRepository interface using GORM.
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository is the constructor for transactionRepository.
func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

// Create persists a new purchase record.
func (repo *transactionRepository) Create(ctx context.Context, tx *entity.Transaction) error {
	txM := fromTransactionDomain(tx)

	if err := repo.db.WithContext(ctx).Create(txM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrServiceNotFound.WrapMessage("invalid service reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create transaction")
	}

	tx.ID = txM.ID
	tx.CreatedAt = txM.CreatedAt

	return nil
}

// FindByBuyerAndService retrieves a purchase record for the pair. Multiple
// purchases may exist; the earliest suffices as proof of purchase.
func (repo *transactionRepository) FindByBuyerAndService(ctx context.Context, buyerID, serviceID uuid.UUID) (*entity.Transaction, error) {
	var txM model.TransactionModel
	err := repo.db.WithContext(ctx).
		Where("buyer_id = ? AND service_id = ?", buyerID, serviceID).
		Order("created_at ASC").
		First(&txM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTransactionNotFound
		}

		return nil, errors.Wrap(err, "failed to find transaction")
	}

	return toTransactionDomain(&txM), nil
}

// --- Mapper Functions ---

// toTransactionDomain converts a GORM TransactionModel to a domain entity.
func toTransactionDomain(data *model.TransactionModel) *entity.Transaction {
	if data == nil {
		return nil
	}

	return &entity.Transaction{
		ID:        data.ID,
		BuyerID:   data.BuyerID,
		ServiceID: data.ServiceID,
		Amount:    data.Amount,
		CreatedAt: data.CreatedAt,
	}
}

// fromTransactionDomain converts a domain Transaction entity to a GORM model.
func fromTransactionDomain(data *entity.Transaction) *model.TransactionModel {
	if data == nil {
		return nil
	}

	return &model.TransactionModel{
		ID:        data.ID,
		BuyerID:   data.BuyerID,
		ServiceID: data.ServiceID,
		Amount:    data.Amount,
		CreatedAt: data.CreatedAt,
	}
}
