package model

import (
	"time"

	"github.com/google/uuid"
)

// ReviewModel mirrors the 'reviews' table. The composite unique index on
// (user_id, service_id) makes duplicate reviews impossible at the store
// level, regardless of request interleaving.
type ReviewModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_service"`
	ServiceID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_service;index"`
	Rating     int       `gorm:"not null"`
	Comment    string    `gorm:"type:text"`
	AuthorName string    `gorm:"type:varchar(100);not null"`
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (ReviewModel) TableName() string {
	return "reviews"
}

// TransactionModel mirrors the 'transactions' table. A row is the proof of
// purchase the review policy consults.
type TransactionModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	BuyerID   uuid.UUID `gorm:"type:uuid;not null;index:idx_transactions_buyer_service"`
	ServiceID uuid.UUID `gorm:"type:uuid;not null;index:idx_transactions_buyer_service"`
	Amount    float64   `gorm:"type:numeric(12,2);not null"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (TransactionModel) TableName() string {
	return "transactions"
}
