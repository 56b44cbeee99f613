package model

import (
	"time"

	"github.com/google/uuid"
)

// ServiceModel mirrors the 'services' table. Features and requirements are
// stored as JSON text columns via GORM's serializer.
type ServiceModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	ProviderID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Category       string    `gorm:"type:varchar(50);not null;index"`
	Title          string    `gorm:"type:varchar(255);not null"`
	Description    string    `gorm:"type:text;not null"`
	Price          float64   `gorm:"type:numeric(12,2);not null"`
	Country        string    `gorm:"type:varchar(100);not null"`
	CountryCode    string    `gorm:"type:varchar(2);not null;index"`
	Features       []string  `gorm:"type:jsonb;serializer:json"`
	Requirements   []string  `gorm:"type:jsonb;serializer:json"`
	ProcessingTime string    `gorm:"type:varchar(100)"`
	Status         string    `gorm:"type:varchar(20);not null;index"`
	Slug           string    `gorm:"type:varchar(255);unique;not null"`
	IsPromoted     bool      `gorm:"not null;default:false"`
	ViewCount      int       `gorm:"not null;default:0"`
	PurchaseCount  int       `gorm:"not null;default:0"`
	PublishedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (ServiceModel) TableName() string {
	return "services"
}
