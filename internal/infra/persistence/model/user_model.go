// Package model contains the GORM persistence models. They mirror the
// database schema and are mapped to and from domain entities at the
// repository boundary.
package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. PostgreSQL generates UUIDs via uuid_generate_v7().
type UserModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Email           string     `gorm:"type:varchar(255);unique;not null"`
	Name            string     `gorm:"type:varchar(100);not null"`
	Role            string     `gorm:"type:varchar(20);not null"`
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	ProviderProfile *ProviderProfileModel `gorm:"foreignKey:UserID"`
	Authentications []AuthenticationModel `gorm:"foreignKey:UserID"`
	RefreshTokens   []RefreshTokenModel   `gorm:"foreignKey:UserID"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// ProviderProfileModel mirrors the 'provider_profiles' table. UserID references users.id (UUID).
type ProviderProfileModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID             uuid.UUID `gorm:"type:uuid;unique;not null"`
	CompanyName        string    `gorm:"type:varchar(200);not null"`
	Description        string    `gorm:"type:text"`
	Website            string    `gorm:"type:varchar(255)"`
	Phone              string    `gorm:"type:varchar(50)"`
	VerificationStatus string    `gorm:"type:varchar(20);not null;default:PENDING"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName explicitly sets the table name for GORM.
func (ProviderProfileModel) TableName() string {
	return "provider_profiles"
}
