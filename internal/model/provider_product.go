package model

import (
	"time"

	"github.com/google/uuid"
)

// ProviderProduct is a provider-specific listing of a product, keyed naturally
// by (ProductID, ProviderID).
type ProviderProduct struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_provider_product"`
	ProviderID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_provider_product"`
	IsValidated  bool      `gorm:"not null;default:false"`
	LastReviewDt *time.Time
	PackageUnits *int
	IVA          *int `gorm:"column:iva"`

	Product  Product  `gorm:"foreignKey:ProductID"`
	Provider Provider `gorm:"foreignKey:ProviderID"`
}
