package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Staging rows are batch-scoped and unresolved: they may reference providers
// or products that do not exist canonically yet. Resolution happens inside
// the merge transaction, always through natural keys, never through staging
// row identity. Rows are purged once their batch merges.

type StagingProvider struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	BatchGuid uuid.UUID `gorm:"type:uuid;not null;index"`
}

func (StagingProvider) TableName() string { return "staging.providers" }

type StagingProduct struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Description   string           `gorm:"not null"`
	Price         *decimal.Decimal `gorm:"type:decimal(18,2)"`
	Measure       *string
	UnitOfMeasure *string
	BatchGuid     uuid.UUID `gorm:"type:uuid;not null;index"`
}

func (StagingProduct) TableName() string { return "staging.products" }

// StagingProviderProduct carries the raw identifying text (product
// description, provider name) so the merge can re-derive ProductID and
// ProviderID without relying on staging row order.
type StagingProviderProduct struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductDescription string    `gorm:"not null"`
	ProviderName       *string
	Price              *decimal.Decimal `gorm:"type:decimal(18,2)"`
	LastReviewDt       *time.Time
	PackageUnits       *string
	IVA                *int `gorm:"column:iva"`
	IsValidated        bool `gorm:"not null;default:false"`
	BatchGuid          uuid.UUID `gorm:"type:uuid;not null;index"`
}

func (StagingProviderProduct) TableName() string { return "staging.provider_products" }
