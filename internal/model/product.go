package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is keyed naturally by its raw description: the merge matches on
// Description, never on surrogate ids, so re-running a batch is idempotent.
type Product struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Description     string           `gorm:"uniqueIndex;not null"`
	Price           decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	Measure         *decimal.Decimal `gorm:"type:decimal(18,3)"`
	UnitOfMeasureID *uuid.UUID       `gorm:"type:uuid;index"`
	CreatedDt       time.Time        `gorm:"not null"`
	UpdatedDt       time.Time        `gorm:"not null"`

	UnitOfMeasure *UnitOfMeasure `gorm:"foreignKey:UnitOfMeasureID"`
}
