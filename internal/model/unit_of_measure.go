package model

import (
	"github.com/google/uuid"
)

// UnitOfMeasure holds canonical units ("g", "kg", "ml"). Mostly curated
// reference data, but unknown acronyms staged by a batch are created on
// demand during the merge, with the acronym doubling as the name.
type UnitOfMeasure struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Acronym string    `gorm:"uniqueIndex;not null"`
	Name    string    `gorm:"not null"`

	Acronyms []UnitOfMeasureAcronym `gorm:"foreignKey:UnitOfMeasureID"`
}

// UnitOfMeasureAcronym maps an alternate acronym ("gr", "grs") to its
// canonical unit. Read-only reference data.
type UnitOfMeasureAcronym struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UnitOfMeasureID uuid.UUID `gorm:"type:uuid;not null;index"`
	Acronym         string    `gorm:"uniqueIndex;not null"`
}
