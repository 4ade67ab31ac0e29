package model

import (
	"github.com/google/uuid"
)

// ProviderSynonym maps an alternate spelling to its canonical provider.
// Reference data: consumed during normalization, never written by the pipeline.
type ProviderSynonym struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProviderID uuid.UUID `gorm:"type:uuid;not null;index"`
	Synonym    string    `gorm:"uniqueIndex;not null"`

	Provider Provider `gorm:"foreignKey:ProviderID"`
}
