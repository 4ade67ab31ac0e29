package model

import (
	"time"

	"github.com/google/uuid"
)

// Provider is append-only by name: a row is created the first time a batch
// introduces a cleaned provider name and never updated afterwards.
type Provider struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name     string    `gorm:"uniqueIndex;not null"`
	CreateDt time.Time `gorm:"not null"`

	Synonyms []ProviderSynonym `gorm:"foreignKey:ProviderID"`
	Listings []ProviderProduct `gorm:"foreignKey:ProviderID"`
}
