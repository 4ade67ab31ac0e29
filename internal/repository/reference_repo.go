package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// ReferenceRepository reads the curated lookup tables consumed during
// normalization. The pipeline never writes through this interface.
type ReferenceRepository interface {
	// ProviderSynonyms returns lower-cased alternate spellings mapped to the
	// canonical provider name.
	ProviderSynonyms(ctx context.Context) (map[string]string, error)
}

type referenceRepo struct{ db *gorm.DB }

func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepo{db: db}
}

func (r *referenceRepo) ProviderSynonyms(ctx context.Context) (map[string]string, error) {
	var pairs []struct {
		Synonym string
		Name    string
	}
	err := r.db.WithContext(ctx).
		Table("provider_synonyms").
		Select("provider_synonyms.synonym, providers.name").
		Joins("JOIN providers ON providers.id = provider_synonyms.provider_id").
		Scan(&pairs).Error
	if err != nil {
		return nil, err
	}

	synonyms := make(map[string]string, len(pairs))
	for _, p := range pairs {
		synonyms[strings.ToLower(p.Synonym)] = p.Name
	}
	return synonyms, nil
}
