package repository

import (
	"context"

	"pricefeed/internal/model"

	"gorm.io/gorm"
)

const insertBatchSize = 500

// StagingRepository loads batch-tagged rows into the staging schema. No
// cross-table consistency is enforced here; resolution happens at merge time.
type StagingRepository interface {
	InsertProviders(ctx context.Context, rows []model.StagingProvider) error
	InsertProducts(ctx context.Context, rows []model.StagingProduct) error
	InsertProviderProducts(ctx context.Context, rows []model.StagingProviderProduct) error
}

type stagingRepo struct{ db *gorm.DB }

func NewStagingRepository(db *gorm.DB) StagingRepository {
	return &stagingRepo{db: db}
}

func (r *stagingRepo) InsertProviders(ctx context.Context, rows []model.StagingProvider) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, insertBatchSize).Error
}

func (r *stagingRepo) InsertProducts(ctx context.Context, rows []model.StagingProduct) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, insertBatchSize).Error
}

func (r *stagingRepo) InsertProviderProducts(ctx context.Context, rows []model.StagingProviderProduct) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, insertBatchSize).Error
}
