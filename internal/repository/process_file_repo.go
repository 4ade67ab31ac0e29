package repository

import (
	"context"
	"time"

	"pricefeed/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProcessFileRepository is the data access contract for the per-file
// processing tracker. Services depend on this interface, not on the concrete
// GORM implementation, enabling clean unit testing via stubs.
type ProcessFileRepository interface {
	// FindByKey returns the tracker row for (container, fileName), or
	// gorm.ErrRecordNotFound when the file has never been seen.
	FindByKey(ctx context.Context, container, fileName string) (*model.ProcessFile, error)
	Create(ctx context.Context, pf *model.ProcessFile) error
	SetStatus(ctx context.Context, id uuid.UUID, status model.FileStatus) error
}

type processFileRepo struct{ db *gorm.DB }

func NewProcessFileRepository(db *gorm.DB) ProcessFileRepository {
	return &processFileRepo{db: db}
}

func (r *processFileRepo) FindByKey(ctx context.Context, container, fileName string) (*model.ProcessFile, error) {
	var pf model.ProcessFile
	err := r.db.WithContext(ctx).
		Where("container = ? AND file_name = ?", container, fileName).
		First(&pf).Error
	if err != nil {
		return nil, err
	}
	return &pf, nil
}

func (r *processFileRepo) Create(ctx context.Context, pf *model.ProcessFile) error {
	return r.db.WithContext(ctx).Create(pf).Error
}

func (r *processFileRepo) SetStatus(ctx context.Context, id uuid.UUID, status model.FileStatus) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.ProcessFile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status_id":        status,
			"process_dt":       now,
			"last_modified_dt": now,
		}).Error
}
