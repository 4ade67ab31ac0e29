package model

import (
	"time"

	"github.com/google/uuid"
)

// FileStatus is the persisted state of a source file. "Unseen" has no code:
// it is the absence of a ProcessFile row.
type FileStatus int

const (
	StatusInProgress FileStatus = 2
	StatusSucceeded  FileStatus = 3
	StatusFailed     FileStatus = 4
)

// String returns a human-readable status name (for logs and results).
func (s FileStatus) String() string {
	switch s {
	case StatusInProgress:
		return "in_progress"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ProcessFile tracks one distinct source file ever seen, keyed by
// (Container, FileName). It is mutated in place across its lifecycle and
// gates duplicate end-to-end reprocessing: a file already Succeeded is
// skipped entirely on redelivery.
type ProcessFile struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Container      string     `gorm:"not null;uniqueIndex:idx_container_file"`
	FileName       string     `gorm:"not null;uniqueIndex:idx_container_file"`
	StatusID       FileStatus `gorm:"not null"`
	ProcessDt      time.Time  `gorm:"not null"`
	BlobSize       int64
	ContentType    string
	CreatedDt      time.Time
	LastModifiedDt time.Time
	ETag           *string
	Metadata       string `gorm:"not null;default:'{}'"`
}
