package infra

import (
	"context"
	"fmt"
	"time"

	"pricefeed/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and bootstraps the
// schema: the staging schema first (AutoMigrate cannot create it), then the
// canonical and staging tables.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.Exec(`CREATE SCHEMA IF NOT EXISTS "staging"`).Error; err != nil {
		return nil, fmt.Errorf("create staging schema: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Provider{},
		&model.ProviderSynonym{},
		&model.UnitOfMeasure{},
		&model.UnitOfMeasureAcronym{},
		&model.Product{},
		&model.ProviderProduct{},
		&model.ProcessFile{},
		&model.StagingProvider{},
		&model.StagingProduct{},
		&model.StagingProviderProduct{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	return db, nil
}

// Awakener wakes a serverless store that auto-suspends when idle. Ensure runs
// a trivial probe; each failure sleeps base·2^attempt before retrying, up to
// a small bound. Exhausting the bound is fatal to the invocation — the
// pipeline never proceeds on a dead connection and never retries forever.
type Awakener struct {
	attempts int
	base     time.Duration
	probe    func(ctx context.Context) error
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewAwakener(db *gorm.DB, attempts int, base time.Duration) *Awakener {
	if attempts <= 0 {
		attempts = 3
	}
	if base <= 0 {
		base = time.Second
	}
	return &Awakener{
		attempts: attempts,
		base:     base,
		probe: func(ctx context.Context) error {
			return db.WithContext(ctx).Exec("SELECT 1").Error
		},
		sleep: sleepCtx,
	}
}

// Ensure probes the store, retrying with exponential backoff. Returns nil as
// soon as one probe succeeds.
func (a *Awakener) Ensure(ctx context.Context) error {
	var lastErr error
	for attempt := 0; attempt < a.attempts; attempt++ {
		if attempt > 0 {
			delay := a.base << (attempt - 1)
			log.Warn().Err(lastErr).Dur("delay", delay).Int("attempt", attempt).
				Msg("store probe failed, retrying after backoff")
			if err := a.sleep(ctx, delay); err != nil {
				return err
			}
		}
		if lastErr = a.probe(ctx); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("store unreachable after %d attempts: %w", a.attempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
