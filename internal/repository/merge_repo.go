package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MergeRepository promotes one batch's staging rows into the canonical
// tables. The whole merge is a single all-or-nothing transaction, and every
// match is by natural key (provider name, product description, and the
// (product, provider) pair), never by staging row identity — re-running the
// same batch id is therefore safe.
type MergeRepository interface {
	MergeBatch(ctx context.Context, batch uuid.UUID) error
}

type mergeRepo struct{ db *gorm.DB }

func NewMergeRepository(db *gorm.DB) MergeRepository {
	return &mergeRepo{db: db}
}

// resolveUnitSQL resolves a staged unit acronym to a canonical unit id,
// first by direct acronym match, then through the acronym synonym table.
const resolveUnitSQL = `COALESCE(
  (SELECT u.id FROM unit_of_measures u WHERE u.acronym = s.unit_of_measure),
  (SELECT a.unit_of_measure_id FROM unit_of_measure_acronyms a WHERE a.acronym = s.unit_of_measure LIMIT 1)
)`

// mergeSteps run in a fixed order: each step depends on the previous step's
// durable effects inside the same transaction. Every statement takes the
// batch id as its only parameter.
var mergeSteps = []struct {
	descr string
	sql   string
}{
	// 1. Providers are append-only by name: insert names this batch
	//    introduces, never update existing rows. Duplicate staged names
	//    collapse via DISTINCT.
	{"insert new providers", `
INSERT INTO providers (name, create_dt)
SELECT DISTINCT s.name, NOW()
FROM "staging".providers s
WHERE s.batch_guid = @batch
  AND NOT EXISTS (SELECT 1 FROM providers p WHERE p.name = s.name)`},

	// 2. Units on demand: staged acronyms covered by neither the canonical
	//    units nor the acronym synonyms become new units, acronym doubling
	//    as the name until curated.
	{"insert missing units of measure", `
INSERT INTO unit_of_measures (acronym, name)
SELECT DISTINCT s.unit_of_measure, s.unit_of_measure
FROM "staging".products s
WHERE s.batch_guid = @batch
  AND s.unit_of_measure IS NOT NULL
  AND NOT EXISTS (SELECT 1 FROM unit_of_measures u WHERE u.acronym = s.unit_of_measure)
  AND NOT EXISTS (SELECT 1 FROM unit_of_measure_acronyms a WHERE a.acronym = s.unit_of_measure)`},

	// 3a. Product update by description natural key. Duplicate staged
	//     descriptions are not pre-deduplicated: whichever row the store
	//     applies last wins, order unspecified. A null staged price keeps
	//     the existing price.
	{"update matched products", `
UPDATE products p SET
  price              = COALESCE(s.price, p.price),
  measure            = s.measure::numeric,
  unit_of_measure_id = ` + resolveUnitSQL + `,
  updated_dt         = NOW()
FROM "staging".products s
WHERE s.batch_guid = @batch
  AND p.description = s.description`},

	// 3b. Product insert for descriptions unseen canonically. DISTINCT ON
	//     avoids a unique-key violation when one batch stages the same new
	//     product twice.
	{"insert new products", `
INSERT INTO products (description, price, measure, unit_of_measure_id, created_dt, updated_dt)
SELECT DISTINCT ON (s.description)
  s.description,
  COALESCE(s.price, 0),
  s.measure::numeric,
  ` + resolveUnitSQL + `,
  NOW(),
  NOW()
FROM "staging".products s
WHERE s.batch_guid = @batch
  AND NOT EXISTS (SELECT 1 FROM products p WHERE p.description = s.description)`},

	// 4a. Provider-product update: ProductId and ProviderId are re-derived
	//     through the now-durable provider and product rows.
	{"update matched provider products", `
UPDATE provider_products pp SET
  last_review_dt = s.last_review_dt,
  package_units  = s.package_units::int,
  iva            = s.iva,
  is_validated   = s.is_validated
FROM "staging".provider_products s
JOIN products pr  ON pr.description = s.product_description
JOIN providers pv ON pv.name = s.provider_name
WHERE s.batch_guid = @batch
  AND pp.product_id = pr.id
  AND pp.provider_id = pv.id`},

	// 4b. Provider-product insert for unseen (product, provider) pairs.
	{"insert new provider products", `
INSERT INTO provider_products (product_id, provider_id, is_validated, last_review_dt, package_units, iva)
SELECT DISTINCT ON (pr.id, pv.id)
  pr.id,
  pv.id,
  s.is_validated,
  s.last_review_dt,
  s.package_units::int,
  s.iva
FROM "staging".provider_products s
JOIN products pr  ON pr.description = s.product_description
JOIN providers pv ON pv.name = s.provider_name
WHERE s.batch_guid = @batch
  AND NOT EXISTS (
    SELECT 1 FROM provider_products pp
    WHERE pp.product_id = pr.id AND pp.provider_id = pv.id)`},

	// 5. Purge the batch's staging rows to bound staging growth. On rollback
	//    they survive and the batch id remains valid for a retry.
	{"purge staging provider products", `DELETE FROM "staging".provider_products WHERE batch_guid = @batch`},
	{"purge staging products", `DELETE FROM "staging".products WHERE batch_guid = @batch`},
	{"purge staging providers", `DELETE FROM "staging".providers WHERE batch_guid = @batch`},
}

func (r *mergeRepo) MergeBatch(ctx context.Context, batch uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, step := range mergeSteps {
			if err := tx.Exec(step.sql, map[string]interface{}{"batch": batch}).Error; err != nil {
				return fmt.Errorf("merge %q: %w", step.descr, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Info().Str("batch", batch.String()).Msg("merged staging batch into canonical tables")
	return nil
}
