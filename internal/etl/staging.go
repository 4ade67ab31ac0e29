package etl

import (
	"pricefeed/internal/model"

	"github.com/google/uuid"
)

// Staging projections. Each row set is tagged with the batch id and carries
// no foreign keys: identity is re-resolved during merge via natural keys.

// StageProviders returns one staging row per distinct non-nil cleaned
// provider name, preserving first-seen order.
func StageProviders(records []Record, batch uuid.UUID) []model.StagingProvider {
	seen := make(map[string]struct{})
	var rows []model.StagingProvider
	for _, rec := range records {
		if rec.CleanProviderName == nil {
			continue
		}
		name := *rec.CleanProviderName
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		rows = append(rows, model.StagingProvider{Name: name, BatchGuid: batch})
	}
	return rows
}

// StageProducts returns one staging row per record with a non-empty raw
// description, carrying the cleaned price and the extracted measure/unit.
func StageProducts(records []Record, batch uuid.UUID) []model.StagingProduct {
	var rows []model.StagingProduct
	for _, rec := range records {
		if rec.RawDescription == "" {
			continue
		}
		rows = append(rows, model.StagingProduct{
			Description:   rec.RawDescription,
			Price:         rec.CleanPrice,
			Measure:       rec.Measure,
			UnitOfMeasure: rec.UnitOfMeasure,
			BatchGuid:     batch,
		})
	}
	return rows
}

// StageProviderProducts returns one staging row per record with a non-empty
// raw description, including the identifying text needed to re-resolve
// Product and Provider during merge.
func StageProviderProducts(records []Record, batch uuid.UUID) []model.StagingProviderProduct {
	var rows []model.StagingProviderProduct
	for _, rec := range records {
		if rec.RawDescription == "" {
			continue
		}
		rows = append(rows, model.StagingProviderProduct{
			ProductDescription: rec.RawDescription,
			ProviderName:       rec.CleanProviderName,
			Price:              rec.CleanPrice,
			LastReviewDt:       rec.CleanLastReviewDt,
			PackageUnits:       rec.PackageUnits,
			IVA:                rec.PercentageIVA,
			BatchGuid:          batch,
		})
	}
	return rows
}
