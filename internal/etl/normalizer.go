// Package etl maps raw tabular records onto the canonical column set,
// enriches them with cleaned field values, and projects them into the three
// batch-tagged staging collections ready for merge.
package etl

import (
	"strings"
	"time"

	"pricefeed/internal/transform"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Canonical column names after alias mapping.
const (
	ColDescription   = "Description"
	ColProviderName  = "ProviderName"
	ColPrice         = "Price"
	ColLastReviewDt  = "LastReviewDt"
	ColPercentageIVA = "PercentageIVA"
)

// columnAliases maps the column spellings seen in uploaded price lists and
// extracted invoices to canonical names. Unmatched columns pass through.
var columnAliases = map[string]string{
	"Producto":          ColDescription,
	"Fecha 1":           ColLastReviewDt,
	"Fecha":             ColLastReviewDt,
	"Provedor":          ColProviderName,
	"Precio":            ColPrice,
	"IVA":               ColPercentageIVA,
	"Porcentaje de IVA": ColPercentageIVA,
}

// Record is one normalized row: every transformable raw field keeps a paired
// clean value that is either successfully parsed or nil. Parsing never raises
// past the record boundary.
type Record struct {
	Raw map[string]string

	RawPrice     string
	CleanPrice   *decimal.Decimal
	IsValidPrice bool

	RawLastReviewDt   string
	CleanLastReviewDt *time.Time

	RawDescription         string
	CleanDescription       *string
	TransformedDescription *string
	Measure                *string
	UnitOfMeasure          *string
	PackageUnits           *string

	RawProviderName   string
	CleanProviderName *string

	PercentageIVA *int
}

// Normalize renames aliased columns, synthesizes a review date when the input
// carries none, populates the raw/clean field pairs, resolves provider names
// through the synonym table, derives the IVA percentage from the description
// tax code when no IVA column is present, and drops rows that are entirely
// empty. synonyms maps lower-cased alternate spellings to canonical provider
// names and may be nil.
func Normalize(rs *RecordSet, processedAt time.Time, synonyms map[string]string) []Record {
	renameColumns(rs)

	// Drop all-empty rows before the date synthesis below: a synthesized
	// LastReviewDt must never revive a row that was blank in the source.
	kept := rs.Rows[:0]
	for _, row := range rs.Rows {
		if !rowIsEmpty(row) {
			kept = append(kept, row)
		}
	}
	rs.Rows = kept

	if !rs.HasColumn(ColLastReviewDt) {
		rs.Columns = append(rs.Columns, ColLastReviewDt)
		synth := processedAt.Format("2006-01-02")
		for _, row := range rs.Rows {
			row[ColLastReviewDt] = synth
		}
	}

	hasIVAColumn := rs.HasColumn(ColPercentageIVA)

	var records []Record
	var validPrices, validDates, measures, units, packages int

	for _, row := range rs.Rows {
		rec := Record{Raw: row}

		if v, ok := row[ColPrice]; ok {
			rec.RawPrice = v
			if d, ok := transform.ParsePrice(v); ok {
				rec.CleanPrice = &d
				rec.IsValidPrice = true
				validPrices++
			}
		}

		if v, ok := row[ColLastReviewDt]; ok {
			rec.RawLastReviewDt = v
			if t, ok := transform.InferDate(v); ok {
				rec.CleanLastReviewDt = &t
				validDates++
			}
		}

		if v, ok := row[ColDescription]; ok {
			rec.RawDescription = v
			if clean := transform.SeparateCaseBoundary(transform.RemoveSpecialChars(v)); clean != "" {
				rec.CleanDescription = &clean
			}
			if titled := transform.NormalizeDescription(v); titled != "" {
				rec.TransformedDescription = &titled
			}
			measure, unit, pkg := transform.ExtractMeasureAndUnit(v)
			if measure != "" {
				rec.Measure = &measure
				measures++
			}
			if unit != "" {
				rec.UnitOfMeasure = &unit
				units++
			}
			if pkg != "" {
				rec.PackageUnits = &pkg
				packages++
			}
		}

		if v, ok := row[ColProviderName]; ok && strings.TrimSpace(v) != "" {
			rec.RawProviderName = v
			clean := transform.NormalizeProviderName(v)
			if canonical, ok := synonyms[strings.ToLower(clean)]; ok {
				clean = canonical
			}
			if clean != "" {
				rec.CleanProviderName = &clean
			}
		}

		if hasIVAColumn {
			if n, ok := transform.ParseInt(row[ColPercentageIVA]); ok {
				rec.PercentageIVA = &n
			}
		} else if n, ok := transform.ExtractTaxCode(rec.RawDescription); ok {
			rec.PercentageIVA = &n
		}

		records = append(records, rec)
	}

	total := len(records)
	log.Info().
		Int("rows", total).
		Int("valid_prices", validPrices).
		Int("valid_dates", validDates).
		Int("measures", measures).
		Int("units", units).
		Int("package_units", packages).
		Msg("normalized record set")

	return records
}

func renameColumns(rs *RecordSet) {
	for i, col := range rs.Columns {
		canonical, ok := columnAliases[col]
		if !ok {
			continue
		}
		rs.Columns[i] = canonical
		for _, row := range rs.Rows {
			if v, present := row[col]; present {
				delete(row, col)
				row[canonical] = v
			}
		}
	}
}

func rowIsEmpty(row map[string]string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
