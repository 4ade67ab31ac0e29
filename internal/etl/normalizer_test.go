package etl

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var processedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestNormalizeFullRow(t *testing.T) {
	rs := &RecordSet{
		Columns: []string{"Producto", "Fecha 1", "Provedor", "Precio", "Porcentaje de IVA"},
		Rows: []map[string]string{
			{
				"Producto": "Arroz Premium 500g x 12 (G13)",
				"Fecha 1":  "15/03/2024",
				"Provedor": "ProvedorA",
				"Precio":   "$ 2.500",
				"Porcentaje de IVA": "13",
			},
		},
	}

	records := Normalize(rs, processedAt, nil)
	require.Len(t, records, 1)
	rec := records[0]

	require.NotNil(t, rec.CleanPrice)
	assert.Equal(t, "2500", rec.CleanPrice.String())
	assert.True(t, rec.IsValidPrice)

	require.NotNil(t, rec.CleanLastReviewDt)
	assert.Equal(t, "2024-03-15", rec.CleanLastReviewDt.Format("2006-01-02"))

	require.NotNil(t, rec.CleanProviderName)
	assert.Equal(t, "Provedor A", *rec.CleanProviderName)

	require.NotNil(t, rec.Measure)
	assert.Equal(t, "500", *rec.Measure)
	require.NotNil(t, rec.UnitOfMeasure)
	assert.Equal(t, "g", *rec.UnitOfMeasure)
	require.NotNil(t, rec.PackageUnits)
	assert.Equal(t, "12", *rec.PackageUnits)

	require.NotNil(t, rec.PercentageIVA)
	assert.Equal(t, 13, *rec.PercentageIVA)
}

func TestNormalizeAliasesAndSynthesizedDate(t *testing.T) {
	rs := &RecordSet{
		Columns: []string{"Producto", "Provedor", "Precio"},
		Rows: []map[string]string{
			{"Producto": "Fideos", "Provedor": "Molinos", "Precio": "800"},
		},
	}

	records := Normalize(rs, processedAt, nil)
	require.Len(t, records, 1)

	// No date column: the processing date is synthesized for every row.
	require.NotNil(t, records[0].CleanLastReviewDt)
	assert.Equal(t, "2024-06-01", records[0].CleanLastReviewDt.Format("2006-01-02"))
	assert.True(t, rs.HasColumn(ColLastReviewDt))
}

func TestNormalizeDerivesIVAFromDescription(t *testing.T) {
	rs := &RecordSet{
		Columns: []string{"Producto", "Precio"},
		Rows: []map[string]string{
			{"Producto": "Azucar 1kg (G21)", "Precio": "1200"},
			{"Producto": "Sal fina", "Precio": "300"},
		},
	}

	records := Normalize(rs, processedAt, nil)
	require.Len(t, records, 2)

	require.NotNil(t, records[0].PercentageIVA)
	assert.Equal(t, 21, *records[0].PercentageIVA)
	assert.Nil(t, records[1].PercentageIVA)
}

func TestNormalizeIVAColumnWinsOverTaxCode(t *testing.T) {
	rs := &RecordSet{
		Columns: []string{"Producto", "Precio", "IVA"},
		Rows: []map[string]string{
			{"Producto": "Azucar 1kg (G21)", "Precio": "1200", "IVA": "10"},
		},
	}

	records := Normalize(rs, processedAt, nil)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].PercentageIVA)
	assert.Equal(t, 10, *records[0].PercentageIVA)
}

func TestNormalizeResolvesProviderSynonyms(t *testing.T) {
	synonyms := map[string]string{"provedor a": "Distribuidora A"}
	rs := &RecordSet{
		Columns: []string{"Producto", "Provedor", "Precio"},
		Rows: []map[string]string{
			{"Producto": "Fideos", "Provedor": "ProvedorA", "Precio": "800"},
		},
	}

	records := Normalize(rs, processedAt, synonyms)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].CleanProviderName)
	assert.Equal(t, "Distribuidora A", *records[0].CleanProviderName)
}

func TestNormalizeDropsEmptyRowsKeepsPartialRows(t *testing.T) {
	rs := &RecordSet{
		Columns: []string{"Producto", "Provedor", "Precio"},
		Rows: []map[string]string{
			{"Producto": "", "Provedor": "  ", "Precio": ""},
			{"Producto": "Fideos", "Provedor": "", "Precio": "no aplica"},
		},
	}

	records := Normalize(rs, processedAt, nil)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Fideos", rec.RawDescription)
	// Unparseable price is kept raw with no clean value.
	assert.Equal(t, "no aplica", rec.RawPrice)
	assert.Nil(t, rec.CleanPrice)
	assert.False(t, rec.IsValidPrice)
	assert.Nil(t, rec.CleanProviderName)
}

func TestNormalizeSynthesizedDateDoesNotReviveEmptyRows(t *testing.T) {
	// No date column: the synthesized LastReviewDt would make a blank source
	// row non-empty, so emptiness must be judged before synthesis.
	rs := &RecordSet{
		Columns: []string{"Producto", "Provedor", "Precio"},
		Rows: []map[string]string{
			{"Producto": "", "Provedor": "", "Precio": ""},
			{"Producto": "Fideos", "Provedor": "Molinos", "Precio": "800"},
			{"Producto": " ", "Provedor": "", "Precio": ""},
		},
	}

	records := Normalize(rs, processedAt, nil)
	require.Len(t, records, 1)
	assert.Equal(t, "Fideos", records[0].RawDescription)
}

func TestNormalizeAllBlankRowsYieldsNoRecords(t *testing.T) {
	rs := &RecordSet{
		Columns: []string{"Producto", "Provedor", "Precio"},
		Rows: []map[string]string{
			{"Producto": "", "Provedor": "", "Precio": ""},
			{"Producto": "", "Provedor": " ", "Precio": ""},
		},
	}

	records := Normalize(rs, processedAt, nil)
	assert.Empty(t, records)
}

func TestNormalizeInvalidDateKeptRaw(t *testing.T) {
	rs := &RecordSet{
		Columns: []string{"Producto", "Fecha", "Precio"},
		Rows: []map[string]string{
			{"Producto": "Fideos", "Fecha": "proximamente", "Precio": "800"},
		},
	}

	records := Normalize(rs, processedAt, nil)
	require.Len(t, records, 1)
	assert.Equal(t, "proximamente", records[0].RawLastReviewDt)
	assert.Nil(t, records[0].CleanLastReviewDt)
}

func TestStageProvidersDeduplicates(t *testing.T) {
	a, b := "Provedor A", "Provedor B"
	records := []Record{
		{CleanProviderName: &a},
		{CleanProviderName: &b},
		{CleanProviderName: &a},
		{},
	}

	batch := uuid.New()
	rows := StageProviders(records, batch)
	require.Len(t, rows, 2)
	assert.Equal(t, "Provedor A", rows[0].Name)
	assert.Equal(t, "Provedor B", rows[1].Name)
	for _, r := range rows {
		assert.Equal(t, batch, r.BatchGuid)
	}
}

func TestStageProductsSkipsRowsWithoutDescription(t *testing.T) {
	m := "500"
	records := []Record{
		{RawDescription: "Arroz 500g", Measure: &m},
		{RawDescription: ""},
	}

	rows := StageProducts(records, uuid.New())
	require.Len(t, rows, 1)
	assert.Equal(t, "Arroz 500g", rows[0].Description)
	require.NotNil(t, rows[0].Measure)
	assert.Equal(t, "500", *rows[0].Measure)
}

func TestStageProviderProductsCarriesNaturalKeys(t *testing.T) {
	name := "Provedor A"
	iva := 13
	records := []Record{
		{RawDescription: "Arroz 500g", CleanProviderName: &name, PercentageIVA: &iva},
	}

	batch := uuid.New()
	rows := StageProviderProducts(records, batch)
	require.Len(t, rows, 1)
	assert.Equal(t, "Arroz 500g", rows[0].ProductDescription)
	require.NotNil(t, rows[0].ProviderName)
	assert.Equal(t, "Provedor A", *rows[0].ProviderName)
	require.NotNil(t, rows[0].IVA)
	assert.Equal(t, 13, *rows[0].IVA)
	assert.Equal(t, batch, rows[0].BatchGuid)
}
