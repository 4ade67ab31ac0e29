package infra

import (
	"testing"

	"pricefeed/internal/etl"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtractionCSVPlain(t *testing.T) {
	rs, err := parseExtractionCSV("Producto,Precio\nArroz,1200\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"Producto", "Precio"}, rs.Columns)
	require.Len(t, rs.Rows, 1)
}

func TestParseExtractionCSVStripsFence(t *testing.T) {
	content := "Here are the extracted rows:\n```csv\nProducto,Precio\nArroz,1200\nFideos,800\n```\n"
	rs, err := parseExtractionCSV(content)
	require.NoError(t, err)
	require.Len(t, rs.Rows, 2)
	assert.Equal(t, "Fideos", rs.Rows[1]["Producto"])
}

func TestParseExtractionCSVStripsBareFence(t *testing.T) {
	rs, err := parseExtractionCSV("```\nProducto,Precio\nArroz,1200\n```")
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
}

func TestParseExtractionCSVHeaderOnly(t *testing.T) {
	_, err := parseExtractionCSV("```csv\nProducto,Precio\n```")
	require.ErrorIs(t, err, etl.ErrEmptyInput)
}
