package etl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	data := []byte("Producto, Precio ,Provedor\nArroz,1200,ProvedorA\nFideos,800\n")

	rs, err := ParseCSV(data)
	require.NoError(t, err)

	// Headers are trimmed; short rows read missing cells as empty.
	assert.Equal(t, []string{"Producto", "Precio", "Provedor"}, rs.Columns)
	require.Len(t, rs.Rows, 2)
	assert.Equal(t, "ProvedorA", rs.Rows[0]["Provedor"])
	assert.Equal(t, "", rs.Rows[1]["Provedor"])
}

func TestParseCSVEmptyInput(t *testing.T) {
	_, err := ParseCSV(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = ParseCSV([]byte("Producto,Precio\n"))
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestHasColumn(t *testing.T) {
	rs := &RecordSet{Columns: []string{"Producto", "Precio"}}
	assert.True(t, rs.HasColumn("Precio"))
	assert.False(t, rs.HasColumn("Fecha"))
}

func TestWriteCSVRoundTrip(t *testing.T) {
	rs := &RecordSet{
		Columns: []string{"Producto", "Precio"},
		Rows: []map[string]string{
			{"Producto": "Arroz, integral", "Precio": "1200"},
		},
	}

	out, err := rs.WriteCSV()
	require.NoError(t, err)

	back, err := ParseCSV(out)
	require.NoError(t, err)
	require.Len(t, back.Rows, 1)
	assert.Equal(t, "Arroz, integral", back.Rows[0]["Producto"])
}
