package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"$ 1.500,50", "150050", true},
		{"1,000", "1000", true},
		{"2.500", "2500", true},
		{"1500", "1500", true},
		{"  $950 ", "950", true},
		{"", "", false},
		{"N/A", "", false},
		{"$", "", false},
	}
	for _, c := range cases {
		got, ok := ParsePrice(c.in)
		assert.Equal(t, c.ok, ok, "input %q", c.in)
		if c.ok {
			assert.Equal(t, c.want, got.String(), "input %q", c.in)
		}
	}
}

func TestInferDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-03-15", "2024-03-15"},
		{"15/03/2024", "2024-03-15"},
		{"15-03-2024", "2024-03-15"},
		{"15.03.2024", "2024-03-15"},
		// Ambiguous numeric dates resolve day-first.
		{"03/04/2024", "2024-04-03"},
		// Impossible as day-first, falls through to month-first.
		{"03/15/2024", "2024-03-15"},
		{"March 15, 2024", "2024-03-15"},
		{"Mar 15 2024", "2024-03-15"},
		// Fuzzy: date embedded in surrounding text.
		{"vigencia 15/03/2024 lista mayorista", "2024-03-15"},
	}
	for _, c := range cases {
		got, ok := InferDate(c.in)
		require.True(t, ok, "input %q", c.in)
		assert.Equal(t, c.want, got.Format("2006-01-02"), "input %q", c.in)
	}
}

func TestInferDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "sin fecha", "lista de precios"} {
		_, ok := InferDate(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestInferDateNotInFuture(t *testing.T) {
	got, ok := InferDate("01/01/2023")
	require.True(t, ok)
	assert.True(t, got.Before(time.Now()))
}

func TestRemoveSpecialChars(t *testing.T) {
	assert.Equal(t, "Harina 000 x10 5kg", RemoveSpecialChars("Harina* 000 x10 (5kg)"))
	assert.Equal(t, "Leche 1/2 Lt 10% desc", RemoveSpecialChars("Leche 1/2 Lt 10% desc."))
	assert.Equal(t, "sin cambios", RemoveSpecialChars("sin cambios"))
}

func TestSeparateCaseBoundary(t *testing.T) {
	assert.Equal(t, "Harina De Trigo", SeparateCaseBoundary("HarinaDeTrigo"))
	assert.Equal(t, "Producto 123", SeparateCaseBoundary("Producto123"))
	assert.Equal(t, "YERBA", SeparateCaseBoundary("YERBA"))

	// Idempotent: a second pass changes nothing.
	once := SeparateCaseBoundary("HarinaDeTrigo500")
	assert.Equal(t, once, SeparateCaseBoundary(once))
}

func TestNormalizeProviderName(t *testing.T) {
	assert.Equal(t, "Provedor A", NormalizeProviderName("ProvedorA"))
	assert.Equal(t, "Molinos Rio", NormalizeProviderName("Molinos*Rio"))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Arroz Premium 500g", TitleCase("ARROZ PREMIUM 500G"))
	assert.Equal(t, "", TitleCase("   "))
}

func TestExtractMeasureAndUnit(t *testing.T) {
	cases := []struct {
		in                  string
		measure, unit, pack string
	}{
		{"Arroz Premium 500g x 12", "500", "g", "12"},
		{"Aceite 1.5lt", "1.5", "lt", ""},
		{"Gaseosa x6", "", "", "6"},
		{"Yerba Mate", "", "", ""},
		{"Shampoo 400ML", "400", "ml", ""},
	}
	for _, c := range cases {
		m, u, p := ExtractMeasureAndUnit(c.in)
		assert.Equal(t, c.measure, m, "input %q", c.in)
		assert.Equal(t, c.unit, u, "input %q", c.in)
		assert.Equal(t, c.pack, p, "input %q", c.in)
	}
}

func TestExtractTaxCode(t *testing.T) {
	iva, ok := ExtractTaxCode("Arroz Premium 500g x 12 (G13)")
	require.True(t, ok)
	assert.Equal(t, 13, iva)

	iva, ok = ExtractTaxCode("Fideos (g1)")
	require.True(t, ok)
	assert.Equal(t, 1, iva)

	iva, ok = ExtractTaxCode("Azucar ( G 21 )")
	require.True(t, ok)
	assert.Equal(t, 21, iva)

	_, ok = ExtractTaxCode("Azucar 1kg")
	assert.False(t, ok)
}

func TestParseInt(t *testing.T) {
	n, ok := ParseInt(" 13 ")
	require.True(t, ok)
	assert.Equal(t, 13, n)

	_, ok = ParseInt("13.5")
	assert.False(t, ok)
	_, ok = ParseInt("-3")
	assert.False(t, ok)
	_, ok = ParseInt("")
	assert.False(t, ok)
}

func TestNormalizeDescription(t *testing.T) {
	assert.Equal(t, "Arroz Premium", NormalizeDescription("  ARROZ PREMIUM  "))
	assert.Equal(t, "", NormalizeDescription(""))
}
