// Package transform holds the pure field-level cleaning functions applied to
// raw tabular values. Every function recovers locally: a value that cannot be
// parsed yields the zero value and ok=false (or an empty string), never an
// error or a panic past the function boundary.
package transform

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// Compiled once at startup, shared by all invocations.
var (
	reSpecialChars = regexp.MustCompile(`[^A-Za-z0-9/% ]+`)
	reCaseBoundary = regexp.MustCompile(`([a-z])([A-Z0-9])`)
	reMeasureUnit  = regexp.MustCompile(`(\d+\.?\d*)\s*([A-Za-z]{1,3})`)
	rePackageUnits = regexp.MustCompile(`[xX]\s*(\d+)`)
	reTaxCode      = regexp.MustCompile(`\(\s*[gG]\s*(\d+)\s*\)`)
	reDigits       = regexp.MustCompile(`^\d+$`)
	reNumericDate  = regexp.MustCompile(`\d{1,4}[./-]\d{1,2}[./-]\d{1,4}`)
	reTextualDate  = regexp.MustCompile(`(?i)((?:enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre|january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}|\d{1,2}\s+(?:de\s+)?[a-z]+\.?\s+(?:de\s+)?\d{4})`)

	priceCleaner = strings.NewReplacer("$", "", " ", "", ".", "", ",", "")
)

// Date layouts tried in order. Day-first layouts come before month-first so
// that ambiguous numeric dates resolve day-first ("03/04/2024" is April 3rd).
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"02/01/06",
	"01/02/2006", // month-first fallback for dates like 03/15/2024
	"01-02-2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// InferDate parses a loosely-formatted date string, resolving day/month
// ambiguity day-first and tolerating surrounding noise. Returns ok=false for
// anything that does not contain a recognizable date.
func InferDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, ok := tryLayouts(s); ok {
		return t, true
	}
	// Fuzzy pass: pull the first date-looking token out of surrounding text.
	if tok := reNumericDate.FindString(s); tok != "" {
		if t, ok := tryLayouts(tok); ok {
			return t, true
		}
	}
	if tok := reTextualDate.FindString(s); tok != "" {
		if t, ok := tryLayouts(strings.TrimSpace(tok)); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func tryLayouts(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParsePrice strips currency symbols and whitespace, then strips every "."
// and "," before parsing the remaining digits. Both separators are treated as
// grouping noise, never as a decimal point: "$ 1.500,50" parses to 150050.
// This lossy semantic is intentional and must not change without a matching
// change upstream.
func ParsePrice(s string) (decimal.Decimal, bool) {
	cleaned := priceCleaner.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// RemoveSpecialChars retains only ASCII letters, digits, '/', '%' and spaces.
func RemoveSpecialChars(s string) string {
	return reSpecialChars.ReplaceAllString(s, "")
}

// SeparateCaseBoundary inserts a space at each lowercase→uppercase or
// lowercase→digit transition ("HarinaDeTrigo" → "Harina De Trigo",
// "Producto123" → "Producto 123"). Idempotent on its own output.
func SeparateCaseBoundary(s string) string {
	return reCaseBoundary.ReplaceAllString(s, "$1 $2")
}

// NormalizeProviderName cleans a provider name: special characters stripped,
// case boundaries separated, then title-cased.
func NormalizeProviderName(s string) string {
	return TitleCase(SeparateCaseBoundary(RemoveSpecialChars(s)))
}

// NormalizeDescription title-cases the trimmed description. Empty input
// passes through unchanged.
func NormalizeDescription(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	return TitleCase(trimmed)
}

// TitleCase capitalizes the first letter of every whitespace-delimited word
// and lowercases the rest.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// ExtractMeasureAndUnit extracts, independently, the first numeric quantity
// immediately followed by a 1-3 letter unit token ("500g", "1.5kg") and the
// first "x<digits>" package count. First match wins for each; an empty string
// means the component is absent. The unit is lower-cased.
func ExtractMeasureAndUnit(s string) (measure, unit, packageUnits string) {
	if m := reMeasureUnit.FindStringSubmatch(s); m != nil {
		measure, unit = m[1], strings.ToLower(m[2])
	}
	if p := rePackageUnits.FindStringSubmatch(s); p != nil {
		packageUnits = p[1]
	}
	return measure, unit, packageUnits
}

// ExtractTaxCode finds a parenthesized "(G<digits>)" annotation anywhere in
// the string, case-insensitive on the letter, with optional inner whitespace.
// First match wins; ok=false when no annotation is present.
func ExtractTaxCode(s string) (int, bool) {
	m := reTaxCode.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	return atoi(m[1])
}

// ParseInt parses a plain unsigned integer string ("13", " 13 ").
// Used for IVA columns delivered as text.
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if !reDigits.MatchString(s) {
		return 0, false
	}
	return atoi(s)
}

func atoi(digits string) (int, bool) {
	n := 0
	for _, r := range digits {
		n = n*10 + int(r-'0')
		if n < 0 { // overflow
			return 0, false
		}
	}
	return n, true
}
