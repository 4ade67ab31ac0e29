package etl

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInput is returned when source data has no header or no data rows.
// It is fatal to the invocation: nothing is staged or merged.
var ErrEmptyInput = errors.New("etl: input has no data rows")

// RecordSet is an ordered tabular slice: a header plus rows keyed by column
// name. It is the shape shared by CSV uploads and vision-extracted invoices.
type RecordSet struct {
	Columns []string
	Rows    []map[string]string
}

// HasColumn reports whether the set carries the named column.
func (rs *RecordSet) HasColumn(name string) bool {
	for _, c := range rs.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ParseCSV reads CSV bytes into a RecordSet. Header cells are trimmed; rows
// shorter than the header are tolerated (missing cells read as empty).
// Empty or headerless input yields ErrEmptyInput.
func ParseCSV(data []byte) (*RecordSet, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("etl: parse csv: %w", err)
	}
	if len(all) == 0 {
		return nil, ErrEmptyInput
	}

	header := make([]string, len(all[0]))
	for i, h := range all[0] {
		header[i] = strings.TrimSpace(h)
	}

	rs := &RecordSet{Columns: header}
	for _, row := range all[1:] {
		m := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				m[col] = strings.TrimSpace(row[i])
			} else {
				m[col] = ""
			}
		}
		rs.Rows = append(rs.Rows, m)
	}
	if len(rs.Rows) == 0 {
		return nil, ErrEmptyInput
	}
	return rs, nil
}

// WriteCSV renders the record set back to CSV bytes, preserving column order.
// Used to persist vision-extracted invoices as an auditable artifact.
func (rs *RecordSet) WriteCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(rs.Columns); err != nil {
		return nil, err
	}
	for _, row := range rs.Rows {
		record := make([]string, len(rs.Columns))
		for i, col := range rs.Columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
