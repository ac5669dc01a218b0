package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readCSV treats the first row as property names. Empty cells are nil.
func readCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid CSV header: %w", err)
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return tabular(header, rows), nil
}

// readXLSX reads the first sheet of a workbook with a header row.
func readXLSX(r io.Reader) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return []Record{}, nil
	}
	return tabular(rows[0], rows[1:]), nil
}

// tabular maps rows onto header names. Short rows leave trailing
// properties nil; fully empty rows are dropped.
func tabular(header []string, rows [][]string) []Record {
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		if blank(row) {
			continue
		}
		rec := make(Record, len(names))
		for i, name := range names {
			if name == "" {
				continue
			}
			if i < len(row) && row[i] != "" {
				rec[name] = row[i]
			} else {
				rec[name] = nil
			}
		}
		out = append(out, rec)
	}
	return out
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
