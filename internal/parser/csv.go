// internal/parser/csv.go
package parser

import (
	"encoding/csv"
	"fmt"
	"os"

	"cdr-mediation/internal/models"
)

// CSVParser reads a header row as field names and one record per
// following row.
type CSVParser struct{}

func (p *CSVParser) Parse(path string, opts ParseOptions) ([]models.RawCDR, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv file %s has no header row", path)
	}

	header := rows[0]
	records := make([]models.RawCDR, 0, len(rows)-1)

	for _, row := range rows[1:] {
		raw := make(models.RawCDR, len(header))
		for i, field := range header {
			if i < len(row) {
				raw[field] = row[i]
			}
		}
		records = append(records, applyFieldMap(raw, opts.FieldMap))
	}

	return records, nil
}
