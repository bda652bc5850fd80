// internal/parser/json.go
package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"cdr-mediation/internal/models"
)

// JSONParser reads a top-level array of objects, one record each.
type JSONParser struct{}

func (p *JSONParser) Parse(path string, opts ParseOptions) ([]models.RawCDR, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read json file: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse json file %s: %w", path, err)
	}

	records := make([]models.RawCDR, 0, len(rows))
	for _, row := range rows {
		records = append(records, applyFieldMap(models.RawCDR(row), opts.FieldMap))
	}

	return records, nil
}
