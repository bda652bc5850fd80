// internal/parser/parser.go
// File-format parsers hand the pipeline a sequence of key-value records;
// they know nothing about validation or normalization.
package parser

import (
	"fmt"
	"sync"

	"cdr-mediation/internal/models"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXML  = "xml"
)

// ParseOptions tunes a parser for one file.
type ParseOptions struct {
	// Delimiter overrides the CSV field separator (default comma).
	Delimiter rune
	// RecordElement overrides the XML record element name (default "record").
	RecordElement string
	// FieldMap renames source columns/keys before records leave the parser.
	FieldMap map[string]string
}

// Parser turns one file into raw CDR records. A parse error aborts the
// whole file; no partial record slice is returned alongside an error.
type Parser interface {
	Parse(path string, opts ParseOptions) ([]models.RawCDR, error)
}

// Registry maps format names to parsers. Proprietary formats register
// their own parser under a custom name.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]Parser
}

// NewRegistry returns a registry preloaded with the standard formats.
func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[string]Parser)}
	r.Register(FormatCSV, &CSVParser{})
	r.Register(FormatJSON, &JSONParser{})
	r.Register(FormatXML, &XMLParser{})
	return r
}

func (r *Registry) Register(format string, p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[format] = p
}

func (r *Registry) Get(format string) (Parser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.parsers[format]
	if !ok {
		return nil, fmt.Errorf("unsupported file format: %s", format)
	}
	return p, nil
}

func applyFieldMap(raw models.RawCDR, fieldMap map[string]string) models.RawCDR {
	if len(fieldMap) == 0 {
		return raw
	}

	out := make(models.RawCDR, len(raw))
	for k, v := range raw {
		if target, ok := fieldMap[k]; ok {
			out[target] = v
		} else {
			out[k] = v
		}
	}
	return out
}
