// internal/parser/xml.go
package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"cdr-mediation/internal/models"
)

// XMLParser reads repeated record elements whose child elements become
// fields. The record element name defaults to "record".
type XMLParser struct{}

func (p *XMLParser) Parse(path string, opts ParseOptions) ([]models.RawCDR, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xml file: %w", err)
	}
	defer f.Close()

	recordElement := opts.RecordElement
	if recordElement == "" {
		recordElement = "record"
	}

	decoder := xml.NewDecoder(f)
	var records []models.RawCDR

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse xml file %s: %w", path, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != recordElement {
			continue
		}

		raw, err := decodeRecord(decoder, start)
		if err != nil {
			return nil, fmt.Errorf("failed to parse xml file %s: %w", path, err)
		}
		records = append(records, applyFieldMap(raw, opts.FieldMap))
	}

	return records, nil
}

// decodeRecord consumes everything up to the record's end element,
// mapping each child element to a field.
func decodeRecord(decoder *xml.Decoder, start xml.StartElement) (models.RawCDR, error) {
	raw := models.RawCDR{}

	var field string
	var value strings.Builder

	for {
		tok, err := decoder.Token()
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			field = t.Name.Local
			value.Reset()
		case xml.CharData:
			if field != "" {
				value.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return raw, nil
			}
			if field != "" && t.Name.Local == field {
				raw[field] = strings.TrimSpace(value.String())
				field = ""
			}
		}
	}
}
