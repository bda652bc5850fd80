// internal/service/pipeline_file_test.go
package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cdr-mediation/internal/models"
	"cdr-mediation/internal/parser"
)

func TestProcessFileCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cdrs.csv")
	content := "cdr_id,origination_number,destination_number,usage_start,duration_seconds\n" +
		"f-1,5551234567,5559876543,2024-01-01T10:00:00Z,45\n" +
		"f-2,5551234567,5559876543,2024-01-01T11:00:00Z,120\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	storage := newFakeStorage(testClient())
	p := newTestPipeline(storage, Collaborators{})

	result, err := p.ProcessFile(context.Background(), path, parser.FormatCSV, parser.ParseOptions{})
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}

	if result.SourceFile != path || result.FileFormat != parser.FormatCSV {
		t.Errorf("provenance = %q/%q", result.SourceFile, result.FileFormat)
	}
	if result.Successful != 2 {
		t.Errorf("successful = %d, want 2 (errors: %v)", result.Successful, result.Errors)
	}

	for _, rec := range storage.committed() {
		if rec.Source != path {
			t.Errorf("record source = %q, want %q", rec.Source, path)
		}
	}
}

func TestProcessFileUnknownFormat(t *testing.T) {
	p := newTestPipeline(newFakeStorage(testClient()), Collaborators{})

	if _, err := p.ProcessFile(context.Background(), "whatever.bin", "proprietary", parser.ParseOptions{}); err == nil {
		t.Error("ProcessFile() succeeded for unregistered format")
	}
}

// A parse failure aborts the file operation: nothing is processed.
func TestProcessFileParseErrorAborts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"not":"an array"}`), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	storage := newFakeStorage(testClient())
	p := newTestPipeline(storage, Collaborators{})

	_, err := p.ProcessFile(context.Background(), path, parser.FormatJSON, parser.ParseOptions{})
	if err == nil {
		t.Fatal("ProcessFile() succeeded on malformed file")
	}
	if len(storage.committed()) != 0 {
		t.Error("partial parse was processed")
	}
}

func TestProcessFileCustomParser(t *testing.T) {
	registry := parser.NewRegistry()
	registry.Register("fixed", fixedParser{})

	storage := newFakeStorage(testClient())
	p := newTestPipeline(storage, Collaborators{Parsers: registry})

	result, err := p.ProcessFile(context.Background(), "ignored.bin", "fixed", parser.ParseOptions{})
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	if result.Successful != 1 {
		t.Errorf("successful = %d, want 1 (errors: %v)", result.Successful, result.Errors)
	}
}

type fixedParser struct{}

func (fixedParser) Parse(path string, opts parser.ParseOptions) ([]models.RawCDR, error) {
	return []models.RawCDR{{
		"cdr_id":             "fixed-1",
		"origination_number": "5551234567",
		"destination_number": "5559876543",
		"usage_start":        "2024-01-01T10:00:00Z",
		"duration_seconds":   "45",
	}}, nil
}
