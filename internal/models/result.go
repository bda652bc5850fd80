// internal/models/result.go
package models

import "time"

// ProcessingResult is returned for every input record. The pipeline never
// lets an error escape its boundary; failures are reported here.
type ProcessingResult struct {
	Success bool                   `json:"success"`
	Errors  []string               `json:"errors,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Elapsed time.Duration          `json:"elapsed"`
}

// BatchResult aggregates per-record outcomes for one batch invocation.
type BatchResult struct {
	BatchID       string                   `json:"batch_id"`
	Total         int                      `json:"total"`
	Successful    int                      `json:"successful"`
	Failed        int                      `json:"failed"`
	Duplicates    int                      `json:"duplicates"`
	FraudDetected int                      `json:"fraud_detected"`
	Records       []map[string]interface{} `json:"records"`
	Errors        []string                 `json:"errors"`
	Elapsed       time.Duration            `json:"elapsed"`
}

// FileResult wraps a BatchResult with file provenance.
type FileResult struct {
	SourceFile string `json:"source_file"`
	FileFormat string `json:"file_format"`
	BatchResult
}
