// internal/service/pipeline_batch.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cdr-mediation/internal/models"
	"cdr-mediation/internal/parser"
)

// ProcessBatch splits the input into fixed-size chunks and processes
// each inside one atomic storage transaction. Failure isolation is
// per-chunk: a chunk-level failure rolls back and fails only that
// chunk; prior chunks stay committed. Cancellation is checked between
// chunks; an in-flight chunk always commits or rolls back cleanly.
func (p *Pipeline) ProcessBatch(ctx context.Context, raws []models.RawCDR) *models.BatchResult {
	start := time.Now()
	batchID := uuid.New().String()

	result := &models.BatchResult{
		BatchID: batchID,
		Total:   len(raws),
		Records: []map[string]interface{}{},
		Errors:  []string{},
	}

	chunkSize := p.opts.ChunkSize
	cancelled := false

	for chunkIndex := 0; chunkIndex*chunkSize < len(raws); chunkIndex++ {
		lo := chunkIndex * chunkSize
		hi := lo + chunkSize
		if hi > len(raws) {
			hi = len(raws)
		}
		chunk := raws[lo:hi]

		if cancelled || ctx.Err() != nil {
			cancelled = true
			msg := fmt.Sprintf("chunk %d skipped: batch cancelled", chunkIndex)
			result.Failed += len(chunk)
			result.Errors = append(result.Errors, msg)
			continue
		}

		chunkResults, chunkErr := p.processChunk(ctx, chunk, batchID, chunkIndex)
		if chunkErr != nil {
			msg := fmt.Sprintf("chunk %d failed: %v", chunkIndex, chunkErr)
			p.logger.Error("chunk processing failed",
				zap.String("batch_id", batchID),
				zap.Int("chunk_index", chunkIndex),
				zap.Error(chunkErr))
			result.Failed += len(chunk)
			result.Errors = append(result.Errors, msg)
			continue
		}

		for _, res := range chunkResults {
			p.aggregate(result, res)
		}
	}

	result.Elapsed = time.Since(start)

	p.logger.Info("batch processed",
		zap.String("batch_id", batchID),
		zap.Int("total", result.Total),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("fraud_detected", result.FraudDetected),
		zap.Duration("elapsed", result.Elapsed))

	return result
}

// processChunk runs one chunk inside its own transaction. A non-nil
// error means the whole chunk rolled back and every record in it must
// be counted failed; per-record failures come back in the results.
func (p *Pipeline) processChunk(ctx context.Context, chunk []models.RawCDR, batchID string, chunkIndex int) ([]*models.ProcessingResult, error) {
	tx, err := p.storage.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open transaction: %w", err)
	}

	results := make([]*models.ProcessingResult, 0, len(chunk))

	for i, raw := range chunk {
		// Global position: recoverable ordering across independently
		// committed chunks.
		sequence := chunkIndex*p.opts.ChunkSize + i

		res, fatal := p.processRecord(ctx, tx, raw, batchID, sequence)
		if fatal != nil {
			tx.Rollback()
			return nil, fatal
		}
		results = append(results, res)
	}

	if err := tx.Commit(); err != nil {
		return nil, &models.PersistenceError{Op: "commit", Err: err}
	}

	return results, nil
}

// aggregate folds one record result into the batch counters. Duplicates
// are informational: counted on their own, not as failures.
func (p *Pipeline) aggregate(batch *models.BatchResult, res *models.ProcessingResult) {
	if res.Data != nil {
		batch.Records = append(batch.Records, res.Data)
	}

	if res.Success {
		batch.Successful++
		if isFraud, ok := res.Data["is_fraud"].(bool); ok && isFraud {
			batch.FraudDetected++
		}
		return
	}

	if hasError(res, models.ErrDuplicate.Error()) {
		batch.Duplicates++
		return
	}

	batch.Failed++
	batch.Errors = append(batch.Errors, res.Errors...)
}

func hasError(res *models.ProcessingResult, msg string) bool {
	for _, e := range res.Errors {
		if e == msg {
			return true
		}
	}
	return false
}

// ProcessFile parses one file into raw records and processes them as a
// batch. A parse failure aborts the whole operation; there is no
// partial parse-then-process.
func (p *Pipeline) ProcessFile(ctx context.Context, path, format string, opts parser.ParseOptions) (*models.FileResult, error) {
	fileParser, err := p.parsers.Get(format)
	if err != nil {
		return nil, err
	}

	raws, err := fileParser.Parse(path, opts)
	if err != nil {
		return nil, &models.CollaboratorError{Collaborator: "parser", Err: err}
	}

	// Tag provenance before the records enter the pipeline.
	for _, raw := range raws {
		if _, ok := raw["source"]; !ok {
			raw["source"] = path
		}
	}

	p.logger.Info("file parsed",
		zap.String("path", path),
		zap.String("format", format),
		zap.Int("records", len(raws)))

	batch := p.ProcessBatch(ctx, raws)

	return &models.FileResult{
		SourceFile:  path,
		FileFormat:  format,
		BatchResult: *batch,
	}, nil
}
