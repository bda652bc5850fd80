// internal/service/pipeline.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cdr-mediation/internal/config"
	"cdr-mediation/internal/models"
	"cdr-mediation/internal/parser"
)

// Collaborators bundles the injectable external services. Nil fields
// fall back to the built-in defaults in NewPipeline.
type Collaborators struct {
	Allocator UsageAllocationService
	Pricer    PricingEngine
	Alerts    AlertEvaluator
	Strategy  ResolutionStrategy
	Parsers   *parser.Registry
}

// Pipeline sequences validation, normalization, duplicate suppression,
// fraud scoring, client resolution, classification, metric derivation,
// persistence, and the allocation/pricing/alerting hand-off.
//
// It is stage-synchronous per record and chunk-parallel-safe: each chunk
// owns its own storage transaction, and the only shared-mutable state
// across concurrent batches is the advisory fingerprint cache.
type Pipeline struct {
	storage    Storage
	validator  *Validator
	normalizer *Normalizer
	guard      *DuplicateGuard
	fraud      *FraudEngine
	resolver   *ClientResolver
	classifier *UsageClassifier
	calculator *MetricCalculator
	allocator  UsageAllocationService
	pricer     PricingEngine
	alerts     AlertEvaluator
	parsers    *parser.Registry
	opts       config.PipelineOptions
	logger     *zap.Logger

	// downstream receives successfully processed records for async batch
	// work when EnableBatching is set. Best-effort: full buffer drops.
	downstream chan *models.UsageRecord
}

// NewPipeline wires the pipeline with default component configuration.
// Use NewPipelineWithConfig to override the pattern tables.
func NewPipeline(storage Storage, dupCache DuplicateCache, collab Collaborators, opts config.PipelineOptions, logger *zap.Logger) *Pipeline {
	return NewPipelineWithConfig(storage, dupCache, collab, PipelineConfig{
		Validation: config.DefaultValidationConfig(),
		Fraud:      config.DefaultFraudConfig(),
		Classifier: config.DefaultClassifierConfig(),
		Pricing:    config.DefaultPricingConfig(),
		Alerts:     config.DefaultAlertConfig(),
		Options:    opts,
	}, logger)
}

// PipelineConfig aggregates per-component configuration.
type PipelineConfig struct {
	Validation config.ValidationConfig
	Fraud      config.FraudConfig
	Classifier config.ClassifierConfig
	Pricing    config.PricingConfig
	Alerts     config.AlertConfig
	Options    config.PipelineOptions
}

func NewPipelineWithConfig(storage Storage, dupCache DuplicateCache, collab Collaborators, cfg PipelineConfig, logger *zap.Logger) *Pipeline {
	if cfg.Options.ChunkSize <= 0 {
		cfg.Options.ChunkSize = config.DefaultPipelineOptions().ChunkSize
	}
	if cfg.Options.ProcessingVersion == "" {
		cfg.Options.ProcessingVersion = config.DefaultPipelineOptions().ProcessingVersion
	}
	if cfg.Options.DefaultCountry == "" {
		cfg.Options.DefaultCountry = config.DefaultPipelineOptions().DefaultCountry
	}

	if collab.Allocator == nil {
		collab.Allocator = NoopAllocationService{}
	}
	if collab.Pricer == nil {
		collab.Pricer = NewRatePricingEngine(cfg.Pricing, logger)
	}
	if collab.Alerts == nil {
		collab.Alerts = NewThresholdAlertEvaluator(cfg.Alerts, logger)
	}
	if collab.Parsers == nil {
		collab.Parsers = parser.NewRegistry()
	}

	return &Pipeline{
		storage:    storage,
		validator:  NewValidator(cfg.Validation),
		normalizer: NewNormalizer(cfg.Options),
		guard:      NewDuplicateGuard(dupCache, logger),
		fraud:      NewFraudEngine(cfg.Fraud, logger),
		resolver:   NewClientResolver(collab.Strategy, logger),
		classifier: NewUsageClassifier(cfg.Classifier),
		calculator: NewMetricCalculator(),
		allocator:  collab.Allocator,
		pricer:     collab.Pricer,
		alerts:     collab.Alerts,
		parsers:    collab.Parsers,
		opts:       cfg.Options,
		logger:     logger,
		downstream: make(chan *models.UsageRecord, 1024),
	}
}

// Downstream exposes successfully processed records for asynchronous
// consumers. Drained by the caller; unread records are dropped when the
// buffer fills.
func (p *Pipeline) Downstream() <-chan *models.UsageRecord {
	return p.downstream
}

// ProcessOne runs the full pipeline for a single record inside its own
// storage transaction. It never returns an error for record-level
// failures; the ProcessingResult carries them.
func (p *Pipeline) ProcessOne(ctx context.Context, raw models.RawCDR) *models.ProcessingResult {
	start := time.Now()

	tx, err := p.storage.Begin(ctx)
	if err != nil {
		return &models.ProcessingResult{
			Success: false,
			Errors:  []string{fmt.Sprintf("failed to open transaction: %v", err)},
			Elapsed: time.Since(start),
		}
	}

	result, fatal := p.processRecord(ctx, tx, raw, "", 0)
	if fatal != nil {
		tx.Rollback()
		result = &models.ProcessingResult{
			Success: false,
			Errors:  []string{fatal.Error()},
		}
	} else if err := tx.Commit(); err != nil {
		result = &models.ProcessingResult{
			Success: false,
			Errors:  []string{(&models.PersistenceError{Op: "commit", Err: err}).Error()},
		}
	}

	result.Elapsed = time.Since(start)
	return result
}

// processRecord runs the per-record state machine inside the given
// transaction. The returned error is chunk-fatal (persistence failure);
// every other failure is reported through the ProcessingResult alone.
// A panic in any stage or collaborator is caught here: nothing escapes
// the pipeline boundary.
func (p *Pipeline) processRecord(ctx context.Context, tx StorageTx, raw models.RawCDR, batchID string, sequence int) (result *models.ProcessingResult, fatal error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic during record processing",
				zap.Any("panic", r),
				zap.String("batch_id", batchID))
			result = p.failure(start, fmt.Sprintf("processing failure: %v", r))
			fatal = nil
		}
	}()

	// Received -> Validated
	mapped := ApplyFieldMap(raw, p.opts.FieldMap)

	validation := p.validator.Validate(mapped, p.opts.RequiredFields)
	if !validation.IsValid() {
		return p.failure(start, validation.Errors...), nil
	}

	// Validated -> Normalized
	rec := p.normalizer.Normalize(mapped)
	rec.BatchID = batchID
	rec.BatchSequence = sequence

	// Normalized -> DuplicateChecked
	isDup, err := p.guard.IsDuplicate(ctx, tx, rec)
	if err != nil {
		return p.failure(start, fmt.Sprintf("duplicate check failed: %v", err)), nil
	}
	if isDup {
		res := p.failure(start, models.ErrDuplicate.Error())
		res.Data = map[string]interface{}{"cdr_id": rec.CDRID}
		return res, nil
	}

	// DuplicateChecked -> FraudScored
	assessment := p.fraud.Score(ctx, tx, rec)

	// FraudScored -> ClientResolved
	client, found, err := p.resolver.Resolve(ctx, tx, rec)
	if err != nil {
		return p.failure(start, fmt.Sprintf("client resolution failed: %v", err)), nil
	}
	if !found {
		return p.failure(start, models.ErrClientNotFound.Error()), nil
	}

	// ClientResolved -> Classified -> MetricsComputed
	classification := p.classifier.Classify(rec)
	metrics := p.calculator.Calculate(rec, classification)

	// MetricsComputed -> Persisted
	usage := buildUsageRecord(rec, client, classification, metrics, assessment)
	if _, err := tx.InsertUsageRecord(ctx, usage); err != nil {
		return nil, &models.PersistenceError{Op: "insert usage record", Err: err}
	}

	// Persisted -> Allocated
	alloc, err := p.allocator.Allocate(ctx, usage, client)
	if err != nil {
		cerr := &models.CollaboratorError{Collaborator: "allocation", Err: err}
		p.logger.Error("allocation failed",
			zap.Error(err),
			zap.String("usage_record_id", usage.ID))
		return p.failure(start, cerr.Error()), nil
	}

	// Allocated -> Priced
	pricing, err := p.pricer.Price(ctx, usage, alloc)
	if err != nil {
		cerr := &models.CollaboratorError{Collaborator: "pricing", Err: err}
		p.logger.Error("pricing failed",
			zap.Error(err),
			zap.String("usage_record_id", usage.ID))
		return p.failure(start, cerr.Error()), nil
	}

	usage.ChargeAmount = pricing.ChargeAmount
	usage.Currency = pricing.Currency
	usage.RateApplied = pricing.RateApplied
	usage.Priced = true

	if err := tx.UpdateCharges(ctx, usage); err != nil {
		return nil, &models.PersistenceError{Op: "update charges", Err: err}
	}

	// Priced -> Completed. Alerting is fire-and-continue.
	p.checkThresholds(ctx, usage, client, alloc)

	if p.opts.EnableBatching {
		p.enqueueDownstream(usage)
	}

	return &models.ProcessingResult{
		Success: true,
		Data: map[string]interface{}{
			"usage_record_id":  usage.ID,
			"cdr_id":           usage.CDRID,
			"client_id":        client.ID,
			"batch_sequence":   sequence,
			"billing_category": usage.BillingCategory,
			"quantity":         usage.Quantity,
			"unit_type":        string(usage.UnitType),
			"fraud_score":      assessment.Score,
			"fraud_level":      string(assessment.Level),
			"is_fraud":         assessment.IsFraud,
			"charge_amount":    usage.ChargeAmount.String(),
			"currency":         usage.Currency,
			"warnings":         validation.Warnings,
		},
		Elapsed: time.Since(start),
	}, nil
}

// checkThresholds isolates the alert evaluator: a panic there is logged,
// never surfaced to the record.
func (p *Pipeline) checkThresholds(ctx context.Context, usage *models.UsageRecord, client *models.Client, alloc models.AllocationResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("alert evaluation panicked",
				zap.Any("panic", r),
				zap.String("usage_record_id", usage.ID))
		}
	}()

	p.alerts.CheckThresholds(ctx, usage, client, alloc)
}

func (p *Pipeline) enqueueDownstream(usage *models.UsageRecord) {
	select {
	case p.downstream <- usage:
	default:
		p.logger.Debug("downstream queue full, record dropped",
			zap.String("usage_record_id", usage.ID))
	}
}

func (p *Pipeline) failure(start time.Time, errs ...string) *models.ProcessingResult {
	return &models.ProcessingResult{
		Success: false,
		Errors:  errs,
		Elapsed: time.Since(start),
	}
}

func buildUsageRecord(rec *models.NormalizedUsageRecord, client *models.Client, c models.Classification, m models.UsageMetrics, a models.FraudAssessment) *models.UsageRecord {
	return &models.UsageRecord{
		ID:       uuid.New().String(),
		ClientID: client.ID,

		CDRID:             rec.CDRID,
		ExternalID:        rec.ExternalID,
		BatchID:           rec.BatchID,
		BatchSequence:     rec.BatchSequence,
		OriginationNumber: rec.OriginationNumber,
		DestinationNumber: rec.DestinationNumber,
		UsageStart:        rec.UsageStart,
		UsageEnd:          rec.UsageEnd,
		DurationSeconds:   rec.DurationSeconds,
		DataVolumeMB:      rec.DataVolumeMB,

		UsageType:       c.UsageType,
		ServiceType:     c.ServiceType,
		UsageCategory:   c.UsageCategory,
		BillingCategory: c.BillingCategory,
		Quantity:        m.Quantity,
		UnitType:        m.UnitType,
		LineCount:       m.LineCount,

		FraudScore:      a.Score,
		FraudLevel:      string(a.Level),
		FraudIndicators: a.Indicators,

		Source:     rec.Source,
		ReceivedAt: rec.ReceivedAt,
		CreatedAt:  time.Now().UTC(),
	}
}
