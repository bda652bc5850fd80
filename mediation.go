// mediation.go
// Package mediation wires the CDR ingestion and rating pipeline against
// its production backends. Library-level only: any CLI or API surface
// lives outside this module.
package mediation

import (
	"fmt"

	"go.uber.org/zap"

	"cdr-mediation/internal/cache"
	"cdr-mediation/internal/config"
	"cdr-mediation/internal/repository"
	"cdr-mediation/internal/service"
	"cdr-mediation/pkg/database"
	"cdr-mediation/pkg/logger"
	"cdr-mediation/pkg/redis"
)

// Options selects the backends and pipeline configuration for one
// deployment.
type Options struct {
	DatabaseURL string
	// RedisAddr is optional; without it the fingerprint cache runs on
	// its in-memory tier alone.
	RedisAddr string
	// Pipeline overrides the default component configuration when set.
	Pipeline *service.PipelineConfig
	// Collaborators injects the external allocation/pricing/alerting
	// services; nil fields use the built-in defaults.
	Collaborators service.Collaborators
	// Logger overrides the default production logger.
	Logger *zap.Logger
}

// Mediator owns the pipeline and its backend connections.
type Mediator struct {
	Pipeline *service.Pipeline

	db     *database.PostgresDB
	redis  *redis.Client
	logger *zap.Logger
}

// New connects the backends and builds the pipeline.
func New(opts Options) (*Mediator, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewLogger("cdr-mediation")
	}

	db, err := database.NewPostgresDB(opts.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var redisClient *redis.Client
	if opts.RedisAddr != "" {
		redisClient = redis.NewRedisClient(opts.RedisAddr)
	}

	cfg := service.PipelineConfig{
		Validation: config.DefaultValidationConfig(),
		Fraud:      config.DefaultFraudConfig(),
		Classifier: config.DefaultClassifierConfig(),
		Pricing:    config.DefaultPricingConfig(),
		Alerts:     config.DefaultAlertConfig(),
		Options:    config.DefaultPipelineOptions(),
	}
	if opts.Pipeline != nil {
		cfg = *opts.Pipeline
	}

	storage := service.SQLStorage{Repo: repository.NewUsageRepository(db.DB)}
	dupCache := cache.NewFingerprintCache(redisClient, config.DefaultCacheConfig().TTL, log)

	pipeline := service.NewPipelineWithConfig(storage, dupCache, opts.Collaborators, cfg, log)

	return &Mediator{
		Pipeline: pipeline,
		db:       db,
		redis:    redisClient,
		logger:   log,
	}, nil
}

// Close releases the backend connections.
func (m *Mediator) Close() error {
	if m.redis != nil {
		if err := m.redis.Close(); err != nil {
			m.logger.Error("failed to close redis", zap.Error(err))
		}
	}
	return m.db.Close()
}
