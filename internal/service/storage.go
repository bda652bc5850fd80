// internal/service/storage.go
package service

import (
	"context"
	"time"

	"cdr-mediation/internal/models"
	"cdr-mediation/internal/repository"
)

// Storage opens the unit-of-work for one chunk. Every lookup and insert
// for records in that chunk runs inside the returned transaction.
type Storage interface {
	Begin(ctx context.Context) (StorageTx, error)
}

// StorageTx is the contract the pipeline requires from one chunk's
// transaction.
type StorageTx interface {
	ExistsByFingerprint(ctx context.Context, fp models.Fingerprint) (bool, error)
	CountByOriginationSince(ctx context.Context, number string, since time.Time) (int, error)
	CountByOriginationAndDuration(ctx context.Context, number string, duration float64, since time.Time) (int, error)
	FindClientByPhone(ctx context.Context, number string) (*models.Client, error)
	InsertUsageRecord(ctx context.Context, rec *models.UsageRecord) (string, error)
	UpdateCharges(ctx context.Context, rec *models.UsageRecord) error
	Commit() error
	Rollback() error
}

// SQLStorage adapts the PostgreSQL repository to the Storage contract.
type SQLStorage struct {
	Repo *repository.UsageRepository
}

func (s SQLStorage) Begin(ctx context.Context) (StorageTx, error) {
	return s.Repo.Begin(ctx)
}
