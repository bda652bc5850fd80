// internal/repository/usage_repository.go
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"cdr-mediation/internal/models"
)

// UsageRepository persists usage records and resolves clients.
// Transactional scope is explicit: callers open a UsageTx and every
// lookup/insert for one chunk runs inside it.
type UsageRepository struct {
	db *sql.DB
}

func NewUsageRepository(db *sql.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// Begin opens the unit-of-work for one chunk.
func (r *UsageRepository) Begin(ctx context.Context) (*UsageTx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &UsageTx{tx: tx}, nil
}

// UsageTx is one chunk's transaction. All reads are consistent with the
// writes already made in the same chunk.
type UsageTx struct {
	tx *sql.Tx
}

func (t *UsageTx) Commit() error   { return t.tx.Commit() }
func (t *UsageTx) Rollback() error { return t.tx.Rollback() }

// ExistsByFingerprint is the authoritative duplicate check: an exact
// match on all five fingerprint fields.
func (t *UsageTx) ExistsByFingerprint(ctx context.Context, fp models.Fingerprint) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM usage_records
			WHERE cdr_id = $1
			  AND origination_number = $2
			  AND destination_number = $3
			  AND usage_start = $4
			  AND duration_seconds = $5
		)
	`

	var exists bool
	err := t.tx.QueryRowContext(ctx, query,
		fp.CDRID,
		fp.OriginationNumber,
		fp.DestinationNumber,
		fp.UsageStart,
		fp.DurationSeconds,
	).Scan(&exists)
	return exists, err
}

// CountByOriginationSince counts records from one origination number in
// the trailing window. Used by the call-frequency fraud heuristic.
func (t *UsageTx) CountByOriginationSince(ctx context.Context, number string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM usage_records
		WHERE origination_number = $1 AND usage_start >= $2
	`

	var count int
	err := t.tx.QueryRowContext(ctx, query, number, since).Scan(&count)
	return count, err
}

// CountByOriginationAndDuration counts prior records from one origination
// with an identical duration in the trailing window.
func (t *UsageTx) CountByOriginationAndDuration(ctx context.Context, number string, duration float64, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM usage_records
		WHERE origination_number = $1 AND duration_seconds = $2 AND usage_start >= $3
	`

	var count int
	err := t.tx.QueryRowContext(ctx, query, number, duration, since).Scan(&count)
	return count, err
}

// FindClientByPhone resolves a client by registered phone number.
func (t *UsageTx) FindClientByPhone(ctx context.Context, number string) (*models.Client, error) {
	query := `
		SELECT id, name, phone_number, account_code, status
		FROM clients WHERE phone_number = $1
	`

	client := &models.Client{}
	err := t.tx.QueryRowContext(ctx, query, number).Scan(
		&client.ID,
		&client.Name,
		&client.PhoneNumber,
		&client.AccountCode,
		&client.Status,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return client, err
}

// InsertUsageRecord persists the billing-facing aggregate.
func (t *UsageTx) InsertUsageRecord(ctx context.Context, rec *models.UsageRecord) (string, error) {
	query := `
		INSERT INTO usage_records (
			id, client_id, cdr_id, external_id, batch_id, batch_sequence,
			origination_number, destination_number, usage_start, usage_end,
			duration_seconds, data_volume_mb,
			usage_type, service_type, usage_category, billing_category,
			quantity, unit_type, line_count,
			fraud_score, fraud_level, fraud_indicators,
			source, received_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25
		)
	`

	_, err := t.tx.ExecContext(ctx, query,
		rec.ID,
		rec.ClientID,
		rec.CDRID,
		rec.ExternalID,
		rec.BatchID,
		rec.BatchSequence,
		rec.OriginationNumber,
		rec.DestinationNumber,
		rec.UsageStart,
		rec.UsageEnd,
		rec.DurationSeconds,
		rec.DataVolumeMB,
		rec.UsageType,
		rec.ServiceType,
		rec.UsageCategory,
		rec.BillingCategory,
		rec.Quantity,
		rec.UnitType,
		rec.LineCount,
		rec.FraudScore,
		rec.FraudLevel,
		pq.Array(rec.FraudIndicators),
		rec.Source,
		rec.ReceivedAt,
		rec.CreatedAt,
	)
	if err != nil {
		return "", err
	}

	return rec.ID, nil
}

// UpdateCharges attaches the pricing result to a persisted record.
func (t *UsageTx) UpdateCharges(ctx context.Context, rec *models.UsageRecord) error {
	query := `
		UPDATE usage_records
		SET charge_amount = $1, currency = $2, rate_applied = $3, priced = $4
		WHERE id = $5
	`

	_, err := t.tx.ExecContext(ctx, query,
		rec.ChargeAmount,
		rec.Currency,
		rec.RateApplied,
		rec.Priced,
		rec.ID,
	)
	return err
}
