// internal/service/fakes_test.go
// In-memory fakes for the storage and cache contracts.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cdr-mediation/internal/models"
)

type fakeStorage struct {
	mu      sync.Mutex
	records []*models.UsageRecord
	clients map[string]*models.Client

	// failInsertAt fails the Nth InsertUsageRecord call (1-based).
	failInsertAt int
	insertCalls  int

	beginErr  error
	commitErr error
}

func newFakeStorage(clients ...*models.Client) *fakeStorage {
	s := &fakeStorage{clients: make(map[string]*models.Client)}
	for _, c := range clients {
		s.clients[c.PhoneNumber] = c
	}
	return s
}

func (s *fakeStorage) Begin(ctx context.Context) (StorageTx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return &fakeTx{s: s}, nil
}

func (s *fakeStorage) committed() []*models.UsageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.UsageRecord, len(s.records))
	copy(out, s.records)
	return out
}

type fakeTx struct {
	s        *fakeStorage
	staged   []*models.UsageRecord
	done     bool
	rollback bool
}

func (t *fakeTx) Commit() error {
	if t.done {
		return errors.New("transaction already finished")
	}
	t.done = true
	if t.s.commitErr != nil {
		return t.s.commitErr
	}
	t.s.mu.Lock()
	t.s.records = append(t.s.records, t.staged...)
	t.s.mu.Unlock()
	return nil
}

func (t *fakeTx) Rollback() error {
	t.done = true
	t.rollback = true
	t.staged = nil
	return nil
}

// visible returns committed plus this transaction's staged records,
// matching read-your-writes inside one chunk.
func (t *fakeTx) visible() []*models.UsageRecord {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	out := make([]*models.UsageRecord, 0, len(t.s.records)+len(t.staged))
	out = append(out, t.s.records...)
	out = append(out, t.staged...)
	return out
}

func (t *fakeTx) ExistsByFingerprint(ctx context.Context, fp models.Fingerprint) (bool, error) {
	for _, rec := range t.visible() {
		if rec.CDRID == fp.CDRID &&
			rec.OriginationNumber == fp.OriginationNumber &&
			rec.DestinationNumber == fp.DestinationNumber &&
			rec.UsageStart.Equal(fp.UsageStart) &&
			rec.DurationSeconds == fp.DurationSeconds {
			return true, nil
		}
	}
	return false, nil
}

func (t *fakeTx) CountByOriginationSince(ctx context.Context, number string, since time.Time) (int, error) {
	count := 0
	for _, rec := range t.visible() {
		if rec.OriginationNumber == number && !rec.UsageStart.Before(since) {
			count++
		}
	}
	return count, nil
}

func (t *fakeTx) CountByOriginationAndDuration(ctx context.Context, number string, duration float64, since time.Time) (int, error) {
	count := 0
	for _, rec := range t.visible() {
		if rec.OriginationNumber == number && rec.DurationSeconds == duration && !rec.UsageStart.Before(since) {
			count++
		}
	}
	return count, nil
}

func (t *fakeTx) FindClientByPhone(ctx context.Context, number string) (*models.Client, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	client, ok := t.s.clients[number]
	if !ok {
		return nil, nil
	}
	return client, nil
}

func (t *fakeTx) InsertUsageRecord(ctx context.Context, rec *models.UsageRecord) (string, error) {
	t.s.mu.Lock()
	t.s.insertCalls++
	calls := t.s.insertCalls
	fail := t.s.failInsertAt
	t.s.mu.Unlock()

	if fail > 0 && calls == fail {
		return "", fmt.Errorf("simulated insert failure on call %d", calls)
	}

	t.staged = append(t.staged, rec)
	return rec.ID, nil
}

func (t *fakeTx) UpdateCharges(ctx context.Context, rec *models.UsageRecord) error {
	return nil
}

// fakeCache is a plain map cache with no TTL; tests that need expiry
// use the real cache package.
type fakeCache struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{seen: make(map[string]bool)}
}

func (c *fakeCache) Has(ctx context.Context, fp models.Fingerprint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen[cacheKeyOf(fp)]
}

func (c *fakeCache) Put(ctx context.Context, fp models.Fingerprint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen[cacheKeyOf(fp)] = true
}

func cacheKeyOf(fp models.Fingerprint) string {
	return fmt.Sprintf("%s|%s|%s|%d|%v",
		fp.CDRID, fp.OriginationNumber, fp.DestinationNumber, fp.UsageStart.Unix(), fp.DurationSeconds)
}

// countingStrategy tracks custom-resolution invocations.
type countingStrategy struct {
	client *models.Client
	calls  int
}

func (s *countingStrategy) Resolve(ctx context.Context, rec *models.NormalizedUsageRecord) (*models.Client, bool) {
	s.calls++
	if s.client == nil {
		return nil, false
	}
	return s.client, true
}
