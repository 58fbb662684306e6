package fieldmap

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cadence_sync_backend/internal/enrollment/domain"
	"cadence_sync_backend/internal/enrollment/repository"
	"cadence_sync_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	calls atomic.Int32
	fm    domain.FieldMap
	err   error
	delay time.Duration
}

func (s *countingStore) GetFieldMap(_ context.Context, _ uuid.UUID, _ domain.IntegrationType, objectType string) (domain.FieldMap, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.fm, s.err
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestEmbeddedDefaultsCoverEveryIntegration(t *testing.T) {
	defaults, err := LoadDefaults(defaultsYAML)
	require.NoError(t, err)
	for _, it := range domain.IntegrationTypes() {
		_, ok := defaults[it]
		assert.True(t, ok, "missing defaults for %s", it)
	}
	assert.Equal(t, "Unqualified", defaults[domain.SalesforceLead].DisqualifiedValue)
}

func TestLoadDefaultsRejectsUnknownType(t *testing.T) {
	_, err := LoadDefaults([]byte("excel_row:\n  status_field: x\n"))
	assert.Error(t, err)
}

func TestGetFieldMapCachesStoreRow(t *testing.T) {
	mr, rdb := newRedis(t)
	store := &countingStore{fm: domain.FieldMap{StatusField: "Status", DisqualifiedValue: "Dead"}}
	p, err := NewProvider(store, rdb, time.Minute, logger.Nop())
	require.NoError(t, err)
	companyID := uuid.New()

	for i := 0; i < 3; i++ {
		fm, err := p.GetFieldMap(context.Background(), companyID, domain.SalesforceLead)
		require.NoError(t, err)
		assert.Equal(t, "Dead", fm.DisqualifiedValue)
	}
	assert.EqualValues(t, 1, store.calls.Load())

	key := cacheKey(companyID, domain.SalesforceLead)
	assert.True(t, mr.Exists(key))
	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists(key), "cache entry must expire after the ttl")

	_, err = p.GetFieldMap(context.Background(), companyID, domain.SalesforceLead)
	require.NoError(t, err)
	assert.EqualValues(t, 2, store.calls.Load())
}

func TestGetFieldMapFallsBackToDefaults(t *testing.T) {
	_, rdb := newRedis(t)
	store := &countingStore{err: repository.ErrNotFound}
	p, err := NewProvider(store, rdb, time.Minute, logger.Nop())
	require.NoError(t, err)

	fm, err := p.GetFieldMap(context.Background(), uuid.New(), domain.ZohoLead)
	require.NoError(t, err)
	assert.Equal(t, "Not Qualified", fm.DisqualifiedValue)
	assert.Equal(t, "Converted", fm.ConvertedValue)
}

func TestGetFieldMapPropagatesStoreErrors(t *testing.T) {
	store := &countingStore{err: errors.New("connection refused")}
	p, err := NewProvider(store, nil, 0, logger.Nop())
	require.NoError(t, err)

	_, err = p.GetFieldMap(context.Background(), uuid.New(), domain.HubspotContact)
	assert.Error(t, err)
}

func TestGetFieldMapSurvivesRedisOutage(t *testing.T) {
	mr, rdb := newRedis(t)
	store := &countingStore{fm: domain.FieldMap{ConvertedValue: "Won"}}
	p, err := NewProvider(store, rdb, time.Minute, logger.Nop())
	require.NoError(t, err)
	mr.Close()

	fm, err := p.GetFieldMap(context.Background(), uuid.New(), domain.SalesforceLead)
	require.NoError(t, err)
	assert.Equal(t, "Won", fm.ConvertedValue)
}

func TestGetFieldMapCollapsesConcurrentLoads(t *testing.T) {
	store := &countingStore{fm: domain.FieldMap{StatusField: "Status"}, delay: 50 * time.Millisecond}
	p, err := NewProvider(store, nil, 0, logger.Nop())
	require.NoError(t, err)
	companyID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.GetFieldMap(context.Background(), companyID, domain.SalesforceLead)
		}()
	}
	wg.Wait()
	assert.Less(t, store.calls.Load(), int32(8))
}

func TestInvalidate(t *testing.T) {
	mr, rdb := newRedis(t)
	store := &countingStore{fm: domain.FieldMap{StatusField: "Status"}}
	p, err := NewProvider(store, rdb, time.Minute, logger.Nop())
	require.NoError(t, err)
	companyID := uuid.New()

	_, err = p.GetFieldMap(context.Background(), companyID, domain.SalesforceLead)
	require.NoError(t, err)
	require.NoError(t, p.Invalidate(context.Background(), companyID, domain.SalesforceLead))
	assert.False(t, mr.Exists(cacheKey(companyID, domain.SalesforceLead)))
}
