package service

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"anoa.com/jobboard/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memoryStore struct {
	mu      sync.Mutex
	views   map[uint]int64
	missing map[uint]bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{views: map[uint]int64{}, missing: map[uint]bool{}}
}

func (m *memoryStore) AddViews(_ context.Context, jobID uint, n int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.missing[jobID] {
		return gorm.ErrRecordNotFound
	}
	m.views[jobID] += n
	return nil
}

func TestNilRedisIgnoresViews(t *testing.T) {
	store := newMemoryStore()
	counter := NewViewCounter(nil, store, logger.Discard())

	require.NoError(t, counter.RecordView(context.Background(), 1, "10.0.0.1"))
	counter.Sync(context.Background())
	assert.Empty(t, store.views)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	counter.StartSyncWorker(ctx, time.Millisecond)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "job:views:7", viewsKey(7))
	assert.Equal(t, "job:viewer:7:10.0.0.1", viewerKey(7, "10.0.0.1"))
}

// Needs a disposable redis, e.g. TEST_REDIS_URL=redis://localhost:6379/15.
func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)

	rdb := redis.NewClient(opt)
	require.NoError(t, rdb.FlushDB(context.Background()).Err())
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRecordViewOncePerViewer(t *testing.T) {
	rdb := testRedis(t)
	store := newMemoryStore()
	counter := NewViewCounter(rdb, store, logger.Discard())
	ctx := context.Background()

	require.NoError(t, counter.RecordView(ctx, 1, "10.0.0.1"))
	require.NoError(t, counter.RecordView(ctx, 1, "10.0.0.1"))
	require.NoError(t, counter.RecordView(ctx, 1, "10.0.0.2"))
	require.NoError(t, counter.RecordView(ctx, 2, "10.0.0.1"))

	counter.Sync(ctx)
	assert.Equal(t, map[uint]int64{1: 2, 2: 1}, store.views)

	// nothing pending after a flush
	counter.Sync(ctx)
	assert.Equal(t, map[uint]int64{1: 2, 2: 1}, store.views)
	pending, err := rdb.SCard(ctx, pendingKey).Result()
	require.NoError(t, err)
	assert.Zero(t, pending)
}

func TestSyncDropsViewsOfDeletedJobs(t *testing.T) {
	rdb := testRedis(t)
	store := newMemoryStore()
	store.missing[3] = true
	counter := NewViewCounter(rdb, store, logger.Discard())
	ctx := context.Background()

	require.NoError(t, counter.RecordView(ctx, 3, "10.0.0.1"))
	counter.Sync(ctx)

	assert.Empty(t, store.views)
	exists, err := rdb.Exists(ctx, viewsKey(3)).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
