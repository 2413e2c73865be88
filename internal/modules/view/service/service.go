package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	pendingKey   = "pending:job_views"
	viewerWindow = time.Hour
)

// JobViewStore persists flushed view counts.
type JobViewStore interface {
	AddViews(ctx context.Context, jobID uint, n int64) error
}

// ViewCounter buffers job views in redis and periodically flushes them to
// the database.
type ViewCounter interface {
	// RecordView counts one view per viewer per hour.
	RecordView(ctx context.Context, jobID uint, viewer string) error
	// StartSyncWorker blocks until ctx is done.
	StartSyncWorker(ctx context.Context, interval time.Duration)
	// Sync flushes pending counts once.
	Sync(ctx context.Context)
}

type viewCounter struct {
	rdb   *redis.Client
	store JobViewStore
	log   logrus.FieldLogger
}

// NewViewCounter returns a counter that ignores every view when rdb is nil.
func NewViewCounter(rdb *redis.Client, store JobViewStore, log logrus.FieldLogger) ViewCounter {
	if rdb == nil {
		return noopCounter{}
	}
	return &viewCounter{rdb: rdb, store: store, log: log}
}

func viewsKey(jobID uint) string {
	return fmt.Sprintf("job:views:%d", jobID)
}

func viewerKey(jobID uint, viewer string) string {
	return fmt.Sprintf("job:viewer:%d:%s", jobID, viewer)
}

func (s *viewCounter) RecordView(ctx context.Context, jobID uint, viewer string) error {
	first, err := s.rdb.SetNX(ctx, viewerKey(jobID, viewer), 1, viewerWindow).Result()
	if err != nil {
		return fmt.Errorf("failed to mark viewer: %w", err)
	}
	if !first {
		return nil
	}

	pipe := s.rdb.TxPipeline()
	pipe.Incr(ctx, viewsKey(jobID))
	pipe.SAdd(ctx, pendingKey, jobID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

func (s *viewCounter) Sync(ctx context.Context) {
	members, err := s.rdb.SMembers(ctx, pendingKey).Result()
	if err != nil {
		s.log.WithError(err).Error("failed to read pending job views")
		return
	}

	synced := 0
	for _, member := range members {
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			s.log.WithField("member", member).Warn("invalid job id in pending views")
			s.rdb.SRem(ctx, pendingKey, member)
			continue
		}
		jobID := uint(id)

		// Remove from the pending set before taking the count so a view
		// arriving in between re-adds the job.
		if err := s.rdb.SRem(ctx, pendingKey, member).Err(); err != nil {
			s.log.WithError(err).WithField("job_id", jobID).Error("failed to clear pending job view")
			continue
		}

		count, err := s.rdb.GetDel(ctx, viewsKey(jobID)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			s.log.WithError(err).WithField("job_id", jobID).Error("failed to read job views")
			continue
		}
		if count == 0 {
			continue
		}

		if err := s.store.AddViews(ctx, jobID, count); err != nil {
			// deleted job
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			s.log.WithError(err).WithField("job_id", jobID).Error("failed to persist job views")
			s.restore(ctx, jobID, count)
			continue
		}
		synced++
	}

	if synced > 0 {
		s.log.WithField("jobs", synced).Debug("job views synced")
	}
}

func (s *viewCounter) restore(ctx context.Context, jobID uint, count int64) {
	pipe := s.rdb.TxPipeline()
	pipe.IncrBy(ctx, viewsKey(jobID), count)
	pipe.SAdd(ctx, pendingKey, jobID)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.WithError(err).WithField("job_id", jobID).Error("job views lost")
	}
}

func (s *viewCounter) StartSyncWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sync(ctx)
		case <-ctx.Done():
			// flush what is buffered
			s.Sync(context.Background())
			return
		}
	}
}

type noopCounter struct{}

func (noopCounter) RecordView(context.Context, uint, string) error { return nil }

func (noopCounter) StartSyncWorker(ctx context.Context, _ time.Duration) { <-ctx.Done() }

func (noopCounter) Sync(context.Context) {}
