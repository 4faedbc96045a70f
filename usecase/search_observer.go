package usecase

import (
	"context"

	"idle-fm-api/infrastructure/logger"
)

// SearchObserver receives progress notifications from SearchMedia. It never
// influences control flow and must be safe for concurrent use.
type SearchObserver interface {
	CacheHit(ctx context.Context, query string, count int)
	CacheMiss(ctx context.Context, query string)
	CacheReadFailed(ctx context.Context, query string, err error)
	CacheWriteFailed(ctx context.Context, query string, err error)
	ItemSkipped(ctx context.Context, query string, index int)
	UpsertFailed(ctx context.Context, key string, err error)
	Hydrated(ctx context.Context, query string, total, missing int)
}

// LogSearchObserver reports search progress through the application logger.
type LogSearchObserver struct{}

func (LogSearchObserver) CacheHit(ctx context.Context, query string, count int) {
	logger.WithContext(ctx).WithFields(map[string]interface{}{"query": query, "count": count}).Debug("search cache hit")
}

func (LogSearchObserver) CacheMiss(ctx context.Context, query string) {
	logger.WithContext(ctx).WithField("query", query).Info("search cache miss, querying YouTube")
}

func (LogSearchObserver) CacheReadFailed(ctx context.Context, query string, err error) {
	logger.WithContext(ctx).WithFields(map[string]interface{}{"query": query, "error": err}).Warn("search cache read failed, treating as miss")
}

func (LogSearchObserver) CacheWriteFailed(ctx context.Context, query string, err error) {
	logger.WithContext(ctx).WithFields(map[string]interface{}{"query": query, "error": err}).Error("search cache write failed")
}

func (LogSearchObserver) ItemSkipped(ctx context.Context, query string, index int) {
	logger.WithContext(ctx).WithFields(map[string]interface{}{"query": query, "index": index}).Warn("search item without usable video id skipped")
}

func (LogSearchObserver) UpsertFailed(ctx context.Context, key string, err error) {
	logger.WithContext(ctx).WithFields(map[string]interface{}{"youtube_key": key, "error": err}).Error("video metadata upsert failed")
}

func (LogSearchObserver) Hydrated(ctx context.Context, query string, total, missing int) {
	entry := logger.WithContext(ctx).WithFields(map[string]interface{}{"query": query, "total": total, "missing": missing})
	if missing > 0 {
		entry.Warn("search hydrated with missing records")
		return
	}
	entry.Debug("search hydrated")
}
