package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"idle-fm-api/domain/repository"
)

// SearchCacheRepositoryMSSQL implements ISearchCache on dbo.youtube_search_cache.
// Rows are append-only; expired rows are ignored, never deleted.
type SearchCacheRepositoryMSSQL struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func NewSearchCacheRepositoryMSSQL(db *sql.DB, ttl time.Duration) repository.ISearchCache {
	return &SearchCacheRepositoryMSSQL{db: db, ttl: ttl, now: time.Now}
}

func (r *SearchCacheRepositoryMSSQL) Get(ctx context.Context, query string) ([]string, bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT TOP 1 video_ids, created_at FROM dbo.youtube_search_cache
WHERE query = @p1 ORDER BY created_at DESC`, query)
	var (
		raw       string
		createdAt time.Time
	)
	if err := row.Scan(&raw, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if r.now().Sub(createdAt) > r.ttl {
		return nil, false, nil
	}
	ids := []string{}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, false, fmt.Errorf("decode cached ids for %q: %w", query, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, true, nil
}

func (r *SearchCacheRepositoryMSSQL) Put(ctx context.Context, query string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO dbo.youtube_search_cache (query, video_ids, created_at) VALUES (@p1, @p2, @p3)`,
		query, string(raw), r.now().UTC())
	return err
}
