package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"idle-fm-api/domain/model"
	"idle-fm-api/domain/repository"
)

// SQL Server allows 2100 parameters per statement.
const maxInParams = 1000

const videoColumns = `id, youtube_key, title, channel_title, thumbnails, duration, updated_at`

const upsertVideoQuery = `MERGE dbo.Videos WITH (HOLDLOCK) AS target
USING (SELECT @p1 AS youtube_key) AS src
ON (target.youtube_key = src.youtube_key)
WHEN MATCHED THEN UPDATE SET title=@p2, channel_title=@p3, thumbnails=@p4, duration=@p5, raw_json=@p6, updated_at=@p7
WHEN NOT MATCHED THEN INSERT (youtube_key, title, channel_title, thumbnails, duration, raw_json, created_at, updated_at)
VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, @p7);`

// VideoRepositoryMSSQL implements IVideoStore on dbo.Videos
type VideoRepositoryMSSQL struct {
	db  *sql.DB
	now func() time.Time
}

func NewVideoRepositoryMSSQL(db *sql.DB) repository.IVideoStore {
	return &VideoRepositoryMSSQL{db: db, now: time.Now}
}

func (r *VideoRepositoryMSSQL) Upsert(ctx context.Context, video *model.Video) error {
	if video == nil || video.YouTubeKey == "" {
		return fmt.Errorf("video key is required")
	}
	thumbs := video.Thumbnails
	if thumbs == nil {
		thumbs = model.Thumbnails{}
	}
	rawThumbs, err := json.Marshal(thumbs)
	if err != nil {
		return fmt.Errorf("marshal thumbnails: %w", err)
	}
	var duration interface{}
	if video.Duration != nil {
		duration = *video.Duration
	}
	var raw interface{}
	if len(video.RawJSON) > 0 {
		raw = string(video.RawJSON)
	}
	_, err = r.db.ExecContext(ctx, upsertVideoQuery,
		video.YouTubeKey, video.Title, video.ChannelTitle, string(rawThumbs), duration, raw, r.now().UTC())
	return err
}

func (r *VideoRepositoryMSSQL) GetMany(ctx context.Context, keys []string) (map[string]*model.Video, error) {
	out := make(map[string]*model.Video, len(keys))
	unique := dedupe(keys)
	for start := 0; start < len(unique); start += maxInParams {
		end := start + maxInParams
		if end > len(unique) {
			end = len(unique)
		}
		if err := r.getChunk(ctx, unique[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *VideoRepositoryMSSQL) getChunk(ctx context.Context, keys []string, out map[string]*model.Video) error {
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	q := `SELECT ` + videoColumns + ` FROM dbo.Videos WHERE youtube_key IN (` + inParams(1, len(keys)) + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return err
		}
		out[v.YouTubeKey] = v
	}
	return rows.Err()
}

func (r *VideoRepositoryMSSQL) GetByKey(ctx context.Context, key string) (*model.Video, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM dbo.Videos WHERE youtube_key = @p1`, key)
	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return v, err
}

func (r *VideoRepositoryMSSQL) ListRecent(ctx context.Context, limit int) ([]model.Video, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `SELECT TOP (@p1) `+videoColumns+` FROM dbo.Videos ORDER BY updated_at DESC`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Video, 0, limit)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func scanVideo(s rowScanner) (*model.Video, error) {
	var (
		v        model.Video
		thumbs   sql.NullString
		duration sql.NullString
	)
	if err := s.Scan(&v.ID, &v.YouTubeKey, &v.Title, &v.ChannelTitle, &thumbs, &duration, &v.UpdatedAt); err != nil {
		return nil, err
	}
	if thumbs.Valid && thumbs.String != "" {
		if err := json.Unmarshal([]byte(thumbs.String), &v.Thumbnails); err != nil {
			return nil, fmt.Errorf("decode thumbnails of %s: %w", v.YouTubeKey, err)
		}
	}
	if duration.Valid {
		d := duration.String
		v.Duration = &d
	}
	return &v, nil
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
