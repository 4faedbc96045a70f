package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"idle-fm-api/domain/model"
	"idle-fm-api/domain/repository"
)

const findOrCreateTagQuery = `MERGE dbo.Tags WITH (HOLDLOCK) AS target
USING (SELECT @p1 AS name) AS src
ON (target.name = src.name)
WHEN MATCHED THEN UPDATE SET name = src.name
WHEN NOT MATCHED THEN INSERT (name) VALUES (src.name)
OUTPUT INSERTED.id;`

// TagRepositoryMSSQL implements ITag
type TagRepositoryMSSQL struct{ db *sql.DB }

func NewTagRepositoryMSSQL(db *sql.DB) repository.ITag { return &TagRepositoryMSSQL{db} }

func (r *TagRepositoryMSSQL) List(ctx context.Context) ([]model.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM dbo.Tags ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tags := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (r *TagRepositoryMSSQL) FindOrCreate(ctx context.Context, name string) (int, error) {
	var id int
	if err := r.db.QueryRowContext(ctx, findOrCreateTagQuery, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("find or create tag %q: %w", name, err)
	}
	return id, nil
}

// GifRepositoryMSSQL implements IGif
type GifRepositoryMSSQL struct{ db *sql.DB }

func NewGifRepositoryMSSQL(db *sql.DB) repository.IGif { return &GifRepositoryMSSQL{db} }

func (r *GifRepositoryMSSQL) List(ctx context.Context) ([]model.Gif, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, tenor_key, title, url, created_at FROM dbo.Gifs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	gifs := []model.Gif{}
	for rows.Next() {
		var g model.Gif
		if err := rows.Scan(&g.ID, &g.TenorKey, &g.Title, &g.URL, &g.CreatedAt); err != nil {
			return nil, err
		}
		gifs = append(gifs, g)
	}
	return gifs, rows.Err()
}

func (r *GifRepositoryMSSQL) GetByID(ctx context.Context, id int) (*model.Gif, error) {
	var g model.Gif
	err := r.db.QueryRowContext(ctx, `SELECT id, tenor_key, title, url, created_at FROM dbo.Gifs WHERE id = @p1`, id).
		Scan(&g.ID, &g.TenorKey, &g.Title, &g.URL, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}
