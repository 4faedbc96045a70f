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

const playlistColumns = `id, user_id, title, description, is_public, image, created_at, updated_at`

const playlistItemsQuery = `SELECT pv.id, pv.playlist_id, pv.position, pv.added_at,
v.id, v.youtube_key, v.title, v.channel_title, v.thumbnails, v.duration,
g.id, g.tenor_key, g.title, g.url
FROM dbo.PlaylistVideos pv
LEFT JOIN dbo.Videos v ON v.id = pv.video_id
LEFT JOIN dbo.Gifs g ON g.id = pv.gif_id
WHERE pv.playlist_id = @p1
ORDER BY pv.position ASC`

// Position is computed under lock so concurrent appends do not collide.
const appendItemQuery = `INSERT INTO dbo.PlaylistVideos (playlist_id, %s, position, added_at)
OUTPUT INSERTED.id
SELECT @p1, @p2, ISNULL(MAX(position), 0) + 1, SYSDATETIMEOFFSET()
FROM dbo.PlaylistVideos WITH (UPDLOCK, HOLDLOCK) WHERE playlist_id = @p1`

const compactPositionsQuery = `WITH ordered AS (
SELECT position, ROW_NUMBER() OVER (ORDER BY position, id) AS rn FROM dbo.PlaylistVideos WHERE playlist_id = @p1
)
UPDATE ordered SET position = rn`

// PlaylistRepositoryMSSQL implements IPlaylist on SQL Server
type PlaylistRepositoryMSSQL struct{ db *sql.DB }

func NewPlaylistRepositoryMSSQL(db *sql.DB) repository.IPlaylist {
	return &PlaylistRepositoryMSSQL{db}
}

func (r *PlaylistRepositoryMSSQL) List(ctx context.Context, viewerID int) ([]model.Playlist, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+playlistColumns+` FROM dbo.Playlists WHERE is_public = 1 OR user_id = @p1 ORDER BY created_at DESC`, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Playlist{}
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PlaylistRepositoryMSSQL) GetByID(ctx context.Context, id int) (*model.Playlist, error) {
	p, err := scanPlaylist(r.db.QueryRowContext(ctx, `SELECT `+playlistColumns+` FROM dbo.Playlists WHERE id = @p1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return p, err
}

func (r *PlaylistRepositoryMSSQL) TitlesByOwner(ctx context.Context, ownerID int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT title FROM dbo.Playlists WHERE user_id = @p1`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

func (r *PlaylistRepositoryMSSQL) Create(ctx context.Context, p *model.Playlist) (int, error) {
	now := time.Now().UTC()
	var image interface{}
	if p.Image != nil {
		image = *p.Image
	}
	var id int
	err := r.db.QueryRowContext(ctx, `INSERT INTO dbo.Playlists (user_id, title, description, is_public, image, created_at, updated_at)
OUTPUT INSERTED.id VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p6)`,
		p.UserID, p.Title, p.Description, p.IsPublic, image, now).Scan(&id)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, repository.ErrConflict
		}
		return 0, err
	}
	return id, nil
}

func (r *PlaylistRepositoryMSSQL) Delete(ctx context.Context, id int) error {
	return execOne(ctx, r.db, `DELETE FROM dbo.Playlists WHERE id = @p1`, id)
}

func (r *PlaylistRepositoryMSSQL) Items(ctx context.Context, playlistID int) ([]model.PlaylistItem, error) {
	rows, err := r.db.QueryContext(ctx, playlistItemsQuery, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []model.PlaylistItem{}
	for rows.Next() {
		var (
			it                            model.PlaylistItem
			videoID                       sql.NullInt64
			videoKey, videoTitle, channel sql.NullString
			thumbs, duration              sql.NullString
			gifID                         sql.NullInt64
			gifKey, gifTitle, gifURL      sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.PlaylistID, &it.Position, &it.AddedAt,
			&videoID, &videoKey, &videoTitle, &channel, &thumbs, &duration,
			&gifID, &gifKey, &gifTitle, &gifURL); err != nil {
			return nil, err
		}
		if videoID.Valid {
			v := &model.Video{ID: videoID.Int64, YouTubeKey: videoKey.String, Title: videoTitle.String, ChannelTitle: channel.String}
			if thumbs.Valid && thumbs.String != "" {
				if err := json.Unmarshal([]byte(thumbs.String), &v.Thumbnails); err != nil {
					return nil, fmt.Errorf("decode thumbnails of %s: %w", v.YouTubeKey, err)
				}
			}
			if duration.Valid {
				d := duration.String
				v.Duration = &d
			}
			it.Video = v
		}
		if gifID.Valid {
			it.Gif = &model.Gif{ID: int(gifID.Int64), TenorKey: gifKey.String, Title: gifTitle.String, URL: gifURL.String}
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PlaylistRepositoryMSSQL) AppendVideo(ctx context.Context, playlistID int, videoID int64) (int, error) {
	return r.appendItem(ctx, "video_id", playlistID, videoID)
}

func (r *PlaylistRepositoryMSSQL) AppendGif(ctx context.Context, playlistID int, gifID int) (int, error) {
	return r.appendItem(ctx, "gif_id", playlistID, gifID)
}

func (r *PlaylistRepositoryMSSQL) appendItem(ctx context.Context, column string, playlistID int, mediaID interface{}) (int, error) {
	var id int
	if err := r.db.QueryRowContext(ctx, fmt.Sprintf(appendItemQuery, column), playlistID, mediaID).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PlaylistRepositoryMSSQL) InsertVideos(ctx context.Context, playlistID int, videoIDs []int64) (err error) {
	if len(videoIDs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO dbo.PlaylistVideos (playlist_id, video_id, position, added_at) VALUES (@p1, @p2, @p3, SYSDATETIMEOFFSET())`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, vid := range videoIDs {
		if _, err = stmt.ExecContext(ctx, playlistID, vid, i+1); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *PlaylistRepositoryMSSQL) Reorder(ctx context.Context, playlistID int, itemIDs []int) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for i, itemID := range itemIDs {
		if err = execOne(ctx, tx, `UPDATE dbo.PlaylistVideos SET position = @p1 WHERE id = @p2 AND playlist_id = @p3`, i+1, itemID, playlistID); err != nil {
			return err
		}
	}
	if _, err = tx.ExecContext(ctx, `UPDATE dbo.Playlists SET updated_at = SYSDATETIMEOFFSET() WHERE id = @p1`, playlistID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PlaylistRepositoryMSSQL) RemoveItem(ctx context.Context, playlistID, itemID int) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = execOne(ctx, tx, `DELETE FROM dbo.PlaylistVideos WHERE id = @p1 AND playlist_id = @p2`, itemID, playlistID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, compactPositionsQuery, playlistID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PlaylistRepositoryMSSQL) LinkTags(ctx context.Context, playlistID int, tagIDs []int) error {
	for _, tagID := range tagIDs {
		_, err := r.db.ExecContext(ctx, `IF NOT EXISTS (SELECT 1 FROM dbo.PlaylistTags WHERE playlist_id = @p1 AND tag_id = @p2)
INSERT INTO dbo.PlaylistTags (playlist_id, tag_id) VALUES (@p1, @p2)`, playlistID, tagID)
		if err != nil {
			return fmt.Errorf("link tag %d: %w", tagID, err)
		}
	}
	return nil
}

func scanPlaylist(s rowScanner) (*model.Playlist, error) {
	var (
		p     model.Playlist
		image sql.NullString
	)
	if err := s.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.IsPublic, &image, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if image.Valid {
		img := image.String
		p.Image = &img
	}
	return &p, nil
}
