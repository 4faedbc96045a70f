package persistence

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idle-fm-api/domain/model"
	"idle-fm-api/domain/repository"
)

func newVideoRepo(t *testing.T, now time.Time) (*VideoRepositoryMSSQL, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &VideoRepositoryMSSQL{db: db, now: func() time.Time { return now }}, mock
}

func TestVideoRepository_Upsert_SameKeyTwice(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo, mock := newVideoRepo(t, now)
	duration := "PT3M46S"

	mock.ExpectExec(regexp.QuoteMeta(upsertVideoQuery)).
		WithArgs("abc", "First", "Chan", `{"default":{"url":"https://i.ytimg.com/d.jpg"}}`, duration, `{"id":"abc"}`, now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(upsertVideoQuery)).
		WithArgs("abc", "Second", "Chan", `{}`, nil, nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &model.Video{
		YouTubeKey:   "abc",
		Title:        "First",
		ChannelTitle: "Chan",
		Thumbnails:   model.Thumbnails{"default": {URL: "https://i.ytimg.com/d.jpg"}},
		Duration:     &duration,
		RawJSON:      []byte(`{"id":"abc"}`),
	})
	require.NoError(t, err)

	err = repo.Upsert(context.Background(), &model.Video{YouTubeKey: "abc", Title: "Second", ChannelTitle: "Chan"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoRepository_Upsert_RequiresKey(t *testing.T) {
	repo, mock := newVideoRepo(t, time.Now())
	require.Error(t, repo.Upsert(context.Background(), &model.Video{Title: "no key"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoRepository_GetMany_Partial(t *testing.T) {
	updated := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	repo, mock := newVideoRepo(t, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, youtube_key, title, channel_title, thumbnails, duration, updated_at FROM dbo.Videos WHERE youtube_key IN (@p1, @p2, @p3)`)).
		WithArgs("X", "Y", "Z").
		WillReturnRows(sqlmock.NewRows([]string{"id", "youtube_key", "title", "channel_title", "thumbnails", "duration", "updated_at"}).
			AddRow(1, "X", "Title X", "Chan", `{"medium":{"url":"m.jpg"}}`, "PT1M", updated).
			AddRow(3, "Z", "Title Z", "Chan", nil, nil, updated))

	got, err := repo.GetMany(context.Background(), []string{"X", "Y", "Z", "X"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Title X", got["X"].Title)
	require.Equal(t, "m.jpg", got["X"].Thumbnails.Primary())
	require.Equal(t, "PT1M", *got["X"].Duration)
	require.Nil(t, got["Z"].Duration)
	_, ok := got["Y"]
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoRepository_GetMany_Empty(t *testing.T) {
	repo, mock := newVideoRepo(t, time.Now())
	got, err := repo.GetMany(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoRepository_GetMany_QueryError(t *testing.T) {
	repo, mock := newVideoRepo(t, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`FROM dbo.Videos WHERE youtube_key IN (@p1)`)).
		WithArgs("X").
		WillReturnError(fmt.Errorf("connection reset"))

	got, err := repo.GetMany(context.Background(), []string{"X"})
	require.Error(t, err)
	require.Nil(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoRepository_GetByKey_NotFound(t *testing.T) {
	repo, mock := newVideoRepo(t, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`FROM dbo.Videos WHERE youtube_key = @p1`)).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "youtube_key", "title", "channel_title", "thumbnails", "duration", "updated_at"}))

	v, err := repo.GetByKey(context.Background(), "nope")
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.Nil(t, v)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoRepository_Upsert_OverwritesDuration(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo, mock := newVideoRepo(t, now)

	assert.Contains(t, upsertVideoQuery, "duration=@p5,")
	assert.NotContains(t, upsertVideoQuery, "COALESCE")

	mock.ExpectExec(regexp.QuoteMeta(upsertVideoQuery)).
		WithArgs("abc", "Again", "Chan", `{}`, nil, nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), &model.Video{YouTubeKey: "abc", Title: "Again", ChannelTitle: "Chan"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
