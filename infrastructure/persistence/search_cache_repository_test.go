package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

const selectCacheSQL = `SELECT TOP 1 video_ids, created_at FROM dbo.youtube_search_cache
WHERE query = @p1 ORDER BY created_at DESC`

func newCacheRepo(t *testing.T, now time.Time) (*SearchCacheRepositoryMSSQL, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &SearchCacheRepositoryMSSQL{db: db, ttl: 7 * 24 * time.Hour, now: func() time.Time { return now }}, mock
}

func TestSearchCacheRepository_Get_Fresh(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo, mock := newCacheRepo(t, now)

	mock.ExpectQuery(regexp.QuoteMeta(selectCacheSQL)).
		WithArgs("lofi beats").
		WillReturnRows(sqlmock.NewRows([]string{"video_ids", "created_at"}).
			AddRow(`["A","B"]`, now.Add(-2*24*time.Hour)))

	ids, found, err := repo.Get(context.Background(), "lofi beats")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []string{"A", "B"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchCacheRepository_Get_Expired(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo, mock := newCacheRepo(t, now)

	mock.ExpectQuery(regexp.QuoteMeta(selectCacheSQL)).
		WithArgs("lofi beats").
		WillReturnRows(sqlmock.NewRows([]string{"video_ids", "created_at"}).
			AddRow(`["A","B"]`, now.Add(-8*24*time.Hour)))

	ids, found, err := repo.Get(context.Background(), "lofi beats")
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchCacheRepository_Get_EmptyListIsHit(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo, mock := newCacheRepo(t, now)

	mock.ExpectQuery(regexp.QuoteMeta(selectCacheSQL)).
		WithArgs("zzzzznoresults").
		WillReturnRows(sqlmock.NewRows([]string{"video_ids", "created_at"}).
			AddRow(`[]`, now.Add(-time.Hour)))

	ids, found, err := repo.Get(context.Background(), "zzzzznoresults")
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, ids)
	require.Empty(t, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchCacheRepository_Get_NoRows(t *testing.T) {
	repo, mock := newCacheRepo(t, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta(selectCacheSQL)).
		WithArgs("unknown").
		WillReturnRows(sqlmock.NewRows([]string{"video_ids", "created_at"}))

	ids, found, err := repo.Get(context.Background(), "unknown")
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchCacheRepository_Put_AppendsEntry(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo, mock := newCacheRepo(t, now)

	insert := regexp.QuoteMeta(`INSERT INTO dbo.youtube_search_cache (query, video_ids, created_at) VALUES (@p1, @p2, @p3)`)
	mock.ExpectExec(insert).WithArgs("lofi beats", `["id1","id2"]`, now).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insert).WithArgs("zzzzznoresults", `[]`, now).WillReturnResult(sqlmock.NewResult(2, 1))

	require.NoError(t, repo.Put(context.Background(), "lofi beats", []string{"id1", "id2"}))
	require.NoError(t, repo.Put(context.Background(), "zzzzznoresults", nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
