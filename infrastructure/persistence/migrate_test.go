package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrator_RefusesResetOutsideDevelopment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	migrator, err := NewMigrator(db, false)
	require.NoError(t, err)

	err = migrator.Run(context.Background(), MigrateReset)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only allowed in development")

	err = migrator.Run(context.Background(), "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migrate command")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrationFilesAreEmbedded(t *testing.T) {
	entries, err := migrationFiles.ReadDir("migrations")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "00001_users.sql", entries[0].Name())
}

func TestVideosKeyIsCaseSensitive(t *testing.T) {
	raw, err := migrationFiles.ReadFile("migrations/00002_media.sql")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "youtube_key NVARCHAR(64) COLLATE Latin1_General_100_BIN2 NOT NULL")
}
