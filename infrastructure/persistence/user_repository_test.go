package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/stretchr/testify/require"

	"idle-fm-api/domain/model"
	"idle-fm-api/domain/repository"
)

var userRowColumns = []string{"id", "username", "email", "password_hash", "is_active", "is_admin", "activated_at", "created_at"}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepositoryMSSQL(db)
	createdAt := time.Date(2024, 9, 4, 1, 2, 10, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, email, password_hash, is_active, is_admin, activated_at, created_at FROM dbo.Users WHERE email = @p1`)).
		WithArgs("dj@idle.fm").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(7, "dj", "dj@idle.fm", "$2a$10$hash", true, false, createdAt, createdAt))

	u, err := repo.GetByEmail(context.Background(), "dj@idle.fm")
	require.NoError(t, err)
	expected := &model.User{
		ID:           7,
		Username:     "dj",
		Email:        "dj@idle.fm",
		PasswordHash: "$2a$10$hash",
		IsActive:     true,
		ActivatedAt:  &createdAt,
		CreatedAt:    createdAt,
	}
	require.Equal(t, expected, u)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepositoryMSSQL(db)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM dbo.Users WHERE id = @p1`)).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	u, err := repo.GetByID(context.Background(), 99)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.Nil(t, u)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepositoryMSSQL(db)
	createdAt := time.Date(2024, 9, 4, 1, 2, 10, 0, time.UTC)
	insert := regexp.QuoteMeta(`INSERT INTO dbo.Users (username, email, password_hash, is_active, is_admin, created_at)
OUTPUT INSERTED.id VALUES (@p1, @p2, @p3, @p4, @p5, @p6)`)

	mock.ExpectQuery(insert).
		WithArgs("dj", "dj@idle.fm", "hash", false, false, createdAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectQuery(insert).
		WithArgs("dj", "dj@idle.fm", "hash", false, false, createdAt).
		WillReturnError(mssql.Error{Number: 2627, Message: "Violation of UNIQUE KEY constraint"})

	user := &model.User{Username: "dj", Email: "dj@idle.fm", PasswordHash: "hash", CreatedAt: createdAt}
	id, err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	require.Equal(t, 12, id)

	_, err = repo.Create(context.Background(), user)
	require.ErrorIs(t, err, repository.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Activate_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepositoryMSSQL(db)
	at := time.Date(2024, 9, 4, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE dbo.Users SET is_active = 1, activated_at = @p2 WHERE id = @p1`)).
		WithArgs(5, at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, repo.Activate(context.Background(), 5, at), repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
