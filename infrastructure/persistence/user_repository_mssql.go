package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"idle-fm-api/domain/model"
	"idle-fm-api/domain/repository"
	"idle-fm-api/infrastructure/logger"
)

const userColumns = `id, username, email, password_hash, is_active, is_admin, activated_at, created_at`

// UserRepositoryMSSQL is a SQL Server implementation of IUser using database/sql.
type UserRepositoryMSSQL struct{ db *sql.DB }

func NewUserRepositoryMSSQL(db *sql.DB) repository.IUser { return &UserRepositoryMSSQL{db} }

func (r *UserRepositoryMSSQL) GetByID(ctx context.Context, id int) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM dbo.Users WHERE id = @p1`, id)
	return scanUser(row)
}

func (r *UserRepositoryMSSQL) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM dbo.Users WHERE email = @p1`, email)
	return scanUser(row)
}

func (r *UserRepositoryMSSQL) Create(ctx context.Context, user *model.User) (int, error) {
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	var id int
	err := r.db.QueryRowContext(ctx, `INSERT INTO dbo.Users (username, email, password_hash, is_active, is_admin, created_at)
OUTPUT INSERTED.id VALUES (@p1, @p2, @p3, @p4, @p5, @p6)`,
		user.Username, user.Email, user.PasswordHash, user.IsActive, user.IsAdmin, createdAt).Scan(&id)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, repository.ErrConflict
		}
		logger.GetLogger().WithFields(map[string]interface{}{
			"error": err,
			"email": user.Email,
		}).Error("mssql: create user failed")
		return 0, err
	}
	return id, nil
}

func (r *UserRepositoryMSSQL) Activate(ctx context.Context, userID int, at time.Time) error {
	return execOne(ctx, r.db, `UPDATE dbo.Users SET is_active = 1, activated_at = @p2 WHERE id = @p1`, userID, at)
}

func (r *UserRepositoryMSSQL) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	return execOne(ctx, r.db, `UPDATE dbo.Users SET password_hash = @p2 WHERE id = @p1`, userID, passwordHash)
}

func scanUser(s rowScanner) (*model.User, error) {
	var (
		u           model.User
		activatedAt sql.NullTime
	)
	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.IsAdmin, &activatedAt, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if activatedAt.Valid {
		t := activatedAt.Time
		u.ActivatedAt = &t
	}
	return &u, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// execOne runs a statement that must touch exactly one row.
func execOne(ctx context.Context, db execer, query string, args ...interface{}) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
