package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"idle-fm-api/domain/model"
	"idle-fm-api/domain/repository"
)

// ActivationRepositoryMSSQL stores hashed account activation tokens
type ActivationRepositoryMSSQL struct{ db *sql.DB }

func NewActivationRepositoryMSSQL(db *sql.DB) repository.IActivation {
	return &ActivationRepositoryMSSQL{db}
}

func (r *ActivationRepositoryMSSQL) Create(ctx context.Context, a *model.Activation) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO dbo.Activations (user_id, token_hash, expires_at, created_at) VALUES (@p1, @p2, @p3, @p4)`,
		a.UserID, a.TokenHash, a.ExpiresAt, time.Now().UTC())
	return err
}

func (r *ActivationRepositoryMSSQL) GetByTokenHash(ctx context.Context, tokenHash string) (*model.Activation, error) {
	var (
		a           model.Activation
		activatedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `SELECT id, user_id, token_hash, expires_at, activated_at, created_at FROM dbo.Activations WHERE token_hash = @p1`, tokenHash).
		Scan(&a.ID, &a.UserID, &a.TokenHash, &a.ExpiresAt, &activatedAt, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if activatedAt.Valid {
		t := activatedAt.Time
		a.ActivatedAt = &t
	}
	return &a, nil
}

func (r *ActivationRepositoryMSSQL) MarkActivated(ctx context.Context, id int, at time.Time) error {
	return execOne(ctx, r.db, `UPDATE dbo.Activations SET activated_at = @p2 WHERE id = @p1`, id, at)
}

// PasswordResetRepositoryMSSQL stores hashed password reset tokens
type PasswordResetRepositoryMSSQL struct{ db *sql.DB }

func NewPasswordResetRepositoryMSSQL(db *sql.DB) repository.IPasswordReset {
	return &PasswordResetRepositoryMSSQL{db}
}

func (r *PasswordResetRepositoryMSSQL) Create(ctx context.Context, p *model.PasswordReset) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO dbo.PasswordResets (user_id, token_hash, expires_at, created_at) VALUES (@p1, @p2, @p3, @p4)`,
		p.UserID, p.TokenHash, p.ExpiresAt, time.Now().UTC())
	return err
}

func (r *PasswordResetRepositoryMSSQL) GetByTokenHash(ctx context.Context, tokenHash string) (*model.PasswordReset, error) {
	var p model.PasswordReset
	err := r.db.QueryRowContext(ctx, `SELECT id, user_id, token_hash, expires_at, created_at FROM dbo.PasswordResets WHERE token_hash = @p1`, tokenHash).
		Scan(&p.ID, &p.UserID, &p.TokenHash, &p.ExpiresAt, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PasswordResetRepositoryMSSQL) DeleteByUser(ctx context.Context, userID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM dbo.PasswordResets WHERE user_id = @p1`, userID)
	return err
}
