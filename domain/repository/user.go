package repository

import (
	"context"
	"time"

	"idle-fm-api/domain/model"
)

type IUser interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) (int, error)
	Activate(ctx context.Context, userID int, at time.Time) error
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
}

type IActivation interface {
	Create(ctx context.Context, activation *model.Activation) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*model.Activation, error)
	MarkActivated(ctx context.Context, id int, at time.Time) error
}

type IPasswordReset interface {
	Create(ctx context.Context, reset *model.PasswordReset) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*model.PasswordReset, error)
	DeleteByUser(ctx context.Context, userID int) error
}
