package repository

import (
	"context"

	"idle-fm-api/domain/model"
)

type IMailer interface {
	Send(ctx context.Context, msg model.MailMessage) error
}
