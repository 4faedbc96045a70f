package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"idle-fm-api/domain/dto"
	"idle-fm-api/domain/model"
	"idle-fm-api/domain/repository"
	"idle-fm-api/infrastructure/logger"
	"idle-fm-api/infrastructure/utils"

	"github.com/google/go-querystring/query"
	"golang.org/x/crypto/bcrypt"
)

const (
	activationTTL     = 24 * time.Hour
	passwordResetTTL  = time.Hour
	minPasswordLength = 8
)

// AuthSettings carries the values the account flows need from configuration.
type AuthSettings struct {
	SecretKey   string
	FrontendURL string
}

type IAuthUsecase interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*model.User, error)
	// Login returns the user and a signed session token.
	Login(ctx context.Context, req dto.LoginRequest) (*model.User, string, error)
	Me(ctx context.Context, userID int) (*model.User, error)
	Activate(ctx context.Context, token string) (string, error)
	ResendActivation(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error
}

type AuthUsecase struct {
	users       repository.IUser
	activations repository.IActivation
	resets      repository.IPasswordReset
	mailer      repository.IMailer
	settings    AuthSettings
	now         func() time.Time
	bcryptCost  int
}

func NewAuthUsecase(users repository.IUser, activations repository.IActivation, resets repository.IPasswordReset, mailer repository.IMailer, settings AuthSettings) *AuthUsecase {
	return &AuthUsecase{
		users:       users,
		activations: activations,
		resets:      resets,
		mailer:      mailer,
		settings:    settings,
		now:         utils.GetCurrentTime,
		bcryptCost:  bcrypt.DefaultCost,
	}
}

// WithClock overrides the time source (fluent)
func (u *AuthUsecase) WithClock(now func() time.Time) *AuthUsecase {
	u.now = now
	return u
}

// WithBcryptCost overrides the hashing cost (fluent)
func (u *AuthUsecase) WithBcryptCost(cost int) *AuthUsecase {
	u.bcryptCost = cost
	return u
}

func (u *AuthUsecase) Register(ctx context.Context, req dto.RegisterRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	email := normalizeEmail(req.Email)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), u.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    u.now(),
	}
	id, err := u.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	if err := u.sendActivation(ctx, user); err != nil {
		logger.WithContext(ctx).WithFields(map[string]interface{}{"user_id": id, "error": err}).Error("Failed to send activation email")
	}
	return user, nil
}

func (u *AuthUsecase) Login(ctx context.Context, req dto.LoginRequest) (*model.User, string, error) {
	user, err := u.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsActive {
		if err := u.sendActivation(ctx, user); err != nil {
			logger.WithContext(ctx).WithFields(map[string]interface{}{"user_id": user.ID, "error": err}).Error("Failed to resend activation email")
		}
		return nil, "", ErrAccountInactive
	}

	token, err := utils.GenerateSessionToken(user, u.settings.SecretKey, u.now())
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int) (*model.User, error) {
	return u.users.GetByID(ctx, userID)
}

// Activate consumes an activation token and reports one of the dto.Activation* statuses.
func (u *AuthUsecase) Activate(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return dto.ActivationInvalid, nil
	}
	activation, err := u.activations.GetByTokenHash(ctx, utils.HashToken(token))
	if errors.Is(err, repository.ErrNotFound) {
		return dto.ActivationInvalid, nil
	}
	if err != nil {
		return "", err
	}
	if activation.ActivatedAt != nil {
		return dto.ActivationAlready, nil
	}
	user, err := u.users.GetByID(ctx, activation.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return dto.ActivationInvalid, nil
	}
	if err != nil {
		return "", err
	}
	if user.IsActive {
		return dto.ActivationAlready, nil
	}
	now := u.now()
	if now.After(activation.ExpiresAt) {
		return dto.ActivationExpired, nil
	}

	if err := u.users.Activate(ctx, user.ID, now); err != nil {
		return "", err
	}
	if err := u.activations.MarkActivated(ctx, activation.ID, now); err != nil {
		return "", err
	}
	logger.WithContext(ctx).WithField("user_id", user.ID).Info("Account activated")
	return dto.ActivationSuccess, nil
}

// ResendActivation mails a fresh link to an inactive account. Unknown and
// already active addresses are ignored so callers cannot probe for accounts.
func (u *AuthUsecase) ResendActivation(ctx context.Context, email string) error {
	user, err := u.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if user.IsActive {
		return nil
	}
	return u.sendActivation(ctx, user)
}

func (u *AuthUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token, hash := utils.NewOpaqueToken()
	now := u.now()
	if err := u.resets.Create(ctx, &model.PasswordReset{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: now.Add(passwordResetTTL),
		CreatedAt: now,
	}); err != nil {
		return err
	}

	link, err := u.link("/reset-password", dto.LinkQuery{Token: token, Email: user.Email})
	if err != nil {
		return err
	}
	return u.mailer.Send(ctx, model.MailMessage{
		To:         user.Email,
		Subject:    "Reset your Idle.fm password",
		Title:      "Password reset",
		Greeting:   "Hi " + user.Username + ",",
		Body:       "Someone asked to reset the password of your account. The link is valid for one hour.",
		ButtonText: "Choose a new password",
		ButtonURL:  link,
	})
}

func (u *AuthUsecase) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	if len(req.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	reset, err := u.resets.GetByTokenHash(ctx, utils.HashToken(req.Token))
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}
	if u.now().After(reset.ExpiresAt) {
		return ErrTokenExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), u.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := u.users.UpdatePassword(ctx, reset.UserID, string(hash)); err != nil {
		return err
	}
	return u.resets.DeleteByUser(ctx, reset.UserID)
}

func (u *AuthUsecase) sendActivation(ctx context.Context, user *model.User) error {
	token, hash := utils.NewOpaqueToken()
	now := u.now()
	if err := u.activations.Create(ctx, &model.Activation{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: now.Add(activationTTL),
		CreatedAt: now,
	}); err != nil {
		return err
	}

	link, err := u.link("/activate", dto.LinkQuery{Token: token})
	if err != nil {
		return err
	}
	return u.mailer.Send(ctx, model.MailMessage{
		To:         user.Email,
		Subject:    "Activate your Idle.fm account",
		Title:      "Welcome to Idle.fm",
		Greeting:   "Hi " + user.Username + ",",
		Body:       "Confirm your email address to start building playlists. The link is valid for 24 hours.",
		ButtonText: "Activate account",
		ButtonURL:  link,
	})
}

func (u *AuthUsecase) link(path string, q dto.LinkQuery) (string, error) {
	values, err := query.Values(q)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(u.settings.FrontendURL, "/") + path + "?" + values.Encode(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
