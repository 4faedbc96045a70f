package usecase_test

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"idle-fm-api/domain/dto"
	"idle-fm-api/domain/model"
	"idle-fm-api/domain/repository"
	"idle-fm-api/infrastructure/utils"
	"idle-fm-api/usecase"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepo) Create(ctx context.Context, user *model.User) (int, error) {
	args := m.Called(ctx, user)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepo) Activate(ctx context.Context, userID int, at time.Time) error {
	return m.Called(ctx, userID, at).Error(0)
}

func (m *MockUserRepo) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	return m.Called(ctx, userID, passwordHash).Error(0)
}

type MockActivationRepo struct {
	mock.Mock
}

func (m *MockActivationRepo) Create(ctx context.Context, a *model.Activation) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockActivationRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*model.Activation, error) {
	args := m.Called(ctx, tokenHash)
	a, _ := args.Get(0).(*model.Activation)
	return a, args.Error(1)
}

func (m *MockActivationRepo) MarkActivated(ctx context.Context, id int, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type MockResetRepo struct {
	mock.Mock
}

func (m *MockResetRepo) Create(ctx context.Context, r *model.PasswordReset) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockResetRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*model.PasswordReset, error) {
	args := m.Called(ctx, tokenHash)
	r, _ := args.Get(0).(*model.PasswordReset)
	return r, args.Error(1)
}

func (m *MockResetRepo) DeleteByUser(ctx context.Context, userID int) error {
	return m.Called(ctx, userID).Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg model.MailMessage) error {
	return m.Called(ctx, msg).Error(0)
}

type authFixture struct {
	users       *MockUserRepo
	activations *MockActivationRepo
	resets      *MockResetRepo
	mailer      *MockMailer
	now         time.Time
	uc          *usecase.AuthUsecase
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:       new(MockUserRepo),
		activations: new(MockActivationRepo),
		resets:      new(MockResetRepo),
		mailer:      new(MockMailer),
		now:         time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.uc = usecase.NewAuthUsecase(f.users, f.activations, f.resets, f.mailer, usecase.AuthSettings{
		SecretKey:   "test-secret",
		FrontendURL: "https://idle.fm/",
	}).WithClock(func() time.Time { return f.now }).WithBcryptCost(bcrypt.MinCost)
	return f
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(b)
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestRegister_CreatesInactiveUserAndMailsActivation(t *testing.T) {
	f := newAuthFixture()
	var stored *model.Activation
	var sent model.MailMessage

	f.users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "dj@idle.fm" && !u.IsActive &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("longenough")) == nil
	})).Return(7, nil)
	f.activations.On("Create", mock.Anything, mock.AnythingOfType("*model.Activation")).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*model.Activation)
	}).Return(nil)
	f.mailer.On("Send", mock.Anything, mock.AnythingOfType("model.MailMessage")).Run(func(args mock.Arguments) {
		sent = args.Get(1).(model.MailMessage)
	}).Return(nil)

	user, err := f.uc.Register(context.Background(), dto.RegisterRequest{Username: " dj ", Email: " DJ@idle.fm", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, 7, user.ID)
	assert.Equal(t, "dj", user.Username)

	require.NotNil(t, stored)
	assert.Equal(t, 7, stored.UserID)
	assert.Equal(t, f.now.Add(24*time.Hour), stored.ExpiresAt)
	assert.Equal(t, "dj@idle.fm", sent.To)
	assert.True(t, strings.HasPrefix(sent.ButtonURL, "https://idle.fm/activate?token="))

	// only the hash of the mailed token is stored
	token := tokenFromLink(t, sent.ButtonURL)
	assert.NotEqual(t, token, stored.TokenHash)
	assert.Equal(t, utils.HashToken(token), stored.TokenHash)
}

func TestRegister_Validation(t *testing.T) {
	f := newAuthFixture()
	cases := []dto.RegisterRequest{
		{Username: "", Email: "a@b.c", Password: "longenough"},
		{Username: "dj", Email: "not-an-email", Password: "longenough"},
		{Username: "dj", Email: "a@b.c", Password: "short"},
	}
	for _, req := range cases {
		_, err := f.uc.Register(context.Background(), req)
		assert.ErrorIs(t, err, usecase.ErrValidation)
	}
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_Duplicate(t *testing.T) {
	f := newAuthFixture()
	f.users.On("Create", mock.Anything, mock.Anything).Return(0, repository.ErrConflict)

	_, err := f.uc.Register(context.Background(), dto.RegisterRequest{Username: "dj", Email: "dj@idle.fm", Password: "longenough"})
	assert.ErrorIs(t, err, repository.ErrConflict)
	f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture()
	active := &model.User{ID: 3, Username: "dj", Email: "dj@idle.fm", PasswordHash: hashed(t, "longenough"), IsActive: true}
	f.users.On("GetByEmail", mock.Anything, "dj@idle.fm").Return(active, nil)
	f.users.On("GetByEmail", mock.Anything, "ghost@idle.fm").Return(nil, repository.ErrNotFound)

	user, token, err := f.uc.Login(context.Background(), dto.LoginRequest{Email: "DJ@idle.fm", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, 3, user.ID)
	claims, err := utils.ParseSessionToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, 3, claims.UserID)

	_, _, err = f.uc.Login(context.Background(), dto.LoginRequest{Email: "dj@idle.fm", Password: "wrong-password"})
	assert.ErrorIs(t, err, usecase.ErrInvalidCredentials)

	_, _, err = f.uc.Login(context.Background(), dto.LoginRequest{Email: "ghost@idle.fm", Password: "longenough"})
	assert.ErrorIs(t, err, usecase.ErrInvalidCredentials)
}

func TestLogin_InactiveAccountResendsActivation(t *testing.T) {
	f := newAuthFixture()
	inactive := &model.User{ID: 4, Username: "new", Email: "new@idle.fm", PasswordHash: hashed(t, "longenough")}
	f.users.On("GetByEmail", mock.Anything, "new@idle.fm").Return(inactive, nil)
	f.activations.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.mailer.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

	_, token, err := f.uc.Login(context.Background(), dto.LoginRequest{Email: "new@idle.fm", Password: "longenough"})
	assert.ErrorIs(t, err, usecase.ErrAccountInactive)
	assert.Empty(t, token)
	f.mailer.AssertExpectations(t)
}

func TestActivate_Statuses(t *testing.T) {
	activatedAt := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		f := newAuthFixture()
		f.activations.On("GetByTokenHash", mock.Anything, utils.HashToken("tok")).
			Return(&model.Activation{ID: 9, UserID: 5, ExpiresAt: f.now.Add(time.Hour)}, nil)
		f.users.On("GetByID", mock.Anything, 5).Return(&model.User{ID: 5}, nil)
		f.users.On("Activate", mock.Anything, 5, f.now).Return(nil)
		f.activations.On("MarkActivated", mock.Anything, 9, f.now).Return(nil)

		status, err := f.uc.Activate(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, dto.ActivationSuccess, status)
		f.users.AssertExpectations(t)
		f.activations.AssertExpectations(t)
	})

	t.Run("already", func(t *testing.T) {
		f := newAuthFixture()
		f.activations.On("GetByTokenHash", mock.Anything, mock.Anything).
			Return(&model.Activation{ID: 9, UserID: 5, ActivatedAt: &activatedAt}, nil)

		status, err := f.uc.Activate(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, dto.ActivationAlready, status)
	})

	t.Run("expired", func(t *testing.T) {
		f := newAuthFixture()
		f.activations.On("GetByTokenHash", mock.Anything, mock.Anything).
			Return(&model.Activation{ID: 9, UserID: 5, ExpiresAt: f.now.Add(-time.Minute)}, nil)
		f.users.On("GetByID", mock.Anything, 5).Return(&model.User{ID: 5}, nil)

		status, err := f.uc.Activate(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, dto.ActivationExpired, status)
		f.users.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid", func(t *testing.T) {
		f := newAuthFixture()
		f.activations.On("GetByTokenHash", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)

		status, err := f.uc.Activate(context.Background(), "nope")
		require.NoError(t, err)
		assert.Equal(t, dto.ActivationInvalid, status)

		status, err = f.uc.Activate(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, dto.ActivationInvalid, status)
	})
}

func TestResendActivation_IgnoresUnknownAndActive(t *testing.T) {
	f := newAuthFixture()
	f.users.On("GetByEmail", mock.Anything, "ghost@idle.fm").Return(nil, repository.ErrNotFound)
	f.users.On("GetByEmail", mock.Anything, "on@idle.fm").Return(&model.User{ID: 1, IsActive: true}, nil)

	require.NoError(t, f.uc.ResendActivation(context.Background(), "ghost@idle.fm"))
	require.NoError(t, f.uc.ResendActivation(context.Background(), "on@idle.fm"))
	f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAuthFixture()
	user := &model.User{ID: 8, Username: "dj", Email: "dj@idle.fm"}
	var reset *model.PasswordReset
	var sent model.MailMessage

	f.users.On("GetByEmail", mock.Anything, "dj@idle.fm").Return(user, nil)
	f.resets.On("Create", mock.Anything, mock.AnythingOfType("*model.PasswordReset")).Run(func(args mock.Arguments) {
		reset = args.Get(1).(*model.PasswordReset)
	}).Return(nil)
	f.mailer.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(model.MailMessage)
	}).Return(nil)

	require.NoError(t, f.uc.RequestPasswordReset(context.Background(), "dj@idle.fm"))
	require.NotNil(t, reset)
	assert.Equal(t, f.now.Add(time.Hour), reset.ExpiresAt)
	assert.Contains(t, sent.ButtonURL, "https://idle.fm/reset-password?")
	assert.Contains(t, sent.ButtonURL, "email=dj%40idle.fm")

	token := tokenFromLink(t, sent.ButtonURL)
	f.resets.On("GetByTokenHash", mock.Anything, utils.HashToken(token)).Return(reset, nil)
	f.users.On("UpdatePassword", mock.Anything, 8, mock.MatchedBy(func(h string) bool {
		return bcrypt.CompareHashAndPassword([]byte(h), []byte("brand-new-pass")) == nil
	})).Return(nil)
	f.resets.On("DeleteByUser", mock.Anything, 8).Return(nil)

	require.NoError(t, f.uc.ResetPassword(context.Background(), dto.ResetPasswordRequest{Token: token, Password: "brand-new-pass"}))
	f.users.AssertExpectations(t)
	f.resets.AssertExpectations(t)
}

func TestResetPassword_Rejects(t *testing.T) {
	f := newAuthFixture()
	f.resets.On("GetByTokenHash", mock.Anything, utils.HashToken("unknown")).Return(nil, repository.ErrNotFound)
	f.resets.On("GetByTokenHash", mock.Anything, utils.HashToken("old")).
		Return(&model.PasswordReset{ID: 1, UserID: 8, ExpiresAt: f.now.Add(-time.Second)}, nil)

	err := f.uc.ResetPassword(context.Background(), dto.ResetPasswordRequest{Token: "unknown", Password: "brand-new-pass"})
	assert.ErrorIs(t, err, usecase.ErrInvalidToken)

	err = f.uc.ResetPassword(context.Background(), dto.ResetPasswordRequest{Token: "old", Password: "brand-new-pass"})
	assert.ErrorIs(t, err, usecase.ErrTokenExpired)

	err = f.uc.ResetPassword(context.Background(), dto.ResetPasswordRequest{Token: "old", Password: "short"})
	assert.ErrorIs(t, err, usecase.ErrValidation)

	f.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	f := newAuthFixture()
	f.users.On("GetByEmail", mock.Anything, "ghost@idle.fm").Return(nil, repository.ErrNotFound)

	require.NoError(t, f.uc.RequestPasswordReset(context.Background(), "ghost@idle.fm"))
	f.resets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
