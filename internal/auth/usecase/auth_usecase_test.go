package usecase_test

import (
	"context"
	"errors"
	"testing"

	"consultancy-portal/internal/auth/adapter/persistence/memory"
	"consultancy-portal/internal/auth/adapter/security"
	"consultancy-portal/internal/auth/domain/model"
	"consultancy-portal/internal/auth/testutil"
	"consultancy-portal/internal/auth/usecase"
	"consultancy-portal/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAdminRepository struct {
	mock.Mock
}

func (m *mockAdminRepository) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Admin), args.Error(1)
}

func (m *mockAdminRepository) UpsertAdmin(ctx context.Context, admin *model.Admin) error {
	return m.Called(ctx, admin).Error(0)
}

func newUsecase(t *testing.T, repo *mockAdminRepository) *usecase.AuthUsecase {
	t.Helper()
	tokens, err := security.NewJWTokenService(testutil.TestConfig())
	require.NoError(t, err)
	return usecase.NewAuthUsecase(repo, tokens, logger.NewLogger())
}

func TestAdminLogin_Success(t *testing.T) {
	repo := &mockAdminRepository{}
	uc := newUsecase(t, repo)
	admin := testutil.AdminWithPassword("admin@example.com", "s3cret-pass")
	repo.On("GetAdminByEmail", mock.Anything, "admin@example.com").Return(admin, nil)

	resp, err := uc.AdminLogin(context.Background(), usecase.LoginRequest{Email: "  Admin@Example.com ", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, resp.Principal.Role)
	assert.Equal(t, admin.ID, resp.Principal.ID)

	claims, err := uc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.True(t, claims.HasRole(model.RoleAdmin))
	repo.AssertExpectations(t)
}

func TestAdminLogin_InvalidCredentials(t *testing.T) {
	repo := &mockAdminRepository{}
	uc := newUsecase(t, repo)
	repo.On("GetAdminByEmail", mock.Anything, "admin@example.com").
		Return(testutil.AdminWithPassword("admin@example.com", "right"), nil)
	repo.On("GetAdminByEmail", mock.Anything, "nobody@example.com").Return(nil, usecase.ErrAdminNotFound)

	_, err := uc.AdminLogin(context.Background(), usecase.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, usecase.ErrInvalidCredentials)

	_, err = uc.AdminLogin(context.Background(), usecase.LoginRequest{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, usecase.ErrInvalidCredentials)
}

func TestAdminLogin_ValidationAndStoreErrors(t *testing.T) {
	repo := &mockAdminRepository{}
	uc := newUsecase(t, repo)

	_, err := uc.AdminLogin(context.Background(), usecase.LoginRequest{Email: "not-an-email", Password: "x"})
	assert.ErrorIs(t, err, usecase.ErrInvalidRequest)
	_, err = uc.AdminLogin(context.Background(), usecase.LoginRequest{Email: "a@example.com"})
	assert.ErrorIs(t, err, usecase.ErrInvalidRequest)
	repo.AssertNotCalled(t, "GetAdminByEmail", mock.Anything, mock.Anything)

	repo.On("GetAdminByEmail", mock.Anything, "a@example.com").Return(nil, errors.New("connection reset"))
	_, err = uc.AdminLogin(context.Background(), usecase.LoginRequest{Email: "a@example.com", Password: "x"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, usecase.ErrInvalidCredentials)
}

func TestValidateToken_Invalid(t *testing.T) {
	uc := newUsecase(t, &mockAdminRepository{})
	_, err := uc.ValidateToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, usecase.ErrTokenInvalid)
}

func TestEnsureAdmin(t *testing.T) {
	tokens, err := security.NewJWTokenService(testutil.TestConfig())
	require.NoError(t, err)
	repo := memory.NewAdminRepository()
	uc := usecase.NewAuthUsecase(repo, tokens, logger.NewLogger())
	ctx := context.Background()

	require.NoError(t, uc.EnsureAdmin(ctx, "", "", ""), "no bootstrap admin configured")
	assert.Error(t, uc.EnsureAdmin(ctx, "admin@example.com", "Admin", "plaintext"))

	hash := testutil.AdminWithPassword("admin@example.com", "first").PasswordHash
	require.NoError(t, uc.EnsureAdmin(ctx, "Admin@Example.com", "Admin", hash))
	first, err := repo.GetAdminByEmail(ctx, "admin@example.com")
	require.NoError(t, err)

	hash = testutil.AdminWithPassword("admin@example.com", "second").PasswordHash
	require.NoError(t, uc.EnsureAdmin(ctx, "admin@example.com", "Admin", hash))
	second, err := repo.GetAdminByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "upsert keeps the admin id")

	_, err = uc.AdminLogin(ctx, usecase.LoginRequest{Email: "admin@example.com", Password: "second"})
	assert.NoError(t, err)
	_, err = uc.AdminLogin(ctx, usecase.LoginRequest{Email: "admin@example.com", Password: "first"})
	assert.ErrorIs(t, err, usecase.ErrInvalidCredentials)
}
