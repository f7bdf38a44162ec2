package impl

import (
	"context"
	"testing"
	"time"

	"brightsteps/internal/domain/entity"
	domainerrors "brightsteps/internal/domain/errors"
	"brightsteps/internal/domain/service"
	"brightsteps/internal/infra/persistence/memory"
	mockService "brightsteps/internal/mocks/service"
	"brightsteps/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// authServiceFixtures holds all test dependencies for auth service tests.
type authServiceFixtures struct {
	service      *authService
	store        *memory.Store
	hasher       *mockService.MockPasswordHasher
	tokenService *mockService.MockTokenService
}

func createTestAuthService(t *testing.T) authServiceFixtures {
	store := memory.NewStore()
	hasher := mockService.NewMockPasswordHasher(t)
	tokenService := mockService.NewMockTokenService(t)

	srv := NewAuthService(AuthServiceParams{
		UserRepo:     store.Users(),
		Hasher:       hasher,
		TokenService: tokenService,
		Logger:       newDiscardLogger(),
	}).(*authService)
	srv.now = fixedClock

	return authServiceFixtures{
		service:      srv,
		store:        store,
		hasher:       hasher,
		tokenService: tokenService,
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	fixture := createTestAuthService(t)
	ctx := context.Background()

	fixture.hasher.EXPECT().ValidatePasswordStrength("Secret123!").Return(nil)
	fixture.hasher.EXPECT().Hash("Secret123!").Return("hashed", nil)
	fixture.tokenService.EXPECT().GenerateToken(mock.AnythingOfType("uuid.UUID")).Return("token", nil)
	fixture.tokenService.EXPECT().TokenTTL().Return(7 * 24 * time.Hour)

	out, err := fixture.service.Register(ctx, &usecase.RegisterInput{
		Name:     "Parent",
		Email:    "  Parent@Example.COM ",
		Password: "Secret123!",
	})
	require.NoError(t, err)

	assert.Equal(t, "token", out.Token)
	assert.Equal(t, testNow.Add(7*24*time.Hour), out.ExpiresAt)
	assert.Equal(t, "parent@example.com", out.User.Email)
	assert.Equal(t, entity.TierFree, out.User.SubscriptionTier)

	stored, err := fixture.store.Users().FindByEmail(ctx, "parent@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hashed", stored.PasswordHash)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	fixture := createTestAuthService(t)
	ctx := context.Background()
	require.NoError(t, fixture.store.Users().Create(ctx, &entity.User{Email: "parent@example.com"}))

	fixture.hasher.EXPECT().ValidatePasswordStrength(mock.Anything).Return(nil)
	fixture.hasher.EXPECT().Hash(mock.Anything).Return("hashed", nil)

	_, err := fixture.service.Register(ctx, &usecase.RegisterInput{
		Name:     "Parent",
		Email:    "PARENT@example.com",
		Password: "Secret123!",
	})
	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	fixture := createTestAuthService(t)

	fixture.hasher.EXPECT().ValidatePasswordStrength("short").
		Return(domainerrors.ErrPasswordStrength.WithDetails("password must be at least 8 characters"))

	_, err := fixture.service.Register(context.Background(), &usecase.RegisterInput{
		Name:     "Parent",
		Email:    "parent@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, domainerrors.ErrPasswordStrength)
}

func TestAuthService_Register_HashFailure(t *testing.T) {
	fixture := createTestAuthService(t)

	fixture.hasher.EXPECT().ValidatePasswordStrength(mock.Anything).Return(nil)
	fixture.hasher.EXPECT().Hash(mock.Anything).Return("", errors.New("bcrypt failure"))

	_, err := fixture.service.Register(context.Background(), &usecase.RegisterInput{
		Name:     "Parent",
		Email:    "parent@example.com",
		Password: "Secret123!",
	})
	assert.ErrorIs(t, err, domainerrors.ErrPasswordHashFailed)
}

func TestAuthService_Login(t *testing.T) {
	fixture := createTestAuthService(t)
	ctx := context.Background()
	user := &entity.User{Email: "parent@example.com", PasswordHash: "hashed"}
	require.NoError(t, fixture.store.Users().Create(ctx, user))

	fixture.hasher.EXPECT().Check("right", "hashed").Return(true)
	fixture.hasher.EXPECT().Check("wrong", "hashed").Return(false)
	fixture.tokenService.EXPECT().GenerateToken(user.ID).Return("token", nil)
	fixture.tokenService.EXPECT().TokenTTL().Return(time.Hour)

	out, err := fixture.service.Login(ctx, &usecase.LoginInput{Email: "Parent@Example.com", Password: "right"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, out.User.ID)

	_, wrongPassword := fixture.service.Login(ctx, &usecase.LoginInput{Email: "parent@example.com", Password: "wrong"})
	_, unknownEmail := fixture.service.Login(ctx, &usecase.LoginInput{Email: "nobody@example.com", Password: "right"})

	assert.ErrorIs(t, wrongPassword, domainerrors.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, domainerrors.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthService_Authenticate(t *testing.T) {
	fixture := createTestAuthService(t)
	ctx := context.Background()
	user := &entity.User{Email: "parent@example.com"}
	require.NoError(t, fixture.store.Users().Create(ctx, user))
	ghost := uuid.New()

	fixture.tokenService.EXPECT().ValidateToken("good").Return(&service.Claims{UserID: user.ID}, nil)
	fixture.tokenService.EXPECT().ValidateToken("ghost").Return(&service.Claims{UserID: ghost}, nil)
	fixture.tokenService.EXPECT().ValidateToken("bad").Return(nil, errors.New("signature is invalid"))

	userID, err := fixture.service.Authenticate(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	_, err = fixture.service.Authenticate(ctx, "ghost")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = fixture.service.Authenticate(ctx, "bad")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestAuthService_Me_NotFound(t *testing.T) {
	fixture := createTestAuthService(t)

	_, err := fixture.service.Me(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}
