package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "brightsteps/internal/delivery/context"
	"brightsteps/internal/domain/entity"
	domainerrors "brightsteps/internal/domain/errors"
	"brightsteps/internal/domain/repository"
	"brightsteps/internal/domain/service"
	"brightsteps/internal/errors"
	"brightsteps/internal/usecase"
	"brightsteps/internal/util"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
	now          func() time.Time
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
		now:          time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a free-tier account and signs the user in.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	email := util.NormalizeEmail(input.Email)
	srv.log(ctx).Info("Registering user", slog.String("email", email))

	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		return nil, err
	}

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed
	}

	now := srv.now()
	user := &entity.User{
		ID:               uuid.New(),
		Email:            email,
		PasswordHash:     hash,
		Name:             input.Name,
		SubscriptionTier: entity.TierFree,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := srv.userRepo.Create(ctx, user); err != nil {
		return nil, translateRepoError(err, "failed to create user")
	}

	return srv.issue(ctx, user)
}

// Login verifies credentials. Unknown emails and wrong passwords are indistinguishable to the caller.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	email := util.NormalizeEmail(input.Email)

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Debug("Login for unknown email", slog.String("email", email))

			return nil, domainerrors.ErrInvalidCredentials
		}

		return nil, translateRepoError(err, "failed to find user by email")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Debug("Login with wrong password", slog.Any("userID", user.ID))

		return nil, domainerrors.ErrInvalidCredentials
	}

	return srv.issue(ctx, user)
}

// Me returns the authenticated user.
func (srv *authService) Me(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, translateRepoError(err, "failed to find user")
	}

	return user, nil
}

// Authenticate validates the token and confirms its user still exists.
func (srv *authService) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := srv.tokenService.ValidateToken(token)
	if err != nil {
		srv.log(ctx).Debug("Rejected access token", slog.Any("error", err))

		return uuid.Nil, domainerrors.ErrUnauthorized.WithDetails("invalid or expired token")
	}

	if _, err := srv.userRepo.FindByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return uuid.Nil, domainerrors.ErrUnauthorized.WithDetails("user no longer exists")
		}

		return uuid.Nil, translateRepoError(err, "failed to resolve token user")
	}

	return claims.UserID, nil
}

func (srv *authService) issue(ctx context.Context, user *entity.User) (*usecase.AuthOutput, error) {
	token, err := srv.tokenService.GenerateToken(user.ID)
	if err != nil {
		srv.log(ctx).Error("Failed to generate access token", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, domainerrors.ErrInternalError.WithDetails("failed to issue token")
	}

	return &usecase.AuthOutput{
		Token:     token,
		ExpiresAt: srv.now().Add(srv.tokenService.TokenTTL()),
		User:      user,
	}, nil
}
