package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "brightsteps/internal/delivery/context"
	"brightsteps/internal/domain/entity"
	domainerrors "brightsteps/internal/domain/errors"
	"brightsteps/internal/domain/policy"
	"brightsteps/internal/domain/repository"
	"brightsteps/internal/domain/service"
	"brightsteps/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// packService implements the PackUsecase interface.
type packService struct {
	userRepo     repository.UserRepository
	activityRepo repository.ActivityRepository
	packRepo     repository.PackRepository
	usage        service.UsageRecorder
	logger       *slog.Logger
	now          func() time.Time
}

// PackServiceParams holds dependencies for PackService, injected by Fx.
type PackServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	ActivityRepo repository.ActivityRepository
	PackRepo     repository.PackRepository
	Usage        service.UsageRecorder
	Logger       *slog.Logger
}

// NewPackService is the constructor for packService.
func NewPackService(params PackServiceParams) usecase.PackUsecase {
	return &packService{
		userRepo:     params.UserRepo,
		activityRepo: params.ActivityRepo,
		packRepo:     params.PackRepo,
		usage:        params.Usage,
		logger:       params.Logger,
		now:          time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *packService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *packService) ListPacks(ctx context.Context) ([]*entity.ActivityPack, error) {
	packs, err := srv.packRepo.FindActive(ctx)
	if err != nil {
		return nil, translateRepoError(err, "failed to list packs")
	}

	return packs, nil
}

func (srv *packService) GetPack(ctx context.Context, packID uuid.UUID) (*entity.ActivityPack, error) {
	pack, err := srv.packRepo.FindByID(ctx, packID)
	if err != nil {
		return nil, translateRepoError(err, "failed to find pack")
	}

	return pack, nil
}

func (srv *packService) ListPackActivities(ctx context.Context, userID, packID uuid.UUID) ([]*entity.Activity, error) {
	if _, err := srv.packRepo.FindByID(ctx, packID); err != nil {
		return nil, translateRepoError(err, "failed to find pack")
	}

	viewer, err := loadViewer(ctx, srv.userRepo, userID)
	if err != nil {
		return nil, err
	}

	if !policy.CanViewPackContents(viewer, packID, srv.now()) {
		srv.usage.AccessDenied(service.DenyReasonPackPurchaseRequired)
		srv.log(ctx).Info("Pack contents denied", slog.Any("packID", packID), slog.Any("userID", userID))

		return nil, domainerrors.ErrPackPurchaseRequired
	}

	activities, _, err := srv.activityRepo.Search(ctx, entity.ActivityFilter{PackID: &packID})
	if err != nil {
		return nil, translateRepoError(err, "failed to list pack activities")
	}

	return activities, nil
}
