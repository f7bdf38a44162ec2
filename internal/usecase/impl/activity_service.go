package impl

import (
	"context"
	"log/slog"
	"time"

	"brightsteps/config"
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

// activityService implements the ActivityUsecase interface.
type activityService struct {
	userRepo     repository.UserRepository
	activityRepo repository.ActivityRepository
	usage        service.UsageRecorder
	events       service.EventPublisher
	qrcode       service.QRCodeService
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger
	now          func() time.Time
}

// ActivityServiceParams holds dependencies for ActivityService, injected by Fx.
type ActivityServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	ActivityRepo repository.ActivityRepository
	Usage        service.UsageRecorder
	Events       service.EventPublisher
	QRCode       service.QRCodeService
	Config       *config.Config
	Logger       *slog.Logger
}

// NewActivityService is the constructor for activityService.
func NewActivityService(params ActivityServiceParams) usecase.ActivityUsecase {
	return &activityService{
		userRepo:     params.UserRepo,
		activityRepo: params.ActivityRepo,
		usage:        params.Usage,
		events:       params.Events,
		qrcode:       params.QRCode,
		defaultLimit: params.Config.Pagination.DefaultLimit,
		maxLimit:     params.Config.Pagination.MaxLimit,
		logger:       params.Logger,
		now:          time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *activityService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ListActivities returns one page of activities the viewer is entitled to.
func (srv *activityService) ListActivities(ctx context.Context, viewerID uuid.UUID, filter entity.ActivityFilter) (*usecase.ActivityPage, error) {
	viewer, err := loadViewer(ctx, srv.userRepo, viewerID)
	if err != nil {
		return nil, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = srv.defaultLimit
	}
	if filter.Limit > srv.maxLimit {
		filter.Limit = srv.maxLimit
	}
	filter.PackID = nil
	filter = policy.NarrowFilter(viewer, filter, srv.now())

	activities, total, err := srv.activityRepo.Search(ctx, filter)
	if err != nil {
		return nil, translateRepoError(err, "failed to search activities")
	}

	srv.log(ctx).Debug("Listed activities",
		slog.Int64("total", total),
		slog.Int("page", filter.Page),
		slog.Bool("freeOnly", filter.FreeOnly),
	)

	return &usecase.ActivityPage{
		Activities: activities,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: filter.TotalPages(total),
	}, nil
}

// GetActivity returns a single activity and counts the view once access is granted.
func (srv *activityService) GetActivity(ctx context.Context, viewerID, activityID uuid.UUID) (*entity.Activity, error) {
	activity, err := srv.activityRepo.FindByID(ctx, activityID)
	if err != nil {
		return nil, translateRepoError(err, "failed to find activity")
	}

	viewer, err := loadViewer(ctx, srv.userRepo, viewerID)
	if err != nil {
		return nil, err
	}

	if !policy.CanViewActivity(viewer, activity, srv.now()) {
		srv.usage.AccessDenied(service.DenyReasonPremiumRequired)
		srv.log(ctx).Info("Premium activity denied",
			slog.Any("activityID", activityID),
			slog.Any("viewerID", viewerID),
		)

		details := "a premium subscription is required"
		if activity.PackID != nil {
			details = "a premium subscription or purchase of pack " + activity.PackID.String() + " is required"
		}

		return nil, domainerrors.ErrPremiumRequired.WithDetails(details)
	}

	if err := srv.activityRepo.IncrementPopularity(ctx, activityID); err != nil {
		return nil, translateRepoError(err, "failed to increment popularity")
	}
	activity.Popularity++
	srv.usage.ActivityViewed()

	return activity, nil
}

// AddFavorite adds the activity to the user's favorites exactly once.
func (srv *activityService) AddFavorite(ctx context.Context, userID, activityID uuid.UUID) error {
	if _, err := srv.activityRepo.FindByID(ctx, activityID); err != nil {
		return translateRepoError(err, "failed to find activity")
	}

	if err := srv.userRepo.AddFavorite(ctx, userID, activityID); err != nil {
		return translateRepoError(err, "failed to add favorite")
	}

	srv.log(ctx).Debug("Favorite added", slog.Any("userID", userID), slog.Any("activityID", activityID))

	return nil
}

// RemoveFavorite removes the activity from favorites. Removing an absent favorite succeeds.
func (srv *activityService) RemoveFavorite(ctx context.Context, userID, activityID uuid.UUID) error {
	return translateRepoError(srv.userRepo.RemoveFavorite(ctx, userID, activityID), "failed to remove favorite")
}

// LogActivity appends a history entry. Repeated completions are all kept.
func (srv *activityService) LogActivity(ctx context.Context, userID, activityID uuid.UUID, input *usecase.LogActivityInput) (*entity.HistoryEntry, error) {
	if _, err := srv.activityRepo.FindByID(ctx, activityID); err != nil {
		return nil, translateRepoError(err, "failed to find activity")
	}

	now := srv.now()
	completed := now
	if input != nil && input.CompletedDate != nil {
		if input.CompletedDate.After(now) {
			return nil, domainerrors.ErrValidationFailed.WithDetails("completedDate must not be in the future")
		}
		completed = *input.CompletedDate
	}

	entry := entity.HistoryEntry{
		ID:            uuid.New(),
		ActivityID:    activityID,
		CompletedDate: completed,
	}
	if input != nil {
		entry.Notes = input.Notes
	}

	if err := srv.userRepo.AppendHistory(ctx, userID, entry); err != nil {
		return nil, translateRepoError(err, "failed to append history")
	}

	publishEvent(ctx, srv.events, srv.log(ctx), &service.DomainEvent{
		Type:       service.EventActivityCompleted,
		UserID:     userID.String(),
		OccurredAt: now,
		Data: map[string]string{
			"activity_id":    activityID.String(),
			"history_id":     entry.ID.String(),
			"completed_date": entry.CompletedDate.UTC().Format(time.RFC3339),
		},
	})

	return &entry, nil
}

// ShareActivity renders a QR code linking to the activity. Premium activities can be
// shared; opening the link goes through the normal access check.
func (srv *activityService) ShareActivity(ctx context.Context, activityID uuid.UUID) (*usecase.ActivityShare, error) {
	if _, err := srv.activityRepo.FindByID(ctx, activityID); err != nil {
		return nil, translateRepoError(err, "failed to find activity")
	}

	png, err := srv.qrcode.GenerateActivityQR(activityID)
	if err != nil {
		return nil, domainerrors.ErrInternalError.WithDetails(err.Error())
	}

	return &usecase.ActivityShare{
		URL: srv.qrcode.ActivityURL(activityID),
		PNG: png,
	}, nil
}
