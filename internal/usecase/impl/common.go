// Package impl contains the implementation of the application's business logic.
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
	"brightsteps/internal/errors"
	"brightsteps/internal/usecase"

	"github.com/google/uuid"
)

// translateRepoError maps repository sentinels onto the application error taxonomy.
// Anything unrecognised is a server fault carrying the operation name.
func translateRepoError(err error, operation string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return domainerrors.ErrUserNotFound
	case errors.Is(err, repository.ErrActivityNotFound):
		return domainerrors.ErrActivityNotFound
	case errors.Is(err, repository.ErrPackNotFound):
		return domainerrors.ErrPackNotFound
	case errors.Is(err, repository.ErrChildNotFound):
		return domainerrors.ErrChildNotFound
	case errors.Is(err, repository.ErrEmailTaken):
		return domainerrors.ErrUserAlreadyExists
	case errors.Is(err, repository.ErrDuplicateFavorite):
		return domainerrors.ErrAlreadyFavorited
	case errors.Is(err, repository.ErrDuplicatePurchase):
		return domainerrors.ErrPackAlreadyPurchased
	}

	if _, ok := errors.AsType[domainerrors.AppError](err); ok {
		return err
	}

	return domainerrors.NewDatabaseExecuteError(err, operation)
}

// loadViewer returns nil for an anonymous viewer.
func loadViewer(ctx context.Context, users repository.UserRepository, viewerID uuid.UUID) (*entity.User, error) {
	if viewerID == uuid.Nil {
		return nil, nil
	}

	user, err := users.FindByID(ctx, viewerID)
	if err != nil {
		return nil, translateRepoError(err, "failed to load viewer")
	}

	return user, nil
}

// libraryActivity wraps an activity for favorites and history, stripping content the user can no longer open.
func libraryActivity(user *entity.User, activity *entity.Activity, now time.Time) *usecase.LibraryActivity {
	if policy.CanViewActivity(user, activity, now) {
		return &usecase.LibraryActivity{Activity: activity}
	}

	locked := *activity
	locked.Steps = nil
	locked.Materials = nil
	locked.Images = nil

	return &usecase.LibraryActivity{Activity: &locked, Locked: true}
}

// publishEvent announces a stored change. Publish failures are logged, not returned.
func publishEvent(ctx context.Context, events service.EventPublisher, logger *slog.Logger, event *service.DomainEvent) {
	event.EventID = uuid.NewString()
	event.RequestID = deliverycontext.GetRequestIDFromContext(ctx)

	if err := events.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			slog.String("type", event.Type),
			slog.String("event_id", event.EventID),
			slog.Any("error", err),
		)
	}
}
