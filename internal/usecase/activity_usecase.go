package usecase

import (
	"context"
	"time"

	"brightsteps/internal/domain/entity"

	"github.com/google/uuid"
)

// ActivityPage is one page of a filtered activity listing.
type ActivityPage struct {
	Activities []*entity.Activity
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// LogActivityInput records a completed activity. CompletedDate defaults to now.
type LogActivityInput struct {
	CompletedDate *time.Time
	Notes         string
}

// ActivityShare is a printable code for an activity.
type ActivityShare struct {
	URL string
	PNG []byte
}

// ActivityUsecase defines catalog browsing and per-user activity actions.
// A viewer id of uuid.Nil is an anonymous viewer.
type ActivityUsecase interface {
	ListActivities(ctx context.Context, viewerID uuid.UUID, filter entity.ActivityFilter) (*ActivityPage, error)
	GetActivity(ctx context.Context, viewerID, activityID uuid.UUID) (*entity.Activity, error)
	AddFavorite(ctx context.Context, userID, activityID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, activityID uuid.UUID) error
	LogActivity(ctx context.Context, userID, activityID uuid.UUID, input *LogActivityInput) (*entity.HistoryEntry, error)
	ShareActivity(ctx context.Context, activityID uuid.UUID) (*ActivityShare, error)
}
