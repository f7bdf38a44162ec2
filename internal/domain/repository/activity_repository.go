package repository

import (
	"context"
	"errors"

	"brightsteps/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrActivityNotFound is returned when no activity has the given id.
var ErrActivityNotFound = errors.New("activity not found")

// ActivityRepository defines read access to the activity catalog.
type ActivityRepository interface {
	// Create persists a new activity. Used by catalog seeding only.
	Create(ctx context.Context, activity *entity.Activity) error

	// FindByID retrieves a single activity.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Activity, error)

	// FindByIDs retrieves the activities that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Activity, error)

	// Search returns one page of matches ordered by popularity desc, creation time desc, id asc,
	// along with the total number of matches.
	Search(ctx context.Context, filter entity.ActivityFilter) ([]*entity.Activity, int64, error)

	// IncrementPopularity atomically adds one to the popularity counter.
	IncrementPopularity(ctx context.Context, id uuid.UUID) error
}
