package repository

import (
	"context"
	"errors"

	"brightsteps/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrPackNotFound is returned when no pack has the given id.
var ErrPackNotFound = errors.New("activity pack not found")

// PackRepository defines read access to activity packs.
type PackRepository interface {
	// Create persists a new pack. Used by catalog seeding only.
	Create(ctx context.Context, pack *entity.ActivityPack) error

	// FindByID retrieves a single pack, active or not.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ActivityPack, error)

	// FindByIDs retrieves the packs that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.ActivityPack, error)

	// FindActive lists active packs ordered by title.
	FindActive(ctx context.Context) ([]*entity.ActivityPack, error)
}
