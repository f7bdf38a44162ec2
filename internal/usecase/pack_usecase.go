package usecase

import (
	"context"

	"brightsteps/internal/domain/entity"

	"github.com/google/uuid"
)

// PackUsecase defines activity pack browsing.
type PackUsecase interface {
	ListPacks(ctx context.Context) ([]*entity.ActivityPack, error)
	GetPack(ctx context.Context, packID uuid.UUID) (*entity.ActivityPack, error)

	// ListPackActivities returns every activity of the pack, ordered like the catalog listing.
	// Free viewers must own the pack.
	ListPackActivities(ctx context.Context, userID, packID uuid.UUID) ([]*entity.Activity, error)
}
