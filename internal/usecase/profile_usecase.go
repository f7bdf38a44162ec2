package usecase

import (
	"context"
	"time"

	"brightsteps/internal/domain/entity"

	"github.com/google/uuid"
)

// ProfileUsecase defines the operations a user performs on their own account.
type ProfileUsecase interface {
	UpdateProfile(ctx context.Context, userID uuid.UUID, input *UpdateProfileInput) (*entity.User, error)

	AddChild(ctx context.Context, userID uuid.UUID, input *AddChildInput) (*entity.Child, error)
	UpdateChild(ctx context.Context, userID, childID uuid.UUID, input *UpdateChildInput) (*entity.Child, error)
	DeleteChild(ctx context.Context, userID, childID uuid.UUID) error

	GetFavorites(ctx context.Context, userID uuid.UUID) ([]*LibraryActivity, error)
	GetHistory(ctx context.Context, userID uuid.UUID) ([]*HistoryItem, error)

	UpdateSubscription(ctx context.Context, userID uuid.UUID, input *UpdateSubscriptionInput) (*entity.User, error)
	PurchasePack(ctx context.Context, userID, packID uuid.UUID) (*PurchasedPackItem, error)
	GetPurchasedPacks(ctx context.Context, userID uuid.UUID) ([]*PurchasedPackItem, error)
}

// --- Input DTOs ---

// UpdateProfileInput carries the fields to change. Nil fields are kept.
type UpdateProfileInput struct {
	Name  *string
	Email *string
}

// AddChildInput defines a new child profile.
type AddChildInput struct {
	Name               string
	Birthdate          time.Time
	Interests          []string
	DevelopmentalFocus []string
}

// UpdateChildInput carries the child fields to change. Nil fields are kept.
type UpdateChildInput struct {
	Name               *string
	Birthdate          *time.Time
	Interests          *[]string
	DevelopmentalFocus *[]string
}

// UpdateSubscriptionInput sets the tier. Without an expiry a paid tier runs for the configured period.
type UpdateSubscriptionInput struct {
	Tier   string
	Expiry *time.Time
}

// --- Output DTOs ---

// LibraryActivity is an activity in a user's favorites or history. Locked activities
// are no longer accessible to the user and carry no steps or materials.
type LibraryActivity struct {
	Activity *entity.Activity
	Locked   bool
}

// HistoryItem is a history entry with its activity, if it still exists.
type HistoryItem struct {
	Entry    entity.HistoryEntry
	Activity *LibraryActivity
}

// PurchasedPackItem is an owned pack with its purchase date.
type PurchasedPackItem struct {
	Pack         *entity.ActivityPack
	PurchaseDate time.Time
}
