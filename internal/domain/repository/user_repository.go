// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"
	"time"

	"brightsteps/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is returned when no user has the given id or email.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when another user already owns the email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrChildNotFound is returned when the child is not in the user's own collection.
	ErrChildNotFound = errors.New("child not found")

	// ErrDuplicateFavorite is returned when the activity is already a favorite.
	ErrDuplicateFavorite = errors.New("activity already favorited")

	// ErrDuplicatePurchase is returned when the pack is already purchased.
	ErrDuplicatePurchase = errors.New("pack already purchased")
)

// UserRepository persists users together with their owned sub-records.
// Each mutation is applied atomically to a single user; callers never write the whole aggregate back.
type UserRepository interface {
	// Create persists a new user. Returns ErrEmailTaken if the email is in use.
	Create(ctx context.Context, user *entity.User) error

	// FindByID retrieves a user with all sub-records.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a user by normalized email.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// UpdateProfile sets name and email. Returns ErrEmailTaken if the email belongs to another user.
	UpdateProfile(ctx context.Context, userID uuid.UUID, name, email string) error

	// AddFavorite appends activityID unless present, in which case ErrDuplicateFavorite is returned.
	AddFavorite(ctx context.Context, userID, activityID uuid.UUID) error

	// RemoveFavorite removes activityID if present. Absent favorites are not an error.
	RemoveFavorite(ctx context.Context, userID, activityID uuid.UUID) error

	// AppendHistory appends an entry. Entries are never deduplicated.
	AppendHistory(ctx context.Context, userID uuid.UUID, entry entity.HistoryEntry) error

	// AddChild appends a child profile.
	AddChild(ctx context.Context, userID uuid.UUID, child entity.Child) error

	// UpdateChild replaces the stored fields of a child owned by the user.
	UpdateChild(ctx context.Context, userID uuid.UUID, child entity.Child) error

	// DeleteChild removes a child owned by the user.
	DeleteChild(ctx context.Context, userID, childID uuid.UUID) error

	// UpdateSubscription sets the tier. A nil expiry leaves the stored expiry unchanged.
	UpdateSubscription(ctx context.Context, userID uuid.UUID, tier entity.SubscriptionTier, expiry *time.Time) error

	// AddPurchasedPack records a purchase unless the pack is already owned (ErrDuplicatePurchase).
	AddPurchasedPack(ctx context.Context, userID uuid.UUID, purchase entity.PurchasedPack) error
}
