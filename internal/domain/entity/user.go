// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// User is the account holder. Children, favorites, history and purchases are owned
// sub-records that only change through the user's own operations.
type User struct {
	ID                 uuid.UUID
	Email              string // Stored normalized (trimmed, lower case)
	PasswordHash       string
	Name               string
	Children           []Child
	SubscriptionTier   SubscriptionTier
	SubscriptionExpiry *time.Time
	PurchasedPacks     []PurchasedPack
	Favorites          []uuid.UUID
	History            []HistoryEntry
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Child is a profile owned by exactly one user.
type Child struct {
	ID                 uuid.UUID
	Name               string
	Birthdate          time.Time
	Interests          []string
	DevelopmentalFocus []string
	CreatedAt          time.Time
}

// HistoryEntry records one completion of an activity. Entries are never deduplicated.
type HistoryEntry struct {
	ID            uuid.UUID
	ActivityID    uuid.UUID
	CompletedDate time.Time
	Notes         string
}

// PurchasedPack records ownership of an activity pack.
type PurchasedPack struct {
	PackID       uuid.UUID
	PurchaseDate time.Time
}

// HasFavorite reports whether the activity is already a favorite.
func (u *User) HasFavorite(activityID uuid.UUID) bool {
	return slices.Contains(u.Favorites, activityID)
}

// HasPurchased reports whether the pack is in the user's purchased set.
func (u *User) HasPurchased(packID uuid.UUID) bool {
	return slices.ContainsFunc(u.PurchasedPacks, func(p PurchasedPack) bool {
		return p.PackID == packID
	})
}

// FindChild looks the child up inside this user's own collection.
func (u *User) FindChild(childID uuid.UUID) (*Child, bool) {
	for i := range u.Children {
		if u.Children[i].ID == childID {
			return &u.Children[i], true
		}
	}

	return nil, false
}
