// Package memory is an in-process implementation of the repositories. It backs
// tests and local development; every mutation runs under one lock.
package memory

import (
	"slices"
	"sync"

	"brightsteps/internal/domain/entity"
	"brightsteps/internal/domain/repository"

	"github.com/google/uuid"
)

// Store holds all collections. Values handed out are deep copies.
type Store struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]*entity.User
	emails     map[string]uuid.UUID
	activities map[uuid.UUID]*entity.Activity
	packs      map[uuid.UUID]*entity.ActivityPack
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:      make(map[uuid.UUID]*entity.User),
		emails:     make(map[string]uuid.UUID),
		activities: make(map[uuid.UUID]*entity.Activity),
		packs:      make(map[uuid.UUID]*entity.ActivityPack),
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() repository.UserRepository {
	return &userRepository{store: s}
}

// Activities returns the activity repository view of the store.
func (s *Store) Activities() repository.ActivityRepository {
	return &activityRepository{store: s}
}

// Packs returns the pack repository view of the store.
func (s *Store) Packs() repository.PackRepository {
	return &packRepository{store: s}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.Children = make([]entity.Child, len(u.Children))
	for i, child := range u.Children {
		c.Children[i] = cloneChild(child)
	}
	c.PurchasedPacks = slices.Clone(u.PurchasedPacks)
	c.Favorites = slices.Clone(u.Favorites)
	c.History = slices.Clone(u.History)
	if u.SubscriptionExpiry != nil {
		expiry := *u.SubscriptionExpiry
		c.SubscriptionExpiry = &expiry
	}

	return &c
}

func cloneChild(child entity.Child) entity.Child {
	child.Interests = slices.Clone(child.Interests)
	child.DevelopmentalFocus = slices.Clone(child.DevelopmentalFocus)

	return child
}

func cloneActivity(a *entity.Activity) *entity.Activity {
	c := *a
	c.Materials = slices.Clone(a.Materials)
	c.Steps = slices.Clone(a.Steps)
	c.Images = slices.Clone(a.Images)
	c.DevelopmentalAreas = slices.Clone(a.DevelopmentalAreas)
	c.Tags = slices.Clone(a.Tags)
	if a.PackID != nil {
		packID := *a.PackID
		c.PackID = &packID
	}

	return &c
}

func clonePack(p *entity.ActivityPack) *entity.ActivityPack {
	c := *p
	c.DevelopmentalFocus = slices.Clone(p.DevelopmentalFocus)

	return &c
}
