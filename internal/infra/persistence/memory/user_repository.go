package memory

import (
	"context"
	"slices"
	"time"

	"brightsteps/internal/domain/entity"
	"brightsteps/internal/domain/repository"

	"github.com/google/uuid"
)

type userRepository struct {
	store *Store
}

func (r *userRepository) Create(_ context.Context, user *entity.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[user.Email]; taken {
		return repository.ErrEmailTaken
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	s.users[user.ID] = cloneUser(user)
	s.emails[user.Email] = user.ID

	return nil
}

func (r *userRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return cloneUser(user), nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.store.mu.RLock()
	id, ok := r.store.emails[email]
	r.store.mu.RUnlock()
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return r.FindByID(ctx, id)
}

func (r *userRepository) UpdateProfile(_ context.Context, userID uuid.UUID, name, email string) error {
	return r.mutate(userID, func(s *Store, user *entity.User) error {
		if owner, taken := s.emails[email]; taken && owner != userID {
			return repository.ErrEmailTaken
		}
		delete(s.emails, user.Email)
		s.emails[email] = userID
		user.Name = name
		user.Email = email

		return nil
	})
}

func (r *userRepository) AddFavorite(_ context.Context, userID, activityID uuid.UUID) error {
	return r.mutate(userID, func(_ *Store, user *entity.User) error {
		if slices.Contains(user.Favorites, activityID) {
			return repository.ErrDuplicateFavorite
		}
		user.Favorites = append(user.Favorites, activityID)

		return nil
	})
}

func (r *userRepository) RemoveFavorite(_ context.Context, userID, activityID uuid.UUID) error {
	return r.mutate(userID, func(_ *Store, user *entity.User) error {
		user.Favorites = slices.DeleteFunc(user.Favorites, func(id uuid.UUID) bool {
			return id == activityID
		})

		return nil
	})
}

func (r *userRepository) AppendHistory(_ context.Context, userID uuid.UUID, entry entity.HistoryEntry) error {
	return r.mutate(userID, func(_ *Store, user *entity.User) error {
		user.History = append(user.History, entry)

		return nil
	})
}

func (r *userRepository) AddChild(_ context.Context, userID uuid.UUID, child entity.Child) error {
	return r.mutate(userID, func(_ *Store, user *entity.User) error {
		user.Children = append(user.Children, cloneChild(child))

		return nil
	})
}

func (r *userRepository) UpdateChild(_ context.Context, userID uuid.UUID, child entity.Child) error {
	return r.mutate(userID, func(_ *Store, user *entity.User) error {
		stored, ok := user.FindChild(child.ID)
		if !ok {
			return repository.ErrChildNotFound
		}
		createdAt := stored.CreatedAt
		*stored = cloneChild(child)
		stored.CreatedAt = createdAt

		return nil
	})
}

func (r *userRepository) DeleteChild(_ context.Context, userID, childID uuid.UUID) error {
	return r.mutate(userID, func(_ *Store, user *entity.User) error {
		before := len(user.Children)
		user.Children = slices.DeleteFunc(user.Children, func(c entity.Child) bool {
			return c.ID == childID
		})
		if len(user.Children) == before {
			return repository.ErrChildNotFound
		}

		return nil
	})
}

func (r *userRepository) UpdateSubscription(_ context.Context, userID uuid.UUID, tier entity.SubscriptionTier, expiry *time.Time) error {
	return r.mutate(userID, func(_ *Store, user *entity.User) error {
		user.SubscriptionTier = tier
		if expiry != nil {
			e := *expiry
			user.SubscriptionExpiry = &e
		}

		return nil
	})
}

func (r *userRepository) AddPurchasedPack(_ context.Context, userID uuid.UUID, purchase entity.PurchasedPack) error {
	return r.mutate(userID, func(_ *Store, user *entity.User) error {
		if user.HasPurchased(purchase.PackID) {
			return repository.ErrDuplicatePurchase
		}
		user.PurchasedPacks = append(user.PurchasedPacks, purchase)

		return nil
	})
}

// mutate applies fn to the stored user under the write lock. The change is kept only if fn succeeds.
func (r *userRepository) mutate(userID uuid.UUID, fn func(s *Store, user *entity.User) error) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}

	working := cloneUser(stored)
	if err := fn(s, working); err != nil {
		return err
	}
	working.UpdatedAt = time.Now()
	s.users[userID] = working

	return nil
}
