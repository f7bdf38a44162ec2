package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"brightsteps/internal/domain/entity"
	"brightsteps/internal/domain/repository"

	"github.com/google/uuid"
)

type packRepository struct {
	store *Store
}

func (r *packRepository) Create(_ context.Context, pack *entity.ActivityPack) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if pack.ID == uuid.Nil {
		pack.ID = uuid.New()
	}
	if pack.CreatedAt.IsZero() {
		pack.CreatedAt = time.Now()
	}
	s.packs[pack.ID] = clonePack(pack)

	return nil
}

func (r *packRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.ActivityPack, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	pack, ok := s.packs[id]
	if !ok {
		return nil, repository.ErrPackNotFound
	}

	return clonePack(pack), nil
}

func (r *packRepository) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*entity.ActivityPack, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make([]*entity.ActivityPack, 0, len(ids))
	for _, id := range ids {
		if pack, ok := s.packs[id]; ok {
			found = append(found, clonePack(pack))
		}
	}

	return found, nil
}

func (r *packRepository) FindActive(_ context.Context) ([]*entity.ActivityPack, error) {
	s := r.store
	s.mu.RLock()
	active := make([]*entity.ActivityPack, 0, len(s.packs))
	for _, pack := range s.packs {
		if pack.IsActive {
			active = append(active, clonePack(pack))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(active, func(a, b *entity.ActivityPack) int {
		if c := strings.Compare(a.Title, b.Title); c != 0 {
			return c
		}

		return strings.Compare(a.ID.String(), b.ID.String())
	})

	return active, nil
}
