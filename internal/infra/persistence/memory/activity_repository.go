package memory

import (
	"context"
	"slices"
	"time"

	"brightsteps/internal/domain/entity"
	"brightsteps/internal/domain/repository"

	"github.com/google/uuid"
)

type activityRepository struct {
	store *Store
}

func (r *activityRepository) Create(_ context.Context, activity *entity.Activity) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}
	s.activities[activity.ID] = cloneActivity(activity)

	return nil
}

func (r *activityRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Activity, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	activity, ok := s.activities[id]
	if !ok {
		return nil, repository.ErrActivityNotFound
	}

	return cloneActivity(activity), nil
}

func (r *activityRepository) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*entity.Activity, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make([]*entity.Activity, 0, len(ids))
	for _, id := range ids {
		if activity, ok := s.activities[id]; ok {
			found = append(found, cloneActivity(activity))
		}
	}

	return found, nil
}

func (r *activityRepository) Search(_ context.Context, filter entity.ActivityFilter) ([]*entity.Activity, int64, error) {
	s := r.store
	s.mu.RLock()
	matches := make([]*entity.Activity, 0)
	for _, activity := range s.activities {
		if filter.Matches(activity) {
			matches = append(matches, cloneActivity(activity))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matches, entity.CompareActivities)

	total := int64(len(matches))
	offset := min(filter.Offset(), len(matches))
	end := len(matches)
	if filter.Limit > 0 {
		end = min(offset+filter.Limit, len(matches))
	}

	return matches[offset:end], total, nil
}

func (r *activityRepository) IncrementPopularity(_ context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	activity, ok := s.activities[id]
	if !ok {
		return repository.ErrActivityNotFound
	}
	activity.Popularity++

	return nil
}
