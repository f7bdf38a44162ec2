package postgres

import (
	"context"

	"brightsteps/internal/domain/entity"
	"brightsteps/internal/domain/repository"
	"brightsteps/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type packRepository struct {
	db *gorm.DB
}

// NewPackRepository is the constructor for packRepository.
func NewPackRepository(db *gorm.DB) repository.PackRepository {
	return &packRepository{db: db}
}

func (repo *packRepository) Create(ctx context.Context, pack *entity.ActivityPack) error {
	if pack.ID == uuid.Nil {
		pack.ID = uuid.New()
	}

	return errors.Wrap(repo.db.WithContext(ctx).Create(fromPackDomain(pack)).Error, "failed to create activity pack")
}

func (repo *packRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ActivityPack, error) {
	var packM model.ActivityPackModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&packM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPackNotFound
		}

		return nil, errors.Wrap(err, "failed to find activity pack")
	}

	return toPackDomain(&packM), nil
}

func (repo *packRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.ActivityPack, error) {
	if len(ids) == 0 {
		return []*entity.ActivityPack{}, nil
	}

	var packMs []model.ActivityPackModel
	if err := repo.db.WithContext(ctx).Where("id IN ?", ids).Find(&packMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find activity packs")
	}

	return toPackDomains(packMs), nil
}

func (repo *packRepository) FindActive(ctx context.Context) ([]*entity.ActivityPack, error) {
	var packMs []model.ActivityPackModel
	if err := repo.db.WithContext(ctx).Where("is_active = ?", true).Order("title ASC, id ASC").Find(&packMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list activity packs")
	}

	return toPackDomains(packMs), nil
}

func toPackDomains(packMs []model.ActivityPackModel) []*entity.ActivityPack {
	packs := make([]*entity.ActivityPack, 0, len(packMs))
	for i := range packMs {
		packs = append(packs, toPackDomain(&packMs[i]))
	}

	return packs
}

func toPackDomain(data *model.ActivityPackModel) *entity.ActivityPack {
	focus := make([]entity.DevelopmentalArea, len(data.DevelopmentalFocus))
	for i, a := range data.DevelopmentalFocus {
		focus[i] = entity.DevelopmentalArea(a)
	}

	return &entity.ActivityPack{
		ID:                 data.ID,
		Title:              data.Title,
		Description:        data.Description,
		Price:              data.Price,
		CoverImage:         data.CoverImage,
		Theme:              data.Theme,
		AgeRange:           entity.AgeRange{Min: data.AgeMin, Max: data.AgeMax},
		DevelopmentalFocus: focus,
		ActivityCount:      data.ActivityCount,
		IsActive:           data.IsActive,
		CreatedAt:          data.CreatedAt,
		UpdatedAt:          data.UpdatedAt,
	}
}

func fromPackDomain(data *entity.ActivityPack) *model.ActivityPackModel {
	focus := make(pq.StringArray, len(data.DevelopmentalFocus))
	for i, a := range data.DevelopmentalFocus {
		focus[i] = string(a)
	}

	return &model.ActivityPackModel{
		ID:                 data.ID,
		Title:              data.Title,
		Description:        data.Description,
		Price:              data.Price,
		CoverImage:         data.CoverImage,
		Theme:              data.Theme,
		AgeMin:             data.AgeRange.Min,
		AgeMax:             data.AgeRange.Max,
		DevelopmentalFocus: focus,
		ActivityCount:      data.ActivityCount,
		IsActive:           data.IsActive,
		CreatedAt:          data.CreatedAt,
		UpdatedAt:          data.UpdatedAt,
	}
}
