package postgres

import (
	"context"
	"strings"

	"brightsteps/internal/domain/entity"
	"brightsteps/internal/domain/repository"
	"brightsteps/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	activityListingOrder = "popularity DESC, created_at DESC, id ASC"

	// searchDocument concatenates the searchable columns; the 'simple' configuration lowercases without stemming.
	searchDocument = "to_tsvector('simple', title || ' ' || description || ' ' || " +
		"array_to_string(tags, ' ') || ' ' || array_to_string(materials, ' '))"
)

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository is the constructor for activityRepository.
func NewActivityRepository(db *gorm.DB) repository.ActivityRepository {
	return &activityRepository{db: db}
}

func (repo *activityRepository) Create(ctx context.Context, activity *entity.Activity) error {
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}

	return errors.Wrap(repo.db.WithContext(ctx).Create(fromActivityDomain(activity)).Error, "failed to create activity")
}

func (repo *activityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Activity, error) {
	var activityM model.ActivityModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&activityM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrActivityNotFound
		}

		return nil, errors.Wrap(err, "failed to find activity")
	}

	return toActivityDomain(&activityM), nil
}

func (repo *activityRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Activity, error) {
	if len(ids) == 0 {
		return []*entity.Activity{}, nil
	}

	var activityMs []model.ActivityModel
	if err := repo.db.WithContext(ctx).Where("id IN ?", ids).Find(&activityMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find activities")
	}

	return toActivityDomains(activityMs), nil
}

func (repo *activityRepository) Search(ctx context.Context, filter entity.ActivityFilter) ([]*entity.Activity, int64, error) {
	query := applyActivityFilter(repo.db.WithContext(ctx).Model(&model.ActivityModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count activities")
	}

	page := applyActivityFilter(repo.db.WithContext(ctx).Model(&model.ActivityModel{}), filter).Order(activityListingOrder)
	if filter.Limit > 0 {
		page = page.Offset(filter.Offset()).Limit(filter.Limit)
	}

	var activityMs []model.ActivityModel
	if err := page.Find(&activityMs).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to search activities")
	}

	return toActivityDomains(activityMs), total, nil
}

func (repo *activityRepository) IncrementPopularity(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ActivityModel{}).
		Where("id = ?", id).
		UpdateColumn("popularity", gorm.Expr("popularity + ?", 1))
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to increment popularity")
	}
	if result.RowsAffected == 0 {
		return repository.ErrActivityNotFound
	}

	return nil
}

// applyActivityFilter adds one condition per present criterion.
func applyActivityFilter(db *gorm.DB, f entity.ActivityFilter) *gorm.DB {
	if f.FreeOnly {
		db = db.Where("is_premium = ?", false)
	}
	if f.PackID != nil {
		db = db.Where("pack_id = ?", *f.PackID)
	}
	if f.AgeMin != nil {
		db = db.Where("age_max >= ?", *f.AgeMin)
	}
	if f.AgeMax != nil {
		db = db.Where("age_min <= ?", *f.AgeMax)
	}
	if len(f.DevelopmentalAreas) > 0 {
		areas := make([]string, len(f.DevelopmentalAreas))
		for i, a := range f.DevelopmentalAreas {
			areas[i] = string(a)
		}
		db = db.Where("developmental_areas && ?::text[]", pq.StringArray(areas))
	}
	if f.TimeMax != nil {
		db = db.Where("time_required <= ?", *f.TimeMax)
	}
	if len(f.Materials) > 0 {
		db = db.Where("materials @> ?::text[]", pq.StringArray(f.Materials))
	}
	if f.Difficulty != "" {
		db = db.Where("difficulty = ?", string(f.Difficulty))
	}
	if terms := f.SearchTerms(); len(terms) > 0 {
		db = db.Where(searchDocument+" @@ to_tsquery('simple', ?)", strings.Join(terms, " | "))
	}

	return db
}

func toActivityDomains(activityMs []model.ActivityModel) []*entity.Activity {
	activities := make([]*entity.Activity, 0, len(activityMs))
	for i := range activityMs {
		activities = append(activities, toActivityDomain(&activityMs[i]))
	}

	return activities
}

func toActivityDomain(data *model.ActivityModel) *entity.Activity {
	areas := make([]entity.DevelopmentalArea, len(data.DevelopmentalAreas))
	for i, a := range data.DevelopmentalAreas {
		areas[i] = entity.DevelopmentalArea(a)
	}

	return &entity.Activity{
		ID:                 data.ID,
		Title:              data.Title,
		Description:        data.Description,
		AgeRange:           entity.AgeRange{Min: data.AgeMin, Max: data.AgeMax},
		TimeRequired:       data.TimeRequired,
		Materials:          []string(data.Materials),
		Steps:              []string(data.Steps),
		Images:             []string(data.Images),
		DevelopmentalAreas: areas,
		Difficulty:         entity.Difficulty(data.Difficulty),
		IsPremium:          data.IsPremium,
		PackID:             data.PackID,
		Tags:               []string(data.Tags),
		Popularity:         data.Popularity,
		CreatedAt:          data.CreatedAt,
		UpdatedAt:          data.UpdatedAt,
	}
}

func fromActivityDomain(data *entity.Activity) *model.ActivityModel {
	areas := make(pq.StringArray, len(data.DevelopmentalAreas))
	for i, a := range data.DevelopmentalAreas {
		areas[i] = string(a)
	}

	return &model.ActivityModel{
		ID:                 data.ID,
		Title:              data.Title,
		Description:        data.Description,
		AgeMin:             data.AgeRange.Min,
		AgeMax:             data.AgeRange.Max,
		TimeRequired:       data.TimeRequired,
		Materials:          pq.StringArray(nonNil(data.Materials)),
		Steps:              pq.StringArray(nonNil(data.Steps)),
		Images:             pq.StringArray(nonNil(data.Images)),
		DevelopmentalAreas: areas,
		Difficulty:         string(data.Difficulty),
		IsPremium:          data.IsPremium,
		PackID:             data.PackID,
		Tags:               pq.StringArray(nonNil(data.Tags)),
		Popularity:         data.Popularity,
		CreatedAt:          data.CreatedAt,
		UpdatedAt:          data.UpdatedAt,
	}
}
