package mongodb

import (
	"context"

	"brightsteps/internal/domain/entity"
	"brightsteps/internal/domain/repository"
	"brightsteps/internal/errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type activityRepository struct {
	coll *mongo.Collection
}

// NewActivityRepository creates a MongoDB-backed ActivityRepository.
func NewActivityRepository(db *mongo.Database) repository.ActivityRepository {
	return &activityRepository{coll: db.Collection(activitiesCollection)}
}

func (r *activityRepository) Create(ctx context.Context, activity *entity.Activity) error {
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}

	_, err := r.coll.InsertOne(ctx, toActivityDocument(activity))

	return errors.Wrap(err, "failed to insert activity")
}

func (r *activityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Activity, error) {
	var doc activityDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrActivityNotFound
		}

		return nil, errors.Wrap(err, "failed to find activity")
	}

	return doc.toDomain(), nil
}

func (r *activityRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Activity, error) {
	if len(ids) == 0 {
		return []*entity.Activity{}, nil
	}

	return r.find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: idStrings(ids)}}}}, options.Find())
}

func (r *activityRepository) Search(ctx context.Context, filter entity.ActivityFilter) ([]*entity.Activity, int64, error) {
	query := buildActivityFilter(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to count activities")
	}

	opts := options.Find().SetSort(listingSort)
	if filter.Limit > 0 {
		opts.SetSkip(int64(filter.Offset())).SetLimit(int64(filter.Limit))
	}

	activities, err := r.find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}

	return activities, total, nil
}

func (r *activityRepository) IncrementPopularity(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id.String()}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "popularity", Value: 1}}}},
	)
	if err != nil {
		return errors.Wrap(err, "failed to increment popularity")
	}
	if res.MatchedCount == 0 {
		return repository.ErrActivityNotFound
	}

	return nil
}

func (r *activityRepository) find(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]*entity.Activity, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query activities")
	}

	var docs []activityDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "failed to decode activities")
	}

	activities := make([]*entity.Activity, 0, len(docs))
	for i := range docs {
		activities = append(activities, docs[i].toDomain())
	}

	return activities, nil
}
