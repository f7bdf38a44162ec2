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

type packRepository struct {
	coll *mongo.Collection
}

// NewPackRepository creates a MongoDB-backed PackRepository.
func NewPackRepository(db *mongo.Database) repository.PackRepository {
	return &packRepository{coll: db.Collection(packsCollection)}
}

func (r *packRepository) Create(ctx context.Context, pack *entity.ActivityPack) error {
	if pack.ID == uuid.Nil {
		pack.ID = uuid.New()
	}

	_, err := r.coll.InsertOne(ctx, toPackDocument(pack))

	return errors.Wrap(err, "failed to insert activity pack")
}

func (r *packRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ActivityPack, error) {
	var doc packDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrPackNotFound
		}

		return nil, errors.Wrap(err, "failed to find activity pack")
	}

	return doc.toDomain(), nil
}

func (r *packRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.ActivityPack, error) {
	if len(ids) == 0 {
		return []*entity.ActivityPack{}, nil
	}

	return r.find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: idStrings(ids)}}}}, options.Find())
}

func (r *packRepository) FindActive(ctx context.Context) ([]*entity.ActivityPack, error) {
	opts := options.Find().SetSort(bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}})

	return r.find(ctx, bson.D{{Key: "isActive", Value: true}}, opts)
}

func (r *packRepository) find(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]*entity.ActivityPack, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query activity packs")
	}

	var docs []packDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "failed to decode activity packs")
	}

	packs := make([]*entity.ActivityPack, 0, len(docs))
	for i := range docs {
		packs = append(packs, docs[i].toDomain())
	}

	return packs, nil
}
