package mongodb

import (
	"context"
	"time"

	"brightsteps/internal/domain/entity"
	"brightsteps/internal/domain/repository"
	"brightsteps/internal/errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type userRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewUserRepository creates a MongoDB-backed UserRepository.
func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &userRepository{coll: db.Collection(usersCollection), now: time.Now}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	if _, err := r.coll.InsertOne(ctx, toUserDocument(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrEmailTaken
		}

		return errors.Wrap(err, "failed to insert user")
	}

	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.D) (*entity.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	return doc.toDomain(), nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, name, email string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: userID.String()}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "name", Value: name},
			{Key: "email", Value: email},
			{Key: "updatedAt", Value: r.now()},
		}}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrEmailTaken
		}

		return errors.Wrap(err, "failed to update profile")
	}
	if res.MatchedCount == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

func (r *userRepository) AddFavorite(ctx context.Context, userID, activityID uuid.UUID) error {
	aid := activityID.String()

	return r.conditionalPush(ctx, userID,
		bson.E{Key: "favoriteActivities", Value: bson.D{{Key: "$ne", Value: aid}}},
		bson.E{Key: "favoriteActivities", Value: aid},
		repository.ErrDuplicateFavorite,
	)
}

func (r *userRepository) RemoveFavorite(ctx context.Context, userID, activityID uuid.UUID) error {
	return r.update(ctx, userID, bson.D{
		{Key: "$pull", Value: bson.D{{Key: "favoriteActivities", Value: activityID.String()}}},
	})
}

func (r *userRepository) AppendHistory(ctx context.Context, userID uuid.UUID, entry entity.HistoryEntry) error {
	return r.update(ctx, userID, bson.D{
		{Key: "$push", Value: bson.D{{Key: "activityHistory", Value: toHistoryDocument(entry)}}},
	})
}

func (r *userRepository) AddChild(ctx context.Context, userID uuid.UUID, child entity.Child) error {
	return r.update(ctx, userID, bson.D{
		{Key: "$push", Value: bson.D{{Key: "children", Value: toChildDocument(child)}}},
	})
}

func (r *userRepository) UpdateChild(ctx context.Context, userID uuid.UUID, child entity.Child) error {
	doc := toChildDocument(child)
	res, err := r.coll.UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: userID.String()},
			{Key: "children._id", Value: doc.ID},
		},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "children.$.name", Value: doc.Name},
			{Key: "children.$.birthdate", Value: doc.Birthdate},
			{Key: "children.$.interests", Value: doc.Interests},
			{Key: "children.$.developmentalFocus", Value: doc.DevelopmentalFocus},
			{Key: "updatedAt", Value: r.now()},
		}}},
	)
	if err != nil {
		return errors.Wrap(err, "failed to update child")
	}
	if res.MatchedCount == 0 {
		return r.notMatched(ctx, userID, repository.ErrChildNotFound)
	}

	return nil
}

func (r *userRepository) DeleteChild(ctx context.Context, userID, childID uuid.UUID) error {
	cid := childID.String()
	res, err := r.coll.UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: userID.String()},
			{Key: "children._id", Value: cid},
		},
		bson.D{
			{Key: "$pull", Value: bson.D{{Key: "children", Value: bson.D{{Key: "_id", Value: cid}}}}},
			{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: r.now()}}},
		},
	)
	if err != nil {
		return errors.Wrap(err, "failed to delete child")
	}
	if res.MatchedCount == 0 {
		return r.notMatched(ctx, userID, repository.ErrChildNotFound)
	}

	return nil
}

func (r *userRepository) UpdateSubscription(ctx context.Context, userID uuid.UUID, tier entity.SubscriptionTier, expiry *time.Time) error {
	set := bson.D{{Key: "subscription", Value: string(tier)}}
	if expiry != nil {
		set = append(set, bson.E{Key: "subscriptionExpiry", Value: *expiry})
	}

	return r.update(ctx, userID, bson.D{{Key: "$set", Value: set}})
}

func (r *userRepository) AddPurchasedPack(ctx context.Context, userID uuid.UUID, purchase entity.PurchasedPack) error {
	pid := purchase.PackID.String()

	return r.conditionalPush(ctx, userID,
		bson.E{Key: "purchasedPacks.packId", Value: bson.D{{Key: "$ne", Value: pid}}},
		bson.E{Key: "purchasedPacks", Value: purchasedPackDocument{PackID: pid, PurchaseDate: purchase.PurchaseDate}},
		repository.ErrDuplicatePurchase,
	)
}

// update applies an update document to one user and stamps updatedAt.
func (r *userRepository) update(ctx context.Context, userID uuid.UUID, update bson.D) error {
	update = withUpdatedAt(update, r.now())
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: userID.String()}}, update)
	if err != nil {
		return errors.Wrap(err, "failed to update user")
	}
	if res.MatchedCount == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// conditionalPush pushes value only when guard holds, so the membership check and the write are one operation.
func (r *userRepository) conditionalPush(ctx context.Context, userID uuid.UUID, guard, value bson.E, dupErr error) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: userID.String()}, guard},
		bson.D{
			{Key: "$push", Value: bson.D{value}},
			{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: r.now()}}},
		},
	)
	if err != nil {
		return errors.Wrap(err, "failed to update user")
	}
	if res.MatchedCount == 0 {
		return r.notMatched(ctx, userID, dupErr)
	}

	return nil
}

// notMatched tells a missing user apart from a failed guard.
func (r *userRepository) notMatched(ctx context.Context, userID uuid.UUID, guardErr error) error {
	count, err := r.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: userID.String()}})
	if err != nil {
		return errors.Wrap(err, "failed to count user")
	}
	if count == 0 {
		return repository.ErrUserNotFound
	}

	return guardErr
}

func withUpdatedAt(update bson.D, now time.Time) bson.D {
	for i, op := range update {
		if op.Key == "$set" {
			if set, ok := op.Value.(bson.D); ok {
				update[i].Value = append(set, bson.E{Key: "updatedAt", Value: now})

				return update
			}
		}
	}

	return append(update, bson.E{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now}}})
}
