// Package mongodb implements the repositories on MongoDB. Users are single documents
// with embedded children, favorites, history and purchases.
package mongodb

import (
	"context"
	"log/slog"

	"brightsteps/config"
	"brightsteps/internal/domain/lifecycle"
	"brightsteps/internal/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
)

const (
	usersCollection      = "users"
	activitiesCollection = "activities"
	packsCollection      = "activitypacks"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New creates the MongoDB client and returns the application database.
// Connectivity is verified and indexes are ensured when the fx app starts.
func New(params Params) (*mongo.Database, error) {
	cfg := params.Config.Mongo
	if cfg == nil || cfg.URI == "" {
		return nil, errors.New("mongo.uri is required for the mongo storage driver")
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = lifecycle.DefaultTimeout
	}

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(timeout).
		SetAppName(params.Config.Env.ServiceName)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create MongoDB client")
	}

	database := cfg.Database
	if database == "" {
		database = params.Config.Env.ServiceName
	}
	db := client.Database(database)

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, timeout)
			defer cancel()

			if err := client.Ping(ctx, nil); err != nil {
				return errors.Wrap(err, "failed to ping MongoDB")
			}
			if err := EnsureIndexes(ctx, db); err != nil {
				return err
			}
			params.Logger.Info("Connected to MongoDB", slog.String("database", database))

			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			ctx, cancel := context.WithTimeout(stopCtx, lifecycle.DefaultTimeout)
			defer cancel()

			return errors.Wrap(client.Disconnect(ctx), "failed to disconnect MongoDB")
		},
	})

	return db, nil
}

// EnsureIndexes creates the indexes the repositories rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email_unique").SetUnique(true),
	}); err != nil {
		return errors.Wrap(err, "failed to create users indexes")
	}

	if _, err := db.Collection(activitiesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "tags", Value: "text"},
				{Key: "materials", Value: "text"},
			},
			// "none" disables stemming and stop words so terms match whole words only
			Options: options.Index().SetName("activity_text").SetDefaultLanguage("none"),
		},
		{
			Keys: bson.D{
				{Key: "popularity", Value: -1},
				{Key: "createdAt", Value: -1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("activity_listing_order"),
		},
		{
			Keys:    bson.D{{Key: "packId", Value: 1}},
			Options: options.Index().SetName("activity_pack"),
		},
	}); err != nil {
		return errors.Wrap(err, "failed to create activities indexes")
	}

	if _, err := db.Collection(packsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "isActive", Value: 1}, {Key: "title", Value: 1}},
		Options: options.Index().SetName("pack_active_title"),
	}); err != nil {
		return errors.Wrap(err, "failed to create packs indexes")
	}

	return nil
}
