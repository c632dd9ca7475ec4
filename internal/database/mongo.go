package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo owns the client for the document store that holds users, sessions
// and comments.
type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongo(ctx context.Context, uri string, dbName string) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	slog.Info("mongo connected", "database", dbName)
	return &Mongo{Client: client, Database: client.Database(dbName)}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return nil
	}
	return m.Client.Disconnect(ctx)
}

func (m *Mongo) Health(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the indexes the stores rely on. The unique
// (email, role) index backs duplicate detection on sign-up, and the TTL index
// on sessions.expiresAt removes sessions whose refresh token has lapsed.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		"users": {
			{
				Keys:    bson.D{{Key: "email", Value: 1}, {Key: "role", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("email_role_unique"),
			},
			{
				Keys:    bson.D{{Key: "verificationCode", Value: 1}},
				Options: options.Index().SetSparse(true).SetName("verification_code"),
			},
		},
		"sessions": {
			{
				Keys:    bson.D{{Key: "uid", Value: 1}},
				Options: options.Index().SetName("uid"),
			},
			{
				Keys:    bson.D{{Key: "expiresAt", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
			},
		},
		"comments": {
			{
				Keys:    bson.D{{Key: "answerTo", Value: 1}, {Key: "created", Value: -1}},
				Options: options.Index().SetName("answer_to_created"),
			},
		},
	}

	for collection, models := range indexes {
		if _, err := m.Database.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", collection, err)
		}
	}

	slog.Info("mongo indexes ensured")
	return nil
}
