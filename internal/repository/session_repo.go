package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"shop-backend/internal/model"
)

const SessionsCollection = "sessions"

type SessionRepository struct {
	col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{col: db.Collection(SessionsCollection)}
}

func (r *SessionRepository) Create(ctx context.Context, userID string, expiresAt time.Time) (model.Session, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return model.Session{}, model.ErrUserNotFound
	}

	session := model.Session{
		ID:        primitive.NewObjectID(),
		UserID:    uid,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, session); err != nil {
		return model.Session{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (model.Session, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Session{}, model.ErrSessionNotFound
	}

	var s model.Session
	err = r.col.FindOne(ctx, bson.M{"_id": objID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Session{}, model.ErrSessionNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("find session: %w", err)
	}
	return s, nil
}

// Consume deletes the session in one FindOneAndDelete so two concurrent
// refreshes of the same token cannot both succeed.
func (r *SessionRepository) Consume(ctx context.Context, id string, userID string) (model.Session, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Session{}, model.ErrSessionNotFound
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return model.Session{}, model.ErrSessionNotFound
	}

	var s model.Session
	err = r.col.FindOneAndDelete(ctx, bson.M{"_id": objID, "uid": uid}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Session{}, model.ErrSessionNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("consume session: %w", err)
	}
	return s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.ErrSessionNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if res.DeletedCount == 0 {
		return model.ErrSessionNotFound
	}
	return nil
}
