package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shop-backend/internal/model"
)

const CommentsCollection = "comments"

type CommentRepository struct {
	col *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{col: db.Collection(CommentsCollection)}
}

func (r *CommentRepository) Create(ctx context.Context, comment model.Comment) (model.Comment, error) {
	comment.ID = primitive.NewObjectID()
	if comment.Created.IsZero() {
		comment.Created = time.Now().UTC()
	}
	if comment.Likes == nil {
		comment.Likes = map[string]bool{}
	}

	if _, err := r.col.InsertOne(ctx, comment); err != nil {
		return model.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id string) (model.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Comment{}, model.ErrCommentNotFound
	}

	var c model.Comment
	err = r.col.FindOne(ctx, bson.M{"_id": objID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Comment{}, model.ErrCommentNotFound
	}
	if err != nil {
		return model.Comment{}, fmt.Errorf("find comment: %w", err)
	}
	return c, nil
}

func (r *CommentRepository) ListTopLevel(ctx context.Context, offset int64, limit int64) ([]model.Comment, int64, error) {
	if offset < 0 {
		offset = 0
	}
	filter := bson.M{"answerTo": bson.M{"$exists": false}}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)
	comments, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *CommentRepository) Replies(ctx context.Context, parentID string) ([]model.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(parentID)
	if err != nil {
		return nil, model.ErrCommentNotFound
	}

	return r.find(ctx, bson.M{"answerTo": objID}, options.Find().SetSort(bson.D{{Key: "created", Value: 1}}))
}

func (r *CommentRepository) SetLike(ctx context.Context, id string, userID string, liked bool) (model.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Comment{}, model.ErrCommentNotFound
	}

	update := bson.M{"$set": bson.M{"likes." + userID: true}}
	if !liked {
		update = bson.M{"$unset": bson.M{"likes." + userID: ""}}
	}

	var c model.Comment
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Comment{}, model.ErrCommentNotFound
	}
	if err != nil {
		return model.Comment{}, fmt.Errorf("set comment like: %w", err)
	}
	return c, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.ErrCommentNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return model.ErrCommentNotFound
	}

	if _, err := r.col.DeleteMany(ctx, bson.M{"answerTo": objID}); err != nil {
		return fmt.Errorf("delete comment replies: %w", err)
	}
	return nil
}

func (r *CommentRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Comment, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find comments: %w", err)
	}
	defer cur.Close(ctx)

	comments := make([]model.Comment, 0)
	for cur.Next(ctx) {
		var c model.Comment
		if err := cur.Decode(&c); err != nil {
			return nil, fmt.Errorf("decode comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, cur.Err()
}
