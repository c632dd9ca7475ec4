package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shop-backend/internal/model"
)

const UsersCollection = "users"

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(UsersCollection)}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.User{}, model.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": objID}, "find user by id")
}

func (r *UserRepository) FindByEmailAndRole(ctx context.Context, email string, role model.Role) (model.User, error) {
	return r.findOne(ctx, bson.M{"email": normalizeEmail(email), "role": role}, "find user by email")
}

func (r *UserRepository) FindByEmailRoleProvider(ctx context.Context, email string, role model.Role, provider string) (model.User, error) {
	return r.findOne(ctx, bson.M{"email": normalizeEmail(email), "role": role, "socialAuth": provider}, "find social user")
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	user.ID = primitive.NewObjectID()
	user.Email = normalizeEmail(user.Email)
	if user.DateCreated.IsZero() {
		user.DateCreated = time.Now().UTC()
	}
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}

	if _, err := r.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.User{}, model.ErrUserAlreadyExists
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) UpdateByID(ctx context.Context, id string, patch model.UserPatch) (model.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.User{}, model.ErrUserNotFound
	}

	set := patchDocument(patch)
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	return r.findOneAndSet(ctx, bson.M{"_id": objID}, set, "update user")
}

func (r *UserRepository) SetVerification(ctx context.Context, id string, code string, status model.Status) (model.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.User{}, model.ErrUserNotFound
	}

	return r.findOneAndSet(ctx, bson.M{"_id": objID}, bson.M{"verificationCode": code, "status": status}, "set verification")
}

func (r *UserRepository) ConsumeVerificationCode(ctx context.Context, code string, role model.Role) (model.User, error) {
	user, err := r.findOneAndSet(ctx,
		bson.M{"verificationCode": code, "role": role},
		bson.M{"verificationCode": "", "status": model.StatusVerified},
		"consume verification code")
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, model.ErrVerificationCodeNotFound
	}
	return user, err
}

func (r *UserRepository) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"role": role})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "dateCreated", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	users := make([]model.User, 0)
	for cur.Next(ctx) {
		var u model.User
		if err := cur.Decode(&u); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, u)
	}
	return users, cur.Err()
}

func (r *UserRepository) Follow(ctx context.Context, followerID string, targetID string) error {
	return r.updateFollow(ctx, followerID, targetID, "$addToSet")
}

func (r *UserRepository) Unfollow(ctx context.Context, followerID string, targetID string) error {
	return r.updateFollow(ctx, followerID, targetID, "$pull")
}

func (r *UserRepository) updateFollow(ctx context.Context, followerID string, targetID string, op string) error {
	follower, err := primitive.ObjectIDFromHex(followerID)
	if err != nil {
		return model.ErrUserNotFound
	}
	target, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return model.ErrUserNotFound
	}

	res, err := r.col.UpdateByID(ctx, target, bson.M{op: bson.M{"followers": follower}})
	if err != nil {
		return fmt.Errorf("update followers: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrUserNotFound
	}

	if _, err := r.col.UpdateByID(ctx, follower, bson.M{op: bson.M{"following": target}}); err != nil {
		return fmt.Errorf("update following: %w", err)
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, op string) (model.User, error) {
	var u model.User
	err := r.col.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (r *UserRepository) findOneAndSet(ctx context.Context, filter bson.M, set bson.M, op string) (model.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var u model.User
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func patchDocument(patch model.UserPatch) bson.M {
	set := bson.M{}
	if patch.FirstName != nil {
		set["firstName"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["lastName"] = *patch.LastName
	}
	if patch.YearOfBirth != nil {
		set["yearOfBirth"] = *patch.YearOfBirth
	}
	if patch.Country != nil {
		set["country"] = *patch.Country
	}
	if patch.City != nil {
		set["city"] = *patch.City
	}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if patch.AvatarURL != nil {
		set["avatarURL"] = *patch.AvatarURL
	}
	if patch.Occupation != nil {
		set["occupation"] = *patch.Occupation
	}
	if patch.Hobby != nil {
		set["hobby"] = *patch.Hobby
	}
	return set
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
