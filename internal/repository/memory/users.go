// Package memory holds process-local implementations of the stores. The
// server falls back to them when no MongoDB URL is configured, and tests use
// them to exercise services without a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-backend/internal/model"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]model.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: map[primitive.ObjectID]model.User{}}
}

func (r *UserRepository) FindByID(_ context.Context, id string) (model.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.User{}, model.ErrUserNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[objID]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByEmailAndRole(_ context.Context, email string, role model.Role) (model.User, error) {
	return r.findFirst(func(u model.User) bool {
		return u.Email == normalizeEmail(email) && u.Role == role
	})
}

func (r *UserRepository) FindByEmailRoleProvider(_ context.Context, email string, role model.Role, provider string) (model.User, error) {
	return r.findFirst(func(u model.User) bool {
		return u.Email == normalizeEmail(email) && u.Role == role && u.SocialAuth == provider
	})
}

func (r *UserRepository) Create(_ context.Context, user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = normalizeEmail(user.Email)
	for _, existing := range r.users {
		if existing.Email == user.Email && existing.Role == user.Role {
			return model.User{}, model.ErrUserAlreadyExists
		}
	}

	user.ID = primitive.NewObjectID()
	if user.DateCreated.IsZero() {
		user.DateCreated = time.Now().UTC()
	}
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *UserRepository) UpdateByID(_ context.Context, id string, patch model.UserPatch) (model.User, error) {
	return r.mutate(id, func(u *model.User) { patch.Apply(u) })
}

func (r *UserRepository) SetVerification(_ context.Context, id string, code string, status model.Status) (model.User, error) {
	return r.mutate(id, func(u *model.User) {
		u.VerificationCode = code
		u.Status = status
	})
}

func (r *UserRepository) ConsumeVerificationCode(_ context.Context, code string, role model.Role) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, u := range r.users {
		if code == "" || u.VerificationCode != code || u.Role != role {
			continue
		}
		u.VerificationCode = ""
		u.Status = model.StatusVerified
		r.users[id] = u
		return cloneUser(u), nil
	}
	return model.User{}, model.ErrVerificationCodeNotFound
}

func (r *UserRepository) CountByRole(_ context.Context, role model.Role) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, u := range r.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

func (r *UserRepository) List(_ context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, cloneUser(u))
	}
	sort.Slice(users, func(i int, j int) bool {
		return users[i].DateCreated.Before(users[j].DateCreated)
	})
	return users, nil
}

func (r *UserRepository) Follow(_ context.Context, followerID string, targetID string) error {
	return r.updateFollow(followerID, targetID, true)
}

func (r *UserRepository) Unfollow(_ context.Context, followerID string, targetID string) error {
	return r.updateFollow(followerID, targetID, false)
}

func (r *UserRepository) updateFollow(followerID string, targetID string, follow bool) error {
	follower, err := primitive.ObjectIDFromHex(followerID)
	if err != nil {
		return model.ErrUserNotFound
	}
	target, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return model.ErrUserNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	targetUser, ok := r.users[target]
	if !ok {
		return model.ErrUserNotFound
	}
	followerUser, ok := r.users[follower]
	if !ok {
		return model.ErrUserNotFound
	}

	if follow {
		targetUser.Followers = addID(targetUser.Followers, follower)
		followerUser.Following = addID(followerUser.Following, target)
	} else {
		targetUser.Followers = removeID(targetUser.Followers, follower)
		followerUser.Following = removeID(followerUser.Following, target)
	}
	r.users[target] = targetUser
	r.users[follower] = followerUser
	return nil
}

func (r *UserRepository) findFirst(match func(model.User) bool) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (r *UserRepository) mutate(id string, apply func(*model.User)) (model.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.User{}, model.ErrUserNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[objID]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	apply(&u)
	r.users[objID] = u
	return cloneUser(u), nil
}

func cloneUser(u model.User) model.User {
	u.Followers = append([]primitive.ObjectID{}, u.Followers...)
	u.Following = append([]primitive.ObjectID{}, u.Following...)
	return u
}

func addID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
