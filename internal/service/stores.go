package service

import (
	"context"
	"time"

	"shop-backend/internal/model"
)

// UserStore is the credential store. Lookups that miss return
// model.ErrUserNotFound; Create returns model.ErrUserAlreadyExists when the
// (email, role) pair is taken.
type UserStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmailAndRole(ctx context.Context, email string, role model.Role) (model.User, error)
	FindByEmailRoleProvider(ctx context.Context, email string, role model.Role, provider string) (model.User, error)
	Create(ctx context.Context, user model.User) (model.User, error)
	UpdateByID(ctx context.Context, id string, patch model.UserPatch) (model.User, error)
	SetVerification(ctx context.Context, id string, code string, status model.Status) (model.User, error)
	ConsumeVerificationCode(ctx context.Context, code string, role model.Role) (model.User, error)
	CountByRole(ctx context.Context, role model.Role) (int64, error)
	List(ctx context.Context) ([]model.User, error)
	Follow(ctx context.Context, followerID string, targetID string) error
	Unfollow(ctx context.Context, followerID string, targetID string) error
}

// SessionStore holds one document per live login. Consume is the rotation
// primitive: it removes the session only if it exists and belongs to userID,
// and at most one concurrent caller observes success.
type SessionStore interface {
	Create(ctx context.Context, userID string, expiresAt time.Time) (model.Session, error)
	FindByID(ctx context.Context, id string) (model.Session, error)
	Consume(ctx context.Context, id string, userID string) (model.Session, error)
	Delete(ctx context.Context, id string) error
}

type CommentStore interface {
	Create(ctx context.Context, comment model.Comment) (model.Comment, error)
	FindByID(ctx context.Context, id string) (model.Comment, error)
	ListTopLevel(ctx context.Context, offset int64, limit int64) ([]model.Comment, int64, error)
	Replies(ctx context.Context, parentID string) ([]model.Comment, error)
	SetLike(ctx context.Context, id string, userID string, liked bool) (model.Comment, error)
	Delete(ctx context.Context, id string) error
}

type AuditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error)
}

// AvatarStore persists processed images and returns the URL they are served from.
type AvatarStore interface {
	Put(ctx context.Context, key string, contentType string, data []byte) (string, error)
}

type Mailer interface {
	SendVerificationCode(ctx context.Context, email string, code string) error
}
