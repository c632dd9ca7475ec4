package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"shop-backend/internal/media"
	"shop-backend/internal/model"
	"shop-backend/internal/util"
	"shop-backend/pkg/apierror"
)

type UserService struct {
	users   UserStore
	avatars AvatarStore
	audit   *AuditService
}

func NewUserService(users UserStore, avatars AvatarStore, audit *AuditService) *UserService {
	return &UserService{users: users, avatars: avatars, audit: audit}
}

func (s *UserService) Current(ctx context.Context, claims *model.AuthClaims) (model.PublicUser, error) {
	if claims == nil {
		return model.PublicUser{}, apierror.Unauthorized("authentication required")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *UserService) CustomerInfo(ctx context.Context, claims *model.AuthClaims) (model.PublicUser, error) {
	if claims == nil {
		return model.PublicUser{}, apierror.Unauthorized("authentication required")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, model.ErrUserNotFound) || (err == nil && user.Role != model.RoleCustomer) {
		return model.PublicUser{}, apierror.BadRequest("customer was not found", "")
	}
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

// Update applies a profile patch. Each uploaded picture is stored as a
// 320x240 JPEG and the first one becomes the avatar. Callers may edit only
// their own profile unless they are admins.
func (s *UserService) Update(ctx context.Context, actor *model.AuthClaims, id string, req model.UpdateUserRequest, files []model.UploadedFile) (model.PublicUser, error) {
	if actor == nil {
		return model.PublicUser{}, apierror.Unauthorized("authentication required")
	}
	if actor.UserID != id && actor.Role != model.RoleAdmin {
		return model.PublicUser{}, apierror.Forbidden("cannot update another user's profile")
	}
	if err := util.ValidateStruct(req); err != nil {
		return model.PublicUser{}, err
	}

	patch := req.Patch()
	if patch.Empty() && len(files) == 0 {
		return model.PublicUser{}, apierror.BadRequest("nothing to update", "")
	}

	if _, err := s.users.FindByID(ctx, id); err != nil {
		return model.PublicUser{}, err
	}

	auditActor := model.AuditActor{UserID: actor.UserID, Email: actor.Email, Role: string(actor.Role)}

	urls, err := s.storeAvatars(ctx, id, files)
	if err != nil {
		s.audit.Log(ctx, model.AuditActionUpdateUser, auditActor, model.AuditStatusFailure, id, err.Error())
		return model.PublicUser{}, err
	}
	if len(urls) > 0 {
		patch.AvatarURL = &urls[0]
	}

	updated, err := s.users.UpdateByID(ctx, id, patch)
	if err != nil {
		return model.PublicUser{}, err
	}

	s.audit.Log(ctx, model.AuditActionUpdateUser, auditActor, model.AuditStatusSuccess, id, "")
	return updated.Public(), nil
}

func (s *UserService) storeAvatars(ctx context.Context, userID string, files []model.UploadedFile) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if s.avatars == nil {
		return nil, apierror.New("UPLOADS_DISABLED", "file uploads are not configured", "", http.StatusServiceUnavailable)
	}

	urls := make([]string, 0, len(files))
	for _, file := range files {
		data, err := media.Avatar(file.Content)
		if errors.Is(err, media.ErrNotImage) {
			return nil, apierror.BadRequest("file is not a supported image", file.Name)
		}
		if err != nil {
			return nil, apierror.BadRequest(err.Error(), file.Name)
		}

		key := fmt.Sprintf("avatars/%s/%s.jpg", userID, uuid.NewString())
		url, err := s.avatars.Put(ctx, key, "image/jpeg", data)
		if err != nil {
			return nil, fmt.Errorf("store avatar: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *UserService) List(ctx context.Context) (model.UserList, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return model.UserList{}, err
	}

	out := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return model.UserList{Users: out}, nil
}

func (s *UserService) Follow(ctx context.Context, actorID string, targetID string) error {
	if err := validateFollow(actorID, targetID); err != nil {
		return err
	}
	return s.users.Follow(ctx, actorID, targetID)
}

func (s *UserService) Unfollow(ctx context.Context, actorID string, targetID string) error {
	if err := validateFollow(actorID, targetID); err != nil {
		return err
	}
	return s.users.Unfollow(ctx, actorID, targetID)
}

func validateFollow(actorID string, targetID string) error {
	if strings.TrimSpace(targetID) == "" {
		return apierror.BadRequest("target user id is required", "")
	}
	if actorID == targetID {
		return apierror.BadRequest("cannot follow yourself", "")
	}
	return nil
}
