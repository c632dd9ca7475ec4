package service

import (
	"context"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-backend/internal/event"
	"shop-backend/internal/model"
	"shop-backend/internal/util"
	"shop-backend/pkg/apierror"
)

type CommentService struct {
	comments CommentStore
	audit    *AuditService
	bus      event.Bus
}

// NewCommentService wires the comment store. bus may be nil, in which case no
// activity events are published.
func NewCommentService(comments CommentStore, audit *AuditService, bus event.Bus) *CommentService {
	return &CommentService{comments: comments, audit: audit, bus: bus}
}

// Create stores a comment. A non-empty answerTo must name an existing comment.
func (s *CommentService) Create(ctx context.Context, userID string, req model.CreateCommentRequest) (model.CommentView, error) {
	req.Text = strings.TrimSpace(req.Text)
	if err := util.ValidateStruct(req); err != nil {
		return model.CommentView{}, err
	}

	author, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return model.CommentView{}, apierror.Unauthorized("not authorized")
	}

	comment := model.Comment{Text: req.Text, UserID: author, Likes: map[string]bool{}}

	if answerTo := strings.TrimSpace(req.AnswerTo); answerTo != "" {
		parent, err := s.comments.FindByID(ctx, answerTo)
		if err != nil {
			return model.CommentView{}, err
		}
		comment.AnswerTo = &parent.ID
	}

	created, err := s.comments.Create(ctx, comment)
	if err != nil {
		return model.CommentView{}, err
	}

	view := created.View(userID)
	s.publish(event.TypeCommentCreated, userID, view)
	return view, nil
}

func (s *CommentService) List(ctx context.Context, viewerID string, page int, limit int) (model.CommentList, model.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	offset, ok := model.PageOffset(page, limit)
	if !ok {
		return model.CommentList{}, model.Meta{}, apierror.BadRequest("page is out of range", strconv.Itoa(page))
	}

	items, total, err := s.comments.ListTopLevel(ctx, offset, int64(limit))
	if err != nil {
		return model.CommentList{}, model.Meta{}, err
	}
	return views(items, viewerID), model.NewMeta(page, limit, int(total)), nil
}

func (s *CommentService) Replies(ctx context.Context, viewerID string, id string) (model.CommentList, error) {
	if _, err := s.comments.FindByID(ctx, id); err != nil {
		return model.CommentList{}, err
	}

	items, err := s.comments.Replies(ctx, id)
	if err != nil {
		return model.CommentList{}, err
	}
	return views(items, viewerID), nil
}

// ToggleLike flips the caller's like on a comment.
func (s *CommentService) ToggleLike(ctx context.Context, id string, userID string) (model.CommentView, error) {
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return model.CommentView{}, err
	}

	updated, err := s.comments.SetLike(ctx, id, userID, !comment.Likes[userID])
	if err != nil {
		return model.CommentView{}, err
	}

	view := updated.View(userID)
	s.publish(event.TypeCommentLiked, userID, map[string]any{"_id": view.ID, "likesCount": view.LikesCount})
	return view, nil
}

// Delete removes a comment and its replies. Only the author may delete.
func (s *CommentService) Delete(ctx context.Context, actor *model.AuthClaims, id string) error {
	if actor == nil {
		return apierror.Unauthorized("authentication required")
	}

	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return err
	}

	auditActor := model.AuditActor{UserID: actor.UserID, Email: actor.Email, Role: string(actor.Role)}

	if comment.UserID.Hex() != actor.UserID {
		s.audit.Log(ctx, model.AuditActionDeleteComment, auditActor, model.AuditStatusFailure, id, "not the author")
		return apierror.Forbidden("only the author can delete this comment")
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Log(ctx, model.AuditActionDeleteComment, auditActor, model.AuditStatusSuccess, id, "")
	s.publish(event.TypeCommentDeleted, actor.UserID, map[string]any{"_id": id})
	return nil
}

// Subscribe returns a feed of comment activity. It returns false when no bus
// is configured.
func (s *CommentService) Subscribe() (<-chan event.Event, func(), bool) {
	if s.bus == nil {
		return nil, nil, false
	}
	ch, unsubscribe := s.bus.Subscribe()
	return ch, unsubscribe, true
}

func (s *CommentService) publish(typ event.Type, actorID string, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.Event{Type: typ, ActorID: actorID, Payload: payload})
}

func views(items []model.Comment, viewerID string) model.CommentList {
	out := make([]model.CommentView, 0, len(items))
	for _, c := range items {
		out = append(out, c.View(viewerID))
	}
	return model.CommentList{Items: out}
}
