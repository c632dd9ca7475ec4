package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-backend/internal/model"
)

type CommentRepository struct {
	mu       sync.RWMutex
	comments map[primitive.ObjectID]model.Comment
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{comments: map[primitive.ObjectID]model.Comment{}}
}

func (r *CommentRepository) Create(_ context.Context, comment model.Comment) (model.Comment, error) {
	comment.ID = primitive.NewObjectID()
	if comment.Created.IsZero() {
		comment.Created = time.Now().UTC()
	}
	comment.Likes = cloneLikes(comment.Likes)

	r.mu.Lock()
	r.comments[comment.ID] = comment
	r.mu.Unlock()

	return cloneComment(comment), nil
}

func (r *CommentRepository) FindByID(_ context.Context, id string) (model.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Comment{}, model.ErrCommentNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.comments[objID]
	if !ok {
		return model.Comment{}, model.ErrCommentNotFound
	}
	return cloneComment(c), nil
}

func (r *CommentRepository) ListTopLevel(_ context.Context, offset int64, limit int64) ([]model.Comment, int64, error) {
	all := r.filter(func(c model.Comment) bool { return c.AnswerTo == nil })
	sort.Slice(all, func(i int, j int) bool { return all[i].Created.After(all[j].Created) })

	total := int64(len(all))
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total || end < offset {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *CommentRepository) Replies(_ context.Context, parentID string) ([]model.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(parentID)
	if err != nil {
		return nil, model.ErrCommentNotFound
	}

	replies := r.filter(func(c model.Comment) bool { return c.AnswerTo != nil && *c.AnswerTo == objID })
	sort.Slice(replies, func(i int, j int) bool { return replies[i].Created.Before(replies[j].Created) })
	return replies, nil
}

func (r *CommentRepository) SetLike(_ context.Context, id string, userID string, liked bool) (model.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Comment{}, model.ErrCommentNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.comments[objID]
	if !ok {
		return model.Comment{}, model.ErrCommentNotFound
	}
	if liked {
		c.Likes[userID] = true
	} else {
		delete(c.Likes, userID)
	}
	r.comments[objID] = c
	return cloneComment(c), nil
}

func (r *CommentRepository) Delete(_ context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.ErrCommentNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.comments[objID]; !ok {
		return model.ErrCommentNotFound
	}
	delete(r.comments, objID)
	for replyID, c := range r.comments {
		if c.AnswerTo != nil && *c.AnswerTo == objID {
			delete(r.comments, replyID)
		}
	}
	return nil
}

func (r *CommentRepository) filter(match func(model.Comment) bool) []model.Comment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Comment, 0)
	for _, c := range r.comments {
		if match(c) {
			out = append(out, cloneComment(c))
		}
	}
	return out
}

func cloneComment(c model.Comment) model.Comment {
	c.Likes = cloneLikes(c.Likes)
	if c.AnswerTo != nil {
		parent := *c.AnswerTo
		c.AnswerTo = &parent
	}
	return c
}

func cloneLikes(likes map[string]bool) map[string]bool {
	out := make(map[string]bool, len(likes))
	for k, v := range likes {
		out[k] = v
	}
	return out
}
