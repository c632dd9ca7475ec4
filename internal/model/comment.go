package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty"`
	Text     string              `bson:"text"`
	AnswerTo *primitive.ObjectID `bson:"answerTo,omitempty"`
	Created  time.Time           `bson:"created"`
	UserID   primitive.ObjectID  `bson:"userId"`
	Likes    map[string]bool     `bson:"likes"`
}

type CommentView struct {
	ID         string `json:"_id"`
	Text       string `json:"text"`
	AnswerTo   string `json:"answerTo,omitempty"`
	Created    string `json:"created"`
	UserID     string `json:"userId"`
	LikesCount int    `json:"likesCount"`
	LikedByMe  bool   `json:"likedByMe"`
}

// View renders c for the viewer identified by viewerID (may be empty).
func (c Comment) View(viewerID string) CommentView {
	view := CommentView{
		ID:      c.ID.Hex(),
		Text:    c.Text,
		Created: c.Created.UTC().Format(time.RFC3339Nano),
		UserID:  c.UserID.Hex(),
	}
	if c.AnswerTo != nil {
		view.AnswerTo = c.AnswerTo.Hex()
	}
	for userID, liked := range c.Likes {
		if !liked {
			continue
		}
		view.LikesCount++
		if userID == viewerID {
			view.LikedByMe = true
		}
	}
	return view
}

type CommentList struct {
	Items []CommentView `json:"items"`
}
