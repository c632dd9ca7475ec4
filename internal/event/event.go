package event

type Type string

const (
	TypeCommentCreated Type = "comment.created"
	TypeCommentLiked   Type = "comment.liked"
	TypeCommentDeleted Type = "comment.deleted"
)

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
	ActorID   string `json:"actor_id,omitempty"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func())
}
