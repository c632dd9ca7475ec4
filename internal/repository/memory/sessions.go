package memory

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-backend/internal/model"
)

type SessionRepository struct {
	mu       sync.Mutex
	sessions map[primitive.ObjectID]model.Session
	now      func() time.Time
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: map[primitive.ObjectID]model.Session{}, now: time.Now}
}

func (r *SessionRepository) Create(_ context.Context, userID string, expiresAt time.Time) (model.Session, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return model.Session{}, model.ErrUserNotFound
	}

	session := model.Session{
		ID:        primitive.NewObjectID(),
		UserID:    uid,
		CreatedAt: r.now().UTC(),
		ExpiresAt: expiresAt.UTC(),
	}

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()

	return session, nil
}

func (r *SessionRepository) FindByID(_ context.Context, id string) (model.Session, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Session{}, model.ErrSessionNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.live(objID)
	if !ok {
		return model.Session{}, model.ErrSessionNotFound
	}
	return s, nil
}

func (r *SessionRepository) Consume(_ context.Context, id string, userID string) (model.Session, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Session{}, model.ErrSessionNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.live(objID)
	if !ok || s.UserID.Hex() != userID {
		return model.Session{}, model.ErrSessionNotFound
	}
	delete(r.sessions, objID)
	return s, nil
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.ErrSessionNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[objID]; !ok {
		return model.ErrSessionNotFound
	}
	delete(r.sessions, objID)
	return nil
}

// Count reports the number of stored sessions, expired or not.
func (r *SessionRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// live must be called with mu held. Expired sessions are dropped the way the
// TTL index drops them in MongoDB.
func (r *SessionRepository) live(id primitive.ObjectID) (model.Session, bool) {
	s, ok := r.sessions[id]
	if !ok {
		return model.Session{}, false
	}
	if !s.ExpiresAt.IsZero() && !r.now().Before(s.ExpiresAt) {
		delete(r.sessions, id)
		return model.Session{}, false
	}
	return s, true
}
