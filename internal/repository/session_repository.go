package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/id-portal/internal/models"
)

// SessionRepository persists portal sessions in Redis under session:<id>.
type SessionRepository struct {
	store redisStore
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(client *redis.Client, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{store: newRedisStore(client, "session:", logger)}
}

// Save stores a session until ttl elapses.
func (r *SessionRepository) Save(ctx context.Context, session *models.Session, ttl time.Duration) error {
	return r.store.set(ctx, session.ID, session, ttl)
}

// Get loads a session. Missing or expired sessions yield appErrors.ErrNotFound.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := r.store.get(ctx, id, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete removes a session.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.store.del(ctx, id)
}
