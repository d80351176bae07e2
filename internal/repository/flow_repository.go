package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/id-portal/internal/models"
)

// FlowRepository persists lost-ID flows in Redis under lostid:flow:<id>.
type FlowRepository struct {
	store redisStore
}

// NewFlowRepository constructs a FlowRepository.
func NewFlowRepository(client *redis.Client, logger *zap.Logger) *FlowRepository {
	return &FlowRepository{store: newRedisStore(client, "lostid:flow:", logger)}
}

// Create stores a new flow that expires after ttl.
func (r *FlowRepository) Create(ctx context.Context, flow *models.Flow, ttl time.Duration) error {
	return r.store.set(ctx, flow.ID, flow, ttl)
}

// Get loads a flow. Missing or expired flows yield appErrors.ErrNotFound.
func (r *FlowRepository) Get(ctx context.Context, id string) (*models.Flow, error) {
	var flow models.Flow
	if err := r.store.get(ctx, id, &flow); err != nil {
		return nil, err
	}
	return &flow, nil
}

// Update overwrites an existing flow without extending its expiry.
func (r *FlowRepository) Update(ctx context.Context, flow *models.Flow) error {
	return r.store.update(ctx, flow.ID, flow)
}

// Lock serialises mutations of one flow. ErrLocked is returned while another mutation holds it.
func (r *FlowRepository) Lock(ctx context.Context, id string, ttl time.Duration) (func(), error) {
	return r.store.lock(ctx, id, ttl)
}
