package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/id-portal/internal/models"
	appErrors "github.com/noah-isme/id-portal/pkg/errors"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSessionRepositoryRoundTripAndExpiry(t *testing.T) {
	mr, client := newMiniredis(t)
	repo := NewSessionRepository(client, nil)
	ctx := context.Background()

	session := &models.Session{
		ID:            "s-1",
		Role:          models.RoleOfficer,
		RegistryToken: "tok",
		Officer:       &models.OfficerProfile{ID: 3, FullName: "Jane Officer"},
	}
	require.NoError(t, repo.Save(ctx, session, time.Minute))
	assert.True(t, mr.Exists("session:s-1"))

	got, err := repo.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Officer", got.DisplayName())

	mr.FastForward(2 * time.Minute)
	_, err = repo.Get(ctx, "s-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestSessionRepositoryDelete(t *testing.T) {
	_, client := newMiniredis(t)
	repo := NewSessionRepository(client, nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.Session{ID: "s-2"}, time.Minute))
	require.NoError(t, repo.Delete(ctx, "s-2"))
	_, err := repo.Get(ctx, "s-2")
	assert.Error(t, err)
}

func TestFlowRepositoryUpdateKeepsTTL(t *testing.T) {
	mr, client := newMiniredis(t)
	repo := NewFlowRepository(client, nil)
	ctx := context.Background()

	flow := &models.Flow{ID: "f-1", Stage: models.FlowStageSearching}
	require.NoError(t, repo.Create(ctx, flow, time.Hour))
	mr.FastForward(30 * time.Minute)

	flow.Stage = models.FlowStageFound
	require.NoError(t, repo.Update(ctx, flow))

	ttl := mr.TTL("lostid:flow:f-1")
	assert.True(t, ttl > 0 && ttl <= 30*time.Minute, "ttl = %s", ttl)

	got, err := repo.Get(ctx, "f-1")
	require.NoError(t, err)
	assert.Equal(t, models.FlowStageFound, got.Stage)
}

func TestFlowRepositoryUpdateMissing(t *testing.T) {
	_, client := newMiniredis(t)
	repo := NewFlowRepository(client, nil)

	err := repo.Update(context.Background(), &models.Flow{ID: "gone"})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestFlowRepositoryLock(t *testing.T) {
	_, client := newMiniredis(t)
	repo := NewFlowRepository(client, nil)
	ctx := context.Background()

	unlock, err := repo.Lock(ctx, "f-1", time.Minute)
	require.NoError(t, err)

	_, err = repo.Lock(ctx, "f-1", time.Minute)
	assert.ErrorIs(t, err, ErrLocked)

	unlock()
	unlock2, err := repo.Lock(ctx, "f-1", time.Minute)
	require.NoError(t, err)
	unlock2()
}
