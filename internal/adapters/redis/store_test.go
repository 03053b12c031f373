package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/sprig/internal/adapters/redis"
	"github.com/aretw0/sprig/pkg/checkpoint"
	"github.com/aretw0/sprig/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunCheckpointStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("test:"), redis.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "chain", &checkpoint.Checkpoint{ID: "chain", State: 7}))
	assert.True(t, mr.Exists("test:chain"))
	assert.Equal(t, time.Minute, mr.TTL("test:chain"))

	mr.FastForward(2 * time.Minute)
	_, err := store.Load(ctx, "chain")
	assert.ErrorIs(t, err, ports.ErrCheckpointNotFound)
}
