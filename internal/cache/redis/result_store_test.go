package redis_test

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/pricelab/internal/cache/redis"
	"github.com/davidbz/pricelab/internal/config"
	"github.com/davidbz/pricelab/internal/simulator"
)

// unreachableClient points at a port nothing listens on.
func unreachableClient(t *testing.T) *goredis.Client {
	t.Helper()
	client := redis.NewClient(&config.RedisConfig{Addr: "127.0.0.1:1", DB: 0})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestResultStore_Key(t *testing.T) {
	store := redis.NewResultStore(unreachableClient(t), time.Hour)
	require.Equal(t, "pricelab:session:abc", store.Key("abc"))
}

func TestResultStore_SaveRejectsEmptySession(t *testing.T) {
	store := redis.NewResultStore(unreachableClient(t), time.Hour)
	err := store.Save(context.Background(), simulator.Snapshot{})
	require.Error(t, err)
}

func TestResultStore_ConnectionErrors(t *testing.T) {
	store := redis.NewResultStore(unreachableClient(t), time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := store.Load(ctx, "abc")
	require.Error(t, err)
	require.NotErrorIs(t, err, simulator.ErrNoResult)

	err = store.Save(ctx, simulator.Snapshot{SessionID: "abc"})
	require.Error(t, err)
}
