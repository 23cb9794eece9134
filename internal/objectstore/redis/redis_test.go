package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/objectstore"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/objectstore/objectstoretest"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/objectstore/redis"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisBucket(t *testing.T) {
	_, client := setupRedis(t)
	objectstoretest.Run(t, redis.New(client, ""), "")
}

func TestRedisBucket_Namespace(t *testing.T) {
	mr, client := setupRedis(t)
	b := redis.New(client, "test:ns:")

	_, err := b.Create(context.Background(), "projects/p1.json", []byte(`{"x":1}`))
	require.NoError(t, err)

	assert.True(t, mr.Exists("test:ns:projects/p1.json"))
	assert.Equal(t, `{"x":1}`, mr.HGet("test:ns:projects/p1.json", "body"))
}

func TestRedisBucket_Unavailable(t *testing.T) {
	mr, client := setupRedis(t)
	b := redis.New(client, "")
	mr.Close()

	_, err := b.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, objectstore.ErrNotExist)
	assert.Error(t, b.Ping(context.Background()))
}
