package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnreachableServerBypasses(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	r := newWithClient(context.Background(), client)
	assert.False(t, r.Available())

	var out map[string]string
	hit, err := r.GetJSON(context.Background(), "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, r.SetJSON(context.Background(), "k", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, r.Close())
}

func TestNilCacheIsSafe(t *testing.T) {
	var r *Redis
	assert.False(t, r.Available())
	hit, err := r.GetJSON(context.Background(), "k", new(string))
	assert.NoError(t, err)
	assert.False(t, hit)
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "http://not-redis")
	assert.Error(t, err)
}
