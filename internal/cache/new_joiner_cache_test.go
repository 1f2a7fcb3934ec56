package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "newjoiner:42", key(42))
}

func TestNewJoinerCache_UnreachableRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()
	c := NewNewJoinerCache(rdb, time.Minute)

	nj, err := c.Get(context.Background(), 1)
	assert.Error(t, err)
	assert.Nil(t, nj)
	assert.Error(t, c.Invalidate(context.Background(), 1))
}
