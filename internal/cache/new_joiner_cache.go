package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	dom "github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyNewJoiner = "newjoiner:"

// NewJoinerCache caches single new-joiner records by id in Redis.
type NewJoinerCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewNewJoinerCache returns a new NewJoinerCache.
func NewNewJoinerCache(rdb *redis.Client, ttl time.Duration) *NewJoinerCache {
	return &NewJoinerCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached record, or nil on a miss.
func (c *NewJoinerCache) Get(ctx context.Context, id int64) (*dom.NewJoiner, error) {
	b, err := c.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var nj dom.NewJoiner
	if err := json.Unmarshal(b, &nj); err != nil {
		return nil, err
	}
	return &nj, nil
}

// Set stores the record.
func (c *NewJoinerCache) Set(ctx context.Context, nj dom.NewJoiner) error {
	b, err := json.Marshal(nj)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(nj.ID), b, c.ttl).Err()
}

// Invalidate drops the record after its delivery status changes.
func (c *NewJoinerCache) Invalidate(ctx context.Context, id int64) error {
	return c.rdb.Del(ctx, key(id)).Err()
}

func key(id int64) string {
	return keyNewJoiner + strconv.FormatInt(id, 10)
}
