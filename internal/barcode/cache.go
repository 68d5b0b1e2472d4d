package barcode

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const cacheKeyPrefix = "barcode:"

// RedisCache keeps lookup answers in Redis for ttl.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// NewRedis parses redisURL and checks connectivity.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

func (c *RedisCache) Get(ctx context.Context, code string) (Result, bool) {
	raw, err := c.rdb.Get(ctx, cacheKeyPrefix+code).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("barcode cache read failed")
		}
		return Result{}, false
	}
	var r Result
	if err := json.Unmarshal(raw, &r); err != nil {
		return Result{}, false
	}
	return r, true
}

func (c *RedisCache) Set(ctx context.Context, code string, r Result) {
	b, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKeyPrefix+code, b, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("barcode cache write failed")
	}
}
