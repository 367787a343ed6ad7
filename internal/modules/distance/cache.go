// README: Distance memo cache backed by Redis.
package distance

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "petcare:distance:"

type Cache interface {
	Get(ctx context.Context, key string) (km float64, ok bool, err error)
	Set(ctx context.Context, key string, km float64, ttl time.Duration) error
}

// CacheKey is content-addressed: normalized addresses hashed under the catalog version.
func CacheKey(catalogVersion, origin, destination string) string {
	sum := sha256.Sum256([]byte(normalize(origin) + "|" + normalize(destination)))
	return keyPrefix + catalogVersion + ":" + hex.EncodeToString(sum[:])
}

func normalize(addr string) string {
	return strings.ToLower(strings.Join(strings.Fields(addr), " "))
}

type RedisCache struct {
	redis *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{redis: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (float64, bool, error) {
	raw, err := c.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	km, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// A corrupt entry is treated as a miss and overwritten on the next lookup.
		return 0, false, nil
	}
	return km, true, nil
}

// Set stores km; a zero ttl means no expiry.
func (c *RedisCache) Set(ctx context.Context, key string, km float64, ttl time.Duration) error {
	return c.redis.Set(ctx, key, strconv.FormatFloat(km, 'f', -1, 64), ttl).Err()
}
