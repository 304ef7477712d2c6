package access

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

const capabilityKeyPrefix = "capabilities:"

// RedisCache keeps capability sets hot for the duration of the TTL. Writes to
// the checker invalidate the key, so the TTL only bounds staleness across
// service instances.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: client, TTL: ttl}
}

func (c *RedisCache) GetCapabilities(ctx context.Context, principalID string) ([]string, bool, error) {
	raw, err := c.Client.Get(ctx, capabilityKeyPrefix+principalID).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var capabilities []string
	if err := json.Unmarshal([]byte(raw), &capabilities); err != nil {
		return nil, false, err
	}
	return capabilities, true, nil
}

func (c *RedisCache) SetCapabilities(ctx context.Context, principalID string, capabilities []string) error {
	raw, err := json.Marshal(capabilities)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, capabilityKeyPrefix+principalID, raw, c.TTL).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, principalID string) error {
	return c.Client.Del(ctx, capabilityKeyPrefix+principalID).Err()
}
