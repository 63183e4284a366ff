package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "rbac:resolve:"

type cachedResolution struct {
	RoleID        string   `json:"role_id"`
	PermissionIDs []string `json:"permission_ids"`
	Super         bool     `json:"super"`
}

// Cache stores per-user resolutions in Redis. Concurrent misses for the
// same user collapse into a single storage read through singleflight.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Fetch loads the cached resolution or populates it using the loader.
func (c *Cache) Fetch(ctx context.Context, userID string, loader func(context.Context) (cachedResolution, error)) (cachedResolution, error) {
	if loader == nil {
		return cachedResolution{}, errors.New("rbac: cache loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	key := cacheKeyPrefix + userID
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached cachedResolution
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		// Corrupt entry: drop it and reload.
		_ = c.client.Del(ctx, key).Err()
	} else if !errors.Is(err, redis.Nil) {
		return cachedResolution{}, err
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		fresh, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(fresh); err == nil {
			_ = c.client.Set(ctx, key, data, c.ttl).Err()
		}
		return fresh, nil
	})
	if err != nil {
		return cachedResolution{}, err
	}
	return value.(cachedResolution), nil
}

// Invalidate removes the cached resolution for a user.
func (c *Cache) Invalidate(ctx context.Context, userID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	err := c.client.Del(ctx, cacheKeyPrefix+userID).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
