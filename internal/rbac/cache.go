package rbac

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "rbac:resolve:version"

// ResolveCache keeps recently resolved grants in Redis. Cache misses fall
// back to the repository; cache faults are swallowed so Redis downtime only
// costs latency, never correctness. Versioned keys make a bulk invalidation
// a single counter bump.
type ResolveCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResolveCache instantiates the cache helper.
func NewResolveCache(client *redis.Client, ttl time.Duration) *ResolveCache {
	return &ResolveCache{client: client, ttl: ttl}
}

// Get loads cached grants for the user. The second return reports a hit.
func (c *ResolveCache) Get(ctx context.Context, userID int64) (Grants, bool) {
	if c == nil || c.client == nil {
		return Grants{}, false
	}
	key, err := c.key(ctx, userID)
	if err != nil {
		return Grants{}, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return Grants{}, false
	}
	var grants Grants
	if err := json.Unmarshal(raw, &grants); err != nil {
		return Grants{}, false
	}
	return grants, true
}

// Put stores grants for the user under the current version.
func (c *ResolveCache) Put(ctx context.Context, userID int64, grants Grants) {
	if c == nil || c.client == nil {
		return
	}
	key, err := c.key(ctx, userID)
	if err != nil {
		return
	}
	raw, err := json.Marshal(grants)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Invalidate drops the cached grants for one user.
func (c *ResolveCache) Invalidate(ctx context.Context, userID int64) {
	if c == nil || c.client == nil {
		return
	}
	key, err := c.key(ctx, userID)
	if err != nil {
		return
	}
	_ = c.client.Del(ctx, key).Err()
}

// InvalidateAll bumps the version counter, orphaning every cached entry.
// Used when role definitions change and per-user invalidation is unknowable.
func (c *ResolveCache) InvalidateAll(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Incr(ctx, cacheVersionKey).Err()
}

func (c *ResolveCache) key(ctx context.Context, userID int64) (string, error) {
	ver, err := c.version(ctx)
	if err != nil {
		return "", err
	}
	return "rbac:resolve:" + strconv.FormatInt(ver, 10) + ":" + strconv.FormatInt(userID, 10), nil
}

func (c *ResolveCache) version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

func resolveKey(userID int64) string {
	return "resolve:" + strconv.FormatInt(userID, 10)
}
