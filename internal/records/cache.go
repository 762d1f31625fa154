package records

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const bumpChannel = "records.bump"

// Cache wraps Redis based caching of derived summaries with per-owner
// versioning. Every record mutation bumps the owner's version, which retires
// all cached summaries for that owner at once.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client degrades to a
// pass-through loader, which keeps tests and single-binary setups simple.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func versionKey(ownerID int64) string {
	return "records:version:" + strconv.FormatInt(ownerID, 10)
}

// Version returns the owner's current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context, ownerID int64) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey(ownerID)).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, versionKey(ownerID), 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, versionKey(ownerID), ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// SummaryKey composes the cache key for a filtered summary, embedding the
// owner's current version. Every state field is encoded so no value can
// collide with the key separator.
func (c *Cache) SummaryKey(ctx context.Context, ownerID int64, state FilterState) (string, error) {
	encode := func(s string) string {
		return base64.RawURLEncoding.EncodeToString([]byte(s))
	}
	parts := []string{
		"records", "summary",
		strconv.FormatInt(ownerID, 10),
		encode(strings.ToLower(strings.TrimSpace(state.Search))),
		encode(state.DateFrom),
		encode(state.DateTo),
	}
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx, ownerID)
	if err != nil {
		return "", err
	}
	return joined + ":" + strconv.FormatInt(ver, 10), nil
}

// FetchJSON loads a cached value or populates it using the loader.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if err != redis.Nil {
		return err
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates the owner's cached summaries and publishes the new version.
func (c *Cache) Bump(ctx context.Context, ownerID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, versionKey(ownerID)).Result()
	if err != nil {
		return err
	}
	payload := strconv.FormatInt(ownerID, 10) + ":" + strconv.FormatInt(ver, 10)
	return c.client.Publish(ctx, bumpChannel, payload).Err()
}
