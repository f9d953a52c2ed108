// Package cache stores JSON documents in redis. Reads fail open: an
// unreachable server looks like an empty cache, so callers always fall
// back to MySQL. A nil *Client never hits.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is a JSON cache over a single redis database.
type Client struct {
	rdb *redis.Client
}

// New connects lazily to redis at addr.
func New(addr, password string, db int) *Client {
	return &Client{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Key joins parts with ':' into a redis key, e.g. Key("user", 7) is "user:7".
func Key(parts ...any) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprint(p)
	}
	return strings.Join(s, ":")
}

func (c *Client) disabled() bool { return c == nil || c.rdb == nil }

// Ping reports whether redis is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c.disabled() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	if c.disabled() {
		return nil
	}
	return c.rdb.Close()
}

// Load decodes the document at key into dst. It returns false on a miss,
// when redis is down, or when the stored value no longer decodes.
func (c *Client) Load(ctx context.Context, key string, dst any) bool {
	if c.disabled() {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// Has reports whether key is present. Errors read as absent.
func (c *Client) Has(ctx context.Context, key string) bool {
	if c.disabled() {
		return false
	}
	n, err := c.rdb.Exists(ctx, key).Result()
	return err == nil && n > 0
}

// Save stores v at key for ttl on a best-effort basis.
func (c *Client) Save(ctx context.Context, key string, v any, ttl time.Duration) {
	_ = c.put(ctx, key, v, ttl)
}

// SaveStrict is Save with redis errors reported. Refresh tokens go through
// here: a lost write would leave a client holding an unusable token.
func (c *Client) SaveStrict(ctx context.Context, key string, v any, ttl time.Duration) error {
	if c.disabled() {
		return errors.New("cache: redis not configured")
	}
	return c.put(ctx, key, v, ttl)
}

func (c *Client) put(ctx context.Context, key string, v any, ttl time.Duration) error {
	if c.disabled() {
		return nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, payload, ttl).Err()
}

// Forget removes keys, ignoring redis errors.
func (c *Client) Forget(ctx context.Context, keys ...string) {
	if c.disabled() || len(keys) == 0 {
		return
	}
	_ = c.rdb.Del(ctx, keys...).Err()
}
