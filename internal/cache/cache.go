package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is a read-through cache on top of redis. It fails safe: any redis
// error behaves like a miss so an unavailable cache never fails a request.
type Client struct {
	client *redis.Client
	prefix string
}

// New creates a new Redis client.
func New(addr, password string, db int) *Client {
	opts := &redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}
	return &Client{client: redis.NewClient(opts), prefix: "shopapi:"}
}

// Ping reports whether redis is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("cache disabled")
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connections.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Get returns value or nil if missing or redis unavailable.
func (c *Client) Get(ctx context.Context, key string) []byte {
	if c == nil || c.client == nil {
		return nil
	}
	res, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		// redis.Nil included: behave like cache miss
		return nil
	}
	return res
}

// GetJSON decodes the cached value of key into dest and reports a hit.
func (c *Client) GetJSON(ctx context.Context, key string, dest any) bool {
	data := c.Get(ctx, key)
	if data == nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// versionTTL outlives any cached value so an in-flight read never sees its
// version reset.
const versionTTL = 24 * time.Hour

func (c *Client) versionKey(key string) string {
	return c.prefix + key + ":v"
}

// Version returns the invalidation version of key. ok is false when redis
// cannot answer, in which case the caller must not fill the cache.
func (c *Client) Version(ctx context.Context, key string) (version string, ok bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	v, err := c.client.Get(ctx, c.versionKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", true
	}
	if err != nil {
		return "", false
	}
	return v, true
}

// SetJSONIfVersion stores the JSON encoding of value under key only while the
// version of key still equals version. A concurrent Invalidate wins.
func (c *Client) SetJSONIfVersion(ctx context.Context, key, version string, value any, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	vkey := c.versionKey(key)
	_ = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vkey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.prefix+key, payload, ttl)
			return nil
		})
		return err
	}, vkey)
}

// Invalidate removes key and bumps its version, ignoring redis errors.
func (c *Client) Invalidate(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	vkey := c.versionKey(key)
	_, _ = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, vkey)
		pipe.Expire(ctx, vkey, versionTTL)
		pipe.Del(ctx, c.prefix+key)
		return nil
	})
}
