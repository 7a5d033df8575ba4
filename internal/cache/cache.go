// Package cache keeps rendered API list responses in redis. A nil
// *ListingCache is valid and caches nothing.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 30 * time.Second

// Connect returns a client after a successful PING.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

type ListingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *ListingCache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ListingCache{rdb: rdb, ttl: ttl}
}

// Get decodes the cached value into dest. A miss is (false, nil).
func (c *ListingCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if c == nil {
		return false, nil
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, dest)
}

func (c *ListingCache) Set(ctx context.Context, key string, value any) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, data, c.ttl).Err()
}

// QueryKey derives a key from the catalog revision and the query parameters.
// The revision changes on every write and differs between processes, so stale
// entries become unreachable and nothing needs explicit invalidation.
func QueryKey(prefix, revision string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString(":")
		}
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(params[k])
	}
	sum := md5.Sum([]byte(b.String()))
	return fmt.Sprintf("%s:%s:%s", prefix, revision, hex.EncodeToString(sum[:]))
}
