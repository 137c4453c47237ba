// Package cache keeps recent text verdicts in redis so identical requests
// skip the remote extractors.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/TobiSchelling/veritas/internal/verdict"
)

const keyPrefix = "veritas:verdict:"

// DefaultTTL is used when Open is given a zero ttl.
const DefaultTTL = 24 * time.Hour

// Cache stores verdicts keyed by mode and text. A nil *Cache is valid and
// caches nothing.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// Open connects to redis at addr. It returns nil when addr is empty or the
// server does not answer, so callers can use the result unconditionally.
func Open(ctx context.Context, addr string, ttl time.Duration) *Cache {
	if addr == "" {
		log.Println("Redis address not set, running without verdict cache")
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("Redis unavailable at %s: %v", addr, err)
		rdb.Close()
		return nil
	}

	log.Printf("Connected to redis at %s", addr)
	return &Cache{rdb: rdb, ttl: ttl}
}

// Key returns the redis key for a text analysed in mode.
func Key(mode, text string) string {
	sum := sha256.Sum256([]byte(mode + "\x00" + text))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Enabled reports whether the cache is connected.
func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Get returns the cached verdict for text in mode.
func (c *Cache) Get(ctx context.Context, mode, text string) (verdict.Verdict, bool) {
	if !c.Enabled() {
		return verdict.Verdict{}, false
	}
	data, err := c.rdb.Get(ctx, Key(mode, text)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Verdict cache read failed: %v", err)
		}
		return verdict.Verdict{}, false
	}
	var v verdict.Verdict
	if err := json.Unmarshal(data, &v); err != nil {
		log.Printf("Discarding unreadable cached verdict: %v", err)
		return verdict.Verdict{}, false
	}
	return v, true
}

// Set stores a verdict. Unknown verdicts are not cached so a later request
// can retry the extractors.
func (c *Cache) Set(ctx context.Context, mode, text string, v verdict.Verdict) {
	if !c.Enabled() || !v.Valid() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Encoding verdict for cache: %v", err)
		return
	}
	if err := c.rdb.Set(ctx, Key(mode, text), data, c.ttl).Err(); err != nil {
		log.Printf("Verdict cache write failed: %v", err)
	}
}

// Close releases the redis connection.
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}
