// Package cache provides a small tiered response cache: a bounded
// in-process tier in front of an optional Redis tier. Its purpose is
// stretching the YouTube API quota, so values are cheap JSON blobs and
// every failure path degrades to "not cached".
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyspace = "ytscout:"

// Config controls cache construction.
type Config struct {
	// RedisURL enables the Redis tier when non-empty (redis:// URL).
	// An unreachable server downgrades to the local tier with a warning.
	RedisURL string
	// TTL is how long entries stay valid in both tiers.
	TTL time.Duration
	// MaxEntries bounds the local tier.
	MaxEntries int
	// CleanupInterval is how often expired local entries are swept.
	CleanupInterval time.Duration
}

// DefaultConfig returns the cache policy used when none is configured.
func DefaultConfig() Config {
	return Config{
		TTL:             12 * time.Hour,
		MaxEntries:      4096,
		CleanupInterval: 5 * time.Minute,
	}
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Cache is a two-tier lookaside cache. The zero of *Cache (nil) is a
// valid no-op cache, so callers may hold one unconditionally.
type Cache struct {
	local sync.Map // string -> entry
	count atomic.Int64
	rdb   *redis.Client
	ttl   time.Duration
	max   int

	hits   atomic.Int64
	misses atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
}

// New builds a cache from cfg, probing Redis when configured. Redis
// being down is not an error; the cache runs local-only.
func New(cfg Config) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultConfig().MaxEntries
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultConfig().CleanupInterval
	}

	c := &Cache{
		ttl:  cfg.TTL,
		max:  cfg.MaxEntries,
		stop: make(chan struct{}),
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("cache: bad redis URL, running local-only")
		} else {
			rdb := redis.NewClient(opts)
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := rdb.Ping(pingCtx).Err(); err != nil {
				log.Warn().Err(err).Msg("cache: redis unreachable, running local-only")
				rdb.Close()
			} else {
				c.rdb = rdb
			}
			cancel()
		}
	}

	go c.cleanupLoop(cfg.CleanupInterval)
	return c
}

// Key derives a stable cache key from an operation kind and its
// argument. The kind stays readable for Redis inspection; the argument
// is hashed so titles and queries of any shape are safe.
func Key(kind, arg string) string {
	sum := sha256.Sum256([]byte(arg))
	return keyspace + kind + ":" + hex.EncodeToString(sum[:12])
}

// Get loads the value under key into dest. Returns false on a miss,
// an expired entry, or an undecodable value.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}

	if v, ok := c.local.Load(key); ok {
		e := v.(entry)
		if time.Now().Before(e.expiresAt) {
			if json.Unmarshal(e.data, dest) == nil {
				c.hits.Add(1)
				return true
			}
		} else {
			c.local.Delete(key)
			c.count.Add(-1)
		}
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil && json.Unmarshal(data, dest) == nil {
			// Backfill the local tier so repeated lookups stay in-process.
			c.store(key, data)
			c.hits.Add(1)
			return true
		}
	}

	c.misses.Add(1)
	return false
}

// Set stores v under key in both tiers. Failures are swallowed; a
// cache write is never worth failing a run over.
func (c *Cache) Set(ctx context.Context, key string, v any) {
	if c == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		return
	}

	c.store(key, data)

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			log.Debug().Err(err).Str("key", key).Msg("cache: redis set failed")
		}
	}
}

func (c *Cache) store(key string, data []byte) {
	c.evictIfNeeded()
	if _, loaded := c.local.Swap(key, entry{data: data, expiresAt: time.Now().Add(c.ttl)}); !loaded {
		c.count.Add(1)
	}
}

// evictIfNeeded keeps the local tier under its entry cap: expired
// entries go first, then the entry closest to expiry.
func (c *Cache) evictIfNeeded() {
	if int(c.count.Load()) < c.max {
		return
	}

	now := time.Now()
	removed := false
	c.local.Range(func(k, v any) bool {
		if now.After(v.(entry).expiresAt) {
			c.local.Delete(k)
			c.count.Add(-1)
			removed = true
		}
		return true
	})
	if removed && int(c.count.Load()) < c.max {
		return
	}

	var oldestKey any
	var oldest time.Time
	c.local.Range(func(k, v any) bool {
		e := v.(entry)
		if oldestKey == nil || e.expiresAt.Before(oldest) {
			oldestKey = k
			oldest = e.expiresAt
		}
		return true
	})
	if oldestKey != nil {
		c.local.Delete(oldestKey)
		c.count.Add(-1)
	}
}

func (c *Cache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.local.Range(func(k, v any) bool {
				if now.After(v.(entry).expiresAt) {
					c.local.Delete(k)
					c.count.Add(-1)
				}
				return true
			})
		case <-c.stop:
			return
		}
	}
}

// Stats describes cache effectiveness for diagnostics.
type Stats struct {
	Hits         int64
	Misses       int64
	LocalEntries int64
	RedisEnabled bool
}

// Stats returns a snapshot of hit/miss counters and tier state.
func (c *Cache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		LocalEntries: c.count.Load(),
		RedisEnabled: c.rdb != nil,
	}
}

// Close stops the sweeper and releases the Redis connection.
func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.stopOnce.Do(func() { close(c.stop) })
	if c.rdb != nil {
		c.rdb.Close()
	}
}
