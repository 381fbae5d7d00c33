package cache

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/okian/matchbox/internal/domain/model"
	"github.com/okian/matchbox/pkg/metrics"
)

// Default cache configuration constants.
const (
	defaultTTL             = 5 * time.Minute
	defaultShardCount      = 16
	defaultJanitorInterval = time.Minute
)

type entry struct {
	match     model.Match
	expiresAt time.Time
}

type cacheShard struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// MemCache is a sharded, TTL-bound in-memory Cache implementation. Safe
// for concurrent use.
type MemCache struct {
	shards          []*cacheShard
	shardCount      int
	ttl             time.Duration
	janitorInterval time.Duration
	stopJanitor     chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
}

// NewMemCache creates a sharded TTL cache with configuration options.
func NewMemCache(opts ...Option) *MemCache {
	c := &MemCache{
		shardCount:      defaultShardCount,
		ttl:             defaultTTL,
		janitorInterval: defaultJanitorInterval,
		stopJanitor:     make(chan struct{}),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.shards = make([]*cacheShard, c.shardCount)
	for i := range c.shards {
		c.shards[i] = &cacheShard{entries: make(map[string]entry)}
	}
	go c.janitor()
	return c
}

func (c *MemCache) shardFor(key string) *cacheShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return c.shards[int(h.Sum32())%len(c.shards)]
}

// Get returns the cached match for key if present and unexpired. Expired
// entries are dropped lazily on read.
func (c *MemCache) Get(ctx context.Context, key string) (model.Match, bool) {
	sh := c.shardFor(key)
	sh.mu.RLock()
	e, ok := sh.entries[key]
	sh.mu.RUnlock()
	if !ok {
		metrics.RecordCacheMiss()
		return model.Match{}, false
	}
	if c.now().After(e.expiresAt) {
		sh.mu.Lock()
		delete(sh.entries, key)
		sh.mu.Unlock()
		metrics.RecordCacheMiss()
		return model.Match{}, false
	}
	metrics.RecordCacheHit()
	return e.match, true
}

// Set stores a match under key with the configured TTL.
func (c *MemCache) Set(ctx context.Context, key string, m model.Match) {
	sh := c.shardFor(key)
	sh.mu.Lock()
	sh.entries[key] = entry{match: m, expiresAt: c.now().Add(c.ttl)}
	sh.mu.Unlock()
}

// Clear flushes every entry across all shards.
func (c *MemCache) Clear(ctx context.Context) {
	for _, sh := range c.shards {
		sh.mu.Lock()
		sh.entries = make(map[string]entry)
		sh.mu.Unlock()
	}
	metrics.UpdateCacheEntries(0)
}

// Len returns the number of live (unexpired) entries.
func (c *MemCache) Len(ctx context.Context) int {
	now := c.now()
	total := 0
	for _, sh := range c.shards {
		sh.mu.RLock()
		for _, e := range sh.entries {
			if now.Before(e.expiresAt) {
				total++
			}
		}
		sh.mu.RUnlock()
	}
	return total
}

// Stop terminates the background janitor.
func (c *MemCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopJanitor) })
}

// janitor evicts expired entries on a fixed interval so shards do not
// accumulate dead weight between reads.
func (c *MemCache) janitor() {
	ticker := time.NewTicker(c.janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopJanitor:
			return
		case <-ticker.C:
			now := c.now()
			for _, sh := range c.shards {
				sh.mu.Lock()
				for key, e := range sh.entries {
					if now.After(e.expiresAt) {
						delete(sh.entries, key)
					}
				}
				sh.mu.Unlock()
			}
			metrics.UpdateCacheEntries(c.Len(context.Background()))
		}
	}
}
