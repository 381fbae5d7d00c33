package cache

import "time"

// Option applies a configuration option to the MemCache.
type Option func(*MemCache)

// WithTTL sets the entry time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(c *MemCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithShardCount sets the number of cache shards.
func WithShardCount(count int) Option {
	return func(c *MemCache) {
		if count > 0 {
			c.shardCount = count
		}
	}
}

// WithJanitorInterval sets how often expired entries are swept.
func WithJanitorInterval(interval time.Duration) Option {
	return func(c *MemCache) {
		if interval > 0 {
			c.janitorInterval = interval
		}
	}
}

// WithClock overrides the time source, used by tests to control expiry.
func WithClock(now func() time.Time) Option {
	return func(c *MemCache) {
		if now != nil {
			c.now = now
		}
	}
}
